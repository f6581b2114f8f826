package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorInfo_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ErrorInfo
		want string
	}{
		{
			name: "without code",
			err:  NewErrorInfo(ErrorTypeNetwork, "网络连接失败"),
			want: "network: 网络连接失败",
		},
		{
			name: "with code and details",
			err:  NewErrorInfo(ErrorTypeBusiness, "资产不存在").WithCode(404001).WithDetails("asset i-1"),
			want: "business (404001): 资产不存在: asset i-1",
		},
		{
			name: "details equal to message",
			err:  NewErrorInfo(ErrorTypeBusiness, "boom").WithDetails("boom"),
			want: "business: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorInfo_Unwrap(t *testing.T) {
	info := NewErrorInfo(ErrorTypeTimeout, "请求超时").WithCause(context.DeadlineExceeded)
	wrapped := fmt.Errorf("list accounts: %w", info)

	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)

	got, ok := AsErrorInfo(wrapped)
	require.True(t, ok)
	assert.Same(t, info, got)
}

func TestAsErrorInfo_NotPresent(t *testing.T) {
	got, ok := AsErrorInfo(errors.New("plain"))
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestErrorInfo_WithMessage(t *testing.T) {
	orig := NewErrorInfo(ErrorTypeAuth, "认证失败").WithCode(401).WithRetry(false)

	custom := orig.WithMessage("请重新登录")
	assert.Equal(t, "请重新登录", custom.Message)
	assert.Equal(t, 401, custom.Code)
	assert.Equal(t, "认证失败", orig.Message, "receiver must not change")

	same := orig.WithMessage("")
	assert.Equal(t, "认证失败", same.Message)
}

func TestStaticAuth(t *testing.T) {
	var p AuthProvider = StaticAuth{Token: "t1", TenantID: "acme"}
	got, err := p.AuthContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AuthContext{Token: "t1", TenantID: "acme"}, got)
}

func TestCanonicalResponse_Success(t *testing.T) {
	for code, want := range map[int]bool{0: true, 200: true, 404001: false, 500: false} {
		r := CanonicalResponse{Code: code}
		assert.Equal(t, want, r.Success(), "code %d", code)
	}
}
