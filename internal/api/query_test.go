package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_SkipsZeroValues(t *testing.T) {
	v := Query{}.
		String("provider", "aliyun").
		String("status", "").
		Int("limit", 20).
		Int("offset", 0).
		Int64("account_id", 7).
		Values()

	assert.Equal(t, "account_id=7&limit=20&provider=aliyun", v.Encode())
}

func TestQuery_EmptyIsNil(t *testing.T) {
	assert.Nil(t, Query{}.String("keyword", "").Values())
}
