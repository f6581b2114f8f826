package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Havens-blog/e-cam-web/internal/logging"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	s := New(slog.New(slog.NewTextHandler(io.Discard, nil)), opts)
	ts := httptest.NewServer(s.Router)
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, ts *httptest.Server, path string, header http.Header) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestServer_EnvelopeConventions(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	t.Run("cam answers code 200 with msg", func(t *testing.T) {
		status, body := get(t, ts, "/api/v1/cam/cloud-accounts", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.EqualValues(t, 200, body["code"])
		assert.Equal(t, "success", body["msg"])
		data := body["data"].(map[string]any)
		assert.EqualValues(t, 3, data["total"])
	})

	t.Run("cmdb answers code 0", func(t *testing.T) {
		_, body := get(t, ts, "/api/v1/cam/cmdb/models", nil)
		assert.EqualValues(t, 0, body["code"])
		assert.Equal(t, "success", body["message"])
	})

	t.Run("iam lists carry pagination beside data", func(t *testing.T) {
		_, body := get(t, ts, "/api/v1/cam/iam/users?page=1&size=1", nil)
		assert.EqualValues(t, 200, body["code"])
		assert.EqualValues(t, 2, body["total"])
		assert.EqualValues(t, 1, body["page"])
		assert.EqualValues(t, 1, body["size"])
		assert.Len(t, body["data"], 1)
	})

	t.Run("statistics has no envelope", func(t *testing.T) {
		_, body := get(t, ts, "/api/v1/cam/assets/statistics", nil)
		assert.NotContains(t, body, "code")
		assert.EqualValues(t, 3, body["total_assets"])
	})

	t.Run("unknown asset is a business error", func(t *testing.T) {
		status, body := get(t, ts, "/api/v1/cam/assets/9999", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.EqualValues(t, 404001, body["code"])
		assert.Equal(t, "资产不存在", body["msg"])
	})

	t.Run("per-type asset list answers code 0", func(t *testing.T) {
		_, body := get(t, ts, "/api/v1/cam/assets/ecs", nil)
		assert.EqualValues(t, 0, body["code"])
		assert.EqualValues(t, 2, body["data"].(map[string]any)["total"])
	})
}

func TestServer_TenantHeaderScopesIAM(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	_, body := get(t, ts, "/api/v1/cam/iam/users", http.Header{"X-Tenant-Id": {"acme"}})
	users := body["data"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "carol", users[0].(map[string]any)["username"])
}

func TestServer_Auth(t *testing.T) {
	_, ts := newTestServer(t, Options{Tokens: []string{"s3cret"}})

	status, body := get(t, ts, "/api/v1/cam/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.EqualValues(t, 401, body["code"])

	status, _ = get(t, ts, "/api/v1/cam/tasks", http.Header{"Authorization": {"Bearer s3cret"}})
	assert.Equal(t, http.StatusOK, status)
}

func TestServer_InjectedFault(t *testing.T) {
	s, ts := newTestServer(t, Options{})
	s.Faults.Inject(http.MethodGet, "/api/v1/cam/tasks", Fault{Status: http.StatusServiceUnavailable})

	status, _ := get(t, ts, "/api/v1/cam/tasks", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	status, _ = get(t, ts, "/api/v1/cam/tasks", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestServer_AuditExport(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, err := ts.Client().Get(ts.URL + "/api/v1/cam/iam/audit/logs/export?tenant_id=default")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id,operation_type"))
}

func TestServer_LogCollector(t *testing.T) {
	s, ts := newTestServer(t, Options{})

	sink := logging.NewHTTPSink(ts.URL+"/api/v1/logs", ts.Client())
	entries := []logging.Entry{
		{Level: "error", Message: "API request failed", Timestamp: time.Now(), Context: "API"},
		{Level: "warn", Message: "API retry attempt 1/3", Timestamp: time.Now(), Context: "Retry"},
	}
	require.NoError(t, sink.Send(t.Context(), entries))

	got := s.Collector.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, "API", got[0].Context)
	assert.Equal(t, "Retry", got[1].Context)

	resp, err := ts.Client().Post(ts.URL+"/api/v1/logs", "application/json", bytes.NewBufferString(`{"not":"an array"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
