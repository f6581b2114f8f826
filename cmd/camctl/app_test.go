package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  use_mock: true
storage:
  type: sqlite
  path: ` + filepath.Join(dir, "state.db") + `
retry:
  delay: 1ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run(t.Context(), append([]string{"camctl"}, args...))
	return out.String(), errOut.String(), err
}

func TestAccountsList(t *testing.T) {
	cfg := writeConfig(t)

	out, _, err := run(t, "--config", cfg, "accounts", "list", "--provider", "aliyun")
	require.NoError(t, err)
	assert.Contains(t, out, `"aliyun-prod"`)
	assert.NotContains(t, out, `"aws-staging"`)
}

func TestAssetsGet(t *testing.T) {
	cfg := writeConfig(t)

	out, _, err := run(t, "--config", cfg, "assets", "get", "1002")
	require.NoError(t, err)
	assert.Contains(t, out, `"orders-db"`)

	_, errOut, err := run(t, "--config", cfg, "--dump-logs", "assets", "get", "9999")
	require.Error(t, err)
	assert.Contains(t, errOut, "资产不存在")
	assert.Contains(t, errOut, "API request failed")

	_, _, err = run(t, "--config", cfg, "assets", "get", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid asset id")
}

func TestAssetsListByType(t *testing.T) {
	cfg := writeConfig(t)

	out, _, err := run(t, "--config", cfg, "assets", "list", "--type", "rds")
	require.NoError(t, err)
	assert.Contains(t, out, `"orders-db"`)
	assert.NotContains(t, out, `"web-01"`)
}

func TestTenantSelectionPersists(t *testing.T) {
	cfg := writeConfig(t)

	out, _, err := run(t, "--config", cfg, "login", "--token", "abc")
	require.NoError(t, err)
	assert.Equal(t, "logged in\n", out)

	_, _, err = run(t, "--config", cfg, "tenant", "use", "acme")
	require.NoError(t, err)

	out, _, err = run(t, "--config", cfg, "iam", "users")
	require.NoError(t, err)
	assert.Contains(t, out, `"carol"`)
	assert.NotContains(t, out, `"alice"`)
}

func TestAuditExport(t *testing.T) {
	cfg := writeConfig(t)

	out, _, err := run(t, "--config", cfg, "iam", "export", "--tenant", "default")
	require.NoError(t, err)
	assert.Contains(t, out, "id,operation_type")
}
