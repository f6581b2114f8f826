package cam_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Havens-blog/e-cam-web/internal/api/cam"
	"github.com/Havens-blog/e-cam-web/internal/domain"
	"github.com/Havens-blog/e-cam-web/internal/logging"
	"github.com/Havens-blog/e-cam-web/internal/report"
	"github.com/Havens-blog/e-cam-web/internal/request"
	"github.com/Havens-blog/e-cam-web/internal/server"
)

type env struct {
	client *cam.Client
	mock   *server.Server
	rec    *report.Recorder
	logs   *logging.Buffer
}

func setup(t *testing.T) *env {
	t.Helper()
	mock := server.New(slog.New(slog.NewTextHandler(io.Discard, nil)), server.Options{})
	ts := httptest.NewServer(mock.Router)
	t.Cleanup(ts.Close)

	logger, buf := logging.New(logging.Options{Level: "debug", Output: io.Discard})
	rec := &report.Recorder{}
	rc := request.NewClient(ts.URL+"/api/v1",
		request.WithHTTPClient(ts.Client()),
		request.WithLogger(logger),
		request.WithReporter(report.NewReporter(rec, logger)),
		request.WithAuth(domain.StaticAuth{Token: "t", TenantID: "default"}),
	)
	return &env{client: cam.NewClient(rc), mock: mock, rec: rec, logs: buf}
}

func TestAccounts(t *testing.T) {
	e := setup(t)
	ctx := t.Context()

	list, err := e.client.ListAccounts(ctx, cam.ListAccountsParams{Provider: "aliyun"})
	require.NoError(t, err)
	require.Len(t, list.Accounts, 1)
	assert.Equal(t, "aliyun-prod", list.Accounts[0].Name)
	assert.Equal(t, 2, list.Accounts[0].AssetCount)

	created, err := e.client.CreateAccount(ctx, &cam.CreateAccountRequest{
		Name: "huawei-dr", Provider: "huawei", Environment: "production",
		AccessKeyID: "HPUAEXAMPLE", AccessKeySecret: "x", Region: "cn-north-4",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)

	name := "huawei-backup"
	require.NoError(t, e.client.UpdateAccount(ctx, created.ID, &cam.UpdateAccountRequest{Name: &name}))
	require.NoError(t, e.client.DisableAccount(ctx, created.ID))

	got, err := e.client.GetAccount(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "huawei-backup", got.Name)
	assert.Equal(t, "disabled", got.Status)

	require.NoError(t, e.client.EnableAccount(ctx, created.ID))
	conn, err := e.client.TestConnection(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "success", conn.Status)
	assert.Equal(t, []string{"cn-north-4"}, conn.Regions)

	sync, err := e.client.SyncAccount(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "running", sync.Status)

	task, err := e.client.GetTask(ctx, sync.SyncID)
	require.NoError(t, err)
	assert.Equal(t, "sync_assets", task.Type)

	require.NoError(t, e.client.DeleteAccount(ctx, created.ID))
	assert.Empty(t, e.rec.Notifications())
}

func TestGetAccount_NotFound(t *testing.T) {
	e := setup(t)

	_, err := e.client.GetAccount(t.Context(), 42)
	info, ok := domain.AsErrorInfo(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorTypeBusiness, info.Type)
	assert.Equal(t, 404002, info.Code)
	assert.Len(t, e.rec.Notifications(), 1)
}

func TestCreateAccount_Validation(t *testing.T) {
	e := setup(t)

	_, err := e.client.CreateAccount(t.Context(), &cam.CreateAccountRequest{Name: "incomplete"})
	info, ok := domain.AsErrorInfo(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorTypeValidation, info.Type)
	assert.Equal(t, http.StatusBadRequest, info.Status)
	assert.Equal(t, "name, provider and access_key_id are required", info.Details)

	n := e.rec.Notifications()
	require.Len(t, n, 1)
	assert.Equal(t, report.SeverityLightweight, n[0].Severity)
}

func TestAssets(t *testing.T) {
	e := setup(t)
	ctx := t.Context()

	list, err := e.client.ListAssets(ctx, cam.ListAssetsParams{Provider: "aliyun"})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)

	ecs, err := e.client.ListAssetsByType(ctx, "ecs", cam.ListAssetsParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, ecs.Total)
	for _, a := range ecs.Items {
		assert.Equal(t, "ecs", a.AssetType)
	}

	a, err := e.client.GetAsset(ctx, 1002)
	require.NoError(t, err)
	assert.Equal(t, "orders-db", a.AssetName)
	assert.Equal(t, "MySQL", a.Attributes["engine"])

	require.NoError(t, e.client.DeleteAsset(ctx, 1002))

	stats, err := e.client.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalAssets)
	assert.Equal(t, 2, stats.AssetTypeStats["ecs"])
}

func TestGetAsset_BusinessFailure(t *testing.T) {
	e := setup(t)

	_, err := e.client.GetAsset(t.Context(), 9999)
	info, ok := domain.AsErrorInfo(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorTypeBusiness, info.Type)
	assert.Equal(t, 404001, info.Code)
	assert.Equal(t, "资产不存在", info.Message)
	assert.False(t, info.CanRetry)

	require.Len(t, e.rec.Notifications(), 1)
	warns := e.logs.Entries("warn")
	require.Len(t, warns, 1)
	assert.Equal(t, "API request failed", warns[0].Message)
	assert.Equal(t, "API", warns[0].Context)
}

func TestTasks(t *testing.T) {
	e := setup(t)
	ctx := t.Context()

	list, err := e.client.ListTasks(ctx, cam.ListTasksParams{Status: "running"})
	require.NoError(t, err)
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, "task-2", list.Tasks[0].ID)

	require.NoError(t, e.client.CancelTask(ctx, "task-2"))
	task, err := e.client.GetTask(ctx, "task-2")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", task.Status)

	err = e.client.CancelTask(ctx, "task-1")
	info, ok := domain.AsErrorInfo(err)
	require.True(t, ok)
	assert.Equal(t, 400002, info.Code)
}

func TestServerErrorIsRetryable(t *testing.T) {
	e := setup(t)
	e.mock.Faults.Inject(http.MethodGet, "/api/v1/cam/tasks", server.Fault{Status: http.StatusServiceUnavailable})

	_, err := e.client.ListTasks(t.Context(), cam.ListTasksParams{})
	info, ok := domain.AsErrorInfo(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorTypeNetwork, info.Type)
	assert.True(t, info.CanRetry)
	assert.Len(t, e.logs.Entries("error"), 1)
}
