package cmdb_test

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Havens-blog/e-cam-web/internal/api/cmdb"
	"github.com/Havens-blog/e-cam-web/internal/domain"
	"github.com/Havens-blog/e-cam-web/internal/report"
	"github.com/Havens-blog/e-cam-web/internal/request"
	"github.com/Havens-blog/e-cam-web/internal/server"
)

func setup(t *testing.T) (*cmdb.Client, *report.Recorder) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(server.New(logger, server.Options{}).Router)
	t.Cleanup(ts.Close)

	rec := &report.Recorder{}
	rc := request.NewClient(ts.URL+"/api/v1",
		request.WithHTTPClient(ts.Client()),
		request.WithLogger(logger),
		request.WithReporter(report.NewReporter(rec, logger)),
	)
	return cmdb.NewClient(rc), rec
}

func TestModels(t *testing.T) {
	client, rec := setup(t)

	list, err := client.ListModels(t.Context(), cmdb.ListModelsParams{Category: "compute"})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)

	m, err := client.GetModel(t.Context(), "aliyun_ecs")
	require.NoError(t, err)
	assert.Equal(t, "cloud_vm", m.ParentUID)
	assert.Equal(t, 2, m.Level)
	assert.Empty(t, rec.Notifications())
}

func TestGetModel_BusinessFailure(t *testing.T) {
	client, rec := setup(t)

	_, err := client.GetModel(t.Context(), "nope")
	info, ok := domain.AsErrorInfo(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorTypeBusiness, info.Type)
	assert.Equal(t, 404004, info.Code)
	assert.Equal(t, "模型不存在", info.Message)
	assert.Len(t, rec.Notifications(), 1)
}

func TestInstances(t *testing.T) {
	client, _ := setup(t)

	list, err := client.ListInstances(t.Context(), cmdb.ListInstancesParams{UID: "aliyun_ecs"})
	require.NoError(t, err)
	require.Len(t, list.Instances, 1)
	assert.Equal(t, "web-01", list.Instances[0].AssetName)

	in, err := client.GetInstance(t.Context(), 2)
	require.NoError(t, err)
	assert.Equal(t, "cloud_rds", in.UID)

	_, err = client.GetInstance(t.Context(), 99)
	info, ok := domain.AsErrorInfo(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrorTypeNotFound, info.Type)
	assert.Equal(t, 404, info.Status)
}
