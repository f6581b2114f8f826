package cam

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Havens-blog/e-cam-web/internal/envelope"
	"github.com/Havens-blog/e-cam-web/internal/request"
)

const basePath = "/cam"

// SyncTimeout bounds an account sync, which walks every region of the
// account before answering.
const SyncTimeout = 5 * time.Minute

// Client calls the CAM endpoints.
type Client struct {
	rc     *request.Client
	assets *request.Client
}

// NewClient derives CAM clients from rc.
func NewClient(rc *request.Client) *Client {
	return &Client{
		rc:     rc.With(request.WithGroup(envelope.GroupCAM)),
		assets: rc.With(request.WithGroup(envelope.GroupAsset)),
	}
}

// ListAccounts lists cloud accounts.
func (c *Client) ListAccounts(ctx context.Context, p ListAccountsParams) (*AccountList, error) {
	return do[AccountList](ctx, c.rc, request.Descriptor{
		URL:    basePath + "/cloud-accounts",
		Params: p.values(),
	})
}

// GetAccount returns one account.
func (c *Client) GetAccount(ctx context.Context, id int64) (*Account, error) {
	return do[Account](ctx, c.rc, request.Descriptor{
		URL: accountPath(id, ""),
	})
}

// CreateAccount registers an account.
func (c *Client) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*Account, error) {
	return do[Account](ctx, c.rc, request.Descriptor{
		Method: http.MethodPost,
		URL:    basePath + "/cloud-accounts",
		Body:   req,
	})
}

// UpdateAccount changes an account.
func (c *Client) UpdateAccount(ctx context.Context, id int64, req *UpdateAccountRequest) error {
	return request.Exec(ctx, c.rc, request.Descriptor{
		Method: http.MethodPut,
		URL:    accountPath(id, ""),
		Body:   req,
	})
}

// DeleteAccount removes an account.
func (c *Client) DeleteAccount(ctx context.Context, id int64) error {
	return request.Exec(ctx, c.rc, request.Descriptor{
		Method: http.MethodDelete,
		URL:    accountPath(id, ""),
	})
}

// TestConnection checks the stored credentials against the provider.
func (c *Client) TestConnection(ctx context.Context, id int64) (*ConnectionResult, error) {
	return do[ConnectionResult](ctx, c.rc, request.Descriptor{
		Method: http.MethodPost,
		URL:    accountPath(id, "test-connection"),
	})
}

// EnableAccount re-enables a disabled account.
func (c *Client) EnableAccount(ctx context.Context, id int64) error {
	return request.Exec(ctx, c.rc, request.Descriptor{
		Method: http.MethodPost,
		URL:    accountPath(id, "enable"),
	})
}

// DisableAccount stops syncing an account.
func (c *Client) DisableAccount(ctx context.Context, id int64) error {
	return request.Exec(ctx, c.rc, request.Descriptor{
		Method: http.MethodPost,
		URL:    accountPath(id, "disable"),
	})
}

// SyncAccount pulls the account's assets. It runs with SyncTimeout instead
// of the client default.
func (c *Client) SyncAccount(ctx context.Context, id int64, req *SyncRequest) (*SyncResult, error) {
	if req == nil {
		req = &SyncRequest{}
	}
	return do[SyncResult](ctx, c.rc, request.Descriptor{
		Method:  http.MethodPost,
		URL:     accountPath(id, "sync"),
		Body:    req,
		Timeout: SyncTimeout,
	})
}

// ListAssets lists assets across types.
func (c *Client) ListAssets(ctx context.Context, p ListAssetsParams) (*AssetList, error) {
	return do[AssetList](ctx, c.rc, request.Descriptor{
		URL:    basePath + "/assets",
		Params: p.values(),
	})
}

// ListAssetsByType lists assets of one type such as ecs or rds.
func (c *Client) ListAssetsByType(ctx context.Context, assetType string, p ListAssetsParams) (*AssetList, error) {
	return do[AssetList](ctx, c.assets, request.Descriptor{
		URL:    basePath + "/assets/" + url.PathEscape(assetType),
		Params: p.values(),
	})
}

// GetAsset returns one asset.
func (c *Client) GetAsset(ctx context.Context, id int64) (*Asset, error) {
	return do[Asset](ctx, c.rc, request.Descriptor{
		URL: fmt.Sprintf("%s/assets/%d", basePath, id),
	})
}

// DeleteAsset removes an asset record.
func (c *Client) DeleteAsset(ctx context.Context, id int64) error {
	return request.Exec(ctx, c.rc, request.Descriptor{
		Method: http.MethodDelete,
		URL:    fmt.Sprintf("%s/assets/%d", basePath, id),
	})
}

// Statistics returns the inventory summary.
func (c *Client) Statistics(ctx context.Context) (*Statistics, error) {
	return do[Statistics](ctx, c.rc, request.Descriptor{
		URL: basePath + "/assets/statistics",
	})
}

// ListTasks lists async tasks.
func (c *Client) ListTasks(ctx context.Context, p ListTasksParams) (*TaskList, error) {
	return do[TaskList](ctx, c.rc, request.Descriptor{
		URL:    basePath + "/tasks",
		Params: p.values(),
	})
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	return do[Task](ctx, c.rc, request.Descriptor{
		URL: basePath + "/tasks/" + url.PathEscape(id),
	})
}

// CancelTask stops a pending or running task.
func (c *Client) CancelTask(ctx context.Context, id string) error {
	return request.Exec(ctx, c.rc, request.Descriptor{
		Method: http.MethodPost,
		URL:    basePath + "/tasks/" + url.PathEscape(id) + "/cancel",
	})
}

func accountPath(id int64, action string) string {
	p := fmt.Sprintf("%s/cloud-accounts/%d", basePath, id)
	if action != "" {
		p += "/" + action
	}
	return p
}

func do[T any](ctx context.Context, rc *request.Client, d request.Descriptor) (*T, error) {
	out, err := request.Do[T](ctx, rc, d)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
