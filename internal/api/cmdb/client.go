package cmdb

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Havens-blog/e-cam-web/internal/envelope"
	"github.com/Havens-blog/e-cam-web/internal/request"
)

// Client calls the CMDB endpoints.
type Client struct {
	rc *request.Client
}

// NewClient derives a CMDB client from rc.
func NewClient(rc *request.Client) *Client {
	return &Client{rc: rc.With(request.WithGroup(envelope.GroupCMDB))}
}

// ListModels lists models.
func (c *Client) ListModels(ctx context.Context, p ListModelsParams) (*ModelList, error) {
	out, err := request.Do[ModelList](ctx, c.rc, request.Descriptor{
		URL:    "/cam/cmdb/models",
		Params: p.values(),
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetModel returns a model by uid.
func (c *Client) GetModel(ctx context.Context, uid string) (*Model, error) {
	out, err := request.Do[Model](ctx, c.rc, request.Descriptor{
		URL: "/cam/cmdb/models/" + url.PathEscape(uid),
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInstances lists instances. The list lives outside the cmdb prefix on
// the backend.
func (c *Client) ListInstances(ctx context.Context, p ListInstancesParams) (*InstanceList, error) {
	out, err := request.Do[InstanceList](ctx, c.rc, request.Descriptor{
		URL:    "/cam/instances",
		Params: p.values(),
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInstance returns one instance.
func (c *Client) GetInstance(ctx context.Context, id int64) (*Instance, error) {
	out, err := request.Do[Instance](ctx, c.rc, request.Descriptor{
		URL: fmt.Sprintf("/cam/cmdb/instances/%d", id),
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
