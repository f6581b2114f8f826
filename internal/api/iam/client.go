package iam

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Havens-blog/e-cam-web/internal/domain"
	"github.com/Havens-blog/e-cam-web/internal/envelope"
	"github.com/Havens-blog/e-cam-web/internal/request"
)

// Client calls the IAM endpoints.
type Client struct {
	rc *request.Client
}

// NewClient derives an IAM client from rc.
func NewClient(rc *request.Client) *Client {
	return &Client{rc: rc.With(request.WithGroup(envelope.GroupIAM))}
}

// ListTenants lists tenants.
func (c *Client) ListTenants(ctx context.Context, p ListTenantsParams) (*domain.Page[Tenant], error) {
	return page[Tenant](ctx, c.rc, request.Descriptor{
		URL:    "/cam/iam/tenants",
		Params: p.values(),
	})
}

// ListUsers lists users, scoped to p.TenantID when set.
func (c *Client) ListUsers(ctx context.Context, p ListUsersParams) (*domain.Page[User], error) {
	return page[User](ctx, c.rc, request.Descriptor{
		URL:    "/cam/iam/users",
		Params: p.values(),
		Header: tenantHeader(p.TenantID),
	})
}

// GetUser returns one user. An empty tenantID uses the session tenant.
func (c *Client) GetUser(ctx context.Context, id int64, tenantID string) (*User, error) {
	out, err := request.Do[entityBody[User]](ctx, c.rc, request.Descriptor{
		URL:    fmt.Sprintf("/cam/iam/users/%d", id),
		Header: tenantHeader(tenantID),
	})
	if err != nil {
		return nil, err
	}
	return &out.v, nil
}

// ListGroups lists permission groups.
func (c *Client) ListGroups(ctx context.Context, p ListGroupsParams) (*domain.Page[Group], error) {
	return page[Group](ctx, c.rc, request.Descriptor{
		URL:    "/cam/iam/groups",
		Params: p.values(),
		Header: tenantHeader(p.TenantID),
	})
}

// ExportAuditLogs downloads audit records as a file body. The body bypasses
// envelope handling.
func (c *Client) ExportAuditLogs(ctx context.Context, p ExportAuditLogsParams) ([]byte, error) {
	return c.rc.Get(ctx, request.Descriptor{
		URL:          "/cam/iam/audit/logs/export",
		Params:       p.values(),
		ResponseType: request.ResponseBlob,
	})
}

func tenantHeader(tenantID string) http.Header {
	if tenantID == "" {
		return nil
	}
	h := http.Header{}
	h.Set(request.HeaderTenantID, tenantID)
	return h
}

func page[T any](ctx context.Context, rc *request.Client, d request.Descriptor) (*domain.Page[T], error) {
	out, err := request.Do[pageBody[T]](ctx, rc, d)
	if err != nil {
		return nil, err
	}
	p := domain.Page[T](out)
	return &p, nil
}
