// Package iam provides typed calls for the IAM tenant, user, group and
// audit endpoints. IAM list responses carry total, page and size next to
// data, so every list here decodes into a domain.Page.
package iam

import (
	"net/url"

	"github.com/Havens-blog/e-cam-web/internal/api"
)

// Tenant is an isolated customer space.
type Tenant struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	Metadata    TenantMetadata `json:"metadata"`
	CreateTime  string         `json:"create_time"`
	UpdateTime  string         `json:"update_time"`
}

// TenantMetadata is descriptive tenant data.
type TenantMetadata struct {
	CompanyName       string            `json:"company_name"`
	ContactEmail      string            `json:"contact_email"`
	Owner             string            `json:"owner"`
	Industry          string            `json:"industry"`
	Region            string            `json:"region"`
	Tags              map[string]string `json:"tags,omitempty"`
	UserCount         int               `json:"user_count"`
	UserGroupCount    int               `json:"user_group_count"`
	CloudAccountCount int               `json:"cloud_account_count"`
}

// ListTenantsParams filters the tenant list.
type ListTenantsParams struct {
	Keyword  string
	Status   string
	Industry string
	Region   string
	Page     int
	Size     int
}

func (p ListTenantsParams) values() url.Values {
	return api.Query{}.
		String("keyword", p.Keyword).
		String("status", p.Status).
		String("industry", p.Industry).
		String("region", p.Region).
		Int("page", p.Page).
		Int("size", p.Size).
		Values()
}

// User is a cloud account user managed through IAM.
type User struct {
	ID               int64   `json:"id"`
	Username         string  `json:"username"`
	DisplayName      string  `json:"display_name"`
	UserType         string  `json:"user_type"`
	Status           string  `json:"status"`
	Provider         string  `json:"provider"`
	CloudAccountID   int64   `json:"cloud_account_id"`
	CloudAccountName string  `json:"cloud_account_name"`
	Email            string  `json:"email"`
	PermissionGroups []Group `json:"permission_groups,omitempty"`
	TenantID         string  `json:"tenant_id"`
	CreateTime       string  `json:"create_time"`
	UpdateTime       string  `json:"update_time"`
}

// ListUsersParams filters the user list. TenantID is sent as the
// X-Tenant-ID header rather than as a query parameter.
type ListUsersParams struct {
	TenantID       string
	Keyword        string
	Provider       string
	UserType       string
	Status         string
	CloudAccountID int64
	Page           int
	Size           int
}

func (p ListUsersParams) values() url.Values {
	return api.Query{}.
		String("keyword", p.Keyword).
		String("provider", p.Provider).
		String("user_type", p.UserType).
		String("status", p.Status).
		Int64("cloud_account_id", p.CloudAccountID).
		Int("page", p.Page).
		Int("size", p.Size).
		Values()
}

// Group is a permission group.
type Group struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	CloudPlatforms []string `json:"cloud_platforms,omitempty"`
	Policies       []Policy `json:"policies,omitempty"`
	MemberCount    int      `json:"member_count"`
	UserCount      int      `json:"user_count,omitempty"`
	TenantID       string   `json:"tenant_id"`
	CreateTime     string   `json:"create_time"`
	UpdateTime     string   `json:"update_time"`
}

// Policy is a provider policy attached to a group.
type Policy struct {
	PolicyID       string `json:"policy_id"`
	PolicyName     string `json:"policy_name"`
	PolicyType     string `json:"policy_type"`
	PolicyDocument string `json:"policy_document"`
	Provider       string `json:"provider"`
}

// ListGroupsParams filters the group list. TenantID is sent as a header.
type ListGroupsParams struct {
	TenantID       string
	Keyword        string
	Provider       string
	CloudAccountID int64
	Page           int
	Size           int
}

func (p ListGroupsParams) values() url.Values {
	return api.Query{}.
		String("keyword", p.Keyword).
		String("provider", p.Provider).
		Int64("cloud_account_id", p.CloudAccountID).
		Int("page", p.Page).
		Int("size", p.Size).
		Values()
}

// ExportFormat selects the audit export encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// ExportAuditLogsParams selects the audit records to export.
type ExportAuditLogsParams struct {
	OperationType string
	OperatorID    string
	TargetType    string
	CloudPlatform string
	TenantID      string
	StartTime     string
	EndTime       string
	Format        ExportFormat
}

func (p ExportAuditLogsParams) values() url.Values {
	format := p.Format
	if format == "" {
		format = ExportCSV
	}
	return api.Query{}.
		String("operation_type", p.OperationType).
		String("operator_id", p.OperatorID).
		String("target_type", p.TargetType).
		String("cloud_platform", p.CloudPlatform).
		String("tenant_id", p.TenantID).
		String("start_time", p.StartTime).
		String("end_time", p.EndTime).
		String("format", string(format)).
		Values()
}
