// Package cam provides typed calls for the CAM cloud account, asset,
// statistics and task endpoints. These backends answer with code 200 and a
// msg field, which the client normalizes before the outcome check.
package cam

import (
	"encoding/json"
	"net/url"

	"github.com/Havens-blog/e-cam-web/internal/api"
)

// Account is a cloud account registered with CAM.
type Account struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	Provider        string        `json:"provider"`
	Environment     string        `json:"environment"`
	AccessKeyID     string        `json:"access_key_id"`
	AccessKeySecret string        `json:"access_key_secret,omitempty"`
	Region          string        `json:"region"`
	Description     string        `json:"description,omitempty"`
	Status          string        `json:"status"`
	Config          AccountConfig `json:"config"`
	TenantID        string        `json:"tenant_id"`
	LastSyncTime    string        `json:"last_sync_time,omitempty"`
	LastTestTime    string        `json:"last_test_time,omitempty"`
	AssetCount      int           `json:"asset_count"`
	ErrorMessage    string        `json:"error_message,omitempty"`
	CreateTime      string        `json:"create_time"`
	UpdateTime      string        `json:"update_time"`
}

// AccountConfig holds the per-account sync settings.
type AccountConfig struct {
	EnableAutoSync       bool     `json:"enable_auto_sync"`
	SyncInterval         int      `json:"sync_interval"`
	ReadOnly             bool     `json:"read_only"`
	ShowSubAccounts      bool     `json:"show_sub_accounts"`
	EnableCostMonitoring bool     `json:"enable_cost_monitoring"`
	SupportedRegions     []string `json:"supported_regions,omitempty"`
	SupportedAssetTypes  []string `json:"supported_asset_types,omitempty"`
}

// ListAccountsParams filters the account list.
type ListAccountsParams struct {
	Provider    string
	Environment string
	Status      string
	Offset      int
	Limit       int
}

func (p ListAccountsParams) values() url.Values {
	return api.Query{}.
		String("provider", p.Provider).
		String("environment", p.Environment).
		String("status", p.Status).
		Int("offset", p.Offset).
		Int("limit", p.Limit).
		Values()
}

// AccountList is one page of accounts.
type AccountList struct {
	Accounts []Account `json:"accounts"`
	Total    int       `json:"total"`
}

// CreateAccountRequest registers a new account.
type CreateAccountRequest struct {
	Name            string         `json:"name"`
	Provider        string         `json:"provider"`
	Environment     string         `json:"environment"`
	AccessKeyID     string         `json:"access_key_id"`
	AccessKeySecret string         `json:"access_key_secret"`
	Region          string         `json:"region"`
	Description     string         `json:"description,omitempty"`
	Config          *AccountConfig `json:"config,omitempty"`
	TenantID        string         `json:"tenant_id"`
}

// UpdateAccountRequest changes mutable account fields. Nil fields are left
// untouched.
type UpdateAccountRequest struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Config      *AccountConfig `json:"config,omitempty"`
}

// ConnectionResult is the outcome of a credential check.
type ConnectionResult struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Regions  []string `json:"regions,omitempty"`
	TestTime string   `json:"test_time"`
}

// SyncRequest limits an account sync to some asset types or regions.
type SyncRequest struct {
	AssetTypes []string `json:"asset_types,omitempty"`
	Regions    []string `json:"regions,omitempty"`
}

// SyncResult identifies a started sync.
type SyncResult struct {
	SyncID    string `json:"sync_id"`
	Status    string `json:"status"`
	StartTime string `json:"start_time"`
}

// Asset is one discovered cloud resource.
type Asset struct {
	ID         int64          `json:"id"`
	AssetID    string         `json:"asset_id"`
	AssetName  string         `json:"asset_name"`
	AssetType  string         `json:"asset_type"`
	TenantID   string         `json:"tenant_id"`
	AccountID  int64          `json:"account_id"`
	Provider   string         `json:"provider"`
	Region     string         `json:"region"`
	Status     string         `json:"status"`
	Attributes map[string]any `json:"attributes,omitempty"`
	CreateTime int64          `json:"create_time"`
	UpdateTime int64          `json:"update_time"`
}

// ListAssetsParams filters the asset list.
type ListAssetsParams struct {
	TenantID  string
	AccountID int64
	Provider  string
	Region    string
	Status    string
	Name      string
	Offset    int
	Limit     int
}

func (p ListAssetsParams) values() url.Values {
	return api.Query{}.
		String("tenant_id", p.TenantID).
		Int64("account_id", p.AccountID).
		String("provider", p.Provider).
		String("region", p.Region).
		String("status", p.Status).
		String("name", p.Name).
		Int("offset", p.Offset).
		Int("limit", p.Limit).
		Values()
}

// AssetList is one page of assets.
type AssetList struct {
	Items []Asset `json:"items"`
	Total int     `json:"total"`
}

// Statistics summarizes the asset inventory. The backend returns it without
// an envelope.
type Statistics struct {
	TotalAssets      int            `json:"total_assets"`
	ProviderStats    map[string]int `json:"provider_stats"`
	AssetTypeStats   map[string]int `json:"asset_type_stats"`
	RegionStats      map[string]int `json:"region_stats"`
	StatusStats      map[string]int `json:"status_stats"`
	TotalCost        float64        `json:"total_cost"`
	LastDiscoverTime string         `json:"last_discover_time,omitempty"`
}

// Task is an asynchronous sync or discovery job.
type Task struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Progress     int             `json:"progress,omitempty"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    string          `json:"created_at"`
	StartedAt    string          `json:"started_at,omitempty"`
	CompletedAt  string          `json:"completed_at,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
}

// ListTasksParams filters the task list.
type ListTasksParams struct {
	Type      string
	Status    string
	CreatedBy string
	Offset    int
	Limit     int
}

func (p ListTasksParams) values() url.Values {
	return api.Query{}.
		String("type", p.Type).
		String("status", p.Status).
		String("created_by", p.CreatedBy).
		Int("offset", p.Offset).
		Int("limit", p.Limit).
		Values()
}

// TaskList is one page of tasks.
type TaskList struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
}
