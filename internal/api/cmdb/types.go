// Package cmdb provides typed calls for the CMDB model and instance
// endpoints. CMDB already answers with the canonical code 0 envelope.
package cmdb

import (
	"net/url"

	"github.com/Havens-blog/e-cam-web/internal/api"
)

// Model describes a class of configuration items.
type Model struct {
	ID           int64  `json:"id"`
	UID          string `json:"uid"`
	Name         string `json:"name"`
	ModelGroupID int64  `json:"model_group_id,omitempty"`
	ParentUID    string `json:"parent_uid,omitempty"`
	Category     string `json:"category"`
	Level        int    `json:"level"`
	Icon         string `json:"icon,omitempty"`
	Description  string `json:"description,omitempty"`
	Provider     string `json:"provider"`
	Extensible   bool   `json:"extensible"`
	CreateTime   int64  `json:"create_time"`
	UpdateTime   int64  `json:"update_time"`
}

// ListModelsParams filters the model list.
type ListModelsParams struct {
	Provider  string
	Category  string
	ParentUID string
	Level     int
	Offset    int
	Limit     int
}

func (p ListModelsParams) values() url.Values {
	return api.Query{}.
		String("provider", p.Provider).
		String("category", p.Category).
		String("parent_uid", p.ParentUID).
		Int("level", p.Level).
		Int("offset", p.Offset).
		Int("limit", p.Limit).
		Values()
}

// ModelList is one page of models.
type ModelList struct {
	Models []Model `json:"models"`
	Total  int     `json:"total"`
}

// Instance is one configuration item of a model.
type Instance struct {
	ID         int64          `json:"id"`
	UID        string         `json:"uid"`
	AssetID    string         `json:"asset_id"`
	AssetName  string         `json:"asset_name,omitempty"`
	TenantID   string         `json:"tenant_id"`
	AccountID  int64          `json:"account_id,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	CreateTime int64          `json:"create_time"`
	UpdateTime int64          `json:"update_time"`
}

// ListInstancesParams filters the instance list.
type ListInstancesParams struct {
	UID       string
	TenantID  string
	AccountID int64
	AssetName string
	Status    string
	Region    string
	Offset    int
	Limit     int
}

func (p ListInstancesParams) values() url.Values {
	return api.Query{}.
		String("uid", p.UID).
		String("tenant_id", p.TenantID).
		Int64("account_id", p.AccountID).
		String("asset_name", p.AssetName).
		String("status", p.Status).
		String("region", p.Region).
		Int("offset", p.Offset).
		Int("limit", p.Limit).
		Values()
}

// InstanceList is one page of instances.
type InstanceList struct {
	Instances []Instance `json:"instances"`
	Total     int        `json:"total"`
}
