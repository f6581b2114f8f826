package server

import (
	"cmp"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Havens-blog/e-cam-web/internal/api/cam"
	"github.com/Havens-blog/e-cam-web/internal/api/cmdb"
	"github.com/Havens-blog/e-cam-web/internal/api/iam"
)

// Fixtures is the in-memory state behind the mock backend.
type Fixtures struct {
	mu sync.RWMutex

	accounts  map[int64]*cam.Account
	assets    map[int64]*cam.Asset
	tasks     map[string]*cam.Task
	models    []cmdb.Model
	instances map[int64]*cmdb.Instance
	tenants   []iam.Tenant
	users     map[int64]*iam.User
	groups    []iam.Group
	audit     []AuditRecord

	nextAccountID int64
	now           func() time.Time
}

// AuditRecord is one exported audit line.
type AuditRecord struct {
	ID              int64  `json:"id"`
	OperationType   string `json:"operation_type"`
	OperatorID      string `json:"operator_id"`
	OperatorName    string `json:"operator_name"`
	TargetType      string `json:"target_type"`
	TargetID        string `json:"target_id"`
	CloudPlatform   string `json:"cloud_platform"`
	TenantID        string `json:"tenant_id"`
	OperationTime   string `json:"operation_time"`
	OperationResult string `json:"operation_result"`
}

const timeLayout = time.DateTime

// NewFixtures returns fixtures seeded with a small multi-cloud inventory.
func NewFixtures() *Fixtures {
	f := &Fixtures{
		accounts:  make(map[int64]*cam.Account),
		assets:    make(map[int64]*cam.Asset),
		tasks:     make(map[string]*cam.Task),
		instances: make(map[int64]*cmdb.Instance),
		users:     make(map[int64]*iam.User),
		now:       time.Now,
	}
	f.seed()
	return f
}

func (f *Fixtures) seed() {
	created := "2024-01-15 10:00:00"
	cfg := cam.AccountConfig{EnableAutoSync: true, SyncInterval: 60, ShowSubAccounts: true}

	for _, a := range []cam.Account{
		{ID: 1, Name: "aliyun-prod", Provider: "aliyun", Environment: "production", AccessKeyID: "LTAI5tExample01", Region: "cn-hangzhou", Status: "active", TenantID: defaultTenantID},
		{ID: 2, Name: "aws-staging", Provider: "aws", Environment: "staging", AccessKeyID: "AKIAEXAMPLE02", Region: "us-east-1", Status: "active", TenantID: defaultTenantID},
		{ID: 3, Name: "tencent-dev", Provider: "tencent", Environment: "development", AccessKeyID: "AKIDEXAMPLE03", Region: "ap-guangzhou", Status: "disabled", TenantID: "acme"},
	} {
		a.Config = cfg
		a.CreateTime, a.UpdateTime = created, created
		f.accounts[a.ID] = &a
	}
	f.nextAccountID = 4

	ts := int64(1705284000)
	for _, a := range []cam.Asset{
		{ID: 1001, AssetID: "i-bp1a2b3c4d5e6f", AssetName: "web-01", AssetType: "ecs", AccountID: 1, Provider: "aliyun", Region: "cn-hangzhou", Status: "running", Attributes: map[string]any{"instance_type": "ecs.g7.large", "cpu": 2}},
		{ID: 1002, AssetID: "rm-bp1x9y8z7w6v", AssetName: "orders-db", AssetType: "rds", AccountID: 1, Provider: "aliyun", Region: "cn-hangzhou", Status: "running", Attributes: map[string]any{"engine": "MySQL", "engine_version": "8.0"}},
		{ID: 1003, AssetID: "i-0abc123def456", AssetName: "api-staging", AssetType: "ecs", AccountID: 2, Provider: "aws", Region: "us-east-1", Status: "stopped", Attributes: map[string]any{"instance_type": "t3.medium"}},
	} {
		a.TenantID = defaultTenantID
		a.CreateTime, a.UpdateTime = ts, ts
		f.assets[a.ID] = &a
	}
	for _, acc := range f.accounts {
		for _, a := range f.assets {
			if a.AccountID == acc.ID {
				acc.AssetCount++
			}
		}
	}

	f.tasks["task-1"] = &cam.Task{ID: "task-1", Type: "sync_assets", Status: "completed", Progress: 100, CreatedBy: "admin", CreatedAt: created, CompletedAt: "2024-01-15 10:05:00"}
	f.tasks["task-2"] = &cam.Task{ID: "task-2", Type: "discover_assets", Status: "running", Progress: 40, CreatedBy: "admin", CreatedAt: created, StartedAt: created}

	f.models = []cmdb.Model{
		{ID: 1, UID: "cloud_vm", Name: "云主机", Category: "compute", Level: 1, Provider: "all", Extensible: true, CreateTime: ts, UpdateTime: ts},
		{ID: 2, UID: "cloud_rds", Name: "云数据库", Category: "database", Level: 1, Provider: "all", Extensible: true, CreateTime: ts, UpdateTime: ts},
		{ID: 3, UID: "aliyun_ecs", Name: "阿里云 ECS", ParentUID: "cloud_vm", Category: "compute", Level: 2, Provider: "aliyun", CreateTime: ts, UpdateTime: ts},
	}
	for _, in := range []cmdb.Instance{
		{ID: 1, UID: "aliyun_ecs", AssetID: "i-bp1a2b3c4d5e6f", AssetName: "web-01", AccountID: 1, Attributes: map[string]any{"region": "cn-hangzhou", "status": "running"}},
		{ID: 2, UID: "cloud_rds", AssetID: "rm-bp1x9y8z7w6v", AssetName: "orders-db", AccountID: 1, Attributes: map[string]any{"region": "cn-hangzhou", "status": "running"}},
	} {
		in.TenantID = defaultTenantID
		in.CreateTime, in.UpdateTime = ts, ts
		f.instances[in.ID] = &in
	}

	f.tenants = []iam.Tenant{
		{ID: defaultTenantID, Name: "default", DisplayName: "默认租户", Status: "active", Metadata: iam.TenantMetadata{Owner: "admin", Region: "cn-hangzhou", UserCount: 2, UserGroupCount: 2, CloudAccountCount: 2}, CreateTime: created, UpdateTime: created},
		{ID: "acme", Name: "acme", DisplayName: "Acme Corp", Status: "active", Metadata: iam.TenantMetadata{CompanyName: "Acme", Owner: "carol", Industry: "retail", UserCount: 1, UserGroupCount: 1, CloudAccountCount: 1}, CreateTime: created, UpdateTime: created},
	}

	f.groups = []iam.Group{
		{ID: 1, Name: "admins", Description: "full access", CloudPlatforms: []string{"aliyun", "aws"}, MemberCount: 1, TenantID: defaultTenantID, CreateTime: created, UpdateTime: created},
		{ID: 2, Name: "readonly", Description: "read only", CloudPlatforms: []string{"aliyun"}, MemberCount: 1, TenantID: defaultTenantID, CreateTime: created, UpdateTime: created},
		{ID: 3, Name: "ops", Description: "operators", CloudPlatforms: []string{"tencent"}, MemberCount: 1, TenantID: "acme", CreateTime: created, UpdateTime: created},
	}

	for _, u := range []iam.User{
		{ID: 1, Username: "alice", DisplayName: "Alice", UserType: "ram_user", Status: "active", Provider: "aliyun", CloudAccountID: 1, CloudAccountName: "aliyun-prod", Email: "alice@example.com", TenantID: defaultTenantID},
		{ID: 2, Username: "bob", DisplayName: "Bob", UserType: "iam_user", Status: "active", Provider: "aws", CloudAccountID: 2, CloudAccountName: "aws-staging", Email: "bob@example.com", TenantID: defaultTenantID},
		{ID: 3, Username: "carol", DisplayName: "Carol", UserType: "cam_user", Status: "inactive", Provider: "tencent", CloudAccountID: 3, CloudAccountName: "tencent-dev", Email: "carol@example.com", TenantID: "acme"},
	} {
		u.CreateTime, u.UpdateTime = created, created
		f.users[u.ID] = &u
	}

	f.audit = []AuditRecord{
		{ID: 1, OperationType: "user_create", OperatorID: "admin", OperatorName: "Admin", TargetType: "user", TargetID: "1", CloudPlatform: "aliyun", TenantID: defaultTenantID, OperationTime: created, OperationResult: "success"},
		{ID: 2, OperationType: "group_update", OperatorID: "admin", OperatorName: "Admin", TargetType: "group", TargetID: "2", CloudPlatform: "aliyun", TenantID: defaultTenantID, OperationTime: "2024-01-16 09:30:00", OperationResult: "success"},
		{ID: 3, OperationType: "user_delete", OperatorID: "carol", OperatorName: "Carol", TargetType: "user", TargetID: "9", CloudPlatform: "tencent", TenantID: "acme", OperationTime: "2024-01-17 14:00:00", OperationResult: "failed"},
	}
}

func sortedValues[K cmp.Ordered, V any](m map[K]*V) []V {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, *m[k])
	}
	return out
}

func (f *Fixtures) stamp() string {
	return f.now().Format(timeLayout)
}

// Accounts returns every account ordered by id.
func (f *Fixtures) Accounts() []cam.Account {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sortedValues(f.accounts)
}

// Assets returns every asset ordered by id.
func (f *Fixtures) Assets() []cam.Asset {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sortedValues(f.assets)
}

func (f *Fixtures) account(id int64) (cam.Account, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	a, ok := f.accounts[id]
	if !ok {
		return cam.Account{}, false
	}
	return *a, true
}

func (f *Fixtures) createAccount(req cam.CreateAccountRequest) cam.Account {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.stamp()
	a := &cam.Account{
		ID:          f.nextAccountID,
		Name:        req.Name,
		Provider:    req.Provider,
		Environment: req.Environment,
		AccessKeyID: req.AccessKeyID,
		Region:      req.Region,
		Description: req.Description,
		Status:      "active",
		TenantID:    req.TenantID,
		CreateTime:  now,
		UpdateTime:  now,
	}
	if req.Config != nil {
		a.Config = *req.Config
	}
	if a.TenantID == "" {
		a.TenantID = defaultTenantID
	}
	f.accounts[a.ID] = a
	f.nextAccountID++
	return *a
}

func (f *Fixtures) updateAccount(id int64, fn func(*cam.Account)) (cam.Account, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return cam.Account{}, false
	}
	fn(a)
	a.UpdateTime = f.stamp()
	return *a, true
}

func (f *Fixtures) deleteAccount(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[id]; !ok {
		return false
	}
	delete(f.accounts, id)
	return true
}

func (f *Fixtures) startSync(id int64, syncID string) (cam.SyncResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return cam.SyncResult{}, false
	}
	now := f.stamp()
	a.LastSyncTime = now
	f.tasks[syncID] = &cam.Task{
		ID:        syncID,
		Type:      "sync_assets",
		Status:    "running",
		CreatedBy: "admin",
		CreatedAt: now,
		StartedAt: now,
	}
	return cam.SyncResult{SyncID: syncID, Status: "running", StartTime: now}, true
}

func (f *Fixtures) asset(id int64) (cam.Asset, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	a, ok := f.assets[id]
	if !ok {
		return cam.Asset{}, false
	}
	return *a, true
}

func (f *Fixtures) deleteAsset(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assets[id]
	if !ok {
		return false
	}
	if acc, ok := f.accounts[a.AccountID]; ok && acc.AssetCount > 0 {
		acc.AssetCount--
	}
	delete(f.assets, id)
	return true
}

func (f *Fixtures) statistics() cam.Statistics {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s := cam.Statistics{
		ProviderStats:    map[string]int{},
		AssetTypeStats:   map[string]int{},
		RegionStats:      map[string]int{},
		StatusStats:      map[string]int{},
		LastDiscoverTime: "2024-01-15 10:05:00",
	}
	for _, a := range f.assets {
		s.TotalAssets++
		s.ProviderStats[a.Provider]++
		s.AssetTypeStats[a.AssetType]++
		s.RegionStats[a.Region]++
		s.StatusStats[a.Status]++
	}
	s.TotalCost = float64(s.TotalAssets) * 125.5
	return s
}

func (f *Fixtures) taskList() []cam.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sortedValues(f.tasks)
}

func (f *Fixtures) task(id string) (cam.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.tasks[id]
	if !ok {
		return cam.Task{}, false
	}
	return *t, true
}

var errTaskFinished = errors.New("task already finished")

func (f *Fixtures) cancelTask(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return false, nil
	}
	switch t.Status {
	case "completed", "failed", "cancelled":
		return true, errTaskFinished
	}
	t.Status = "cancelled"
	t.CompletedAt = f.stamp()
	return true, nil
}

func (f *Fixtures) modelList() []cmdb.Model {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.models)
}

func (f *Fixtures) model(uid string) (cmdb.Model, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	i := slices.IndexFunc(f.models, func(m cmdb.Model) bool { return m.UID == uid })
	if i < 0 {
		return cmdb.Model{}, false
	}
	return f.models[i], true
}

func (f *Fixtures) instanceList() []cmdb.Instance {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sortedValues(f.instances)
}

func (f *Fixtures) instance(id int64) (cmdb.Instance, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	in, ok := f.instances[id]
	if !ok {
		return cmdb.Instance{}, false
	}
	return *in, true
}

func (f *Fixtures) tenantList() []iam.Tenant {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.tenants)
}

func (f *Fixtures) userList(tenantID string) []iam.User {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []iam.User
	for _, u := range sortedValues(f.users) {
		if u.TenantID == tenantID {
			out = append(out, u)
		}
	}
	return out
}

func (f *Fixtures) user(id int64, tenantID string) (iam.User, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	u, ok := f.users[id]
	if !ok || u.TenantID != tenantID {
		return iam.User{}, false
	}
	return *u, true
}

func (f *Fixtures) groupList(tenantID string) []iam.Group {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []iam.Group
	for _, g := range f.groups {
		if g.TenantID == tenantID {
			out = append(out, g)
		}
	}
	return out
}

func (f *Fixtures) auditRecords(tenantID string) []AuditRecord {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []AuditRecord
	for _, a := range f.audit {
		if tenantID == "" || a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out
}
