package server

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Havens-blog/e-cam-web/internal/api/iam"
)

func (s *Server) iamRoutes(r chi.Router) {
	r.Get("/tenants", s.listTenants)
	r.Get("/users", s.listUsers)
	r.Get("/users/{id}", s.getUser)
	r.Get("/groups", s.listGroups)
	r.Get("/audit/logs/export", s.exportAudit)
}

func (s *Server) listTenants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var matched []iam.Tenant
	for _, t := range s.Fixtures.tenantList() {
		switch {
		case q.Get("status") != "" && t.Status != q.Get("status"),
			q.Get("industry") != "" && t.Metadata.Industry != q.Get("industry"),
			q.Get("keyword") != "" && !strings.Contains(t.Name+" "+t.DisplayName, q.Get("keyword")):
			continue
		}
		matched = append(matched, t)
	}
	p := pageSize(r)
	lo, hi := p.bounds(len(matched))
	legacyPage(w, nonNil(matched[lo:hi]), len(matched), p)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	tenantID := tenantOf(r)
	AddLogField(r.Context(), "tenant_id", tenantID)

	q := r.URL.Query()
	accountID, _ := strconv.ParseInt(q.Get("cloud_account_id"), 10, 64)
	var matched []iam.User
	for _, u := range s.Fixtures.userList(tenantID) {
		switch {
		case q.Get("provider") != "" && u.Provider != q.Get("provider"),
			q.Get("user_type") != "" && u.UserType != q.Get("user_type"),
			q.Get("status") != "" && u.Status != q.Get("status"),
			accountID != 0 && u.CloudAccountID != accountID,
			q.Get("keyword") != "" && !strings.Contains(u.Username+" "+u.DisplayName, q.Get("keyword")):
			continue
		}
		matched = append(matched, u)
	}
	p := pageSize(r)
	lo, hi := p.bounds(len(matched))
	legacyPage(w, nonNil(matched[lo:hi]), len(matched), p)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	u, ok := s.Fixtures.user(id, tenantOf(r))
	if !ok {
		httpError(w, http.StatusNotFound, "user not found")
		return
	}
	legacy(w, u)
}

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var matched []iam.Group
	for _, g := range s.Fixtures.groupList(tenantOf(r)) {
		if kw := q.Get("keyword"); kw != "" && !strings.Contains(g.Name, kw) {
			continue
		}
		matched = append(matched, g)
	}
	p := pageSize(r)
	lo, hi := p.bounds(len(matched))
	legacyPage(w, nonNil(matched[lo:hi]), len(matched), p)
}

func (s *Server) exportAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records := s.Fixtures.auditRecords(q.Get("tenant_id"))

	switch format := q.Get("format"); format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="audit-logs.json"`)
		_ = json.NewEncoder(w).Encode(records)
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="audit-logs.csv"`)
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"id", "operation_type", "operator_name", "target_type", "target_id", "cloud_platform", "tenant_id", "operation_time", "operation_result"})
		for _, a := range records {
			_ = cw.Write([]string{
				strconv.FormatInt(a.ID, 10), a.OperationType, a.OperatorName, a.TargetType,
				a.TargetID, a.CloudPlatform, a.TenantID, a.OperationTime, a.OperationResult,
			})
		}
		cw.Flush()
	default:
		httpError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
	}
}
