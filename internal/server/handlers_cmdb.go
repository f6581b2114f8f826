package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Havens-blog/e-cam-web/internal/api/cmdb"
)

func (s *Server) cmdbRoutes(r chi.Router) {
	r.Get("/cmdb/models", s.listModels)
	r.Get("/cmdb/models/{uid}", s.getModel)
	r.Get("/cmdb/instances/{id}", s.getInstance)
	r.Get("/instances", s.listInstances)
}

func (s *Server) listModels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	level, _ := strconv.Atoi(q.Get("level"))
	var matched []cmdb.Model
	for _, m := range s.Fixtures.modelList() {
		switch {
		case q.Get("provider") != "" && m.Provider != q.Get("provider"),
			q.Get("category") != "" && m.Category != q.Get("category"),
			q.Get("parent_uid") != "" && m.ParentUID != q.Get("parent_uid"),
			level != 0 && m.Level != level:
			continue
		}
		matched = append(matched, m)
	}
	lo, hi := offsetLimit(r).bounds(len(matched))
	canonical(w, cmdb.ModelList{Models: nonNil(matched[lo:hi]), Total: len(matched)})
}

func (s *Server) getModel(w http.ResponseWriter, r *http.Request) {
	m, ok := s.Fixtures.model(chi.URLParam(r, "uid"))
	if !ok {
		writeJSON(w, http.StatusOK, canonicalBody{Code: codeModelNotFound, Message: "模型不存在"})
		return
	}
	canonical(w, m)
}

func (s *Server) listInstances(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	accountID, _ := strconv.ParseInt(q.Get("account_id"), 10, 64)
	tenantID := q.Get("tenant_id")
	var matched []cmdb.Instance
	for _, in := range s.Fixtures.instanceList() {
		switch {
		case q.Get("uid") != "" && in.UID != q.Get("uid"),
			tenantID != "" && in.TenantID != tenantID,
			accountID != 0 && in.AccountID != accountID,
			q.Get("asset_name") != "" && in.AssetName != q.Get("asset_name"):
			continue
		}
		matched = append(matched, in)
	}
	lo, hi := offsetLimit(r).bounds(len(matched))
	canonical(w, cmdb.InstanceList{Instances: nonNil(matched[lo:hi]), Total: len(matched)})
}

func (s *Server) getInstance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpError(w, http.StatusBadRequest, "invalid instance id")
		return
	}
	in, ok := s.Fixtures.instance(id)
	if !ok {
		httpError(w, http.StatusNotFound, "instance not found")
		return
	}
	canonical(w, in)
}
