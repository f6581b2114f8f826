package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Havens-blog/e-cam-web/internal/api/cam"
)

// Business codes answered with HTTP 200.
const (
	codeAssetNotFound   = 404001
	codeAccountNotFound = 404002
	codeTaskNotFound    = 404003
	codeModelNotFound   = 404004
	codeTaskFinished    = 400002
)

func (s *Server) camRoutes(r chi.Router) {
	r.Route("/cloud-accounts", func(r chi.Router) {
		r.Get("/", s.listAccounts)
		r.Post("/", s.createAccount)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getAccount)
			r.Put("/", s.updateAccount)
			r.Delete("/", s.deleteAccount)
			r.Post("/test-connection", s.testConnection)
			r.Post("/enable", s.setAccountStatus("active"))
			r.Post("/disable", s.setAccountStatus("disabled"))
			r.Post("/sync", s.syncAccount)
		})
	})

	r.Route("/assets", func(r chi.Router) {
		r.Get("/", s.listAssets)
		r.Get("/statistics", s.statistics)
		r.Get("/{id}", s.getAsset)
		r.Delete("/{id}", s.deleteAsset)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.listTasks)
		r.Get("/{id}", s.getTask)
		r.Post("/{id}/cancel", s.cancelTask)
	})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var matched []cam.Account
	for _, a := range s.Fixtures.Accounts() {
		if p := q.Get("provider"); p != "" && a.Provider != p {
			continue
		}
		if e := q.Get("environment"); e != "" && a.Environment != e {
			continue
		}
		if st := q.Get("status"); st != "" && a.Status != st {
			continue
		}
		matched = append(matched, a)
	}
	lo, hi := offsetLimit(r).bounds(len(matched))
	legacy(w, cam.AccountList{Accounts: nonNil(matched[lo:hi]), Total: len(matched)})
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req cam.CreateAccountRequest
	if err := decodeBody(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Provider == "" || req.AccessKeyID == "" {
		httpError(w, http.StatusBadRequest, "name, provider and access_key_id are required")
		return
	}
	legacy(w, s.Fixtures.createAccount(req))
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	a, ok := s.Fixtures.account(id)
	if !ok {
		businessError(w, codeAccountNotFound, "云账号不存在")
		return
	}
	legacy(w, a)
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	var req cam.UpdateAccountRequest
	if err := decodeBody(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	_, ok = s.Fixtures.updateAccount(id, func(a *cam.Account) {
		if req.Name != nil {
			a.Name = *req.Name
		}
		if req.Description != nil {
			a.Description = *req.Description
		}
		if req.Config != nil {
			a.Config = *req.Config
		}
	})
	if !ok {
		businessError(w, codeAccountNotFound, "云账号不存在")
		return
	}
	legacy(w, nil)
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok || !s.Fixtures.deleteAccount(id) {
		businessError(w, codeAccountNotFound, "云账号不存在")
		return
	}
	legacy(w, nil)
}

func (s *Server) testConnection(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	a, ok := s.Fixtures.updateAccount(id, func(a *cam.Account) {
		a.LastTestTime = s.Fixtures.now().Format(timeLayout)
	})
	if !ok {
		businessError(w, codeAccountNotFound, "云账号不存在")
		return
	}
	legacy(w, cam.ConnectionResult{
		Status:   "success",
		Message:  "连接成功",
		Regions:  []string{a.Region},
		TestTime: a.LastTestTime,
	})
}

func (s *Server) setAccountStatus(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		if _, ok := s.Fixtures.updateAccount(id, func(a *cam.Account) { a.Status = status }); !ok {
			businessError(w, codeAccountNotFound, "云账号不存在")
			return
		}
		legacy(w, nil)
	}
}

func (s *Server) syncAccount(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	res, ok := s.Fixtures.startSync(id, "sync-"+uuid.New().String()[:8])
	if !ok {
		businessError(w, codeAccountNotFound, "云账号不存在")
		return
	}
	AddLogField(r.Context(), "sync_id", res.SyncID)
	legacy(w, res)
}

func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	s.writeAssets(w, r, "", legacy)
}

// writeAssets filters the inventory. The per-type listing answers in the
// canonical envelope, as the asset service does.
func (s *Server) writeAssets(w http.ResponseWriter, r *http.Request, assetType string, write func(http.ResponseWriter, any)) {
	q := r.URL.Query()
	accountID, _ := strconv.ParseInt(q.Get("account_id"), 10, 64)
	var matched []cam.Asset
	for _, a := range s.Fixtures.Assets() {
		switch {
		case assetType != "" && a.AssetType != assetType,
			accountID != 0 && a.AccountID != accountID,
			q.Get("provider") != "" && a.Provider != q.Get("provider"),
			q.Get("region") != "" && a.Region != q.Get("region"),
			q.Get("status") != "" && a.Status != q.Get("status"),
			q.Get("name") != "" && !strings.Contains(a.AssetName, q.Get("name")):
			continue
		}
		matched = append(matched, a)
	}
	lo, hi := offsetLimit(r).bounds(len(matched))
	write(w, cam.AssetList{Items: nonNil(matched[lo:hi]), Total: len(matched)})
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	bare(w, s.Fixtures.statistics())
}

func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeAssets(w, r, chi.URLParam(r, "id"), canonical)
		return
	}
	a, ok := s.Fixtures.asset(id)
	if !ok {
		businessError(w, codeAssetNotFound, "资产不存在")
		return
	}
	legacy(w, a)
}

func (s *Server) deleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok || !s.Fixtures.deleteAsset(id) {
		businessError(w, codeAssetNotFound, "资产不存在")
		return
	}
	legacy(w, nil)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var matched []cam.Task
	for _, t := range s.Fixtures.taskList() {
		if v := q.Get("type"); v != "" && t.Type != v {
			continue
		}
		if v := q.Get("status"); v != "" && t.Status != v {
			continue
		}
		if v := q.Get("created_by"); v != "" && t.CreatedBy != v {
			continue
		}
		matched = append(matched, t)
	}
	lo, hi := offsetLimit(r).bounds(len(matched))
	legacy(w, cam.TaskList{Tasks: nonNil(matched[lo:hi]), Total: len(matched)})
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	t, ok := s.Fixtures.task(chi.URLParam(r, "id"))
	if !ok {
		businessError(w, codeTaskNotFound, "任务不存在")
		return
	}
	legacy(w, t)
}

func (s *Server) cancelTask(w http.ResponseWriter, r *http.Request) {
	found, err := s.Fixtures.cancelTask(chi.URLParam(r, "id"))
	switch {
	case !found:
		businessError(w, codeTaskNotFound, "任务不存在")
	case errors.Is(err, errTaskFinished):
		businessError(w, codeTaskFinished, "任务已结束，无法取消")
	default:
		legacy(w, nil)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
