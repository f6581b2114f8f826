package server

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const (
	headerTenantID  = "X-Tenant-ID"
	defaultTenantID = "default"
	successMessage  = "success"
)

// legacyBody is the code 200 shape of the CAM and IAM backends.
type legacyBody struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// legacyPageBody is the IAM list shape with pagination beside data.
type legacyPageBody struct {
	Code  int    `json:"code"`
	Msg   string `json:"msg"`
	Data  any    `json:"data"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
}

// canonicalBody is the code 0 shape of the CMDB backend.
type canonicalBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Msg     string `json:"msg,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func legacy(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, legacyBody{Code: 200, Msg: successMessage, Data: data})
}

func legacyPage(w http.ResponseWriter, data any, total int, p pagination) {
	writeJSON(w, http.StatusOK, legacyPageBody{
		Code:  200,
		Msg:   successMessage,
		Data:  data,
		Total: total,
		Page:  p.page,
		Size:  p.size,
	})
}

func canonical(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, canonicalBody{Code: 0, Message: successMessage, Data: data})
}

func bare(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

// businessError answers HTTP 200 with a failing business code, the way the
// CAM backends report missing records.
func businessError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, http.StatusOK, errorBody{Code: code, Msg: msg})
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Code: status, Message: msg})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func tenantOf(r *http.Request) string {
	if t := r.Header.Get(headerTenantID); t != "" {
		return t
	}
	return defaultTenantID
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// window is an offset/limit slice of a list.
type window struct {
	offset int
	limit  int
}

func offsetLimit(r *http.Request) window {
	return window{offset: queryInt(r, "offset", 0), limit: queryInt(r, "limit", 20)}
}

func (w window) bounds(n int) (int, int) {
	lo := min(w.offset, n)
	hi := n
	if w.limit > 0 {
		hi = min(lo+w.limit, n)
	}
	return lo, hi
}

// pagination is a page/size slice of a list. Pages start at 1.
type pagination struct {
	page int
	size int
}

func pageSize(r *http.Request) pagination {
	p := pagination{page: queryInt(r, "page", 1), size: queryInt(r, "size", 20)}
	if p.page < 1 {
		p.page = 1
	}
	if p.size < 1 {
		p.size = 20
	}
	return p
}

func (p pagination) bounds(n int) (int, int) {
	lo := min((p.page-1)*p.size, n)
	return lo, min(lo+p.size, n)
}
