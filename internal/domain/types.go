package domain

import "encoding/json"

// CanonicalResponse is the envelope every CAM backend group is normalized to
// before the outcome check runs.
type CanonicalResponse struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Success reports whether the envelope carries a success code.
func (r *CanonicalResponse) Success() bool {
	return r.Code == 0 || r.Code == 200
}

// Page is the IAM list shape after pagination nesting.
type Page[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}
