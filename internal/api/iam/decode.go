package iam

import (
	"bytes"
	"encoding/json"

	"github.com/Havens-blog/e-cam-web/internal/domain"
)

// pageBody decodes a list answer. Legacy answers arrive nested as
// {data: [...], total, page, size}; canonical ones may carry the bare array.
type pageBody[T any] domain.Page[T]

func (p *pageBody[T]) UnmarshalJSON(b []byte) error {
	if b = bytes.TrimSpace(b); len(b) > 0 && b[0] == '[' {
		if err := json.Unmarshal(b, &p.Data); err != nil {
			return err
		}
		p.Total = len(p.Data)
		return nil
	}
	return json.Unmarshal(b, (*domain.Page[T])(p))
}

// entityBody decodes a single-object answer, unwrapping the {data: {...}}
// nesting legacy answers get.
type entityBody[T any] struct {
	v T
}

func (e *entityBody[T]) UnmarshalJSON(b []byte) error {
	var nested struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &nested); err == nil {
		if d := bytes.TrimSpace(nested.Data); len(d) > 0 && d[0] == '{' {
			return json.Unmarshal(d, &e.v)
		}
	}
	return json.Unmarshal(b, &e.v)
}
