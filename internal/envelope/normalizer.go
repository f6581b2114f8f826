package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Havens-blog/e-cam-web/internal/domain"
)

// DefaultMessage is used when a success envelope carries no text.
const DefaultMessage = "success"

// Normalizer rewrites a response body into the canonical envelope.
type Normalizer interface {
	Normalize(body []byte) ([]byte, error)
}

// NormalizerFunc adapts a function to Normalizer.
type NormalizerFunc func(body []byte) ([]byte, error)

// Normalize implements Normalizer.
func (f NormalizerFunc) Normalize(body []byte) ([]byte, error) {
	return f(body)
}

// Group identifies a backend service family by its envelope convention.
type Group string

const (
	GroupCAM     Group = "cam"
	GroupCMDB    Group = "cmdb"
	GroupAsset   Group = "asset"
	GroupIAM     Group = "iam"
	GroupGeneric Group = "generic"
)

// For returns the normalizer used by a backend group.
func For(g Group) Normalizer {
	switch g {
	case GroupIAM:
		return Paginated{}
	case GroupCAM, GroupCMDB, GroupAsset:
		return Standard{}
	default:
		return Passthrough{}
	}
}

// Standard handles the legacy {code:200} shape, the {code:0} shape and bare
// payloads.
type Standard struct{}

// Normalize implements Normalizer.
func (Standard) Normalize(body []byte) ([]byte, error) {
	return normalize(body, false)
}

// Paginated is Standard plus preservation of pagination fields: every legacy
// success envelope is repackaged so that data becomes
// {data: original, <extras>...}, whether or not extras are present.
type Paginated struct{}

// Normalize implements Normalizer.
func (Paginated) Normalize(body []byte) ([]byte, error) {
	return normalize(body, true)
}

// Passthrough leaves the body untouched.
type Passthrough struct{}

// Normalize implements Normalizer.
func (Passthrough) Normalize(body []byte) ([]byte, error) {
	return body, nil
}

func normalize(body []byte, nest bool) ([]byte, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return encode(domain.CanonicalResponse{Code: 0, Message: DefaultMessage})
	}

	env, err := Parse(body)
	if err != nil {
		// Left for the outcome check to report as a format error.
		return body, nil
	}

	code, numeric := env.Code()
	switch {
	case env.IsObject() && numeric && code == 200:
		msg := env.Msg()
		if msg == "" {
			msg = DefaultMessage
		}
		data := env.Data()
		if nest {
			data, err = nestPage(env, env.Extras())
			if err != nil {
				return nil, err
			}
		}
		return encode(domain.CanonicalResponse{Code: 0, Data: data, Message: msg})

	case env.IsObject() && numeric && code == 0:
		return body, nil

	case !env.HasCode():
		return encode(domain.CanonicalResponse{Code: 0, Data: env.Raw(), Message: DefaultMessage})

	default:
		return body, nil
	}
}

func nestPage(env *Envelope, extras []string) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"data":`)
	if d := env.Data(); d != nil {
		buf.Write(d)
	} else {
		buf.WriteString("null")
	}
	for _, k := range extras {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field name: %w", err)
		}
		v, _ := env.Field(k)
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encode(resp domain.CanonicalResponse) ([]byte, error) {
	out, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode canonical response: %w", err)
	}
	return out, nil
}
