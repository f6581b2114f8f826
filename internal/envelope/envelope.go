// Package envelope normalizes the response envelopes of the CAM backend
// groups into the canonical {code, data, message} shape.
//
// Three conventions are in use behind the same API prefix:
//   - legacy services answer {code: 200, msg|message, data}
//   - newer services answer {code: 0, message, data}
//   - some endpoints return the bare payload with no envelope at all
//
// A Normalizer rewrites any of these into {code: 0, data, message} so the
// outcome check only needs to understand one shape. Bodies carrying any
// other code are left alone for the outcome check to reject.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Envelope is a parsed response body. Object bodies keep their top-level
// fields, anything else is a bare payload.
type Envelope struct {
	raw    json.RawMessage
	fields map[string]json.RawMessage
	order  []string
}

// Parse decodes body into an Envelope. Invalid JSON is an error.
func Parse(body []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("failed to parse response body: invalid JSON")
	}

	env := &Envelope{raw: json.RawMessage(trimmed)}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return env, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse response body: %w", err)
	}
	env.fields = make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse response body: %w", err)
		}
		key, _ := tok.(string)
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, fmt.Errorf("failed to parse field %q: %w", key, err)
		}
		if _, dup := env.fields[key]; !dup {
			env.order = append(env.order, key)
		}
		env.fields[key] = val
	}
	return env, nil
}

// IsObject reports whether the body was a JSON object.
func (e *Envelope) IsObject() bool {
	return e.fields != nil
}

// Raw returns the body as parsed.
func (e *Envelope) Raw() json.RawMessage {
	return e.raw
}

// Field returns a top-level field.
func (e *Envelope) Field(name string) (json.RawMessage, bool) {
	v, ok := e.fields[name]
	return v, ok
}

// HasCode reports whether a non-null "code" field is present.
func (e *Envelope) HasCode() bool {
	v, ok := e.fields["code"]
	return ok && !isNull(v)
}

// Code returns the numeric "code" field. Integral floats such as 200.0
// count. ok is false when the field is missing or not a whole number.
func (e *Envelope) Code() (code int, ok bool) {
	v, present := e.fields["code"]
	if !present {
		return 0, false
	}
	v = bytes.TrimSpace(v)
	if len(v) == 0 || (v[0] != '-' && (v[0] < '0' || v[0] > '9')) {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return int(i), true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// Message returns "message", falling back to "msg".
func (e *Envelope) Message() string {
	if m := e.stringField("message"); m != "" {
		return m
	}
	return e.stringField("msg")
}

// Msg returns "msg", falling back to "message". Legacy services put their
// text in msg, so this is the preferred order when renaming.
func (e *Envelope) Msg() string {
	if m := e.stringField("msg"); m != "" {
		return m
	}
	return e.stringField("message")
}

// Data returns the "data" field, or nil when absent.
func (e *Envelope) Data() json.RawMessage {
	return e.fields["data"]
}

// Extras returns the top-level fields other than code, msg, message and
// data, in body order.
func (e *Envelope) Extras() []string {
	var out []string
	for _, k := range e.order {
		switch k {
		case "code", "msg", "message", "data":
			continue
		}
		out = append(out, k)
	}
	return out
}

func (e *Envelope) stringField(name string) string {
	v, ok := e.fields[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
