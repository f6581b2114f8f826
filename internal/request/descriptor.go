package request

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// ResponseType tells the client how to treat a successful body.
type ResponseType string

const (
	ResponseJSON        ResponseType = "json"
	ResponseText        ResponseType = "text"
	ResponseBlob        ResponseType = "blob"
	ResponseArrayBuffer ResponseType = "arraybuffer"
)

// Binary reports whether bodies of this type skip normalization and the
// outcome check.
func (t ResponseType) Binary() bool {
	return t == ResponseBlob || t == ResponseArrayBuffer
}

// RequestHook may rewrite a descriptor before dispatch. A returned error
// aborts the call.
type RequestHook func(ctx context.Context, d *Descriptor) error

// ResponseHook may rewrite a response after a 2xx round trip. A returned
// error fails the call.
type ResponseHook func(ctx context.Context, r *Response) error

// Interceptors is a request/response hook pair.
type Interceptors struct {
	Request  RequestHook
	Response ResponseHook
}

// Descriptor describes one call.
type Descriptor struct {
	Method string

	// URL is resolved against the client base URL unless absolute.
	URL    string
	Params url.Values

	// Body is sent as JSON unless it is a []byte, string or io.Reader.
	Body   any
	Header http.Header

	// Timeout overrides the client timeout for this call.
	Timeout time.Duration

	ResponseType ResponseType

	// Once holds hooks that apply to this call only. A nil Once.Response
	// means the client's group normalizer.
	Once *Interceptors
}

func (d Descriptor) clone() *Descriptor {
	cp := d
	cp.Header = make(http.Header, len(d.Header))
	for k, vs := range d.Header {
		for _, v := range vs {
			cp.Header.Add(k, v)
		}
	}
	if d.Params != nil {
		cp.Params = make(url.Values, len(d.Params))
		for k, v := range d.Params {
			cp.Params[k] = append([]string(nil), v...)
		}
	}
	if d.Once != nil {
		once := *d.Once
		cp.Once = &once
	}
	if cp.Method == "" {
		cp.Method = http.MethodGet
	}
	if cp.ResponseType == "" {
		cp.ResponseType = ResponseJSON
	}
	return &cp
}

// Response is the raw result of a 2xx round trip, as seen by response hooks.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Descriptor *Descriptor
}
