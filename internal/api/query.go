// Package api holds helpers shared by the typed CAM endpoint packages.
package api

import (
	"net/url"
	"strconv"
)

// Query builds list parameters, skipping zero values so that unset filters
// are not sent.
type Query url.Values

// String adds k=v when v is not empty.
func (q Query) String(k, v string) Query {
	if v != "" {
		url.Values(q).Set(k, v)
	}
	return q
}

// Int adds k=v when v is not zero.
func (q Query) Int(k string, v int) Query {
	if v != 0 {
		url.Values(q).Set(k, strconv.Itoa(v))
	}
	return q
}

// Int64 adds k=v when v is not zero.
func (q Query) Int64(k string, v int64) Query {
	if v != 0 {
		url.Values(q).Set(k, strconv.FormatInt(v, 10))
	}
	return q
}

// Values returns the collected parameters, or nil when none were set.
func (q Query) Values() url.Values {
	if len(q) == 0 {
		return nil
	}
	return url.Values(q)
}
