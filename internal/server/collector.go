package server

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/Havens-blog/e-cam-web/internal/logging"
)

// Collector receives batches posted by a logging.HTTPSink.
type Collector struct {
	mu      sync.Mutex
	entries []logging.Entry
}

// ServeHTTP accepts a JSON array of entries.
func (c *Collector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var batch []logging.Entry
	if err := decodeBody(r, &batch); err != nil {
		httpError(w, http.StatusBadRequest, "expected a JSON array of log entries")
		return
	}
	AddLogField(r.Context(), "entries", strconv.Itoa(len(batch)))

	c.mu.Lock()
	c.entries = append(c.entries, batch...)
	c.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

// Entries returns a copy of everything received so far.
func (c *Collector) Entries() []logging.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]logging.Entry, len(c.entries))
	copy(out, c.entries)
	return out
}
