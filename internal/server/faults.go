package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Fault replaces the next Times responses on a route. A zero Status with a
// Delay only slows the route down.
type Fault struct {
	Status  int
	Message string
	Delay   time.Duration
	Times   int
}

// Faults injects failures for clients under test.
type Faults struct {
	mu     sync.Mutex
	routes map[string]*Fault
}

func newFaults() *Faults {
	return &Faults{routes: make(map[string]*Fault)}
}

// Inject arms f for method and path. An empty method matches any method.
// Times below 1 means once.
func (f *Faults) Inject(method, path string, fault Fault) {
	if fault.Times < 1 {
		fault.Times = 1
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = &fault
}

// Reset disarms every fault.
func (f *Faults) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.routes)
}

func (f *Faults) take(r *http.Request) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range []string{r.Method + " " + r.URL.Path, " " + r.URL.Path} {
		fault, ok := f.routes[key]
		if !ok {
			continue
		}
		fault.Times--
		if fault.Times <= 0 {
			delete(f.routes, key)
		}
		return *fault, true
	}
	return Fault{}, false
}

// Middleware applies armed faults ahead of the handlers.
func (f *Faults) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fault, ok := f.take(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		AddLogField(r.Context(), "fault", strconv.Itoa(fault.Status))

		if fault.Delay > 0 {
			timer := time.NewTimer(fault.Delay)
			select {
			case <-timer.C:
			case <-r.Context().Done():
				timer.Stop()
				httpError(w, http.StatusGatewayTimeout, "upstream timed out")
				return
			}
		}

		if fault.Status == 0 {
			next.ServeHTTP(w, r)
			return
		}
		msg := fault.Message
		if msg == "" {
			msg = http.StatusText(fault.Status)
		}
		httpError(w, fault.Status, msg)
	})
}
