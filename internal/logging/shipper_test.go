package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatedSink struct {
	mu      sync.Mutex
	got     []Entry
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedSink() *gatedSink {
	return &gatedSink{started: make(chan struct{}), release: make(chan struct{})}
}

func (s *gatedSink) Send(_ context.Context, entries []Entry) error {
	s.once.Do(func() {
		close(s.started)
		<-s.release
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, entries...)
	return nil
}

func (s *gatedSink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.got {
		out = append(out, e.Message)
	}
	return out
}

func TestShipper_DropsOldestWhenFull(t *testing.T) {
	sink := newGatedSink()
	s := NewShipper(sink, ShipperOptions{QueueSize: 3, BatchSize: 1})

	s.Enqueue(Entry{Message: "0"})
	<-sink.started

	for i := 1; i <= 5; i++ {
		s.Enqueue(Entry{Message: fmt.Sprint(i)})
	}
	assert.EqualValues(t, 2, s.Dropped())
	assert.Equal(t, 3, s.Pending())

	close(sink.release)
	require.NoError(t, s.Close(context.Background()))

	assert.Equal(t, []string{"0", "3", "4", "5"}, sink.messages())
	assert.EqualValues(t, 4, s.Sent())
}

func TestShipper_EnqueueAfterCloseIsDropped(t *testing.T) {
	sink := newGatedSink()
	close(sink.release)
	s := NewShipper(sink, ShipperOptions{})
	require.NoError(t, s.Close(context.Background()))

	s.Enqueue(Entry{Message: "late"})
	assert.EqualValues(t, 1, s.Dropped())
	assert.Empty(t, sink.messages())
}

type failingSink struct{}

func (failingSink) Send(context.Context, []Entry) error { return errors.New("collector down") }

func TestShipper_FailuresAreLoggedLocally(t *testing.T) {
	var local bytes.Buffer
	fallback := slog.New(slog.NewTextHandler(&local, nil))

	s := NewShipper(failingSink{}, ShipperOptions{Fallback: fallback})
	s.Enqueue(Entry{Message: "x"})
	require.NoError(t, s.Close(context.Background()))

	assert.EqualValues(t, 1, s.Failed())
	assert.Contains(t, local.String(), "collector down")
}

func TestShipper_CloseHonoursContext(t *testing.T) {
	sink := newGatedSink()
	s := NewShipper(sink, ShipperOptions{SendTimeout: time.Minute})
	s.Enqueue(Entry{Message: "stuck"})
	<-sink.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Close(ctx) }()

	time.Sleep(50 * time.Millisecond)
	close(sink.release)
	assert.ErrorIs(t, <-done, context.DeadlineExceeded)
}

func TestHTTPSink(t *testing.T) {
	var (
		mu       sync.Mutex
		received []Entry
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		var batch []Entry
		assert.NoError(t, json.Unmarshal(body, &batch))
		mu.Lock()
		received = append(received, batch...)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL, srv.Client())
	require.NoError(t, sink.Send(context.Background(), []Entry{{Level: "error", Message: "boom"}}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "boom", received[0].Message)
}

func TestHTTPSink_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewHTTPSink(srv.URL, nil).Send(context.Background(), []Entry{{Message: "x"}})
	assert.ErrorContains(t, err, "502")
}

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.subject, p.data = subject, data
	return p.err
}

func TestNATSSink(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewNATSSink(pub, "cam.logs")

	require.NoError(t, sink.Send(context.Background(), []Entry{{Level: "warn", Message: "slow"}}))
	assert.Equal(t, "cam.logs", pub.subject)

	var batch []Entry
	require.NoError(t, json.Unmarshal(pub.data, &batch))
	assert.Equal(t, "slow", batch[0].Message)

	pub.err = errors.New("no responders")
	assert.ErrorContains(t, sink.Send(context.Background(), batch), "cam.logs")
	assert.NoError(t, sink.Close())
}

func TestLoggerWithShipper(t *testing.T) {
	sink := newGatedSink()
	close(sink.release)
	shipper := NewShipper(sink, ShipperOptions{})

	logger, buf := New(Options{Output: io.Discard, Shipper: shipper})
	logger.Error("API request failed", Context("API"))
	require.NoError(t, shipper.Close(context.Background()))

	assert.Equal(t, 1, buf.Len())
	assert.Equal(t, []string{"API request failed"}, sink.messages())
}
