package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Sink delivers a batch of entries to a remote collector.
type Sink interface {
	Send(ctx context.Context, entries []Entry) error
}

// ShipperOptions configures a Shipper.
type ShipperOptions struct {
	// QueueSize bounds the number of pending entries. Default 256.
	QueueSize int

	// BatchSize caps entries per Send. Default 50.
	BatchSize int

	// Rate limits Send calls per second. Zero means unlimited.
	Rate float64

	// Burst is the limiter burst. Default 1.
	Burst int

	// SendTimeout bounds a single Send. Default 5s.
	SendTimeout time.Duration

	// Fallback receives delivery failures. It must not route back into the
	// shipper. Defaults to a text logger on stderr.
	Fallback *slog.Logger
}

// Shipper queues entries for best-effort delivery to a Sink from a single
// background goroutine. The queue is bounded. When it is full the oldest
// pending entry is dropped. Delivery failures are logged locally and
// otherwise ignored.
type Shipper struct {
	sink     Sink
	opts     ShipperOptions
	limiter  *rate.Limiter
	fallback *slog.Logger

	mu    sync.Mutex
	queue []Entry

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once

	dropped atomic.Int64
	sent    atomic.Int64
	failed  atomic.Int64
}

// NewShipper starts a shipper delivering to sink.
func NewShipper(sink Sink, opts ShipperOptions) *Shipper {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 5 * time.Second
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Shipper{
		sink:     sink,
		opts:     opts,
		limiter:  rate.NewLimiter(limit, opts.Burst),
		fallback: fallback,
		queue:    make([]Entry, 0, opts.QueueSize),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	go s.run()
	return s
}

// Enqueue queues e for delivery. It never blocks.
func (s *Shipper) Enqueue(e Entry) {
	select {
	case <-s.done:
		s.dropped.Add(1)
		return
	default:
	}

	s.mu.Lock()
	if len(s.queue) >= s.opts.QueueSize {
		s.queue = s.queue[1:]
		s.dropped.Add(1)
	}
	s.queue = append(s.queue, e)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued entries.
func (s *Shipper) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Dropped returns the number of entries evicted or rejected.
func (s *Shipper) Dropped() int64 { return s.dropped.Load() }

// Sent returns the number of entries handed to the sink successfully.
func (s *Shipper) Sent() int64 { return s.sent.Load() }

// Failed returns the number of entries whose delivery failed.
func (s *Shipper) Failed() int64 { return s.failed.Load() }

// Close stops accepting entries and delivers what is still queued. If ctx
// expires first, pending entries are abandoned.
func (s *Shipper) Close(ctx context.Context) error {
	s.once.Do(func() { close(s.done) })

	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		s.cancel()
		<-s.stopped
		return ctx.Err()
	}
}

func (s *Shipper) run() {
	defer close(s.stopped)
	defer s.cancel()

	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.done:
			s.drain()
			return
		}
	}
}

func (s *Shipper) drain() {
	for {
		batch := s.take()
		if len(batch) == 0 {
			return
		}
		if err := s.limiter.Wait(s.ctx); err != nil {
			s.failed.Add(int64(len(batch)))
			return
		}
		s.deliver(batch)
	}
}

func (s *Shipper) take() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := min(len(s.queue), s.opts.BatchSize)
	if n == 0 {
		return nil
	}
	batch := make([]Entry, n)
	copy(batch, s.queue[:n])
	s.queue = append(s.queue[:0], s.queue[n:]...)
	return batch
}

func (s *Shipper) deliver(batch []Entry) {
	ctx, cancel := context.WithTimeout(s.ctx, s.opts.SendTimeout)
	defer cancel()

	if err := s.sink.Send(ctx, batch); err != nil {
		s.failed.Add(int64(len(batch)))
		s.fallback.LogAttrs(ctx, slog.LevelWarn, "failed to ship log entries",
			slog.Int("count", len(batch)),
			slog.String("error", err.Error()),
		)
		return
	}
	s.sent.Add(int64(len(batch)))
}
