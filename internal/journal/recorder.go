package journal

import (
	"context"
	"sync"
	"time"

	"github.com/park285/cheese-chess-client/internal/obslog"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

type entry struct {
	live   *Live
	result *Result
}

// Recorder writes to a Store from its own goroutine so callers never block on
// I/O. Writes keep submission order; when the queue is full new entries are dropped.
type Recorder struct {
	store Store
	log   *zap.Logger
	queue chan entry

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewRecorder(store Store, size int, logger *zap.Logger) *Recorder {
	if size <= 0 {
		size = 64
	}
	if logger == nil {
		logger = obslog.L()
	}
	r := &Recorder{store: store, log: logger, queue: make(chan entry, size), done: make(chan struct{})}
	go r.loop()
	return r
}

func (r *Recorder) RecordLive(l Live)       { r.enqueue(entry{live: &l}) }
func (r *Recorder) RecordResult(res Result) { r.enqueue(entry{result: &res}) }

func (r *Recorder) enqueue(e entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- e:
	default:
		r.log.Warn("journal_queue_full")
	}
}

func (r *Recorder) loop() {
	defer close(r.done)
	for e := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		var err error
		switch {
		case e.live != nil:
			err = r.store.SaveLive(ctx, *e.live)
		case e.result != nil:
			err = r.store.SaveResult(ctx, *e.result)
		}
		cancel()
		if err != nil {
			r.log.Warn("journal_write_failed", zap.Error(err))
		}
	}
}

// Close stops accepting entries and waits for queued ones to be written.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
