// Package syncer drives the offline buffer: it watches connectivity, and on
// the transition to online drains the queue in priority order through the
// server's batch-sync endpoint.
package syncer

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/agent/buffer"
)

// Uploader sends one batch to the server and reports how many entries the
// server accepted.
type Uploader interface {
	UploadBatch(ctx context.Context, entries []buffer.Entry) (accepted int, err error)
}

// Prober answers whether the server is currently reachable, within a bounded
// timeout.
type Prober interface {
	Online(ctx context.Context) bool
}

type Options struct {
	BatchSize     int
	MaxRetries    int
	BaseBackoff   time.Duration
	MaxBackoff    time.Duration
	ProbeInterval time.Duration
}

func (o *Options) fillDefaults() {
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 5
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = time.Second
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = time.Minute
	}
	if o.ProbeInterval <= 0 {
		o.ProbeInterval = 10 * time.Second
	}
}

// Syncer is the per-client sync manager. Only one drain cycle may be in
// flight at a time; redundant online signals are collapsed by the guard.
type Syncer struct {
	queue    *buffer.Queue
	uploader Uploader
	prober   Prober
	opts     Options

	draining atomic.Bool

	mu     sync.Mutex
	online bool
}

func New(queue *buffer.Queue, uploader Uploader, prober Prober, opts Options) *Syncer {
	opts.fillDefaults()
	return &Syncer{
		queue:    queue,
		uploader: uploader,
		prober:   prober,
		opts:     opts,
	}
}

// Online reports the last observed connectivity state.
func (s *Syncer) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// Run probes connectivity on a timer until ctx is done. Each Offline→Online
// edge triggers exactly one drain cycle.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.ProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.observe(ctx, s.prober.Online(ctx))
		}
	}
}

// observe records the new connectivity state and starts a drain on the
// offline-to-online edge (or when entries queued up while online).
func (s *Syncer) observe(ctx context.Context, online bool) {
	s.mu.Lock()
	wasOnline := s.online
	s.online = online
	s.mu.Unlock()

	if online && (!wasOnline || s.queue.Len() > 0) {
		go s.Drain(ctx)
	}
}

// Drain uploads the queue in priority order, one batch at a time. A batch
// failure re-queues its entries with an incremented retry count (dropping
// those past the ceiling) and backs off exponentially before the next try.
// Returns immediately when another drain is already in flight.
func (s *Syncer) Drain(ctx context.Context) {
	if !s.draining.CompareAndSwap(false, true) {
		return
	}
	defer s.draining.Store(false)

	backoff := s.opts.BaseBackoff

	for s.queue.Len() > 0 {
		if ctx.Err() != nil {
			return
		}

		batch := s.queue.Peek(s.opts.BatchSize)
		ids := entryIDs(batch)

		accepted, err := s.uploader.UploadBatch(ctx, batch)
		if err != nil {
			requeued, dropped := s.queue.Fail(ids, s.opts.MaxRetries)
			if dropped > 0 {
				log.Printf("sync: dropped %d entries past the retry ceiling", dropped)
			}
			log.Printf("sync: batch of %d failed (%d requeued): %v", len(batch), requeued, err)

			if !sleepCtx(ctx, backoff) {
				return
			}
			backoff *= 2
			if backoff > s.opts.MaxBackoff {
				backoff = s.opts.MaxBackoff
			}
			continue
		}

		// The server confirmed the batch; per-item rejects are permanent
		// (malformed or unknown vehicle) and retrying them cannot help.
		s.queue.Remove(ids)
		backoff = s.opts.BaseBackoff

		if accepted < len(batch) {
			log.Printf("sync: server accepted %d of %d entries", accepted, len(batch))
		}
	}
}

func entryIDs(entries []buffer.Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
