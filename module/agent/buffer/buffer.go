// Package buffer implements the client-side offline queue: samples produced
// while the reporter has no connectivity are held here, prioritized, and
// drained in order once the link returns.
package buffer

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Classify assigns the priority tier: emergency-linked samples are critical,
// then the tier decays with sample age.
func Classify(sampleTime time.Time, emergency bool, now time.Time) Priority {
	if emergency {
		return PriorityCritical
	}
	age := now.Sub(sampleTime)
	switch {
	case age < time.Hour:
		return PriorityHigh
	case age < 24*time.Hour:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Entry is one buffered sample. Deleted on confirmed server acceptance or
// after exceeding the retry ceiling.
type Entry struct {
	ID         string    `json:"id"`
	VehicleID  string    `json:"vehicle_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Speed      float64   `json:"speed"`
	Heading    float64   `json:"heading"`
	Timestamp  time.Time `json:"timestamp"`
	Priority   Priority  `json:"priority"`
	RetryCount int       `json:"retry_count"`
}

// Queue is a bounded, durable priority queue. Every mutation is journaled to
// disk so a reporter restart does not lose buffered samples.
type Queue struct {
	mu          sync.Mutex
	entries     []Entry
	capacity    int
	journalPath string
}

// NewQueue opens (or creates) a queue backed by the journal file. An empty
// journal path keeps the queue memory-only.
func NewQueue(capacity int, journalPath string) (*Queue, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %d", capacity)
	}

	q := &Queue{capacity: capacity, journalPath: journalPath}
	if journalPath != "" {
		if err := q.loadJournal(); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// Push appends an entry, evicting lowest-priority-first (oldest within the
// tier) when the queue would exceed capacity. Eviction is not an error.
func (q *Queue) Push(e Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	q.entries = append(q.entries, e)

	if len(q.entries) > q.capacity {
		q.evictLocked(len(q.entries) - q.capacity)
	}
	q.persistLocked()
}

// evictLocked removes n entries, lowest priority first, oldest first within
// a priority tier.
func (q *Queue) evictLocked(n int) {
	sort.SliceStable(q.entries, func(i, j int) bool {
		if q.entries[i].Priority != q.entries[j].Priority {
			return q.entries[i].Priority < q.entries[j].Priority
		}
		return q.entries[i].Timestamp.Before(q.entries[j].Timestamp)
	})
	q.entries = q.entries[n:]
}

// Peek returns up to n entries in drain order without removing them:
// highest priority first, oldest first within a tier.
func (q *Queue) Peek(n int) []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	sorted := make([]Entry, len(q.entries))
	copy(sorted, q.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Remove deletes entries by id after confirmed server acceptance.
func (q *Queue) Remove(ids []string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.removeLocked(ids)
	q.persistLocked()
}

// Fail increments the retry count of the given entries, dropping those that
// exceed maxRetries. Returns how many were kept and how many dropped.
func (q *Queue) Fail(ids []string, maxRetries int) (requeued, dropped int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	failed := make(map[string]bool, len(ids))
	for _, id := range ids {
		failed[id] = true
	}

	kept := q.entries[:0]
	for _, e := range q.entries {
		if !failed[e.ID] {
			kept = append(kept, e)
			continue
		}
		e.RetryCount++
		if e.RetryCount >= maxRetries {
			dropped++
			continue
		}
		requeued++
		kept = append(kept, e)
	}
	q.entries = kept
	q.persistLocked()
	return requeued, dropped
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func (q *Queue) removeLocked(ids []string) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := q.entries[:0]
	for _, e := range q.entries {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	q.entries = kept
}

func (q *Queue) loadJournal() error {
	data, err := os.ReadFile(q.journalPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &q.entries); err != nil {
		return fmt.Errorf("parse journal: %w", err)
	}
	return nil
}

// persistLocked writes the journal atomically (temp file + rename). A write
// failure degrades durability, not correctness, so it is swallowed here and
// surfaces on the next restart at worst.
func (q *Queue) persistLocked() {
	if q.journalPath == "" {
		return
	}
	data, err := json.Marshal(q.entries)
	if err != nil {
		return
	}
	tmp := q.journalPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, q.journalPath)
}
