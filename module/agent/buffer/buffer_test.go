package buffer

import (
	"path/filepath"
	"testing"
	"time"
)

func entry(id string, p Priority, ts time.Time) Entry {
	return Entry{
		ID:        id,
		VehicleID: "VH-1",
		Latitude:  10.1,
		Longitude: 124.8,
		Timestamp: ts,
		Priority:  p,
	}
}

func newTestQueue(t *testing.T, capacity int) *Queue {
	t.Helper()
	q, err := NewQueue(capacity, "")
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}
	return q
}

func TestClassify(t *testing.T) {
	now := time.Unix(1715003456, 0)
	cases := []struct {
		name      string
		sample    time.Time
		emergency bool
		want      Priority
	}{
		{"emergency", now.Add(-48 * time.Hour), true, PriorityCritical},
		{"fresh", now.Add(-time.Minute), false, PriorityHigh},
		{"just under an hour", now.Add(-59 * time.Minute), false, PriorityHigh},
		{"hours old", now.Add(-5 * time.Hour), false, PriorityMedium},
		{"just under a day", now.Add(-23 * time.Hour), false, PriorityMedium},
		{"days old", now.Add(-48 * time.Hour), false, PriorityLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.sample, tc.emergency, now); got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestQueue_PeekDrainOrder(t *testing.T) {
	q := newTestQueue(t, 10)
	base := time.Unix(1715000000, 0)

	q.Push(entry("low", PriorityLow, base))
	q.Push(entry("high-new", PriorityHigh, base.Add(2*time.Minute)))
	q.Push(entry("critical", PriorityCritical, base.Add(time.Hour)))
	q.Push(entry("high-old", PriorityHigh, base.Add(time.Minute)))
	q.Push(entry("medium", PriorityMedium, base))

	got := q.Peek(10)
	want := []string{"critical", "high-old", "high-new", "medium", "low"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}

	// Peek does not consume
	if q.Len() != 5 {
		t.Errorf("expected 5 entries after peek, got %d", q.Len())
	}
}

func TestQueue_PeekLimitsBatch(t *testing.T) {
	q := newTestQueue(t, 10)
	base := time.Unix(1715000000, 0)
	for i := 0; i < 5; i++ {
		q.Push(entry("", PriorityHigh, base.Add(time.Duration(i)*time.Second)))
	}

	if got := q.Peek(2); len(got) != 2 {
		t.Errorf("expected batch of 2, got %d", len(got))
	}
	if got := q.Peek(100); len(got) != 5 {
		t.Errorf("expected all 5, got %d", len(got))
	}
}

func TestQueue_CapacityEviction(t *testing.T) {
	q := newTestQueue(t, 3)
	base := time.Unix(1715000000, 0)

	q.Push(entry("critical", PriorityCritical, base))
	q.Push(entry("low-old", PriorityLow, base))
	q.Push(entry("low-new", PriorityLow, base.Add(time.Minute)))

	// over capacity: the oldest low-priority entry goes first
	q.Push(entry("high", PriorityHigh, base))

	if q.Len() != 3 {
		t.Fatalf("expected capacity 3 held, got %d", q.Len())
	}
	ids := map[string]bool{}
	for _, e := range q.Peek(10) {
		ids[e.ID] = true
	}
	if ids["low-old"] {
		t.Error("expected the oldest low-priority entry evicted")
	}
	if !ids["critical"] || !ids["high"] || !ids["low-new"] {
		t.Errorf("unexpected survivors: %v", ids)
	}
}

func TestQueue_PushAssignsID(t *testing.T) {
	q := newTestQueue(t, 10)
	q.Push(entry("", PriorityHigh, time.Unix(1715000000, 0)))

	if got := q.Peek(1); got[0].ID == "" {
		t.Error("expected generated entry id")
	}
}

func TestQueue_Remove(t *testing.T) {
	q := newTestQueue(t, 10)
	base := time.Unix(1715000000, 0)
	q.Push(entry("a", PriorityHigh, base))
	q.Push(entry("b", PriorityHigh, base.Add(time.Second)))

	q.Remove([]string{"a", "missing"})

	if q.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", q.Len())
	}
	if q.Peek(1)[0].ID != "b" {
		t.Error("wrong entry removed")
	}
}

func TestQueue_FailRetryCeiling(t *testing.T) {
	q := newTestQueue(t, 10)
	base := time.Unix(1715000000, 0)
	q.Push(entry("a", PriorityHigh, base))
	q.Push(entry("b", PriorityHigh, base.Add(time.Second)))

	// two failures keep both entries below a ceiling of 3
	for i := 0; i < 2; i++ {
		requeued, dropped := q.Fail([]string{"a", "b"}, 3)
		if requeued != 2 || dropped != 0 {
			t.Fatalf("failure %d: requeued=%d dropped=%d", i, requeued, dropped)
		}
	}

	// third failure crosses the ceiling
	requeued, dropped := q.Fail([]string{"a", "b"}, 3)
	if requeued != 0 || dropped != 2 {
		t.Fatalf("expected both dropped, requeued=%d dropped=%d", requeued, dropped)
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue, got %d", q.Len())
	}
}

func TestQueue_FailOnlyTouchesNamedEntries(t *testing.T) {
	q := newTestQueue(t, 10)
	base := time.Unix(1715000000, 0)
	q.Push(entry("a", PriorityHigh, base))
	q.Push(entry("b", PriorityHigh, base.Add(time.Second)))

	q.Fail([]string{"a"}, 5)

	for _, e := range q.Peek(10) {
		switch e.ID {
		case "a":
			if e.RetryCount != 1 {
				t.Errorf("entry a: retry count %d, want 1", e.RetryCount)
			}
		case "b":
			if e.RetryCount != 0 {
				t.Errorf("entry b: retry count %d, want 0", e.RetryCount)
			}
		}
	}
}

func TestQueue_JournalSurvivesRestart(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "queue.json")
	base := time.Unix(1715000000, 0)

	q, err := NewQueue(10, journal)
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}
	q.Push(entry("a", PriorityCritical, base))
	q.Push(entry("b", PriorityLow, base))
	q.Remove([]string{"b"})

	reopened, err := NewQueue(10, journal)
	if err != nil {
		t.Fatalf("reopen queue: %v", err)
	}
	if reopened.Len() != 1 {
		t.Fatalf("expected 1 entry after restart, got %d", reopened.Len())
	}
	got := reopened.Peek(1)[0]
	if got.ID != "a" || got.Priority != PriorityCritical {
		t.Errorf("unexpected entry after restart: %+v", got)
	}
}

func TestNewQueue_RejectsBadCapacity(t *testing.T) {
	if _, err := NewQueue(0, ""); err == nil {
		t.Error("expected error for zero capacity")
	}
	if _, err := NewQueue(-1, ""); err == nil {
		t.Error("expected error for negative capacity")
	}
}
