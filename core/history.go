package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskID identifies a single top-level submission or promoted execution
// for observability purposes (logging fields, Prometheus label values,
// execution history entries). Filling a gap left undefined in the
// teacher's own task_history.go (GenerateTaskID was referenced but never
// implemented), generated via google/uuid the way _examples/viant-fluxor
// stamps trace spans.
type TaskID uuid.UUID

// NewTaskID generates a fresh random TaskID.
func NewTaskID() TaskID {
	return TaskID(uuid.New())
}

func (id TaskID) String() string {
	return uuid.UUID(id).String()
}

// ExecutionRecord captures one completed task execution, whether it ran
// sequentially or on a promoted worker.
type ExecutionRecord struct {
	TaskID     TaskID
	Scope      string
	Promoted   bool
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Failed     bool
}

const defaultHistoryCapacity = 100

// History is a fixed-capacity ring buffer of ExecutionRecords, adapted
// from the teacher's executionHistory in core/task_history.go.
type History struct {
	mu    sync.Mutex
	items []ExecutionRecord
	head  int
	count int
}

// NewHistory creates a ring buffer holding up to capacity records. A
// non-positive capacity falls back to defaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = defaultHistoryCapacity
	}
	return &History{items: make([]ExecutionRecord, capacity)}
}

// Add records a completed execution, evicting the oldest entry if full.
func (h *History) Add(record ExecutionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) == 0 {
		return
	}

	h.items[h.head] = record
	h.head = (h.head + 1) % len(h.items)
	if h.count < len(h.items) {
		h.count++
	}
}

// Recent returns up to limit most-recent records, newest first. limit <= 0
// returns all retained records.
func (h *History) Recent(limit int) []ExecutionRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return nil
	}
	if limit <= 0 || limit > h.count {
		limit = h.count
	}

	out := make([]ExecutionRecord, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (h.head - 1 - i + len(h.items)) % len(h.items)
		out = append(out, h.items[idx])
	}
	return out
}

// Last returns the most recent record, if any.
func (h *History) Last() (ExecutionRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return ExecutionRecord{}, false
	}
	idx := (h.head - 1 + len(h.items)) % len(h.items)
	return h.items[idx], true
}
