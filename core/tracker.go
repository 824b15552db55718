package core

import "time"

// PromotionFrame represents a still-sequential fork sitting in a worker's
// PromotionTracker. It carries a type-erased promote closure captured by
// the caller at fork time, so that whichever frame PromoteOldest actually
// returns promotes the task it corresponds to -- not necessarily the task
// that just called fork. See spec Open Question (a).
//
// Grounded on original_source/sync/PromotionPoint.java.
type PromotionFrame struct {
	Scope     string
	createdAt time.Time
	promoted  bool
	promote   func()

	prev, next *PromotionFrame // prev: older, next: newer
}

// NewPromotionFrame creates a detached frame for the given scope. promote
// is invoked exactly once, if and when this frame is selected by
// PromoteOldest; it must launch the deferred computation and fulfil its
// future.
func NewPromotionFrame(scope string, promote func()) *PromotionFrame {
	return &PromotionFrame{
		Scope:     scope,
		createdAt: time.Now(),
		promote:   promote,
	}
}

// IsPromoted reports whether this frame has already been promoted.
func (f *PromotionFrame) IsPromoted() bool {
	return f.promoted
}

// Age returns how long this frame has been outstanding.
func (f *PromotionFrame) Age() time.Duration {
	return time.Since(f.createdAt)
}

// Promote runs the frame's captured closure. Calling it twice is a
// contract violation.
func (f *PromotionFrame) Promote() {
	if f.promoted {
		panic(newError(ContractViolation, "promotion frame already promoted", nil))
	}
	f.promoted = true
	f.promote()
}

// PromotionTracker is the worker-local, O(1) doubly-linked age-ordered list
// of promotable frames. Head is newest, tail is oldest. Not thread-safe by
// design: each worker owns exactly one tracker.
//
// Grounded on original_source/core/PromotionTracker.java.
type PromotionTracker struct {
	head, tail *PromotionFrame
	size       int

	pushed   int64
	popped   int64
	promoted int64
}

// NewPromotionTracker creates an empty tracker.
func NewPromotionTracker() *PromotionTracker {
	return &PromotionTracker{}
}

// Push inserts frame at the head (newest). frame must be detached and
// non-nil.
func (t *PromotionTracker) Push(frame *PromotionFrame) {
	if frame == nil {
		panic(newError(ContractViolation, "cannot push a nil promotion frame", nil))
	}

	if t.head == nil {
		t.head, t.tail = frame, frame
	} else {
		frame.next = nil
		frame.prev = t.head
		t.head.next = frame
		t.head = frame
	}

	t.size++
	t.pushed++
}

// PopNewest removes and returns the head (LIFO). Returns nil if empty.
func (t *PromotionTracker) PopNewest() *PromotionFrame {
	if t.head == nil {
		return nil
	}

	popped := t.head
	t.head = t.head.prev
	if t.head == nil {
		t.tail = nil
	} else {
		t.head.next = nil
	}

	popped.prev, popped.next = nil, nil
	t.size--
	t.popped++
	return popped
}

// PromoteOldest removes and returns the tail (FIFO), the outermost
// still-sequential fork. Returns nil if empty. The frame is not marked
// promoted here: callers invoke the returned frame's Promote(), which sets
// the flag and launches it.
func (t *PromotionTracker) PromoteOldest() *PromotionFrame {
	if t.tail == nil {
		return nil
	}

	promoted := t.tail
	t.tail = t.tail.next
	if t.tail == nil {
		t.head = nil
	} else {
		t.tail.prev = nil
	}

	promoted.prev, promoted.next = nil, nil
	t.size--
	t.promoted++
	return promoted
}

// Remove detaches frame from anywhere in the list in O(1) using its own
// links. Returns whether frame was found (i.e. the tracker was non-empty;
// callers are expected to pass a frame they know belongs to this tracker).
func (t *PromotionTracker) Remove(frame *PromotionFrame) bool {
	if frame == nil || t.size == 0 {
		return false
	}

	if frame == t.head {
		t.PopNewest()
		return true
	}
	if frame == t.tail {
		t.PromoteOldest()
		return true
	}

	if frame.prev != nil {
		frame.prev.next = frame.next
	}
	if frame.next != nil {
		frame.next.prev = frame.prev
	}
	frame.prev, frame.next = nil, nil
	t.size--
	return true
}

// Clear detaches all frames and zeroes the current size (lifetime counters
// are preserved; use ResetStatistics to zero those).
func (t *PromotionTracker) Clear() {
	t.head, t.tail = nil, nil
	t.size = 0
}

// Size returns the number of frames currently tracked.
func (t *PromotionTracker) Size() int {
	return t.size
}

// IsEmpty reports whether the tracker holds no frames.
func (t *PromotionTracker) IsEmpty() bool {
	return t.size == 0
}

// OldestAge returns the age of the tail frame, or -1 if empty.
func (t *PromotionTracker) OldestAge() time.Duration {
	if t.tail == nil {
		return -1
	}
	return t.tail.Age()
}

// ResetStatistics zeroes the lifetime push/pop/promote counters.
func (t *PromotionTracker) ResetStatistics() {
	t.pushed, t.popped, t.promoted = 0, 0, 0
}

// TrackerStats is an immutable snapshot of tracker counters.
type TrackerStats struct {
	CurrentSize  int
	TotalPushed  int64
	TotalPopped  int64
	TotalPromoted int64
	OldestAge    time.Duration
}

// PromotionRate returns Promoted / (Promoted + Popped), the fraction of
// resolved frames that were actually promoted.
func (s TrackerStats) PromotionRate() float64 {
	total := s.TotalPromoted + s.TotalPopped
	if total == 0 {
		return 0
	}
	return float64(s.TotalPromoted) / float64(total)
}

// Stats returns a snapshot of the tracker's counters.
func (t *PromotionTracker) Stats() TrackerStats {
	return TrackerStats{
		CurrentSize:   t.size,
		TotalPushed:   t.pushed,
		TotalPopped:   t.popped,
		TotalPromoted: t.promoted,
		OldestAge:     t.OldestAge(),
	}
}

// Validate checks the shape invariants from spec §3/§8: size vs head/tail
// nullity, single-element null links, and a tail->head walk of exactly
// size nodes. Returns an error describing the first violation found; used
// by tests, never called on the hot path.
func (t *PromotionTracker) Validate() error {
	if t.size == 0 {
		if t.head != nil || t.tail != nil {
			return newError(ContractViolation, "size is 0 but head/tail are non-nil", nil)
		}
		return nil
	}

	if t.size == 1 {
		if t.head != t.tail {
			return newError(ContractViolation, "size is 1 but head != tail", nil)
		}
		if t.head.prev != nil || t.head.next != nil {
			return newError(ContractViolation, "single-frame tracker has non-nil links", nil)
		}
		return nil
	}

	if t.head == nil || t.tail == nil {
		return newError(ContractViolation, "size > 1 but head or tail is nil", nil)
	}
	if t.head == t.tail {
		return newError(ContractViolation, "size > 1 but head == tail", nil)
	}

	count := 0
	for cur := t.tail; cur != nil; cur = cur.next {
		count++
		if cur == t.head {
			break
		}
	}
	if count != t.size {
		return newError(ContractViolation, "tail-to-head walk length mismatch", nil)
	}
	return nil
}
