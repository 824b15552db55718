package core

import (
	"testing"
	"time"
)

func newTestContext(t *testing.T, period time.Duration, pollEvery int) *WorkerContext {
	t.Helper()
	timer, err := NewTimer(period)
	if err != nil {
		t.Fatalf("NewTimer failed: %v", err)
	}
	return NewWorkerContext("worker-test", timer, Every(pollEvery))
}

func TestWorkerContext_CheckHeartbeatPromotesAfterPeriod(t *testing.T) {
	ctx := newTestContext(t, 10*time.Millisecond, 1)

	if ctx.CheckHeartbeat() {
		t.Fatal("should not promote immediately after creation")
	}

	time.Sleep(15 * time.Millisecond)
	if !ctx.CheckHeartbeat() {
		t.Fatal("expected promotion after period elapsed")
	}

	ctx.RecordPromotion()
	if ctx.CheckHeartbeat() {
		t.Fatal("should not promote immediately after RecordPromotion")
	}
}

func TestWorkerContext_CountBasedPollingGatesTimerConsultation(t *testing.T) {
	ctx := newTestContext(t, time.Nanosecond, 3)

	// The timer would say "promote" on every call (period is 1ns), but the
	// count-based strategy only lets every 3rd operation actually consult
	// it.
	if ctx.CheckHeartbeat() {
		t.Fatal("operation 1: should not poll yet")
	}
	if ctx.CheckHeartbeat() {
		t.Fatal("operation 2: should not poll yet")
	}
	if !ctx.CheckHeartbeat() {
		t.Fatal("operation 3: expected a poll and a promotion")
	}

	stats := ctx.Stats()
	if stats.Operations != 3 {
		t.Fatalf("Operations = %d, want 3", stats.Operations)
	}
	if stats.Polls != 1 {
		t.Fatalf("Polls = %d, want 1", stats.Polls)
	}
}

func TestWorkerContext_Reset(t *testing.T) {
	ctx := newTestContext(t, time.Nanosecond, 1)

	ctx.CheckHeartbeat()
	ctx.RecordPromotion()

	ctx.Reset()
	stats := ctx.Stats()
	if stats.Operations != 0 || stats.Polls != 0 || stats.Promotions != 0 {
		t.Fatalf("Stats() after Reset = %+v, want all zero", stats)
	}
}

func TestContextStats_Rates(t *testing.T) {
	stats := ContextStats{Operations: 100, Polls: 10, Promotions: 2}
	if got := stats.PollingRate(); got != 0.1 {
		t.Fatalf("PollingRate() = %v, want 0.1", got)
	}
	if got := stats.PromotionRate(); got != 0.2 {
		t.Fatalf("PromotionRate() = %v, want 0.2", got)
	}

	empty := ContextStats{}
	if got := empty.PollingRate(); got != 0 {
		t.Fatalf("PollingRate() on empty stats = %v, want 0", got)
	}
	if got := empty.PromotionRate(); got != 0 {
		t.Fatalf("PromotionRate() on empty stats = %v, want 0", got)
	}
}
