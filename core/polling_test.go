package core

import (
	"testing"
	"time"
)

func TestNewCountBasedPolling_RejectsNonPositiveInterval(t *testing.T) {
	if _, err := NewCountBasedPolling(0); err == nil {
		t.Fatal("expected error for zero interval")
	}
}

func TestCountBasedPolling_PollsEveryInterval(t *testing.T) {
	p := Every(3)

	for i := 0; i < 2; i++ {
		if p.ShouldPoll() {
			t.Fatalf("call %d: unexpected poll before interval reached", i+1)
		}
	}
	if !p.ShouldPoll() {
		t.Fatal("expected poll on the 3rd call")
	}
	p.RecordPoll()

	for i := 0; i < 2; i++ {
		if p.ShouldPoll() {
			t.Fatalf("call %d after reset: unexpected poll before interval reached", i+1)
		}
	}
	if !p.ShouldPoll() {
		t.Fatal("expected poll on the 3rd call after reset")
	}
}

func TestCountBasedPolling_Every1PollsEveryCall(t *testing.T) {
	p := Every(1)
	for i := 0; i < 5; i++ {
		if !p.ShouldPoll() {
			t.Fatalf("call %d: expected poll every call with interval 1", i+1)
		}
		p.RecordPoll()
	}
}

func TestTimeBasedPolling_PollsAfterIntervalElapsed(t *testing.T) {
	p, err := NewTimeBasedPolling(15 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewTimeBasedPolling failed: %v", err)
	}

	if p.ShouldPoll() {
		t.Fatal("should not poll immediately after creation")
	}

	time.Sleep(20 * time.Millisecond)
	if !p.ShouldPoll() {
		t.Fatal("expected poll after interval elapsed")
	}
}

func TestForHeartbeatPeriod_FloorsAtOneMicrosecond(t *testing.T) {
	p := ForHeartbeatPeriod(5 * time.Microsecond)
	if got := p.Interval(); got != time.Microsecond {
		t.Fatalf("Interval() = %s, want 1µs floor", got)
	}
}

func TestForHeartbeatPeriod_TenthOfPeriod(t *testing.T) {
	p := ForHeartbeatPeriod(100 * time.Microsecond)
	if got := p.Interval(); got != 10*time.Microsecond {
		t.Fatalf("Interval() = %s, want 10µs", got)
	}
}
