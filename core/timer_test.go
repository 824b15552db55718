package core

import (
	"testing"
	"time"
)

func TestNewTimer_RejectsNonPositivePeriod(t *testing.T) {
	if _, err := NewTimer(0); err == nil {
		t.Fatal("expected error for zero period")
	}
	if _, err := NewTimer(-time.Second); err == nil {
		t.Fatal("expected error for negative period")
	}
}

func TestTimer_ShouldPromote(t *testing.T) {
	timer, err := NewTimer(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewTimer failed: %v", err)
	}

	if timer.ShouldPromote() {
		t.Fatal("should not promote immediately after creation")
	}

	time.Sleep(25 * time.Millisecond)
	if !timer.ShouldPromote() {
		t.Fatal("expected promote after period elapsed")
	}

	timer.RecordPromotion()
	if timer.ShouldPromote() {
		t.Fatal("should not promote immediately after RecordPromotion")
	}
}

func TestTimer_Credits(t *testing.T) {
	timer, err := NewTimer(time.Second)
	if err != nil {
		t.Fatalf("NewTimer failed: %v", err)
	}

	timer.AddCredits(3)
	timer.AddCredits(4)
	if got := timer.Credits(); got != 7 {
		t.Fatalf("Credits() = %d, want 7", got)
	}

	timer.RecordPromotion()
	if got := timer.Credits(); got != 0 {
		t.Fatalf("Credits() after RecordPromotion = %d, want 0", got)
	}
}

func TestTimer_Reset(t *testing.T) {
	timer, err := NewTimer(10 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewTimer failed: %v", err)
	}

	time.Sleep(15 * time.Millisecond)
	timer.Reset()
	if timer.ShouldPromote() {
		t.Fatal("should not promote immediately after Reset")
	}
	if got := timer.Period(); got != 10*time.Millisecond {
		t.Fatalf("Period() = %s, want 10ms", got)
	}
}
