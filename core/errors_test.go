package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_IsMatchesOnKindAlone(t *testing.T) {
	err := NewError(TaskFailure, "boom", nil)
	if !errors.Is(err, &Error{Kind: TaskFailure}) {
		t.Fatal("expected errors.Is to match on Kind")
	}
	if errors.Is(err, &Error{Kind: InvalidConfig}) {
		t.Fatal("expected errors.Is to not match a different Kind")
	}
}

func TestError_UnwrapExposesCause(t *testing.T) {
	cause := fmt.Errorf("original failure")
	err := NewError(TaskFailure, "task panicked", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}
}

func TestKindOf(t *testing.T) {
	err := NewError(ContractViolation, "bad state", nil)
	kind, ok := KindOf(err)
	if !ok || kind != ContractViolation {
		t.Fatalf("KindOf() = (%v, %v), want (ContractViolation, true)", kind, ok)
	}

	_, ok = KindOf(fmt.Errorf("plain error"))
	if ok {
		t.Fatal("expected KindOf to report false for a non-scheduler error")
	}
}

func TestKindOf_UnwrapsWrappedError(t *testing.T) {
	inner := NewError(Interrupted, "cancelled", nil)
	wrapped := fmt.Errorf("during join: %w", inner)

	kind, ok := KindOf(wrapped)
	if !ok || kind != Interrupted {
		t.Fatalf("KindOf() = (%v, %v), want (Interrupted, true)", kind, ok)
	}
}
