package heartbeat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/heartbeat-sched/go-heartbeat/config"
	"github.com/heartbeat-sched/go-heartbeat/core"
)

func TestSubmitAsync_GetReturnsResult(t *testing.T) {
	ex := testExecutor(t)

	var task Task[int]
	task = func(rt *Runtime) (int, error) {
		return fib(rt, 15)
	}

	fut := SubmitAsync(ex, task)
	got, err := fut.Get()
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != 610 {
		t.Fatalf("fib(15) = %d, want 610", got)
	}
}

func TestSubmitAsync_WaitRespectsContextCancellation(t *testing.T) {
	ex := testExecutor(t)

	block := make(chan struct{})
	var task Task[int]
	task = func(rt *Runtime) (int, error) {
		<-block
		return 1, nil
	}

	fut := SubmitAsync(ex, task)
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := fut.Wait(ctx)
	if err == nil {
		t.Fatal("expected Wait to time out while task is still blocked")
	}
	kind, ok := core.KindOf(err)
	if !ok || kind != core.Interrupted {
		t.Fatalf("KindOf(err) = (%v, %v), want (Interrupted, true)", kind, ok)
	}
}

func TestExecutor_StatsTracksSubmissions(t *testing.T) {
	ex := testExecutor(t)

	var task Task[int]
	task = func(rt *Runtime) (int, error) { return 1, nil }

	for i := 0; i < 5; i++ {
		if _, err := Submit(ex, task); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	stats := ex.Stats()
	if stats.TasksSubmitted != 5 {
		t.Fatalf("TasksSubmitted = %d, want 5", stats.TasksSubmitted)
	}
	if stats.Shutdown {
		t.Fatal("expected Shutdown = false before Shutdown() is called")
	}
}

func TestExecutor_ShutdownRejectsFurtherSubmissions(t *testing.T) {
	cfg, err := config.NewBuilder().TargetOverheadPercent(5).Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	ex := NewExecutor(cfg)
	ex.Shutdown()

	var task Task[int]
	task = func(rt *Runtime) (int, error) { return 1, nil }

	_, err = Submit(ex, task)
	if err == nil {
		t.Fatal("expected Submit to reject work after Shutdown")
	}
	kind, ok := core.KindOf(err)
	if !ok || kind != core.ContractViolation {
		t.Fatalf("KindOf(err) = (%v, %v), want (ContractViolation, true)", kind, ok)
	}
}

func TestExecutor_AwaitTerminationWaitsForPromotedWork(t *testing.T) {
	ex := testExecutor(t)

	release := make(chan struct{})
	var outer Task[int]
	outer = func(rt *Runtime) (int, error) {
		var child Task[int]
		child = func(rt *Runtime) (int, error) {
			<-release
			return 99, nil
		}
		// Outlast the 30µs heartbeat period so the fork below is promoted.
		time.Sleep(time.Millisecond)
		h := Fork(rt, child)
		return Join(rt, h)
	}

	fut := SubmitAsync(ex, outer)
	close(release)

	if !ex.AwaitTermination(time.Second) {
		t.Fatal("expected AwaitTermination to observe quiescence within timeout")
	}

	got, err := fut.Get()
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != 99 {
		t.Fatalf("result = %d, want 99", got)
	}
}

type capturingPanicHandler struct {
	mu    sync.Mutex
	scope string
	value any
}

func (h *capturingPanicHandler) HandlePanic(scope string, panicInfo any, stackTrace []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scope, h.value = scope, panicInfo
	if len(stackTrace) == 0 {
		panic("expected a non-empty stack trace")
	}
}

func (h *capturingPanicHandler) captured() (string, any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scope, h.value
}

func TestSubmit_PanicInvokesConfiguredPanicHandler(t *testing.T) {
	handler := &capturingPanicHandler{}
	cfg, err := config.NewBuilder().TargetOverheadPercent(5).PanicHandler(handler).Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	ex := NewExecutor(cfg)
	defer ex.Shutdown()

	var task Task[int]
	task = func(rt *Runtime) (int, error) { panic("computation exploded") }

	if _, err := Submit(ex, task); err == nil {
		t.Fatal("expected an error from the panicking task")
	}

	scope, value := handler.captured()
	if scope != "root" {
		t.Fatalf("scope = %q, want %q", scope, "root")
	}
	if value != "computation exploded" {
		t.Fatalf("panic value = %v, want %q", value, "computation exploded")
	}
}

type capturingRejectedTaskHandler struct {
	mu     sync.Mutex
	reason string
}

func (h *capturingRejectedTaskHandler) HandleRejectedTask(reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reason = reason
}

func (h *capturingRejectedTaskHandler) captured() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reason
}

func TestSubmit_ShutdownInvokesConfiguredRejectedTaskHandler(t *testing.T) {
	handler := &capturingRejectedTaskHandler{}
	cfg, err := config.NewBuilder().TargetOverheadPercent(5).RejectedTaskHandler(handler).Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	ex := NewExecutor(cfg)
	ex.Shutdown()

	var task Task[int]
	task = func(rt *Runtime) (int, error) { return 1, nil }

	if _, err := Submit(ex, task); err == nil {
		t.Fatal("expected Submit to reject work after Shutdown")
	}
	if got := handler.captured(); got != "shutdown" {
		t.Fatalf("reason = %q, want %q", got, "shutdown")
	}
}

func TestExecutor_HistoryRecordsCompletedTasks(t *testing.T) {
	ex := testExecutor(t)

	var task Task[int]
	task = func(rt *Runtime) (int, error) { return 1, nil }

	if _, err := Submit(ex, task); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	last, ok := ex.History().Last()
	if !ok {
		t.Fatal("expected a history entry after Submit")
	}
	if last.Scope != "root" {
		t.Fatalf("Scope = %q, want \"root\"", last.Scope)
	}
	if last.Promoted {
		t.Fatal("top-level submission should not be marked Promoted")
	}
}
