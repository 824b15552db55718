package heartbeat

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/heartbeat-sched/go-heartbeat/core"
)

// Task is a user computation producing a value of type T. Inside the
// closure body, use Fork/Join/Invoke with the supplied Runtime to create
// and reunify parallel subtasks.
//
// A Task replaces the source's HeartbeatTask subclass with a plain
// closure, per spec §9's "Subclassing for tasks" design note: "the user
// API is a capability {run() -> T} plus access to fork/join from within".
type Task[T any] func(rt *Runtime) (T, error)

// Runtime is the worker-local handle a running Task uses to fork
// children and join their results. It bundles the context.Context used
// for cancellation-aware waits with the worker's core.WorkerContext.
// Never share a Runtime across goroutines and never hand a parent's
// Runtime to a promoted child -- each promoted worker gets its own,
// built from Executor.newWorkerContext (see spec §5).
type Runtime struct {
	ctx   context.Context
	wctx  *core.WorkerContext
	exec  *Executor
	scope string
}

// Context returns the underlying context.Context, honored by Join for
// cancellation.
func (rt *Runtime) Context() context.Context {
	return rt.ctx
}

// Scope returns the name of the worker currently running this task.
func (rt *Runtime) Scope() string {
	return rt.scope
}

// future is the one-shot completion channel backing a promoted child.
// Exactly one writer calls complete; any number of readers may call wait.
type future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *future[T] {
	return &future[T]{done: make(chan struct{})}
}

func (f *future[T]) complete(val T, err error) {
	f.val, f.err = val, err
	close(f.done)
}

func (f *future[T]) wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, core.NewError(core.Interrupted, "join wait cancelled", ctx.Err())
	}
}

// Handle is the token returned by Fork, representing a still-sequential
// or already-promoted child. Pass it to Join to obtain its result.
//
// Grounded on original_source/task/HeartbeatTask.java's fork/join pair
// (promotedFuture field), split from Task itself since Go has no
// subclass to carry per-instance promotion state on.
type Handle[T any] struct {
	frame     *core.PromotionFrame
	fut       *future[T]
	runInline func() (T, error)
	joined    bool
}

// Fork declares child for possibly-parallel execution. It always stays
// sequential at first: fork registers a promotable frame on rt's tracker,
// then checks the heartbeat. If the heartbeat fires, the tracker's
// current oldest frame -- not necessarily this one -- is promoted to a
// fresh goroutine with a freshly initialized Runtime (see spec Open
// Question (a): the frame carries its own promote closure, so whichever
// frame is actually returned by PromoteOldest promotes the task it
// belongs to).
//
// Fork panics with a ContractViolation *core.Error if rt has no
// installed WorkerContext (i.e. rt was not obtained from Submit,
// SubmitAsync, or another Fork/Invoke call).
func Fork[T any](rt *Runtime, child Task[T]) *Handle[T] {
	if rt == nil || rt.wctx == nil {
		panic(core.NewError(core.ContractViolation, "fork called without an installed worker context", nil))
	}

	fut := newFuture[T]()
	h := &Handle[T]{fut: fut}
	h.runInline = func() (T, error) {
		return runTask(rt, child)
	}

	promote := func() {
		exec := rt.exec
		exec.spawnPromoted(rt.ctx, rt.scope, func(promotedRt *Runtime) {
			val, err := runTask(promotedRt, child)
			fut.complete(val, err)
		})
	}

	frame := core.NewPromotionFrame(rt.scope, promote)
	h.frame = frame
	rt.wctx.Tracker().Push(frame)

	if rt.wctx.CheckHeartbeat() {
		if oldest := rt.wctx.Tracker().PromoteOldest(); oldest != nil {
			oldest.Promote()
			rt.wctx.RecordPromotion()
			rt.exec.recordPromotion(rt.wctx.Name)
			if rt.exec.cfg.EnableDebugLogging {
				rt.exec.logger().Debug("heartbeat promoted oldest fork",
					core.F("worker", rt.wctx.Name), core.F("frame_scope", oldest.Scope))
			}
		}
	}

	return h
}

// Join waits for a forked child and returns its result. If the child was
// promoted, Join blocks on its future (cancellation-aware via rt's
// context); otherwise it pops the child's frame from rt's tracker -- it
// must be at the head in well-nested programs -- and runs it inline on
// the calling worker.
//
// Join panics with a ContractViolation *core.Error if h was already
// joined, or if the popped frame does not match h's own frame (a
// well-nestedness violation: a fork/join pair was not properly nested).
func Join[T any](rt *Runtime, h *Handle[T]) (T, error) {
	if h.joined {
		panic(core.NewError(core.ContractViolation, "handle already joined", nil))
	}
	h.joined = true

	if h.frame.IsPromoted() {
		return h.fut.wait(rt.ctx)
	}

	popped := rt.wctx.Tracker().PopNewest()
	if popped != h.frame {
		panic(core.NewError(core.ContractViolation, "join found a different frame at tracker head; fork/join calls are not well-nested", nil))
	}

	return h.runInline()
}

// Invoke is join(fork(child)): fork child and immediately join it.
func Invoke[T any](rt *Runtime, child Task[T]) (T, error) {
	return Join(rt, Fork(rt, child))
}

// runTask executes child, converting a panic into a TaskFailure error so
// a promoted goroutine's panic surfaces at the corresponding Join rather
// than crashing the process.
func runTask[T any](rt *Runtime, child Task[T]) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			err = core.NewError(core.TaskFailure, fmt.Sprintf("task panicked: %v", r), asError(r))
			rt.exec.logger().Error("task panic", core.F("scope", rt.scope), core.F("panic", r))
			rt.exec.metrics().RecordTaskFailure(rt.scope, core.TaskFailure)
			rt.exec.panicHandler().HandlePanic(rt.scope, r, stack)
		}
	}()
	return child(rt)
}

func asError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("%v", v)
}
