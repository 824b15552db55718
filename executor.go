package heartbeat

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/heartbeat-sched/go-heartbeat/config"
	"github.com/heartbeat-sched/go-heartbeat/core"
	"github.com/heartbeat-sched/go-heartbeat/pool"
)

// Executor is the Fork/Join Executor (component E): it owns the worker
// pool, ties the Timer/PollingStrategy/PromotionTracker triple together
// through fresh per-worker contexts, and exposes the public submission
// surface.
//
// Grounded on original_source/executor/VirtualThreadExecutor.java. The
// Java source's per-task virtual-thread model (Executors.
// newVirtualThreadPerTaskExecutor()) maps onto Go as: a bounded
// pool.WorkerPool for top-level admission (Submit/SubmitAsync), plus
// unbounded ad hoc goroutines for every promoted child, matching spec §5
// ("worker pool capable of running many more tasks than platform
// threads").
type Executor struct {
	cfg *config.ExecutorConfig

	workers *pool.WorkerPool
	history *core.History

	tasksSubmitted int64
	promotions     int64
	active         int64

	promotedSeq int64

	shutdownMu sync.Mutex
	shutdown   bool

	rootCtx context.Context
}

// NewExecutor builds an Executor from a validated ExecutorConfig and
// starts its top-level admission pool.
func NewExecutor(cfg *config.ExecutorConfig) *Executor {
	ctx := context.Background()
	ex := &Executor{
		cfg:     cfg,
		workers: pool.NewWorkerPool(cfg.WorkerPoolSize, cfg.Logger),
		history: core.NewHistory(cfg.HistoryCapacity),
		rootCtx: ctx,
	}
	ex.workers.Start(ctx)
	return ex
}

func (ex *Executor) logger() core.Logger {
	return ex.cfg.Logger
}

func (ex *Executor) metrics() core.Metrics {
	return ex.cfg.Metrics
}

func (ex *Executor) panicHandler() core.PanicHandler {
	return ex.cfg.PanicHandler
}

func (ex *Executor) rejectedTaskHandler() core.RejectedTaskHandler {
	return ex.cfg.RejectedTaskHandler
}

func (ex *Executor) newWorkerContext(name string) *core.WorkerContext {
	timer, err := core.NewTimer(ex.cfg.HeartbeatPeriod)
	if err != nil {
		// cfg was already validated at Build() time; a failure here
		// means the config was mutated after construction.
		panic(err)
	}
	return core.NewWorkerContext(name, timer, ex.cfg.NewPolling())
}

func (ex *Executor) newRuntime(ctx context.Context, scope string) *Runtime {
	return &Runtime{
		ctx:   ctx,
		wctx:  ex.newWorkerContext(scope),
		exec:  ex,
		scope: scope,
	}
}

func (ex *Executor) recordPromotion(workerName string) {
	atomic.AddInt64(&ex.promotions, 1)
	ex.metrics().RecordPromotion(workerName)
}

// spawnPromoted launches a brand-new goroutine running fn against a
// freshly initialized Runtime derived from the shared immutable Config --
// never the promoting worker's own Runtime. Inheriting the parent's
// context would alias its timer and tracker and reset its polling
// counter across unrelated workers (spec §5).
func (ex *Executor) spawnPromoted(ctx context.Context, parentScope string, fn func(rt *Runtime)) {
	seq := atomic.AddInt64(&ex.promotedSeq, 1)
	scope := fmt.Sprintf("%s/promoted-%d", parentScope, seq)

	atomic.AddInt64(&ex.active, 1)
	go func() {
		defer atomic.AddInt64(&ex.active, -1)

		started := time.Now()
		rt := ex.newRuntime(ctx, scope)
		fn(rt)

		ex.history.Add(core.ExecutionRecord{
			TaskID:     core.NewTaskID(),
			Scope:      scope,
			Promoted:   true,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Duration:   time.Since(started),
		})
		ex.metrics().RecordTaskDuration(scope, true, time.Since(started))
	}()
}

func (ex *Executor) isShutdown() bool {
	ex.shutdownMu.Lock()
	defer ex.shutdownMu.Unlock()
	return ex.shutdown
}

// Submit runs task synchronously on the calling goroutine after
// installing a fresh worker context, and returns its result or the
// preserved task error.
func Submit[T any](ex *Executor, task Task[T]) (T, error) {
	var zero T
	if ex.isShutdown() {
		ex.metrics().RecordTaskRejected("shutdown")
		ex.rejectedTaskHandler().HandleRejectedTask("shutdown")
		return zero, core.NewError(core.ContractViolation, "executor has been shut down", nil)
	}

	atomic.AddInt64(&ex.tasksSubmitted, 1)
	atomic.AddInt64(&ex.active, 1)
	defer atomic.AddInt64(&ex.active, -1)

	started := time.Now()
	rt := ex.newRuntime(ex.rootCtx, "root")
	val, err := runTask(rt, task)

	ex.history.Add(core.ExecutionRecord{
		TaskID:     core.NewTaskID(),
		Scope:      "root",
		Promoted:   false,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Duration:   time.Since(started),
		Failed:     err != nil,
	})
	ex.metrics().RecordTaskDuration("root", false, time.Since(started))

	return val, err
}

// Future is returned by SubmitAsync; call Get or Wait to retrieve the
// eventual result.
type Future[T any] struct {
	fut *future[T]
}

// Get blocks until the task completes and returns its result.
func (f *Future[T]) Get() (T, error) {
	return f.fut.wait(context.Background())
}

// Wait blocks until the task completes or ctx is done, whichever comes
// first.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	return f.fut.wait(ctx)
}

// SubmitAsync dispatches task onto the bounded top-level admission pool
// and returns immediately with a Future. Identical semantics to Submit
// otherwise.
func SubmitAsync[T any](ex *Executor, task Task[T]) *Future[T] {
	fut := newFuture[T]()
	if ex.isShutdown() {
		ex.metrics().RecordTaskRejected("shutdown")
		ex.rejectedTaskHandler().HandleRejectedTask("shutdown")
		var zero T
		fut.complete(zero, core.NewError(core.ContractViolation, "executor has been shut down", nil))
		return &Future[T]{fut: fut}
	}

	atomic.AddInt64(&ex.tasksSubmitted, 1)

	ex.workers.Submit(func() {
		atomic.AddInt64(&ex.active, 1)
		defer atomic.AddInt64(&ex.active, -1)

		started := time.Now()
		rt := ex.newRuntime(ex.rootCtx, "root")
		val, err := runTask(rt, task)
		fut.complete(val, err)

		ex.history.Add(core.ExecutionRecord{
			TaskID:     core.NewTaskID(),
			Scope:      "root",
			Promoted:   false,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Duration:   time.Since(started),
			Failed:     err != nil,
		})
		ex.metrics().RecordTaskDuration("root", false, time.Since(started))
	})

	return &Future[T]{fut: fut}
}

// Shutdown marks the executor closed: further Submit/SubmitAsync calls
// are rejected. In-flight tasks, including promoted goroutines, run to
// completion.
func (ex *Executor) Shutdown() {
	ex.shutdownMu.Lock()
	if ex.shutdown {
		ex.shutdownMu.Unlock()
		return
	}
	ex.shutdown = true
	ex.shutdownMu.Unlock()

	ex.workers.Stop()
}

// AwaitTermination waits up to timeout for all in-flight work -- pool
// workers and promoted goroutines -- to finish, returning whether it
// quiesced in time.
func (ex *Executor) AwaitTermination(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if atomic.LoadInt64(&ex.active) == 0 && ex.workers.ActiveCount() == 0 && ex.workers.QueuedCount() == 0 {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return atomic.LoadInt64(&ex.active) == 0 && ex.workers.ActiveCount() == 0 && ex.workers.QueuedCount() == 0
}

// History returns the execution history ring buffer for this executor.
func (ex *Executor) History() *core.History {
	return ex.history
}

// Stats returns a snapshot of this executor's lifetime counters.
func (ex *Executor) Stats() core.ExecutorStats {
	return core.ExecutorStats{
		TasksSubmitted: atomic.LoadInt64(&ex.tasksSubmitted),
		Promotions:     atomic.LoadInt64(&ex.promotions),
		Active:         atomic.LoadInt64(&ex.active),
		Shutdown:       ex.isShutdown(),
	}
}
