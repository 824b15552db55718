package pool

import (
	"context"
	"sync"

	"github.com/heartbeat-sched/go-heartbeat/core"
)

// WorkerPool is a bounded set of goroutines pulling jobs from a FIFO
// queue. It backs only top-level task admission for the Fork/Join
// Executor (Executor.Submit/SubmitAsync); promoted children bypass it
// entirely and get ad hoc goroutines, per spec §5's "worker pool capable
// of running many more tasks than platform threads" -- WorkerPool bounds
// admission concurrency, promoted goroutines are the actual lightweight
// workers.
//
// Grounded on the teacher's GoroutineThreadPool (pool.go), stripped of
// its global-singleton helpers, delayed-task support, and priority
// scheduler: none apply to a pool that only exists to admit top-level
// submissions.
type WorkerPool struct {
	workers int
	queue   *fifoQueue

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	notify chan struct{}

	runningMu sync.Mutex
	running   bool

	active int64
	logger core.Logger
}

// NewWorkerPool creates a pool with the given worker count. workers <= 0
// is treated as 1.
func NewWorkerPool(workers int, logger core.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = core.NewNoOpLogger()
	}
	return &WorkerPool{
		workers: workers,
		queue:   newFIFOQueue(),
		notify:  make(chan struct{}, workers),
		logger:  logger,
	}
}

// Start launches the worker goroutines. Repeated calls are no-ops.
func (p *WorkerPool) Start(ctx context.Context) {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()

	if p.running {
		return
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.workerLoop(i)
	}
}

// Stop cancels running workers and waits for them to exit. A worker only
// checks for cancellation once it finds the queue empty, so jobs already
// queued are normally still run before Stop returns; a job queued while
// every worker is idle can be left unrun if cancellation wins the race.
func (p *WorkerPool) Stop() {
	p.runningMu.Lock()
	if !p.running {
		p.runningMu.Unlock()
		return
	}
	cancel := p.cancel
	p.runningMu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()

	p.runningMu.Lock()
	p.running = false
	p.runningMu.Unlock()
}

// Submit enqueues a job for execution by some worker. Safe to call
// concurrently.
func (p *WorkerPool) Submit(j func()) {
	p.queue.push(j)
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

func (p *WorkerPool) workerLoop(id int) {
	defer p.wg.Done()

	for {
		j, ok := p.queue.pop()
		if !ok {
			select {
			case <-p.ctx.Done():
				return
			case <-p.notify:
				continue
			}
		}

		p.runJob(id, j)
	}
}

func (p *WorkerPool) runJob(id int, j job) {
	p.runningMu.Lock()
	p.active++
	p.runningMu.Unlock()

	defer func() {
		p.runningMu.Lock()
		p.active--
		p.runningMu.Unlock()

		if r := recover(); r != nil {
			p.logger.Error("worker panic", core.F("worker", id), core.F("panic", r))
		}
	}()

	j()
}

// QueuedCount returns the number of jobs waiting to start.
func (p *WorkerPool) QueuedCount() int {
	return p.queue.len()
}

// ActiveCount returns the number of jobs currently executing.
func (p *WorkerPool) ActiveCount() int64 {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()
	return p.active
}

// IsRunning reports whether Start has been called without a matching Stop.
func (p *WorkerPool) IsRunning() bool {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()
	return p.running
}

// Stats returns a snapshot of the pool's state for the Prometheus
// snapshot poller.
func (p *WorkerPool) Stats() core.PoolStats {
	return core.PoolStats{
		Workers: p.workers,
		Queued:  p.QueuedCount(),
		Active:  int(p.ActiveCount()),
		Running: p.IsRunning(),
	}
}
