package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_RunsSubmittedJobs(t *testing.T) {
	p := NewWorkerPool(4, nil)
	p.Start(context.Background())
	defer p.Stop()

	const n = 50
	var count int64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		p.Submit(func() {
			atomic.AddInt64(&count, 1)
			wg.Done()
		})
	}
	wg.Wait()

	if got := atomic.LoadInt64(&count); got != n {
		t.Fatalf("count = %d, want %d", got, n)
	}
}

func TestWorkerPool_ZeroOrNegativeWorkersDefaultsToOne(t *testing.T) {
	p := NewWorkerPool(0, nil)
	if p.workers != 1 {
		t.Fatalf("workers = %d, want 1", p.workers)
	}
}

func TestWorkerPool_StartIsIdempotent(t *testing.T) {
	p := NewWorkerPool(2, nil)
	p.Start(context.Background())
	p.Start(context.Background())
	defer p.Stop()

	if !p.IsRunning() {
		t.Fatal("expected pool to be running")
	}
}

func TestWorkerPool_StopWaitsForInFlightJobs(t *testing.T) {
	p := NewWorkerPool(1, nil)
	p.Start(context.Background())

	started := make(chan struct{})
	finished := make(chan struct{})
	p.Submit(func() {
		close(started)
		time.Sleep(20 * time.Millisecond)
		close(finished)
	})

	<-started
	p.Stop()

	select {
	case <-finished:
	default:
		t.Fatal("expected in-flight job to finish before Stop returns")
	}
}

func TestWorkerPool_PanicInJobDoesNotKillWorker(t *testing.T) {
	p := NewWorkerPool(1, nil)
	p.Start(context.Background())
	defer p.Stop()

	p.Submit(func() { panic("boom") })

	done := make(chan struct{})
	p.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not recover from panic and process the next job")
	}
}

func TestWorkerPool_Stats(t *testing.T) {
	p := NewWorkerPool(3, nil)
	stats := p.Stats()
	if stats.Workers != 3 {
		t.Fatalf("Workers = %d, want 3", stats.Workers)
	}
	if stats.Running {
		t.Fatal("expected Running = false before Start")
	}

	p.Start(context.Background())
	defer p.Stop()
	if !p.Stats().Running {
		t.Fatal("expected Running = true after Start")
	}
}
