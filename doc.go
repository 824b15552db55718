// Package heartbeat implements Heartbeat Scheduling: a runtime scheduling
// discipline for nested fork/join parallelism that converts latent
// parallel opportunities into actual parallel execution only when the
// amortized promotion cost is worthwhile.
//
// # Quick Start
//
// Build a config and an executor, then submit a fork/join task:
//
//	cfg, err := config.NewBuilder().TargetOverheadPercent(5).Build()
//	if err != nil {
//		log.Fatal(err)
//	}
//	exec := heartbeat.NewExecutor(cfg)
//	defer exec.Shutdown()
//
//	var fib func(rt *heartbeat.Runtime, n int) (int, error)
//	fib = func(rt *heartbeat.Runtime, n int) (int, error) {
//		if n < 2 {
//			return n, nil
//		}
//		left := heartbeat.Fork(rt, func(rt *heartbeat.Runtime) (int, error) {
//			return fib(rt, n-1)
//		})
//		right, err := fib(rt, n-2)
//		if err != nil {
//			return 0, err
//		}
//		l, err := heartbeat.Join(rt, left)
//		if err != nil {
//			return 0, err
//		}
//		return l + right, nil
//	}
//	result, err := heartbeat.Submit(exec, func(rt *heartbeat.Runtime) (int, error) {
//		return fib(rt, 20)
//	})
//
// # Key Concepts
//
// Task[T] is a closure computing a T, receiving a *Runtime it uses to
// fork children and join their results. Fork stays sequential by
// default; when a worker's heartbeat fires, the oldest outstanding fork
// is promoted to an independent goroutine. Join either awaits the
// promoted goroutine's result or, if the fork never got promoted, runs
// the child inline.
//
// A Runtime is worker-local: never share one across goroutines, never
// pass a parent's Runtime into a promoted child (see core.WorkerContext).
//
// # Package Layout
//
// core holds the Timer, PollingStrategy, PromotionTracker, and
// WorkerContext (components A-D). This package holds Task, Runtime, and
// Executor (component E). config and calibration are external
// collaborators: building a validated ExecutorConfig and empirically
// measuring the promotion cost τ. pool is the bounded goroutine pool
// backing top-level submission.
package heartbeat
