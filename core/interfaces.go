package core

import (
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a task's compute() panics during execution.
// Implementations should be thread-safe; they may be called concurrently
// from many promoted workers.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// scope identifies the task (its ContinuationScope-derived name),
	// panicInfo is the recovered panic value, stackTrace is captured at
	// the time of panic.
	HandlePanic(scope string, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler prints panics and their stack traces to stdout with
// fmt.Printf.
type DefaultPanicHandler struct{}

func (h *DefaultPanicHandler) HandlePanic(scope string, panicInfo any, stackTrace []byte) {
	fmt.Printf("[scope %s] panic: %v\nstack trace:\n%s", scope, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics collects heartbeat scheduling metrics. Implementations can send
// metrics to monitoring systems (Prometheus, StatsD, etc). All methods
// must be non-blocking and fast; a nil Metrics is never passed, NilMetrics
// is used instead.
type Metrics interface {
	// RecordTaskDuration records how long a top-level or promoted task
	// took to execute.
	RecordTaskDuration(scope string, promoted bool, duration time.Duration)
	// RecordTaskFailure records that a task's compute() returned an
	// error or panicked.
	RecordTaskFailure(scope string, kind Kind)
	// RecordPoll records one timer consultation on a worker.
	RecordPoll(workerName string)
	// RecordPromotion records one successful promotion on a worker.
	RecordPromotion(workerName string)
	// RecordTrackerSize records the current promotion tracker size for a
	// worker, typically sampled by a periodic poller rather than on the
	// hot path.
	RecordTrackerSize(workerName string, size int)
	// RecordQueueDepth records the depth of the bounded top-level
	// admission queue.
	RecordQueueDepth(depth int)
	// RecordTaskRejected records that a task was rejected (e.g. during
	// shutdown).
	RecordTaskRejected(reason string)
}

// NilMetrics is a no-op Metrics implementation, the default when no
// exporter is configured.
type NilMetrics struct{}

func (m *NilMetrics) RecordTaskDuration(scope string, promoted bool, duration time.Duration) {}
func (m *NilMetrics) RecordTaskFailure(scope string, kind Kind)                              {}
func (m *NilMetrics) RecordPoll(workerName string)                                           {}
func (m *NilMetrics) RecordPromotion(workerName string)                                      {}
func (m *NilMetrics) RecordTrackerSize(workerName string, size int)                          {}
func (m *NilMetrics) RecordQueueDepth(depth int)                                              {}
func (m *NilMetrics) RecordTaskRejected(reason string)                                        {}

// =============================================================================
// RejectedTaskHandler: Interface for handling rejected tasks
// =============================================================================

// RejectedTaskHandler is called when the bounded worker pool rejects a
// top-level submission (e.g. after shutdown).
type RejectedTaskHandler interface {
	HandleRejectedTask(reason string)
}

// DefaultRejectedTaskHandler logs rejected tasks to stdout.
type DefaultRejectedTaskHandler struct{}

func (h *DefaultRejectedTaskHandler) HandleRejectedTask(reason string) {
	fmt.Printf("task rejected: %s", reason)
}
