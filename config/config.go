// Package config provides the external, immutable configuration surface
// for the Fork/Join Executor -- the "configuration builder" collaborator
// spec.md §1 explicitly treats as external plumbing, with its contract
// captured in §6.
package config

import (
	"runtime"
	"time"

	"github.com/heartbeat-sched/go-heartbeat/core"
)

// ExecutorConfig is the immutable, validated bundle of tuning parameters
// for a Fork/Join Executor. Build it with NewBuilder().
//
// Grounded on original_source/core/HeartbeatConfig.java, extended per
// SPEC_FULL.md §5 with WorkerPoolSize, EnableDebugLogging, Logger,
// Metrics, HistoryCapacity, PanicHandler, and RejectedTaskHandler.
type ExecutorConfig struct {
	HeartbeatPeriod time.Duration
	PromotionCost   time.Duration
	WorkerPoolSize  int

	// NewPolling constructs a fresh PollingStrategy for each worker
	// context. A polling strategy carries mutable per-worker state, so
	// every context -- including every promoted worker's -- must get
	// its own instance rather than share one across workers.
	NewPolling func() core.PollingStrategy

	EnableStatistics   bool
	EnableDebugLogging bool
	HistoryCapacity    int

	Logger  core.Logger
	Metrics core.Metrics

	// PanicHandler is invoked whenever a task's body panics, after the
	// panic has been recovered and converted into a TaskFailure error.
	PanicHandler core.PanicHandler
	// RejectedTaskHandler is invoked whenever Submit/SubmitAsync reject a
	// top-level submission (e.g. after Shutdown).
	RejectedTaskHandler core.RejectedTaskHandler
}

// ExpectedOverheadFraction returns τ/N, the fraction of sequential work
// spent on promotion overhead per spec §1/§6.
func (c *ExecutorConfig) ExpectedOverheadFraction() float64 {
	return float64(c.PromotionCost) / float64(c.HeartbeatPeriod)
}

// ExpectedOverheadPercent returns ExpectedOverheadFraction as a percentage.
func (c *ExecutorConfig) ExpectedOverheadPercent() float64 {
	return c.ExpectedOverheadFraction() * 100.0
}

// SpanInflation returns 1 + N/τ, the upper bound on parallel span
// inflation per spec §1/GLOSSARY.
func (c *ExecutorConfig) SpanInflation() float64 {
	return 1.0 + float64(c.HeartbeatPeriod)/float64(c.PromotionCost)
}

func defaultWorkerPoolSize() int {
	return runtime.NumCPU()
}
