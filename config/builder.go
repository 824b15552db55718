package config

import (
	"fmt"
	"time"

	"github.com/heartbeat-sched/go-heartbeat/core"
)

// Default heartbeat period (30µs) and promotion cost (1.5µs), the typical
// values from the paper, carried from HeartbeatConfig.Builder's field
// defaults in original_source/core/HeartbeatConfig.java.
const (
	defaultHeartbeatPeriod = 30 * time.Microsecond
	defaultPromotionCost   = 1500 * time.Nanosecond
)

// Builder constructs a validated ExecutorConfig with sensible defaults,
// mirroring the teacher's DefaultTaskSchedulerConfig / builder-with-
// defaults convention in core/interfaces.go.
type Builder struct {
	heartbeatPeriod time.Duration
	promotionCost   time.Duration
	workerPoolSize  int
	newPolling      func() core.PollingStrategy

	enableStatistics   bool
	enableDebugLogging bool
	historyCapacity    int

	logger  core.Logger
	metrics core.Metrics

	panicHandler        core.PanicHandler
	rejectedTaskHandler core.RejectedTaskHandler

	overheadPercentSet bool
	overheadPercent    float64
}

// NewBuilder returns a Builder pre-populated with paper-typical defaults:
// N=30µs, τ=1.5µs, one worker per CPU, count-based polling every call,
// stats and debug logging off.
func NewBuilder() *Builder {
	return &Builder{
		heartbeatPeriod: defaultHeartbeatPeriod,
		promotionCost:   defaultPromotionCost,
		workerPoolSize:  defaultWorkerPoolSize(),
		historyCapacity: 100,
	}
}

// HeartbeatPeriod sets N, the minimum elapsed time between promotions on
// one worker. Must be positive.
func (b *Builder) HeartbeatPeriod(d time.Duration) *Builder {
	b.heartbeatPeriod = d
	b.overheadPercentSet = false
	return b
}

// PromotionCost sets τ, the empirical cost of promoting a fork. Must be
// positive.
func (b *Builder) PromotionCost(d time.Duration) *Builder {
	b.promotionCost = d
	if b.overheadPercentSet {
		b.applyOverheadPercent()
	}
	return b
}

// TargetOverheadPercent sets N := (100/percent) * τ. percent must be in
// (0, 100).
func (b *Builder) TargetOverheadPercent(percent float64) *Builder {
	b.overheadPercentSet = true
	b.overheadPercent = percent
	b.applyOverheadPercent()
	return b
}

func (b *Builder) applyOverheadPercent() {
	b.heartbeatPeriod = time.Duration((100.0 / b.overheadPercent) * float64(b.promotionCost))
}

// WorkerPoolSize sets the size of the bounded top-level admission pool.
// Must be at least 1.
func (b *Builder) WorkerPoolSize(n int) *Builder {
	b.workerPoolSize = n
	return b
}

// Polling sets the factory used to build a fresh PollingStrategy for each
// WorkerContext. Defaults to func() core.PollingStrategy { return
// core.Every(1) } ("poll every call") if left unset, per spec Open
// Question (b).
func (b *Builder) Polling(newPolling func() core.PollingStrategy) *Builder {
	b.newPolling = newPolling
	return b
}

// EnableStatistics sets ExecutorConfig.EnableStatistics. Stats counters are
// always maintained, and no component of this module (the snapshot
// exporters included) reads the flag.
func (b *Builder) EnableStatistics(enable bool) *Builder {
	b.enableStatistics = enable
	return b
}

// EnableDebugLogging gates the Logger.Debug call Fork makes on every
// promotion.
func (b *Builder) EnableDebugLogging(enable bool) *Builder {
	b.enableDebugLogging = enable
	return b
}

// HistoryCapacity sets the size of the execution-history ring buffer.
func (b *Builder) HistoryCapacity(n int) *Builder {
	b.historyCapacity = n
	return b
}

// Logger sets the logger used across the executor and its workers.
// Defaults to core.NoOpLogger.
func (b *Builder) Logger(logger core.Logger) *Builder {
	b.logger = logger
	return b
}

// Metrics sets the metrics sink. Defaults to core.NilMetrics.
func (b *Builder) Metrics(metrics core.Metrics) *Builder {
	b.metrics = metrics
	return b
}

// PanicHandler sets the handler invoked when a task's body panics.
// Defaults to core.DefaultPanicHandler, which logs to stdout.
func (b *Builder) PanicHandler(handler core.PanicHandler) *Builder {
	b.panicHandler = handler
	return b
}

// RejectedTaskHandler sets the handler invoked when a top-level
// submission is rejected. Defaults to core.DefaultRejectedTaskHandler,
// which logs to stdout.
func (b *Builder) RejectedTaskHandler(handler core.RejectedTaskHandler) *Builder {
	b.rejectedTaskHandler = handler
	return b
}

// Build validates and returns the ExecutorConfig, or an InvalidConfig
// *core.Error describing the first violation found.
func (b *Builder) Build() (*ExecutorConfig, error) {
	if b.overheadPercentSet && (b.overheadPercent <= 0 || b.overheadPercent >= 100) {
		return nil, core.NewError(core.InvalidConfig, fmt.Sprintf("target overhead percent must be in (0, 100), got %g", b.overheadPercent), nil)
	}
	if b.heartbeatPeriod <= 0 {
		return nil, core.NewError(core.InvalidConfig, fmt.Sprintf("heartbeat period must be positive, got %s", b.heartbeatPeriod), nil)
	}
	if b.promotionCost <= 0 {
		return nil, core.NewError(core.InvalidConfig, fmt.Sprintf("promotion cost must be positive, got %s", b.promotionCost), nil)
	}
	if b.heartbeatPeriod <= b.promotionCost {
		return nil, core.NewError(core.InvalidConfig, fmt.Sprintf(
			"heartbeat period (%s) must be greater than promotion cost (%s) to have overhead < 100%%",
			b.heartbeatPeriod, b.promotionCost), nil)
	}
	if b.workerPoolSize < 1 {
		return nil, core.NewError(core.InvalidConfig, fmt.Sprintf("worker pool size must be >= 1, got %d", b.workerPoolSize), nil)
	}

	newPolling := b.newPolling
	if newPolling == nil {
		newPolling = func() core.PollingStrategy { return core.Every(1) }
	}

	logger := b.logger
	if logger == nil {
		logger = core.NewNoOpLogger()
	}

	metrics := b.metrics
	if metrics == nil {
		metrics = &core.NilMetrics{}
	}

	panicHandler := b.panicHandler
	if panicHandler == nil {
		panicHandler = &core.DefaultPanicHandler{}
	}

	rejectedTaskHandler := b.rejectedTaskHandler
	if rejectedTaskHandler == nil {
		rejectedTaskHandler = &core.DefaultRejectedTaskHandler{}
	}

	return &ExecutorConfig{
		HeartbeatPeriod:     b.heartbeatPeriod,
		PromotionCost:       b.promotionCost,
		WorkerPoolSize:      b.workerPoolSize,
		NewPolling:          newPolling,
		EnableStatistics:    b.enableStatistics,
		EnableDebugLogging:  b.enableDebugLogging,
		HistoryCapacity:     b.historyCapacity,
		Logger:              logger,
		Metrics:             metrics,
		PanicHandler:        panicHandler,
		RejectedTaskHandler: rejectedTaskHandler,
	}, nil
}
