package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/heartbeat-sched/go-heartbeat/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ContextSnapshotProvider provides a current worker context stats
// snapshot together with its tracker.
type ContextSnapshotProvider interface {
	Stats() core.ContextStats
	Tracker() *core.PromotionTracker
}

// ExecutorSnapshotProvider provides current executor stats snapshots.
type ExecutorSnapshotProvider interface {
	Stats() core.ExecutorStats
}

// PoolSnapshotProvider provides current admission pool stats snapshots.
type PoolSnapshotProvider interface {
	Stats() core.PoolStats
}

// SnapshotPoller periodically exports worker context, tracker, executor,
// and admission pool Stats() snapshots into Prometheus gauges.
//
// Grounded on the teacher's SnapshotPoller
// (observability/prometheus/snapshot_poller.go), retargeted from
// runner/pool snapshots to worker-context/tracker/executor snapshots.
type SnapshotPoller struct {
	interval time.Duration

	contextsMu sync.RWMutex
	contexts   map[string]ContextSnapshotProvider

	executorsMu sync.RWMutex
	executors   map[string]ExecutorSnapshotProvider

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	contextOperations *prom.GaugeVec
	contextPolls      *prom.GaugeVec
	contextPromotions *prom.GaugeVec
	trackerSize       *prom.GaugeVec
	trackerOldestAge  *prom.GaugeVec

	executorSubmitted  *prom.GaugeVec
	executorPromotions *prom.GaugeVec
	executorActive     *prom.GaugeVec
	executorShutdown   *prom.GaugeVec

	poolQueued  *prom.GaugeVec
	poolActive  *prom.GaugeVec
	poolWorkers *prom.GaugeVec
	poolRunning *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	contextOperations := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "heartbeat",
		Name:      "context_operations",
		Help:      "Total operations observed by a worker context.",
	}, []string{"worker"})
	contextPolls := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "heartbeat",
		Name:      "context_polls",
		Help:      "Total heartbeat polls observed by a worker context.",
	}, []string{"worker"})
	contextPromotions := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "heartbeat",
		Name:      "context_promotions",
		Help:      "Total promotions observed by a worker context.",
	}, []string{"worker"})
	trackerSize := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "heartbeat",
		Name:      "tracker_current_size",
		Help:      "Current promotion tracker size per worker.",
	}, []string{"worker"})
	trackerOldestAge := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "heartbeat",
		Name:      "tracker_oldest_age_seconds",
		Help:      "Age of the oldest outstanding fork per worker, in seconds.",
	}, []string{"worker"})

	executorSubmitted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "heartbeat",
		Name:      "executor_tasks_submitted",
		Help:      "Total tasks submitted per executor.",
	}, []string{"executor"})
	executorPromotions := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "heartbeat",
		Name:      "executor_promotions",
		Help:      "Total promotions per executor.",
	}, []string{"executor"})
	executorActive := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "heartbeat",
		Name:      "executor_active",
		Help:      "Currently active tasks per executor.",
	}, []string{"executor"})
	executorShutdown := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "heartbeat",
		Name:      "executor_shutdown",
		Help:      "Executor shutdown state (1=shutdown, 0=running).",
	}, []string{"executor"})

	poolQueued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "heartbeat",
		Name:      "pool_queued",
		Help:      "Queued tasks per admission pool.",
	}, []string{"pool"})
	poolActive := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "heartbeat",
		Name:      "pool_active",
		Help:      "Active tasks per admission pool.",
	}, []string{"pool"})
	poolWorkers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "heartbeat",
		Name:      "pool_workers",
		Help:      "Worker count per admission pool.",
	}, []string{"pool"})
	poolRunning := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "heartbeat",
		Name:      "pool_running",
		Help:      "Admission pool running state (1=running, 0=stopped).",
	}, []string{"pool"})

	var err error
	if contextOperations, err = registerCollector(reg, contextOperations); err != nil {
		return nil, err
	}
	if contextPolls, err = registerCollector(reg, contextPolls); err != nil {
		return nil, err
	}
	if contextPromotions, err = registerCollector(reg, contextPromotions); err != nil {
		return nil, err
	}
	if trackerSize, err = registerCollector(reg, trackerSize); err != nil {
		return nil, err
	}
	if trackerOldestAge, err = registerCollector(reg, trackerOldestAge); err != nil {
		return nil, err
	}
	if executorSubmitted, err = registerCollector(reg, executorSubmitted); err != nil {
		return nil, err
	}
	if executorPromotions, err = registerCollector(reg, executorPromotions); err != nil {
		return nil, err
	}
	if executorActive, err = registerCollector(reg, executorActive); err != nil {
		return nil, err
	}
	if executorShutdown, err = registerCollector(reg, executorShutdown); err != nil {
		return nil, err
	}
	if poolQueued, err = registerCollector(reg, poolQueued); err != nil {
		return nil, err
	}
	if poolActive, err = registerCollector(reg, poolActive); err != nil {
		return nil, err
	}
	if poolWorkers, err = registerCollector(reg, poolWorkers); err != nil {
		return nil, err
	}
	if poolRunning, err = registerCollector(reg, poolRunning); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:            interval,
		contexts:            make(map[string]ContextSnapshotProvider),
		executors:           make(map[string]ExecutorSnapshotProvider),
		pools:               make(map[string]PoolSnapshotProvider),
		contextOperations:   contextOperations,
		contextPolls:        contextPolls,
		contextPromotions:   contextPromotions,
		trackerSize:         trackerSize,
		trackerOldestAge:    trackerOldestAge,
		executorSubmitted:   executorSubmitted,
		executorPromotions:  executorPromotions,
		executorActive:      executorActive,
		executorShutdown:    executorShutdown,
		poolQueued:          poolQueued,
		poolActive:          poolActive,
		poolWorkers:         poolWorkers,
		poolRunning:         poolRunning,
	}, nil
}

// AddContext adds or replaces a worker context snapshot provider by name.
func (p *SnapshotPoller) AddContext(name string, provider ContextSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "worker")
	p.contextsMu.Lock()
	p.contexts[name] = provider
	p.contextsMu.Unlock()
}

// RemoveContext removes a worker context snapshot provider by name, for
// when a worker's top-level task has finished.
func (p *SnapshotPoller) RemoveContext(name string) {
	if p == nil {
		return
	}
	p.contextsMu.Lock()
	delete(p.contexts, name)
	p.contextsMu.Unlock()
}

// AddExecutor adds or replaces an executor snapshot provider by name.
func (p *SnapshotPoller) AddExecutor(name string, provider ExecutorSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "executor")
	p.executorsMu.Lock()
	p.executors[name] = provider
	p.executorsMu.Unlock()
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.contextsMu.RLock()
	for name, provider := range p.contexts {
		stats := provider.Stats()
		p.contextOperations.WithLabelValues(name).Set(float64(stats.Operations))
		p.contextPolls.WithLabelValues(name).Set(float64(stats.Polls))
		p.contextPromotions.WithLabelValues(name).Set(float64(stats.Promotions))

		tstats := provider.Tracker().Stats()
		p.trackerSize.WithLabelValues(name).Set(float64(tstats.CurrentSize))
		if tstats.OldestAge >= 0 {
			p.trackerOldestAge.WithLabelValues(name).Set(tstats.OldestAge.Seconds())
		}
	}
	p.contextsMu.RUnlock()

	p.executorsMu.RLock()
	for name, provider := range p.executors {
		stats := provider.Stats()
		p.executorSubmitted.WithLabelValues(name).Set(float64(stats.TasksSubmitted))
		p.executorPromotions.WithLabelValues(name).Set(float64(stats.Promotions))
		p.executorActive.WithLabelValues(name).Set(float64(stats.Active))
		if stats.Shutdown {
			p.executorShutdown.WithLabelValues(name).Set(1)
		} else {
			p.executorShutdown.WithLabelValues(name).Set(0)
		}
	}
	p.executorsMu.RUnlock()

	p.poolsMu.RLock()
	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.poolActive.WithLabelValues(name).Set(float64(stats.Active))
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		if stats.Running {
			p.poolRunning.WithLabelValues(name).Set(1)
		} else {
			p.poolRunning.WithLabelValues(name).Set(0)
		}
	}
	p.poolsMu.RUnlock()
}
