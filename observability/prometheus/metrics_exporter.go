// Package prometheus adapts core.Metrics to Prometheus collectors,
// grounded on the teacher's observability/prometheus package.
package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/heartbeat-sched/go-heartbeat/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors: task
// duration/failure, poll/promotion counts, tracker size, and admission
// queue depth.
//
// Grounded on the teacher's MetricsExporter
// (observability/prometheus/metrics_exporter.go), retargeted from
// task-runner priority/runner labels to heartbeat scope/worker labels.
type MetricsExporter struct {
	taskDurationSeconds *prom.HistogramVec
	taskFailureTotal    *prom.CounterVec
	pollTotal           *prom.CounterVec
	promotionTotal      *prom.CounterVec
	trackerSize         *prom.GaugeVec
	queueDepth          prom.Gauge
	taskRejectedTotal   *prom.CounterVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for
// core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "heartbeat"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"scope", "promoted"})
	failureVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_failure_total",
		Help:      "Total number of task failures, by error kind.",
	}, []string{"scope", "kind"})
	pollVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "poll_total",
		Help:      "Total number of heartbeat timer consultations.",
	}, []string{"worker"})
	promotionVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "promotion_total",
		Help:      "Total number of fork promotions.",
	}, []string{"worker"})
	trackerSizeVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "tracker_size",
		Help:      "Current promotion tracker size, by worker.",
	}, []string{"worker"})
	queueDepth := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "admission_queue_depth",
		Help:      "Current depth of the top-level admission queue.",
	})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_rejected_total",
		Help:      "Total number of rejected top-level submissions.",
	}, []string{"reason"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if failureVec, err = registerCollector(reg, failureVec); err != nil {
		return nil, err
	}
	if pollVec, err = registerCollector(reg, pollVec); err != nil {
		return nil, err
	}
	if promotionVec, err = registerCollector(reg, promotionVec); err != nil {
		return nil, err
	}
	if trackerSizeVec, err = registerCollector(reg, trackerSizeVec); err != nil {
		return nil, err
	}
	if queueDepth, err = registerCollector(reg, queueDepth); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		taskDurationSeconds: durationVec,
		taskFailureTotal:    failureVec,
		pollTotal:           pollVec,
		promotionTotal:      promotionVec,
		trackerSize:         trackerSizeVec,
		queueDepth:          queueDepth,
		taskRejectedTotal:   rejectedVec,
	}, nil
}

func (m *MetricsExporter) RecordTaskDuration(scope string, promoted bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.taskDurationSeconds.WithLabelValues(normalizeLabel(scope, "unknown"), boolLabel(promoted)).Observe(duration.Seconds())
}

func (m *MetricsExporter) RecordTaskFailure(scope string, kind core.Kind) {
	if m == nil {
		return
	}
	m.taskFailureTotal.WithLabelValues(normalizeLabel(scope, "unknown"), kind.String()).Inc()
}

func (m *MetricsExporter) RecordPoll(workerName string) {
	if m == nil {
		return
	}
	m.pollTotal.WithLabelValues(normalizeLabel(workerName, "unknown")).Inc()
}

func (m *MetricsExporter) RecordPromotion(workerName string) {
	if m == nil {
		return
	}
	m.promotionTotal.WithLabelValues(normalizeLabel(workerName, "unknown")).Inc()
}

func (m *MetricsExporter) RecordTrackerSize(workerName string, size int) {
	if m == nil {
		return
	}
	m.trackerSize.WithLabelValues(normalizeLabel(workerName, "unknown")).Set(float64(size))
}

func (m *MetricsExporter) RecordQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

func (m *MetricsExporter) RecordTaskRejected(reason string) {
	if m == nil {
		return
	}
	m.taskRejectedTotal.WithLabelValues(normalizeLabel(reason, "unknown")).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
