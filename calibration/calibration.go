// Package calibration measures the promotion cost τ empirically, the
// "calibration utility" spec.md §1 treats as an external collaborator
// with the contract captured in §6.
package calibration

import (
	"math"
	"time"
)

// Result is the outcome of a calibration run.
//
// Grounded on original_source/utils/TimingCalibration.java's
// CalibrationResults, supplementing spec §6's
// "calibrate() -> {τ, recommendedN, expectedOverheadPercent}" with sample
// count and standard deviation, both present in the original.
type Result struct {
	PromotionCost           time.Duration
	RecommendedPeriod       time.Duration
	ExpectedOverheadPercent float64
	Samples                 int
	StdDev                  time.Duration
}

// MeasurePromotionCost empirically measures the mean cost of spawning a
// goroutine that runs an empty body and is awaited, over the given number
// of iterations. iterations <= 0 defaults to 1000.
//
// This is a pure measurement: it has no lifecycle coupling with the
// executor and can be run standalone at startup, matching spec §6's
// "pure-function boundary" requirement.
func MeasurePromotionCost(iterations int) time.Duration {
	if iterations <= 0 {
		iterations = 1000
	}

	// Warm up the scheduler so steady-state goroutine spawn cost is
	// measured, not first-use costs.
	warmup(iterations / 10)

	samples := sampleSpawnCosts(iterations)
	return mean(samples)
}

// Calibrate runs MeasurePromotionCost and derives the recommended
// heartbeat period N = 20τ (5% target overhead, the paper's default),
// matching original_source's numCarrierThreads-agnostic Calibrate()
// contract.
func Calibrate(iterations int) Result {
	if iterations <= 0 {
		iterations = 1000
	}

	warmup(iterations / 10)
	samples := sampleSpawnCosts(iterations)
	tau := mean(samples)
	recommendedN := 20 * tau

	return Result{
		PromotionCost:           tau,
		RecommendedPeriod:       recommendedN,
		ExpectedOverheadPercent: float64(tau) / float64(recommendedN) * 100.0,
		Samples:                 len(samples),
		StdDev:                  stddev(samples, tau),
	}
}

func warmup(iterations int) {
	n := max(iterations, 1)
	for i := 0; i < n; i++ {
		spawnAndWait()
	}
}

func sampleSpawnCosts(iterations int) []time.Duration {
	samples := make([]time.Duration, iterations)
	for i := 0; i < iterations; i++ {
		start := time.Now()
		spawnAndWait()
		samples[i] = time.Since(start)
	}
	return samples
}

func spawnAndWait() {
	done := make(chan struct{})
	go func() { close(done) }()
	<-done
}

func mean(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	var sum time.Duration
	for _, s := range samples {
		sum += s
	}
	return sum / time.Duration(len(samples))
}

func stddev(samples []time.Duration, avg time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range samples {
		d := float64(s - avg)
		sumSq += d * d
	}
	variance := sumSq / float64(len(samples))
	return time.Duration(math.Sqrt(variance))
}
