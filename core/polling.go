package core

import (
	"fmt"
	"time"
)

// PollingStrategy decides when consulting the Timer is worthwhile, keeping
// the amortized cost of checking the clock low relative to the promotion
// cost τ. Grounded on original_source/core/{PollingStrategy,CountBasedPolling,
// TimeBasedPolling}.java.
type PollingStrategy interface {
	// ShouldPoll reports whether the timer should be consulted now. It is
	// cheap and may be side-effecting (CountBasedPolling advances its
	// operation counter on every call).
	ShouldPoll() bool
	// RecordPoll must be called iff ShouldPoll returned true and the
	// timer was actually consulted.
	RecordPoll()
	// Reset clears internal bookkeeping.
	Reset()
	// Name identifies the strategy for logging and metrics labels.
	Name() string
}

// CountBasedPolling polls once every Interval operations. Simplest and
// cheapest strategy; recommended when operation cost is roughly uniform.
type CountBasedPolling struct {
	interval  int
	sincePoll int
}

// NewCountBasedPolling creates a strategy that polls every interval calls
// to ShouldPoll. interval must be positive.
func NewCountBasedPolling(interval int) (*CountBasedPolling, error) {
	if interval <= 0 {
		return nil, newError(InvalidConfig, fmt.Sprintf("poll interval must be positive, got %d", interval), nil)
	}
	return &CountBasedPolling{interval: interval}, nil
}

// Every is a convenience constructor equivalent to NewCountBasedPolling,
// panicking on invalid input. Mirrors CountBasedPolling.every(int) from the
// source, used for the default "poll every call" strategy.
func Every(operations int) *CountBasedPolling {
	p, err := NewCountBasedPolling(operations)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *CountBasedPolling) ShouldPoll() bool {
	p.sincePoll++
	return p.sincePoll >= p.interval
}

func (p *CountBasedPolling) RecordPoll() {
	p.sincePoll = 0
}

func (p *CountBasedPolling) Reset() {
	p.sincePoll = 0
}

func (p *CountBasedPolling) Name() string {
	return fmt.Sprintf("count-based[%d]", p.interval)
}

// Interval returns the configured poll interval.
func (p *CountBasedPolling) Interval() int {
	return p.interval
}

// TimeBasedPolling polls when at least Interval has elapsed since the last
// poll. More accurate than count-based polling under variable operation
// costs, at the price of a clock read per ShouldPoll call.
type TimeBasedPolling struct {
	interval time.Duration
	lastPoll time.Time
}

// NewTimeBasedPolling creates a time-based strategy. interval must be
// positive.
func NewTimeBasedPolling(interval time.Duration) (*TimeBasedPolling, error) {
	if interval <= 0 {
		return nil, newError(InvalidConfig, fmt.Sprintf("poll interval must be positive, got %s", interval), nil)
	}
	return &TimeBasedPolling{interval: interval, lastPoll: time.Now()}, nil
}

// ForHeartbeatPeriod builds a time-based strategy at 1/10th of period,
// floored at 1µs, per the tuning rule in spec §4.B.
func ForHeartbeatPeriod(period time.Duration) *TimeBasedPolling {
	interval := period / 10
	if interval < time.Microsecond {
		interval = time.Microsecond
	}
	p, err := NewTimeBasedPolling(interval)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *TimeBasedPolling) ShouldPoll() bool {
	return time.Since(p.lastPoll) >= p.interval
}

func (p *TimeBasedPolling) RecordPoll() {
	p.lastPoll = time.Now()
}

func (p *TimeBasedPolling) Reset() {
	p.lastPoll = time.Now()
}

func (p *TimeBasedPolling) Name() string {
	return fmt.Sprintf("time-based[%s]", p.interval)
}

// Interval returns the configured poll interval.
func (p *TimeBasedPolling) Interval() time.Duration {
	return p.interval
}
