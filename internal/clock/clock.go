// Package clock drives the cosmetic header: civil time in a fixed zone and a display-only gauge.
package clock

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"
)

const (
	GaugeStart = 99.102
	GaugeMin   = 99.0
	GaugeMax   = 99.999

	gaugeStep = 0.0002
)

// Tick is one header update.
type Tick struct {
	Time  string  `json:"time"`
	Gauge float64 `json:"gauge"`
}

// Ticker emits a Tick every interval until its context is cancelled.
type Ticker struct {
	interval time.Duration
	loc      *time.Location
	now      func() time.Time

	mu    sync.Mutex
	rng   *rand.Rand
	gauge float64
}

func NewTicker(interval time.Duration, loc *time.Location) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Ticker{
		interval: interval,
		loc:      loc,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		gauge:    GaugeStart,
	}
}

// Current renders the time without moving the gauge.
func (t *Ticker) Current() Tick {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Tick{Time: t.now().In(t.loc).Format("15:04:05"), Gauge: t.gauge}
}

// Next advances the gauge one step and renders the time.
func (t *Ticker) Next() Tick {
	t.mu.Lock()
	defer t.mu.Unlock()

	step := t.rng.Float64()*2*gaugeStep - gaugeStep
	g := math.Round((t.gauge+step)*10000) / 10000
	t.gauge = math.Min(GaugeMax, math.Max(GaugeMin, g))

	return Tick{Time: t.now().In(t.loc).Format("15:04:05"), Gauge: t.gauge}
}

// Run calls fn with a new tick every interval. Blocks until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context, fn func(Tick)) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	fn(t.Current())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(t.Next())
		}
	}
}
