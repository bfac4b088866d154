package clock

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"
)

func TestCurrentUsesZone(t *testing.T) {
	dhaka := time.FixedZone("BDT", 6*60*60)
	tk := NewTicker(time.Second, dhaka)
	tk.now = func() time.Time { return time.Date(2026, 10, 19, 23, 30, 5, 0, time.UTC) }

	got := tk.Current()
	if got.Time != "05:30:05" {
		t.Fatalf("expected 05:30:05, got %s", got.Time)
	}
	if got.Gauge != GaugeStart {
		t.Fatalf("expected starting gauge, got %v", got.Gauge)
	}
}

func TestNextStaysBounded(t *testing.T) {
	tk := NewTicker(time.Second, time.UTC)
	tk.rng = rand.New(rand.NewSource(1))

	prev := tk.Current().Gauge
	for i := 0; i < 10000; i++ {
		g := tk.Next().Gauge
		if g < GaugeMin || g > GaugeMax {
			t.Fatalf("gauge out of bounds: %v", g)
		}
		if d := g - prev; d > gaugeStep+1e-9 || d < -gaugeStep-1e-9 {
			t.Fatalf("step too large: %v -> %v", prev, g)
		}
		prev = g
	}
}

func TestNextClampsAtEdges(t *testing.T) {
	tk := NewTicker(time.Second, time.UTC)
	tk.gauge = GaugeMax
	for i := 0; i < 100; i++ {
		if g := tk.Next().Gauge; g > GaugeMax {
			t.Fatalf("gauge exceeded max: %v", g)
		}
	}
	tk.gauge = GaugeMin
	for i := 0; i < 100; i++ {
		if g := tk.Next().Gauge; g < GaugeMin {
			t.Fatalf("gauge below min: %v", g)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	tk := NewTicker(2*time.Millisecond, time.UTC)

	var mu sync.Mutex
	count := 0
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tk.Run(ctx, func(Tick) {
			mu.Lock()
			count++
			mu.Unlock()
		})
		close(done)
	}()

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := count
		mu.Unlock()
		if n >= 3 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	mu.Lock()
	defer mu.Unlock()
	if count < 3 {
		t.Fatalf("expected at least 3 ticks, got %d", count)
	}
}

func TestNewTickerDefaults(t *testing.T) {
	tk := NewTicker(0, nil)
	if tk.interval != time.Second || tk.loc != time.UTC {
		t.Fatalf("unexpected defaults: %v %v", tk.interval, tk.loc)
	}
}
