package inference

import (
	"context"
	"testing"
	"time"
)

func TestOperationLimiterBudgetsAreIndependent(t *testing.T) {
	limiter := NewPerMinuteLimiter(1, 2)
	ctx := context.Background()

	start := time.Now()
	if err := limiter.Wait(ctx, opAnalyzeImage); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := limiter.Wait(ctx, opGenerateSignals); err != nil {
			t.Fatalf("generation %d: unexpected error: %v", i, err)
		}
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Fatal("calls within budget should not block")
	}

	// analysis budget is spent; generation's spend must not have touched it and vice versa
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(short, opAnalyzeImage); err == nil {
		t.Fatal("expected analysis budget to be exhausted")
	}
	if err := limiter.Wait(short, opGenerateSignals); err == nil {
		t.Fatal("expected generation budget to be exhausted")
	}
}

func TestOperationLimiterUnknownOpIsUnlimited(t *testing.T) {
	limiter := NewOperationLimiter(map[string]int{opGenerateSignals: 1, opAnalyzeImage: 0})
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := limiter.Wait(ctx, opAnalyzeImage); err != nil {
			t.Fatalf("unbudgeted op should never wait: %v", err)
		}
		if err := limiter.Wait(ctx, "other"); err != nil {
			t.Fatalf("unknown op should never wait: %v", err)
		}
	}
	if limiter.Budget(opAnalyzeImage) != 0 || limiter.Budget(opGenerateSignals) != 1 {
		t.Fatalf("unexpected budgets: %d/%d", limiter.Budget(opAnalyzeImage), limiter.Budget(opGenerateSignals))
	}
}

func TestOperationLimiterHonorsCancellation(t *testing.T) {
	limiter := NewPerMinuteLimiter(1, 1)
	ctx := context.Background()
	_ = limiter.Wait(ctx, opGenerateSignals)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	start := time.Now()
	if err := limiter.Wait(cancelled, opGenerateSignals); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Fatal("wait should return promptly once the context is done")
	}
}
