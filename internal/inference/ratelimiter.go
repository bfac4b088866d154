package inference

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// OperationLimiter keeps a separate request budget for each inference operation, so a
// burst of screenshot analyses cannot starve the search-augmented signal generation.
type OperationLimiter struct {
	limiters map[string]*rate.Limiter
}

// NewOperationLimiter allows budgets[op] calls per minute for each op, with bursts of the
// same size. Operations without a positive budget are not limited.
func NewOperationLimiter(budgets map[string]int) *OperationLimiter {
	l := &OperationLimiter{limiters: make(map[string]*rate.Limiter, len(budgets))}
	for op, perMinute := range budgets {
		if perMinute <= 0 {
			continue
		}
		l.limiters[op] = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return l
}

// NewPerMinuteLimiter budgets chart analysis and signal generation independently.
func NewPerMinuteLimiter(analysesPerMin, generationsPerMin int) *OperationLimiter {
	return NewOperationLimiter(map[string]int{
		opAnalyzeImage:    analysesPerMin,
		opGenerateSignals: generationsPerMin,
	})
}

// Wait blocks until op may make a call. It fails early when ctx would expire first.
func (l *OperationLimiter) Wait(ctx context.Context, op string) error {
	lim, ok := l.limiters[op]
	if !ok {
		return nil
	}
	if err := lim.Wait(ctx); err != nil {
		return fmt.Errorf("%s budget exhausted: %w", op, err)
	}
	return nil
}

// Budget reports the per-minute budget of op, zero when unlimited.
func (l *OperationLimiter) Budget(op string) int {
	lim, ok := l.limiters[op]
	if !ok {
		return 0
	}
	return lim.Burst()
}
