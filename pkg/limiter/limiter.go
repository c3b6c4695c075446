package limiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Group names one endpoint class with its own quota.
type Group string

const (
	GroupQuotation Group = "quotation"
	GroupAccount   Group = "account"
	GroupOrder     Group = "order"
)

// Quota is the exchange-documented request budget for one group.
type Quota struct {
	PerSecond int `json:"perSecond"`
	PerMinute int `json:"perMinute"`
}

// Limiter enforces per-second and per-minute budgets for each group.
// Acquiring draws a token from both buckets of the group; it never
// fails, it only delays the caller.
type Limiter struct {
	groups map[Group][]*rate.Limiter
}

// New builds a limiter from the given quotas, scaled down by a ~90%
// safety margin so the process stays below the documented limits.
func New(quotas map[Group]Quota) *Limiter {
	groups := make(map[Group][]*rate.Limiter, len(quotas))
	for group, quota := range quotas {
		perSec := safeLimit(quota.PerSecond)
		perMin := safeLimit(quota.PerMinute)
		groups[group] = []*rate.Limiter{
			rate.NewLimiter(rate.Limit(perSec), 1),
			rate.NewLimiter(rate.Limit(float64(perMin)/60), perMin),
		}
	}

	return &Limiter{groups: groups}
}

func safeLimit(n int) int {
	scaled := n * 9 / 10
	if scaled < 1 {
		return 1
	}
	return scaled
}

// Acquire blocks until one token is available in every bucket of the
// group. An unknown group passes through immediately. Context
// cancellation releases the caller early; the abort is observed by the
// caller's next operation, so no error is reported here.
func (l *Limiter) Acquire(ctx context.Context, group Group) {
	if l == nil {
		return
	}

	for _, bucket := range l.groups[group] {
		if err := bucket.Wait(ctx); err != nil {
			return
		}
	}
}

// DefaultQuotas returns the exchange-documented budgets before the
// safety margin is applied.
func DefaultQuotas() map[Group]Quota {
	return map[Group]Quota{
		GroupQuotation: {PerSecond: 10, PerMinute: 600},
		GroupAccount:   {PerSecond: 10, PerMinute: 500},
		GroupOrder:     {PerSecond: 10, PerMinute: 500},
	}
}

// interval between per-second grants, used by tests to reason about
// expected delays.
func (l *Limiter) secondInterval(group Group) time.Duration {
	buckets := l.groups[group]
	if len(buckets) == 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(buckets[0].Limit()))
}
