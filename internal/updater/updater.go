// Package updater holds the background loops that keep the state store
// synchronized with the exchange: the market list, candle histories,
// account balances and the live tick stream. Every loop runs until its
// context ends and survives individual request failures by logging and
// retrying on the next pass.
package updater

import (
	"context"
	"time"

	"github.com/yanun0323/pkg/sys"
)

// nextMinuteBoundary returns the first whole minute after now.
func nextMinuteBoundary(now time.Time) time.Time {
	return now.Truncate(time.Minute).Add(time.Minute)
}

// sleepUntil blocks until at, reporting false when the loop should
// stop instead of continuing.
func sleepUntil(ctx context.Context, at time.Time) bool {
	return pause(ctx, time.Until(at))
}

func pause(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-sys.Shutdown():
		return false
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
