package updater

import (
	"context"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/exchange"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/state"
)

const _defaultCandleCount = 200

// Candles sweeps every known market's candle history once per minute,
// aligned to the wall-clock minute so each sweep sees a freshly closed
// candle.
type Candles struct {
	svc     exchange.Service
	store   *state.Store
	metrics *obs.Metrics
	unit    enum.MinuteUnit
	count   int
	now     func() time.Time
}

func NewCandles(svc exchange.Service, store *state.Store, metrics *obs.Metrics, unit enum.MinuteUnit, count int) *Candles {
	if count <= 0 {
		count = _defaultCandleCount
	}
	return &Candles{
		svc:     svc,
		store:   store,
		metrics: metrics,
		unit:    unit,
		count:   count,
		now:     time.Now,
	}
}

// Run sweeps immediately and then once per minute boundary. A failed
// market is skipped for the sweep and retried on the next one.
func (c *Candles) Run(ctx context.Context) {
	for {
		c.sweep(ctx)
		if !sleepUntil(ctx, nextMinuteBoundary(c.now())) {
			return
		}
	}
}

func (c *Candles) sweep(ctx context.Context) {
	for _, marketID := range c.store.MarketIDs() {
		candles, err := c.svc.ListCandles(ctx, c.unit, marketID, c.count)
		if err != nil {
			logs.Errorf("fetch candles %s, err: %+v", marketID, err)
			continue
		}
		c.store.PutCandles(marketID, candles)
	}
	c.metrics.AddCandleSweep()
}
