package updater

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"main/internal/bus"
	"main/internal/exchange"
	"main/internal/obs"
	"main/internal/state"
)

const (
	_emptyMarketPause    = time.Second
	_streamRestartPause  = time.Second
	_subscriptionRecheck = time.Second
)

// Ticker keeps one live tick subscription open for the current market
// set. Each received tick is retained in the store and offered to the
// trigger queue without blocking; the subscription is reopened whenever
// the market list changes or the stream drops.
type Ticker struct {
	svc     exchange.Service
	store   *state.Store
	queue   *bus.TickQueue
	metrics *obs.Metrics
}

func NewTicker(svc exchange.Service, store *state.Store, queue *bus.TickQueue, metrics *obs.Metrics) *Ticker {
	return &Ticker{
		svc:     svc,
		store:   store,
		queue:   queue,
		metrics: metrics,
	}
}

func (t *Ticker) Run(ctx context.Context) {
	for {
		ids := t.store.MarketIDs()
		if len(ids) == 0 {
			if !pause(ctx, _emptyMarketPause) {
				return
			}
			continue
		}

		if !t.stream(ctx, ids) {
			return
		}

		t.metrics.AddStreamRestart()
		if !pause(ctx, _streamRestartPause) {
			return
		}
	}
}

// stream consumes one subscription until the market set changes or the
// stream ends. It reports false when the loop should stop entirely.
func (t *Ticker) stream(ctx context.Context, ids []string) bool {
	ch, stop, err := t.svc.StreamTicks(ctx, ids)
	if err != nil {
		logs.Errorf("open tick stream, err: %+v", err)
		return true
	}
	defer stop()

	recheck := time.NewTicker(_subscriptionRecheck)
	defer recheck.Stop()

	for {
		select {
		case <-sys.Shutdown():
			return false
		case <-ctx.Done():
			return false
		case <-recheck.C:
			if !slices.Equal(ids, t.store.MarketIDs()) {
				return true
			}
		case tick, ok := <-ch:
			if !ok {
				return true
			}

			t.metrics.AddTick()
			t.store.PutTick(tick)
			if err := t.queue.TryPublish(tick); err != nil {
				if errors.Is(err, bus.ErrQueueClosed) {
					return false
				}
				t.metrics.AddQueueDrop()
				logs.Warnf("drop tick trigger %s, err: %+v", tick.Code, err)
			}
		}
	}
}
