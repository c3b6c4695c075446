package signal

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"main/internal/exchange"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/noti"
	"main/internal/obs"
	"main/internal/state"
	"main/pkg/retry"
)

// Buyer evaluates the entry rule on every tick trigger: an upward
// moving-average crossing buys a fixed quote amount, once per market,
// subject to the cooldown, the price floor and the available balance.
type Buyer struct {
	svc     exchange.Service
	store   *state.Store
	sender  noti.Sender
	metrics *obs.Metrics
	cfg     Config
	now     func() time.Time
}

func NewBuyer(svc exchange.Service, store *state.Store, sender noti.Sender, metrics *obs.Metrics, cfg Config) *Buyer {
	return &Buyer{
		svc:     svc,
		store:   store,
		sender:  sender,
		metrics: metrics,
		cfg:     cfg.withDefaults(),
		now:     time.Now,
	}
}

// Process runs one evaluation sweep against the given snapshot.
func (b *Buyer) Process(ctx context.Context, snap state.AppState) {
	quote, ok := snap.Accounts[b.cfg.QuoteCurrency]
	need := b.cfg.BuyPrice.Mul(decimal.NewFromInt(1).Add(b.cfg.FeeFactor))
	if !ok || quote.Balance.LessThan(need) {
		return
	}

	now := b.now()
	for _, marketID := range snap.MarketIDs {
		candles := snap.Candles[marketID]
		if len(candles) == 0 {
			continue
		}
		tick, ok := snap.LastTicks[marketID]
		if !ok {
			continue
		}
		if _, held := snap.Accounts[model.Currency(marketID)]; held {
			continue
		}
		if last, ok := snap.LastBuyTime[marketID]; ok && now.Sub(last) < b.cfg.Cooldown {
			continue
		}
		if tick.TradePrice.LessThan(b.cfg.MinPrice) {
			continue
		}

		series := closeSeries(tick, candles)
		if !isGoldenCross(series, b.cfg.ShortWindow, b.cfg.LongWindow) {
			continue
		}
		if b.cfg.VolumeGate && !isAbnormalVolume(tick, candles, b.cfg.VolumeFactor, b.cfg.LongWindow) {
			continue
		}

		b.execute(ctx, marketID, tick, series)
	}
}

func (b *Buyer) execute(ctx context.Context, marketID string, tick model.Tick, series []decimal.Decimal) {
	msg := fmt.Sprintf("buy %s (%s) -> ma%d: %s, ma%d: %s",
		marketID, tick.TradePrice,
		b.cfg.ShortWindow, movingAverage(series, b.cfg.ShortWindow),
		b.cfg.LongWindow, movingAverage(series, b.cfg.LongWindow),
	)
	b.store.Logf("%s", msg)

	req := model.OrderRequest{
		Market:    marketID,
		Side:      enum.OrderSideBid,
		OrderType: enum.OrderTypePrice,
		Price:     b.cfg.BuyPrice,
	}
	_, err := retry.Do(ctx, 1, b.cfg.RetryPause, func() (model.OrderResponse, error) {
		return b.svc.PlaceOrder(ctx, req)
	})
	if err != nil {
		b.metrics.AddOrderFailure()
		logs.Errorf("place buy order %s, err: %+v", marketID, err)
		return
	}

	b.metrics.AddOrderPlaced()
	b.store.SetLastBuyTime(marketID, time.UnixMilli(tick.TradeTimestamp))

	stamped := fmt.Sprintf("[%s] %s", b.now().Format(time.RFC3339), msg)
	if err := b.sender.Send(ctx, stamped); err != nil {
		logs.Errorf("notify buy %s, err: %+v", marketID, err)
	}
}
