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

// Seller evaluates the exit rule on every tick trigger: a dead cross
// sells the whole position at market, profit or loss. The buy cooldown
// also holds sells back, so a fresh entry is not flipped within the
// same minute.
type Seller struct {
	svc     exchange.Service
	store   *state.Store
	sender  noti.Sender
	metrics *obs.Metrics
	cfg     Config
	now     func() time.Time
}

func NewSeller(svc exchange.Service, store *state.Store, sender noti.Sender, metrics *obs.Metrics, cfg Config) *Seller {
	return &Seller{
		svc:     svc,
		store:   store,
		sender:  sender,
		metrics: metrics,
		cfg:     cfg.withDefaults(),
		now:     time.Now,
	}
}

// Process runs one evaluation sweep against the given snapshot and
// returns the market ids it sold.
func (s *Seller) Process(ctx context.Context, snap state.AppState) []string {
	var sold []string
	now := s.now()

	for _, marketID := range snap.MarketIDs {
		if last, ok := snap.LastBuyTime[marketID]; ok && now.Sub(last) < s.cfg.Cooldown {
			continue
		}
		candles := snap.Candles[marketID]
		if len(candles) == 0 {
			continue
		}
		tick, ok := snap.LastTicks[marketID]
		if !ok {
			continue
		}
		account, held := snap.Accounts[model.Currency(marketID)]
		if !held {
			continue
		}
		if !isDeadCross(closeSeries(tick, candles), s.cfg.ShortWindow, s.cfg.LongWindow) {
			continue
		}

		result := "win"
		if tick.TradePrice.LessThan(account.AvgBuyPrice) {
			result = "lose"
		}
		s.store.Logf("sell %s (%s <- %s) by dead_cross (%s)",
			marketID, tick.TradePrice, account.AvgBuyPrice, result)

		if s.sell(ctx, marketID, tick, account) {
			sold = append(sold, marketID)
		}
	}
	return sold
}

func (s *Seller) sell(ctx context.Context, marketID string, tick model.Tick, account model.Account) bool {
	req := model.OrderRequest{
		Market:    marketID,
		Side:      enum.OrderSideAsk,
		OrderType: enum.OrderTypeMarket,
		Volume:    account.Balance,
	}
	_, err := retry.Do(ctx, 1, s.cfg.RetryPause, func() (model.OrderResponse, error) {
		return s.svc.PlaceOrder(ctx, req)
	})
	if err != nil {
		s.metrics.AddOrderFailure()
		logs.Errorf("place sell order %s, err: %+v", marketID, err)
		return false
	}

	s.metrics.AddOrderPlaced()
	s.notify(ctx, marketID, tick)
	return true
}

// notify reports the sale with the post-trade portfolio total.
func (s *Seller) notify(ctx context.Context, marketID string, tick model.Tick) {
	accounts, err := s.svc.GetAccounts(ctx)
	if err != nil {
		logs.Errorf("fetch accounts after sell %s, err: %+v", marketID, err)
		return
	}

	total := decimal.Zero
	for _, account := range accounts {
		if account.Currency == s.cfg.QuoteCurrency {
			total = total.Add(account.Balance)
			continue
		}
		total = total.Add(account.AvgBuyPrice.Mul(account.Balance))
	}

	msg := fmt.Sprintf("[%s] sell %s(%s), total: %s",
		s.now().Format("2006-01-02 15:04:05"),
		model.Currency(marketID), tick.TradePrice, total)
	if err := s.sender.Send(ctx, msg); err != nil {
		logs.Errorf("notify sell %s, err: %+v", marketID, err)
	}
}
