package exchange

import (
	"context"

	"main/internal/model"
	"main/internal/model/enum"
)

// Service is the exchange capability the engines and synchronizers
// consume. It is implemented by the live Client and by the simulated
// decorator, selected once at startup.
type Service interface {
	// ListMarkets returns every tradable market.
	ListMarkets(ctx context.Context) ([]model.MarketInfo, error)
	// ListTickers returns the latest REST trade snapshot per market.
	ListTickers(ctx context.Context, marketIDs []string) ([]model.Ticker, error)
	// ListCandles returns the newest count candles for one market,
	// newest first.
	ListCandles(ctx context.Context, unit enum.MinuteUnit, marketID string, count int) ([]model.Candle, error)
	// GetAccounts returns every currency balance.
	GetAccounts(ctx context.Context) ([]model.Account, error)
	// GetOrderChance returns the order constraints for one market.
	GetOrderChance(ctx context.Context, marketID string) (model.OrderChance, error)
	// PlaceOrder submits one order.
	PlaceOrder(ctx context.Context, req model.OrderRequest) (model.OrderResponse, error)
	// StreamTicks subscribes to live ticks for the given markets. The
	// channel closes when the stream ends; stop releases the
	// connection. The stream is not restartable, callers resubscribe
	// by calling StreamTicks again.
	StreamTicks(ctx context.Context, marketIDs []string) (<-chan model.Tick, func(), error)
	// RemainingRequests reports the exchange's remaining-request
	// quota per endpoint group.
	RemainingRequests() map[string]model.RemainingReq
	// ClearRemainingRequests resets the tracked quotas.
	ClearRemainingRequests()
}
