package updater

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/bus"
	"main/internal/exchange/simulate"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/state"
	"main/pkg/exception"
)

type fakeService struct {
	markets    []model.MarketInfo
	candles    map[string][]model.Candle
	candleErr  map[string]error
	accounts   []model.Account
	ticks      chan model.Tick
	streamErr  error
	streamStop int
}

func (f *fakeService) ListMarkets(context.Context) ([]model.MarketInfo, error) {
	return f.markets, nil
}

func (f *fakeService) ListTickers(context.Context, []string) ([]model.Ticker, error) {
	return nil, nil
}

func (f *fakeService) ListCandles(_ context.Context, _ enum.MinuteUnit, marketID string, _ int) ([]model.Candle, error) {
	if err := f.candleErr[marketID]; err != nil {
		return nil, err
	}
	return f.candles[marketID], nil
}

func (f *fakeService) GetAccounts(context.Context) ([]model.Account, error) {
	return f.accounts, nil
}

func (f *fakeService) GetOrderChance(context.Context, string) (model.OrderChance, error) {
	return model.OrderChance{}, nil
}

func (f *fakeService) PlaceOrder(context.Context, model.OrderRequest) (model.OrderResponse, error) {
	return model.OrderResponse{}, nil
}

func (f *fakeService) StreamTicks(context.Context, []string) (<-chan model.Tick, func(), error) {
	if f.streamErr != nil {
		return nil, nil, f.streamErr
	}
	return f.ticks, func() { f.streamStop++ }, nil
}

func (f *fakeService) RemainingRequests() map[string]model.RemainingReq { return nil }
func (f *fakeService) ClearRemainingRequests()                          {}

func TestNextMinuteBoundary(t *testing.T) {
	at := time.Date(2026, 8, 31, 10, 15, 42, 120, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 10, 16, 0, 0, time.UTC), nextMinuteBoundary(at))

	exact := time.Date(2026, 8, 31, 10, 15, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 10, 16, 0, 0, time.UTC), nextMinuteBoundary(exact))
}

func TestMarketsRefreshFiltersQuoteCurrency(t *testing.T) {
	svc := &fakeService{markets: []model.MarketInfo{
		{Market: "KRW-BTC"},
		{Market: "BTC-ETH"},
		{Market: "KRW-ETH"},
		{Market: "USDT-BTC"},
	}}
	store := state.NewStore()

	m := NewMarkets(svc, store, "KRW", time.Minute)
	require.NoError(t, m.refresh(t.Context()))

	assert.Equal(t, []string{"KRW-BTC", "KRW-ETH"}, store.MarketIDs())
}

func TestCandlesSweepSkipsFailedMarket(t *testing.T) {
	svc := &fakeService{
		candles: map[string][]model.Candle{
			"KRW-BTC": {{Market: "KRW-BTC", TradePrice: decimal.NewFromInt(100)}},
			"KRW-ETH": {{Market: "KRW-ETH", TradePrice: decimal.NewFromInt(10)}},
		},
		candleErr: map[string]error{"KRW-ETH": exception.ErrExchangeTransport},
	}
	store := state.NewStore()
	store.SetMarketIDs([]string{"KRW-BTC", "KRW-ETH"})
	metrics := obs.NewMetrics()

	c := NewCandles(svc, store, metrics, enum.Minute1, 200)
	c.sweep(t.Context())

	candles := store.Candles()
	require.Contains(t, candles, "KRW-BTC")
	assert.NotContains(t, candles, "KRW-ETH")
	assert.Equal(t, uint64(1), metrics.Snapshot().CandleSweeps)
}

func TestAccountsRefreshMapsByCurrency(t *testing.T) {
	svc := &fakeService{accounts: []model.Account{
		{Currency: "KRW", Balance: decimal.NewFromInt(1_000_000)},
		{Currency: "BTC", Balance: decimal.NewFromInt(2)},
	}}
	store := state.NewStore()

	a := NewAccounts(svc, store)
	require.NoError(t, a.refresh(t.Context()))

	accounts := store.Accounts()
	require.Len(t, accounts, 2)
	assert.True(t, accounts["KRW"].Balance.Equal(decimal.NewFromInt(1_000_000)))
	assert.True(t, accounts["BTC"].Balance.Equal(decimal.NewFromInt(2)))
}

func TestAccountsRunSkipsStoreResidentLedger(t *testing.T) {
	store := state.NewStore()
	stale := &fakeService{accounts: []model.Account{
		{Currency: "KRW", Balance: decimal.NewFromInt(999)},
	}}
	svc := simulate.NewWithSeed(decimal.NewFromInt(1_000_000), stale, store, "KRW", decimal.NewFromFloat(0.0005))

	done := make(chan struct{})
	go func() {
		defer close(done)
		NewAccounts(svc, store).Run(t.Context())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("account mirror still running against the store ledger")
	}

	accounts := store.Accounts()
	require.Len(t, accounts, 1)
	assert.True(t, accounts["KRW"].Balance.Equal(decimal.NewFromInt(1_000_000)))
}

func TestTickerStreamRetainsAndPublishes(t *testing.T) {
	ticks := make(chan model.Tick, 2)
	ticks <- model.Tick{Code: "KRW-BTC", TradePrice: decimal.NewFromInt(100)}
	ticks <- model.Tick{Code: "KRW-BTC", TradePrice: decimal.NewFromInt(110)}
	close(ticks)

	svc := &fakeService{ticks: ticks}
	store := state.NewStore()
	store.SetMarketIDs([]string{"KRW-BTC"})
	queue := bus.NewTickQueue(8)
	metrics := obs.NewMetrics()

	tk := NewTicker(svc, store, queue, metrics)
	resubscribe := tk.stream(t.Context(), []string{"KRW-BTC"})

	assert.True(t, resubscribe)
	assert.Equal(t, 1, svc.streamStop)
	assert.Equal(t, uint64(2), metrics.Snapshot().TicksConsumed)
	assert.True(t, store.LastTicks()["KRW-BTC"].TradePrice.Equal(decimal.NewFromInt(110)))

	var received []model.Tick
	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()
	queue.Run(ctx, func(tick model.Tick) {
		received = append(received, tick)
	})
	assert.Len(t, received, 2)
}

func TestTickerStreamDropsWhenQueueFull(t *testing.T) {
	ticks := make(chan model.Tick, 2)
	ticks <- model.Tick{Code: "KRW-BTC", TradePrice: decimal.NewFromInt(100)}
	ticks <- model.Tick{Code: "KRW-BTC", TradePrice: decimal.NewFromInt(110)}
	close(ticks)

	svc := &fakeService{ticks: ticks}
	store := state.NewStore()
	queue := bus.NewTickQueue(1)
	metrics := obs.NewMetrics()

	tk := NewTicker(svc, store, queue, metrics)
	assert.True(t, tk.stream(t.Context(), []string{"KRW-BTC"}))

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(2), snap.TicksConsumed)
	assert.Equal(t, uint64(1), snap.QueueDrops)
}

func TestTickerStreamResubscribesOnMarketChange(t *testing.T) {
	svc := &fakeService{ticks: make(chan model.Tick)}
	store := state.NewStore()
	store.SetMarketIDs([]string{"KRW-BTC", "KRW-ETH"})
	queue := bus.NewTickQueue(8)

	tk := NewTicker(svc, store, queue, obs.NewMetrics())

	done := make(chan bool, 1)
	go func() {
		done <- tk.stream(t.Context(), []string{"KRW-BTC"})
	}()

	select {
	case resubscribe := <-done:
		assert.True(t, resubscribe)
	case <-time.After(3 * time.Second):
		t.Fatal("stream did not notice the market change")
	}
}
