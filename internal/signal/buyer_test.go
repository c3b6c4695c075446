package signal

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/exchange/simulate"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/state"
	"main/pkg/exception"
)

type fakeTrader struct {
	accounts []model.Account
	orders   []model.OrderRequest
	orderErr error
}

func (f *fakeTrader) ListMarkets(context.Context) ([]model.MarketInfo, error) { return nil, nil }
func (f *fakeTrader) ListTickers(context.Context, []string) ([]model.Ticker, error) {
	return nil, nil
}
func (f *fakeTrader) ListCandles(context.Context, enum.MinuteUnit, string, int) ([]model.Candle, error) {
	return nil, nil
}
func (f *fakeTrader) GetAccounts(context.Context) ([]model.Account, error) {
	return f.accounts, nil
}
func (f *fakeTrader) GetOrderChance(context.Context, string) (model.OrderChance, error) {
	return model.OrderChance{}, nil
}
func (f *fakeTrader) PlaceOrder(_ context.Context, req model.OrderRequest) (model.OrderResponse, error) {
	f.orders = append(f.orders, req)
	if f.orderErr != nil {
		return model.OrderResponse{}, f.orderErr
	}
	return model.OrderResponse{State: "done", Market: req.Market}, nil
}
func (f *fakeTrader) StreamTicks(context.Context, []string) (<-chan model.Tick, func(), error) {
	return nil, func() {}, nil
}
func (f *fakeTrader) RemainingRequests() map[string]model.RemainingReq { return nil }
func (f *fakeTrader) ClearRemainingRequests()                          {}

type captureSender struct {
	msgs []string
}

func (c *captureSender) Send(_ context.Context, msg string) error {
	c.msgs = append(c.msgs, msg)
	return nil
}

func testConfig() Config {
	return Config{
		QuoteCurrency: "KRW",
		BuyPrice:      decimal.NewFromInt(100_000),
		MinPrice:      decimal.NewFromInt(1_000),
		FeeFactor:     decimal.NewFromFloat(0.0005),
		ShortWindow:   2,
		LongWindow:    3,
		Cooldown:      time.Minute,
		RetryPause:    time.Millisecond,
	}
}

func flatCandles(marketID string, price int64, n int) []model.Candle {
	candles := make([]model.Candle, n)
	for i := range candles {
		candles[i] = model.Candle{Market: marketID, TradePrice: decimal.NewFromInt(price)}
	}
	return candles
}

// crossingStore seeds a store where the live tick completes an upward
// crossing for KRW-XYZ.
func crossingStore(quoteBalance int64) *state.Store {
	store := state.NewStore()
	store.SetMarketIDs([]string{"KRW-XYZ"})
	store.SetAccounts(map[string]model.Account{
		"KRW": {Currency: "KRW", UnitCurrency: "KRW", Balance: decimal.NewFromInt(quoteBalance)},
	})
	store.PutCandles("KRW-XYZ", flatCandles("KRW-XYZ", 2_000, 3))
	store.PutTick(model.Tick{
		Code:           "KRW-XYZ",
		TradePrice:     decimal.NewFromInt(4_000),
		TradeTimestamp: 1_756_600_000_000,
		Timestamp:      1_756_600_000_100,
	})
	return store
}

func TestBuyerExecutesAgainstSimulatedLedger(t *testing.T) {
	store := crossingStore(0)
	svc := simulate.NewWithSeed(decimal.NewFromInt(1_000_000), &fakeTrader{}, store, "KRW", decimal.NewFromFloat(0.0005))
	sender := &captureSender{}
	metrics := obs.NewMetrics()

	buyer := NewBuyer(svc, store, sender, metrics, testConfig())
	buyer.Process(t.Context(), store.Snapshot())

	accounts := store.Accounts()
	require.Contains(t, accounts, "XYZ")
	assert.True(t, accounts["XYZ"].Balance.Equal(decimal.NewFromInt(25)))
	assert.True(t, accounts["XYZ"].AvgBuyPrice.Equal(decimal.NewFromInt(4_000)))
	assert.True(t, accounts["KRW"].Balance.Equal(decimal.NewFromInt(899_950)))

	lastBuy, ok := store.LastBuyTimes()["KRW-XYZ"]
	require.True(t, ok)
	assert.Equal(t, time.UnixMilli(1_756_600_000_000), lastBuy)

	assert.Equal(t, uint64(1), metrics.Snapshot().OrdersPlaced)
	require.Len(t, sender.msgs, 1)
	assert.Contains(t, sender.msgs[0], "buy KRW-XYZ (4000)")

	// the fresh position blocks a second buy on the same signal
	buyer.Process(t.Context(), store.Snapshot())
	assert.Equal(t, uint64(1), metrics.Snapshot().OrdersPlaced)
}

func TestBuyerPlacesPriceOrder(t *testing.T) {
	store := crossingStore(1_000_000)
	svc := &fakeTrader{}

	buyer := NewBuyer(svc, store, &captureSender{}, nil, testConfig())
	buyer.Process(t.Context(), store.Snapshot())

	require.Len(t, svc.orders, 1)
	order := svc.orders[0]
	assert.Equal(t, "KRW-XYZ", order.Market)
	assert.Equal(t, enum.OrderSideBid, order.Side)
	assert.Equal(t, enum.OrderTypePrice, order.OrderType)
	assert.True(t, order.Price.Equal(decimal.NewFromInt(100_000)))
	assert.True(t, order.Volume.IsZero())
}

func TestBuyerSkipsWithoutCross(t *testing.T) {
	store := crossingStore(1_000_000)
	store.PutTick(model.Tick{Code: "KRW-XYZ", TradePrice: decimal.NewFromInt(2_000)})
	svc := &fakeTrader{}

	buyer := NewBuyer(svc, store, &captureSender{}, nil, testConfig())
	buyer.Process(t.Context(), store.Snapshot())

	assert.Empty(t, svc.orders)
}

func TestBuyerHonorsCooldown(t *testing.T) {
	store := crossingStore(1_000_000)
	bought := time.Now()
	store.SetLastBuyTime("KRW-XYZ", bought)
	svc := &fakeTrader{}

	buyer := NewBuyer(svc, store, &captureSender{}, nil, testConfig())
	buyer.now = func() time.Time { return bought.Add(30 * time.Second) }
	buyer.Process(t.Context(), store.Snapshot())
	assert.Empty(t, svc.orders)

	buyer.now = func() time.Time { return bought.Add(61 * time.Second) }
	buyer.Process(t.Context(), store.Snapshot())
	assert.Len(t, svc.orders, 1)
}

func TestBuyerSkipsHeldPosition(t *testing.T) {
	store := crossingStore(1_000_000)
	store.SetAccounts(map[string]model.Account{
		"KRW": {Currency: "KRW", UnitCurrency: "KRW", Balance: decimal.NewFromInt(1_000_000)},
		"XYZ": {Currency: "XYZ", UnitCurrency: "KRW", Balance: decimal.NewFromInt(1)},
	})
	svc := &fakeTrader{}

	buyer := NewBuyer(svc, store, &captureSender{}, nil, testConfig())
	buyer.Process(t.Context(), store.Snapshot())

	assert.Empty(t, svc.orders)
}

func TestBuyerSkipsBelowPriceFloor(t *testing.T) {
	store := state.NewStore()
	store.SetMarketIDs([]string{"KRW-XYZ"})
	store.SetAccounts(map[string]model.Account{
		"KRW": {Currency: "KRW", UnitCurrency: "KRW", Balance: decimal.NewFromInt(1_000_000)},
	})
	store.PutCandles("KRW-XYZ", flatCandles("KRW-XYZ", 400, 3))
	store.PutTick(model.Tick{Code: "KRW-XYZ", TradePrice: decimal.NewFromInt(800)})
	svc := &fakeTrader{}

	buyer := NewBuyer(svc, store, &captureSender{}, nil, testConfig())
	buyer.Process(t.Context(), store.Snapshot())

	assert.Empty(t, svc.orders)
}

func TestBuyerSkipsInsufficientQuote(t *testing.T) {
	store := crossingStore(50_000)
	svc := &fakeTrader{}

	buyer := NewBuyer(svc, store, &captureSender{}, nil, testConfig())
	buyer.Process(t.Context(), store.Snapshot())

	assert.Empty(t, svc.orders)
}

func TestBuyerRetriesAndRecordsFailure(t *testing.T) {
	store := crossingStore(1_000_000)
	svc := &fakeTrader{orderErr: exception.ErrExchangeTransport}
	metrics := obs.NewMetrics()

	buyer := NewBuyer(svc, store, &captureSender{}, metrics, testConfig())
	buyer.Process(t.Context(), store.Snapshot())

	assert.Len(t, svc.orders, 2)
	assert.Equal(t, uint64(1), metrics.Snapshot().OrderFailures)
	assert.Empty(t, store.LastBuyTimes())
}

func TestBuyerVolumeGate(t *testing.T) {
	store := crossingStore(1_000_000)
	candles := flatCandles("KRW-XYZ", 2_000, 3)
	for i := range candles {
		candles[i].AccTradeVolume = decimal.NewFromInt(100)
	}
	store.PutCandles("KRW-XYZ", candles)

	cfg := testConfig()
	cfg.VolumeGate = true
	cfg.VolumeFactor = decimal.NewFromInt(2)

	svc := &fakeTrader{}
	buyer := NewBuyer(svc, store, &captureSender{}, nil, cfg)

	store.PutTick(model.Tick{
		Code:        "KRW-XYZ",
		TradePrice:  decimal.NewFromInt(4_000),
		TradeVolume: decimal.NewFromInt(150),
	})
	buyer.Process(t.Context(), store.Snapshot())
	assert.Empty(t, svc.orders)

	store.PutTick(model.Tick{
		Code:        "KRW-XYZ",
		TradePrice:  decimal.NewFromInt(4_000),
		TradeVolume: decimal.NewFromInt(300),
	})
	buyer.Process(t.Context(), store.Snapshot())
	assert.Len(t, svc.orders, 1)
}
