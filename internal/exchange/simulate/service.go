package simulate

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"main/internal/exchange"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/state"
	"main/pkg/exception"
)

// Service is the dummy-ledger exchange used for risk-free strategy
// testing. Read-only calls pass through to the real exchange; accounts
// and order placement are served from the state store instead, so no
// order ever reaches the venue.
type Service struct {
	real      exchange.Service
	store     *state.Store
	quote     string
	feeFactor decimal.Decimal
}

func New(real exchange.Service, store *state.Store, quote string, feeFactor decimal.Decimal) *Service {
	return &Service{
		real:      real,
		store:     store,
		quote:     quote,
		feeFactor: feeFactor,
	}
}

// NewWithSeed initializes the simulated ledger with a quote-currency
// balance. The quote account stays present for the rest of the run,
// even at zero balance.
func NewWithSeed(seed decimal.Decimal, real exchange.Service, store *state.Store, quote string, feeFactor decimal.Decimal) *Service {
	s := New(real, store, quote, feeFactor)
	s.store.SetAccounts(map[string]model.Account{
		quote: {
			Currency:            quote,
			Balance:             seed,
			AvgBuyPrice:         decimal.Zero,
			AvgBuyPriceModified: true,
			UnitCurrency:        quote,
		},
	})
	return s
}

func (s *Service) ListMarkets(ctx context.Context) ([]model.MarketInfo, error) {
	return s.real.ListMarkets(ctx)
}

func (s *Service) ListTickers(ctx context.Context, marketIDs []string) ([]model.Ticker, error) {
	return s.real.ListTickers(ctx, marketIDs)
}

func (s *Service) ListCandles(ctx context.Context, unit enum.MinuteUnit, marketID string, count int) ([]model.Candle, error) {
	return s.real.ListCandles(ctx, unit, marketID, count)
}

// GetAccounts serves the simulated ledger. The short pause stands in
// for the network latency a live call would see.
func (s *Service) GetAccounts(ctx context.Context) ([]model.Account, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(10 * time.Millisecond):
	}

	accounts := s.store.Accounts()
	list := make([]model.Account, 0, len(accounts))
	for _, account := range accounts {
		list = append(list, account)
	}
	return list, nil
}

func (s *Service) GetOrderChance(ctx context.Context, marketID string) (model.OrderChance, error) {
	return s.real.GetOrderChance(ctx, marketID)
}

func (s *Service) StreamTicks(ctx context.Context, marketIDs []string) (<-chan model.Tick, func(), error) {
	return s.real.StreamTicks(ctx, marketIDs)
}

// StoreBacked reports that the ledger is kept in the state store
// directly, so no account mirror is needed on top of it.
func (s *Service) StoreBacked() bool { return true }

func (s *Service) RemainingRequests() map[string]model.RemainingReq {
	return s.real.RemainingRequests()
}

func (s *Service) ClearRemainingRequests() {
	s.real.ClearRemainingRequests()
}

// PlaceOrder validates the request against the ledger and applies the
// balance mutations atomically. Missing market state aborts the single
// attempt with an internal-state error.
func (s *Service) PlaceOrder(ctx context.Context, req model.OrderRequest) (model.OrderResponse, error) {
	switch req.OrderType {
	case enum.OrderTypeLimit:
		return s.placeLimit(req)
	case enum.OrderTypePrice:
		return s.placePriceBuy(req)
	case enum.OrderTypeMarket:
		return s.placeMarketSell(req)
	default:
		return model.OrderResponse{}, errors.Wrap(exception.ErrOrderUnsupportedType, string(req.OrderType))
	}
}

// placeLimit books a buy at the caller-specified price.
func (s *Service) placeLimit(req model.OrderRequest) (model.OrderResponse, error) {
	if req.Side != enum.OrderSideBid {
		return model.OrderResponse{}, errors.Wrap(exception.ErrOrderInvalidRequest, "limit orders are bid only")
	}
	if req.Price.IsZero() {
		return model.OrderResponse{}, exception.ErrOrderZeroPrice
	}
	if req.Volume.IsZero() {
		return model.OrderResponse{}, exception.ErrOrderZeroVolume
	}

	cost := req.Price.Mul(req.Volume)
	fee := cost.Mul(s.feeFactor)
	if err := s.buy(req.Market, req.Price, req.Volume, cost, fee); err != nil {
		return model.OrderResponse{}, err
	}

	return s.response(req, req.Price, req.Volume, fee), nil
}

// placePriceBuy books a market buy spending req.Price of the quote
// currency at the latest tick price.
func (s *Service) placePriceBuy(req model.OrderRequest) (model.OrderResponse, error) {
	if req.Side != enum.OrderSideBid || req.Price.IsZero() {
		return model.OrderResponse{}, errors.Wrap(exception.ErrOrderInvalidRequest, "price orders need a bid side and a quote amount")
	}

	tick, ok := s.store.LastTicks()[req.Market]
	if !ok {
		return model.OrderResponse{}, errors.Wrap(exception.ErrOrderMissingTick, req.Market)
	}

	price := tick.TradePrice
	volume := req.Price.Div(price)
	fee := req.Price.Mul(s.feeFactor)
	if err := s.buy(req.Market, price, volume, req.Price, fee); err != nil {
		return model.OrderResponse{}, err
	}

	return s.response(req, price, volume, fee), nil
}

// placeMarketSell books a market sell of req.Volume at the latest tick
// price.
func (s *Service) placeMarketSell(req model.OrderRequest) (model.OrderResponse, error) {
	if req.Side != enum.OrderSideAsk || req.Volume.IsZero() {
		return model.OrderResponse{}, errors.Wrap(exception.ErrOrderInvalidRequest, "market orders need an ask side and a volume")
	}

	tick, ok := s.store.LastTicks()[req.Market]
	if !ok {
		return model.OrderResponse{}, errors.Wrap(exception.ErrOrderMissingTick, req.Market)
	}

	price := tick.TradePrice
	proceeds := price.Mul(req.Volume)
	fee := proceeds.Mul(s.feeFactor)

	err := s.store.UpdateAccounts(func(accounts map[string]model.Account) (map[string]model.Account, error) {
		next, err := applyPosition(accounts, s.quote, req.Market, -1, price, req.Volume)
		if err != nil {
			return nil, err
		}
		return adjustQuote(next, s.quote, proceeds.Sub(fee))
	})
	if err != nil {
		return model.OrderResponse{}, err
	}

	return s.response(req, price, req.Volume, fee), nil
}

// buy applies one purchase: add the position, charge cost plus fee to
// the quote account. Validation runs inside the accounts update so the
// balance check and the mutation are one atomic step.
func (s *Service) buy(marketID string, price, volume, cost, fee decimal.Decimal) error {
	return s.store.UpdateAccounts(func(accounts map[string]model.Account) (map[string]model.Account, error) {
		quote, ok := accounts[s.quote]
		if !ok {
			return nil, errors.Wrap(exception.ErrOrderMissingAccount, "no "+s.quote+" account")
		}
		if quote.Balance.LessThan(cost.Add(fee)) {
			return nil, errors.Wrap(exception.ErrOrderInsufficientBalance,
				"need "+cost.Add(fee).String()+" "+s.quote+", have "+quote.Balance.String())
		}

		next, err := applyPosition(accounts, s.quote, marketID, 1, price, volume)
		if err != nil {
			return nil, err
		}
		return adjustQuote(next, s.quote, cost.Add(fee).Neg())
	})
}

func (s *Service) response(req model.OrderRequest, price, volume, fee decimal.Decimal) model.OrderResponse {
	return model.OrderResponse{
		Market:         req.Market,
		Side:           string(req.Side),
		OrdType:        string(req.OrderType),
		Price:          price,
		AvgPrice:       price,
		State:          "done",
		ExecutedVolume: volume,
		PaidFee:        fee,
		TradesCount:    1,
	}
}
