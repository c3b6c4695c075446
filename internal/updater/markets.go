package updater

import (
	"context"
	"strings"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/exchange"
	"main/internal/state"
)

const _defaultMarketRefresh = time.Minute

// Markets periodically refreshes the list of tradable markets quoted
// in one currency.
type Markets struct {
	svc      exchange.Service
	store    *state.Store
	quote    string
	interval time.Duration
}

func NewMarkets(svc exchange.Service, store *state.Store, quote string, interval time.Duration) *Markets {
	if interval <= 0 {
		interval = _defaultMarketRefresh
	}
	return &Markets{
		svc:      svc,
		store:    store,
		quote:    quote,
		interval: interval,
	}
}

// Run refreshes the market list immediately and then once per interval.
func (m *Markets) Run(ctx context.Context) {
	for {
		if err := m.refresh(ctx); err != nil {
			logs.Errorf("refresh market list, err: %+v", err)
		}
		if !pause(ctx, m.interval) {
			return
		}
	}
}

func (m *Markets) refresh(ctx context.Context) error {
	markets, err := m.svc.ListMarkets(ctx)
	if err != nil {
		return err
	}

	prefix := m.quote + "-"
	ids := make([]string, 0, len(markets))
	for _, market := range markets {
		if strings.HasPrefix(market.Market, prefix) {
			ids = append(ids, market.Market)
		}
	}

	m.store.SetMarketIDs(ids)
	return nil
}
