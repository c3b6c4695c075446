package updater

import (
	"context"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/exchange"
	"main/internal/model"
	"main/internal/state"
)

const _accountErrorPause = time.Second

// Accounts continuously mirrors exchange balances into the store. The
// loop body is paced by the service itself: the live client waits on
// the account rate limiter and the simulated one pauses between reads.
type Accounts struct {
	svc   exchange.Service
	store *state.Store
}

// storeBacked is implemented by services whose ledger already lives in
// the store; mirroring those balances back would overwrite an order
// fill landing between the read and the write.
type storeBacked interface {
	StoreBacked() bool
}

func NewAccounts(svc exchange.Service, store *state.Store) *Accounts {
	return &Accounts{svc: svc, store: store}
}

func (a *Accounts) Run(ctx context.Context) {
	if sb, ok := a.svc.(storeBacked); ok && sb.StoreBacked() {
		logs.Info("account mirror disabled, ledger is store resident")
		return
	}
	for {
		if err := a.refresh(ctx); err != nil {
			logs.Errorf("refresh accounts, err: %+v", err)
			if !pause(ctx, _accountErrorPause) {
				return
			}
			continue
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (a *Accounts) refresh(ctx context.Context) error {
	accounts, err := a.svc.GetAccounts(ctx)
	if err != nil {
		return err
	}

	byCurrency := make(map[string]model.Account, len(accounts))
	for _, account := range accounts {
		byCurrency[account.Currency] = account
	}

	a.store.SetAccounts(byCurrency)
	return nil
}
