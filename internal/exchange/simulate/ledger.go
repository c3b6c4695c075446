package simulate

import (
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"main/internal/model"
	"main/pkg/exception"
)

// applyPosition adds (sign +1) or removes (sign -1) volume traded at
// price to the market's base-currency account, keeping the weighted
// average buy price equal to the signed cost sum divided by the
// balance. A position drained to exactly zero is dropped from the map.
func applyPosition(accounts map[string]model.Account, quote, marketID string, sign int64, price, volume decimal.Decimal) (map[string]model.Account, error) {
	currency := model.Currency(marketID)
	account, ok := accounts[currency]
	if !ok {
		if sign < 0 {
			return nil, errors.Wrap(exception.ErrOrderMissingAccount, "no "+currency+" position to sell")
		}
		account = model.Account{
			Currency:            currency,
			UnitCurrency:        quote,
			AvgBuyPriceModified: true,
		}
	}

	signed := decimal.NewFromInt(sign)
	if sign < 0 && account.Balance.LessThan(volume) {
		return nil, errors.Wrap(exception.ErrOrderInsufficientBalance,
			"sell "+volume.String()+" "+currency+" exceeds balance "+account.Balance.String())
	}

	amount := account.AvgBuyPrice.Mul(account.Balance).Add(signed.Mul(price).Mul(volume))
	account.Balance = account.Balance.Add(signed.Mul(volume))
	if account.Balance.IsZero() {
		account.AvgBuyPrice = decimal.Zero
	} else {
		account.AvgBuyPrice = amount.Div(account.Balance)
	}

	next := make(map[string]model.Account, len(accounts)+1)
	for cur, acc := range accounts {
		next[cur] = acc
	}
	if account.Balance.IsZero() && currency != quote {
		delete(next, currency)
		return next, nil
	}
	next[currency] = account
	return next, nil
}

// adjustQuote moves amount in or out of the quote-currency account.
// The quote account must exist; it is never removed, even at zero.
func adjustQuote(accounts map[string]model.Account, quote string, amount decimal.Decimal) (map[string]model.Account, error) {
	account, ok := accounts[quote]
	if !ok {
		return nil, errors.Wrap(exception.ErrOrderMissingAccount, "no "+quote+" account")
	}

	balance := account.Balance.Add(amount)
	if balance.IsNegative() {
		return nil, errors.Wrap(exception.ErrOrderInsufficientBalance,
			"need "+amount.Neg().String()+" "+quote+", have "+account.Balance.String())
	}

	account.Balance = balance
	next := make(map[string]model.Account, len(accounts)+1)
	for cur, acc := range accounts {
		next[cur] = acc
	}
	next[quote] = account
	return next, nil
}
