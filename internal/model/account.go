package model

import "github.com/shopspring/decimal"

// Account is one currency balance. The average buy price is zero
// whenever the balance is zero.
type Account struct {
	Currency            string          `json:"currency"`
	Balance             decimal.Decimal `json:"balance"`
	Locked              decimal.Decimal `json:"locked"`
	AvgBuyPrice         decimal.Decimal `json:"avg_buy_price"`
	AvgBuyPriceModified bool            `json:"avg_buy_price_modified"`
	UnitCurrency        string          `json:"unit_currency"`
}
