package model

import (
	"github.com/shopspring/decimal"

	"main/internal/model/enum"
)

// OrderRequest is one order intent. Price carries the quote amount for
// price-type orders; Volume carries the base volume for market sells.
type OrderRequest struct {
	Market     string          `json:"market"`
	Side       enum.OrderSide  `json:"side"`
	Volume     decimal.Decimal `json:"volume"`
	Price      decimal.Decimal `json:"price"`
	OrderType  enum.OrderType  `json:"ord_type"`
	Identifier string          `json:"identifier,omitempty"`
}

// OrderResponse mirrors the exchange's order placement result.
type OrderResponse struct {
	UUID            string          `json:"uuid"`
	Side            string          `json:"side"`
	OrdType         string          `json:"ord_type"`
	Price           decimal.Decimal `json:"price"`
	AvgPrice        decimal.Decimal `json:"avg_price"`
	State           string          `json:"state"`
	Market          string          `json:"market"`
	CreatedAt       string          `json:"created_at"`
	Volume          decimal.Decimal `json:"volume"`
	RemainingVolume decimal.Decimal `json:"remaining_volume"`
	ReservedFee     decimal.Decimal `json:"reserved_fee"`
	RemainingFee    decimal.Decimal `json:"remaining_fee"`
	PaidFee         decimal.Decimal `json:"paid_fee"`
	Locked          decimal.Decimal `json:"locked"`
	ExecutedVolume  decimal.Decimal `json:"executed_volume"`
	TradesCount     int64           `json:"trades_count"`
}

// OrderChance is the per-market order constraint set.
type OrderChance struct {
	BidFee     decimal.Decimal `json:"bid_fee"`
	AskFee     decimal.Decimal `json:"ask_fee"`
	Market     OrderMarket     `json:"market"`
	BidAccount Account         `json:"bid_account"`
	AskAccount Account         `json:"ask_account"`
}

// OrderMarket describes what orders a market accepts.
type OrderMarket struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	OrderTypes []string        `json:"order_types"`
	OrderSides []string        `json:"order_sides"`
	Bid        OrderConstraint `json:"bid"`
	Ask        OrderConstraint `json:"ask"`
	MaxTotal   decimal.Decimal `json:"max_total"`
	State      string          `json:"state"`
}

// OrderConstraint is the minimum order size for one side.
type OrderConstraint struct {
	Currency  string          `json:"currency"`
	PriceUnit string          `json:"price_unit"`
	MinTotal  decimal.Decimal `json:"min_total"`
}
