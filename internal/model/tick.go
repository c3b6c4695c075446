package model

import "github.com/shopspring/decimal"

// Ticker is the REST snapshot of the latest trade for a market.
type Ticker struct {
	Market            string          `json:"market"`
	TradeDate         string          `json:"trade_date"`
	TradeTime         string          `json:"trade_time"`
	TradeTimestamp    int64           `json:"trade_timestamp"`
	OpeningPrice      decimal.Decimal `json:"opening_price"`
	HighPrice         decimal.Decimal `json:"high_price"`
	LowPrice          decimal.Decimal `json:"low_price"`
	TradePrice        decimal.Decimal `json:"trade_price"`
	PrevClosingPrice  decimal.Decimal `json:"prev_closing_price"`
	SignedChangePrice decimal.Decimal `json:"signed_change_price"`
	SignedChangeRate  float64         `json:"signed_change_rate"`
	TradeVolume       decimal.Decimal `json:"trade_volume"`
	AccTradePrice     decimal.Decimal `json:"acc_trade_price"`
	AccTradeVolume    decimal.Decimal `json:"acc_trade_volume"`
	Timestamp         int64           `json:"timestamp"`
}

// Tick is one latest-trade update from the websocket stream. Only the
// newest tick per market is retained.
type Tick struct {
	Type             string          `json:"type"`
	Code             string          `json:"code"`
	OpeningPrice     decimal.Decimal `json:"opening_price"`
	HighPrice        decimal.Decimal `json:"high_price"`
	LowPrice         decimal.Decimal `json:"low_price"`
	TradePrice       decimal.Decimal `json:"trade_price"`
	PrevClosingPrice decimal.Decimal `json:"prev_closing_price"`
	Change           string          `json:"change"`
	ChangePrice      decimal.Decimal `json:"change_price"`
	TradeVolume      decimal.Decimal `json:"trade_volume"`
	AccTradePrice    decimal.Decimal `json:"acc_trade_price"`
	AccTradeVolume   decimal.Decimal `json:"acc_trade_volume"`
	AskBid           string          `json:"ask_bid"`
	TradeDate        string          `json:"trade_date"`
	TradeTime        string          `json:"trade_time"`
	TradeTimestamp   int64           `json:"trade_timestamp"`
	MarketState      string          `json:"market_state"`
	MarketWarning    string          `json:"market_warning"`
	Timestamp        int64           `json:"timestamp"`
	StreamType       string          `json:"stream_type"`
}
