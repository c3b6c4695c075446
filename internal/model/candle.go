package model

import "github.com/shopspring/decimal"

// Candle is one fixed-period OHLC aggregate for a market. Candle
// histories are held newest-first and replaced whole on every refresh.
type Candle struct {
	Market         string          `json:"market"`
	DateTimeUTC    string          `json:"candle_date_time_utc"`
	DateTimeKST    string          `json:"candle_date_time_kst"`
	OpeningPrice   decimal.Decimal `json:"opening_price"`
	HighPrice      decimal.Decimal `json:"high_price"`
	LowPrice       decimal.Decimal `json:"low_price"`
	TradePrice     decimal.Decimal `json:"trade_price"`
	Timestamp      int64           `json:"timestamp"`
	AccTradePrice  decimal.Decimal `json:"candle_acc_trade_price"`
	AccTradeVolume decimal.Decimal `json:"candle_acc_trade_volume"`
	Unit           uint8           `json:"unit"`
}
