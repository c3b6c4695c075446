package signal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config carries the trading rule constants. Values are read once at
// construction and never change during a run.
type Config struct {
	// QuoteCurrency is the settlement currency, e.g. "KRW".
	QuoteCurrency string
	// BuyPrice is the quote amount spent on every buy.
	BuyPrice decimal.Decimal
	// MinPrice is the tick-price floor below which no buy fires.
	MinPrice decimal.Decimal
	// FeeFactor is the exchange fee as a fraction of notional.
	FeeFactor decimal.Decimal
	// VolumeFactor gates buys on abnormal volume when VolumeGate is on.
	VolumeFactor decimal.Decimal
	VolumeGate   bool
	// ShortWindow and LongWindow are the moving-average sizes.
	ShortWindow int
	LongWindow  int
	// Cooldown is the minimum wait after a buy before the same market
	// may be bought or sold again.
	Cooldown time.Duration
	// RetryPause sits between the two attempts of an order.
	RetryPause time.Duration
}

func (c Config) withDefaults() Config {
	if c.ShortWindow <= 0 {
		c.ShortWindow = 5
	}
	if c.LongWindow <= 0 {
		c.LongWindow = 20
	}
	if c.Cooldown <= 0 {
		c.Cooldown = time.Minute
	}
	if c.RetryPause <= 0 {
		c.RetryPause = 10 * time.Millisecond
	}
	return c
}
