package enum

// OrderSide is the exchange wire value for an order direction.
type OrderSide string

const (
	OrderSideBid OrderSide = "bid"
	OrderSideAsk OrderSide = "ask"
)

func (s OrderSide) IsAvailable() bool {
	return s == OrderSideBid || s == OrderSideAsk
}

// OrderType is the exchange wire value for an order kind.
type OrderType string

const (
	// OrderTypeLimit places at a caller-specified price.
	OrderTypeLimit OrderType = "limit"
	// OrderTypePrice buys at market for a fixed quote-currency amount.
	OrderTypePrice OrderType = "price"
	// OrderTypeMarket sells a fixed volume at market.
	OrderTypeMarket OrderType = "market"
)

func (t OrderType) IsAvailable() bool {
	return t == OrderTypeLimit || t == OrderTypePrice || t == OrderTypeMarket
}
