package exception

import "errors"

var (
	ErrOrderInvalidRequest      = errors.New("order: invalid request")
	ErrOrderUnsupportedType     = errors.New("order: unsupported type")
	ErrOrderZeroPrice           = errors.New("order: price must not be zero")
	ErrOrderZeroVolume          = errors.New("order: volume must not be zero")
	ErrOrderInsufficientBalance = errors.New("order: insufficient balance")
)

// Internal-state errors: the ledger and the market state have diverged.
// They abort the single order attempt, never the process.
var (
	ErrOrderMissingTick    = errors.New("order: no last tick for market")
	ErrOrderMissingAccount = errors.New("order: quote account not found")
)
