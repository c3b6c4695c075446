package exception

import "errors"

// Exchange errors
var (
	ErrExchangeTransport = errors.New("exchange: transport failure")
	ErrExchangeProtocol  = errors.New("exchange: unexpected response shape")
	ErrExchangeRejected  = errors.New("exchange: request rejected")
	ErrExchangeNoQuota   = errors.New("exchange: missing remaining request header")
)
