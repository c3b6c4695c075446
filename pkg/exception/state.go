package exception

import "errors"

// State errors
var (
	ErrLogQueueFull = errors.New("state: log queue full")
)
