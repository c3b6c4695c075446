package model

import (
	"strconv"
	"strings"

	"main/pkg/exception"
)

// RemainingReq is the exchange's remaining-request quota for one
// endpoint group, parsed from the Remaining-Req response header:
//
//	group=default; min=1799; sec=29
type RemainingReq struct {
	Group string
	Min   int
	Sec   int
}

// ParseRemainingReq parses a Remaining-Req header value.
func ParseRemainingReq(header string) (RemainingReq, error) {
	var parsed RemainingReq
	for _, field := range strings.Split(header, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(field), "=")
		if !ok {
			return RemainingReq{}, exception.ErrExchangeNoQuota
		}

		switch key {
		case "group":
			parsed.Group = value
		case "min":
			n, err := strconv.Atoi(value)
			if err != nil {
				return RemainingReq{}, exception.ErrExchangeNoQuota
			}
			parsed.Min = n
		case "sec":
			n, err := strconv.Atoi(value)
			if err != nil {
				return RemainingReq{}, exception.ErrExchangeNoQuota
			}
			parsed.Sec = n
		}
	}

	if parsed.Group == "" {
		return RemainingReq{}, exception.ErrExchangeNoQuota
	}
	return parsed, nil
}
