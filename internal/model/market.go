package model

import "strings"

// MarketInfo is one tradable market as listed by the exchange.
type MarketInfo struct {
	Market      string `json:"market"`
	KoreanName  string `json:"korean_name"`
	EnglishName string `json:"english_name"`
	Warning     string `json:"market_warning"`
}

// Currency returns the base currency of a market id such as "KRW-BTC".
func Currency(marketID string) string {
	if _, base, ok := strings.Cut(marketID, "-"); ok {
		return base
	}
	return marketID
}

// QuoteOf returns the quote currency of a market id such as "KRW-BTC".
func QuoteOf(marketID string) string {
	quote, _, _ := strings.Cut(marketID, "-")
	return quote
}

// MarketID builds the exchange market id for a quote/base pair.
func MarketID(quote, base string) string {
	return quote + "-" + base
}
