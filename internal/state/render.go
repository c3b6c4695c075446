package state

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"main/internal/model"
)

// Rendered line views consumed by the dashboard collaborator. The
// collaborator only reads; it never reaches into the snapshot itself.

// AccountInfo renders one line per held currency plus a portfolio
// total, quote currency first.
func (s AppState) AccountInfo() []string {
	render := func(a model.Account) string {
		price := decimal.NewFromInt(1)
		if a.Currency != a.UnitCurrency {
			tick, ok := s.LastTicks[model.MarketID(a.UnitCurrency, a.Currency)]
			if !ok {
				price = decimal.Zero
			} else {
				price = tick.TradePrice
			}
		}

		return fmt.Sprintf("%s - Amount: %s(%s), Price: %s(%s), Qty: %s",
			a.Currency,
			comma(a.Balance.Mul(price), 0),
			comma(a.Balance.Mul(a.AvgBuyPrice), 0),
			comma(price, 0),
			comma(a.AvgBuyPrice, 0),
			comma(a.Balance, 4),
		)
	}

	currentAmount := func(a model.Account) decimal.Decimal {
		if a.Currency == a.UnitCurrency {
			return a.Balance
		}
		tick, ok := s.LastTicks[model.MarketID(a.UnitCurrency, a.Currency)]
		if !ok {
			return decimal.Zero
		}
		return a.Balance.Mul(tick.TradePrice)
	}

	var lines []string
	var positions []string
	total := decimal.Zero
	for _, a := range s.Accounts {
		total = total.Add(currentAmount(a))
		if a.Currency == a.UnitCurrency {
			lines = append(lines, render(a))
			continue
		}
		positions = append(positions, render(a))
	}
	slices.Sort(positions)

	if len(positions) > 0 {
		lines = append(lines, "-----------")
		lines = append(lines, positions...)
	}
	lines = append(lines, "-----------")
	lines = append(lines, fmt.Sprintf("Total - Amount: %s", comma(total, 0)))
	return lines
}

// CandleInfo groups markets by their newest candle time so refresh lag
// is visible at a glance.
func (s AppState) CandleInfo() []string {
	byTime := map[string][]string{}
	for marketID, candles := range s.Candles {
		if len(candles) == 0 {
			continue
		}
		at := candles[0].DateTimeKST
		byTime[at] = append(byTime[at], model.Currency(marketID))
	}

	lines := make([]string, 0, len(byTime))
	for at, currencies := range byTime {
		if len(currencies) < 5 {
			slices.Sort(currencies)
			lines = append(lines, fmt.Sprintf("%s -> %d (%s)", at, len(currencies), strings.Join(currencies, "/")))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s -> %d", at, len(currencies)))
	}
	slices.Sort(lines)
	return lines
}

// StateInfo renders the synchronizer counters and freshness markers.
func (s AppState) StateInfo() []string {
	lastCandleTime := ""
	for _, candles := range s.Candles {
		if len(candles) > 0 && candles[0].DateTimeKST > lastCandleTime {
			lastCandleTime = candles[0].DateTimeKST
		}
	}
	if lastCandleTime == "" {
		lastCandleTime = "N/A"
	}

	lastTickTime := "N/A"
	var newest int64
	for _, tick := range s.LastTicks {
		if tick.Timestamp > newest {
			newest = tick.Timestamp
			lastTickTime = time.UnixMilli(tick.Timestamp).Format("2006-01-02T15:04:05.000")
		}
	}

	return []string{
		fmt.Sprintf("market: %d", len(s.MarketIDs)),
		fmt.Sprintf("candle: %d (%s)", len(s.Candles), lastCandleTime),
		fmt.Sprintf("last_tick: %d (%s)", len(s.LastTicks), lastTickTime),
	}
}

// MessageInfo renders the log ring, newest first with descending
// indices.
func (s AppState) MessageInfo() []string {
	lines := make([]string, 0, len(s.LogMessages))
	for i, line := range s.LogMessages {
		lines = append(lines, fmt.Sprintf("[%d] %s", len(s.LogMessages)-1-i, line))
	}
	return lines
}

// comma formats a decimal with thousands separators.
func comma(d decimal.Decimal, places int32) string {
	fixed := d.StringFixed(places)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}

	return b.String()
}
