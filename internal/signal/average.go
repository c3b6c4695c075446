package signal

import (
	"github.com/shopspring/decimal"

	"main/internal/model"
)

// closeSeries is the close-price series a crossing is evaluated on:
// candle closes newest-first with the live tick prepended as the
// current period's price. Buy and sell both evaluate this same series,
// so the two paths can never disagree about where the averages sit.
func closeSeries(tick model.Tick, candles []model.Candle) []decimal.Decimal {
	series := make([]decimal.Decimal, 0, len(candles)+1)
	series = append(series, tick.TradePrice)
	for _, candle := range candles {
		series = append(series, candle.TradePrice)
	}
	return series
}

// movingAverage is the mean of the newest window entries, or of the
// whole series when it is shorter than the window.
func movingAverage(series []decimal.Decimal, window int) decimal.Decimal {
	if len(series) == 0 || window <= 0 {
		return decimal.Zero
	}
	if window > len(series) {
		window = len(series)
	}

	sum := decimal.Zero
	for _, price := range series[:window] {
		sum = sum.Add(price)
	}
	return sum.Div(decimal.NewFromInt(int64(window)))
}

// isGoldenCross reports an upward crossing: the short average was at or
// below the long average one period ago and is above it now.
func isGoldenCross(series []decimal.Decimal, short, long int) bool {
	if len(series) < 2 {
		return false
	}

	prevShort := movingAverage(series[1:], short)
	prevLong := movingAverage(series[1:], long)
	curShort := movingAverage(series, short)
	curLong := movingAverage(series, long)

	return prevShort.LessThanOrEqual(prevLong) && curShort.GreaterThan(curLong)
}

// isDeadCross reports the short average sitting below the long average.
// A static comparison is enough for the exit: once crossed down, the
// position leaves on the next tick.
func isDeadCross(series []decimal.Decimal, short, long int) bool {
	return movingAverage(series, short).LessThan(movingAverage(series, long))
}

// isAbnormalVolume reports the tick's trade volume exceeding the
// average candle volume by the configured multiplier.
func isAbnormalVolume(tick model.Tick, candles []model.Candle, factor decimal.Decimal, window int) bool {
	if len(candles) == 0 {
		return false
	}
	if window > len(candles) {
		window = len(candles)
	}

	sum := decimal.Zero
	for _, candle := range candles[:window] {
		sum = sum.Add(candle.AccTradeVolume)
	}
	average := sum.Div(decimal.NewFromInt(int64(window)))

	return tick.TradeVolume.GreaterThan(average.Mul(factor))
}
