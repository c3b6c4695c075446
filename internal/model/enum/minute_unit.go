package enum

import "strconv"

// MinuteUnit is a candle period length accepted by the exchange.
type MinuteUnit uint8

const (
	Minute1   MinuteUnit = 1
	Minute3   MinuteUnit = 3
	Minute5   MinuteUnit = 5
	Minute10  MinuteUnit = 10
	Minute15  MinuteUnit = 15
	Minute30  MinuteUnit = 30
	Minute60  MinuteUnit = 60
	Minute240 MinuteUnit = 240
)

func (u MinuteUnit) IsAvailable() bool {
	switch u {
	case Minute1, Minute3, Minute5, Minute10, Minute15, Minute30, Minute60, Minute240:
		return true
	default:
		return false
	}
}

func (u MinuteUnit) String() string {
	return strconv.Itoa(int(u))
}

// Minutes returns the wall-clock length of one candle period.
func (u MinuteUnit) Minutes() int {
	return int(u)
}
