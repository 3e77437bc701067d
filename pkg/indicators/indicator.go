package indicators

import (
	"github.com/tetuaoro/bts-rs/pkg/market"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

// Indicator is a streaming indicator fed one candle at a time.
type Indicator interface {
	OnCandle(c market.Candle)
	Value() fixed.Point
	Ready() bool
}

// Series precomputes an indicator over a candle sequence, aligned
// index-for-index. Positions where the indicator has not warmed up yet hold
// zero; strategies should check against the warm-up length.
func Series(candles []market.Candle, indicator Indicator) []fixed.Point {
	out := make([]fixed.Point, len(candles))
	for i, c := range candles {
		indicator.OnCandle(c)
		if indicator.Ready() {
			out[i] = indicator.Value()
		} else {
			out[i] = fixed.Zero
		}
	}
	return out
}
