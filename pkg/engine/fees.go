package engine

import (
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

// FeeModel maps a fill to its fee. It is a pure value: safe to share
// read-only across concurrent runs.
type FeeModel struct {
	MakerRate fixed.Point
	TakerRate fixed.Point
}

// Fee returns the fee for a fill of quantity at fillPrice. Market and
// stop-triggered fills are always taker; a limit fill is maker only when it
// executes exactly at its posted price.
func (f FeeModel) Fee(fillPrice, quantity fixed.Point, maker bool) fixed.Point {
	rate := f.TakerRate
	if maker {
		rate = f.MakerRate
	}
	return fillPrice.Mul(quantity).Mul(rate)
}
