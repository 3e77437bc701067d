package indicators

import (
	"github.com/tetuaoro/bts-rs/pkg/market"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

// Ema is an exponential moving average over closing prices, seeded with the
// simple average of the first window.
type Ema struct {
	windowSize int
	alpha      fixed.Point

	seedSum fixed.Point
	seen    int
	current fixed.Point
}

func NewEma(windowSize int) *Ema {
	if windowSize <= 0 {
		panic("window size must be > 0")
	}
	return &Ema{
		windowSize: windowSize,
		alpha:      fixed.Two.DivInt(windowSize + 1),
		seedSum:    fixed.Zero,
		current:    fixed.Zero,
	}
}

func (e *Ema) OnCandle(c market.Candle) {
	e.seen++
	if e.seen < e.windowSize {
		e.seedSum = e.seedSum.Add(c.Close)
		return
	}
	if e.seen == e.windowSize {
		e.current = e.seedSum.Add(c.Close).DivInt(e.windowSize)
		return
	}
	e.current = c.Close.Sub(e.current).Mul(e.alpha).Add(e.current)
}

func (e *Ema) Value() fixed.Point {
	return e.current
}

func (e *Ema) Ready() bool {
	return e.seen >= e.windowSize
}

func (e *Ema) Reset() {
	e.seedSum = fixed.Zero
	e.seen = 0
	e.current = fixed.Zero
}
