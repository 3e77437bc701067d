package indicators

import (
	"github.com/tetuaoro/bts-rs/pkg/market"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

// Atr is Wilder's average true range.
type Atr struct {
	windowSize int

	lastClose  fixed.Point
	lastAtr    fixed.Point
	currentAtr fixed.Point
	currentTr  fixed.Point
	seen       int
}

func NewAtr(windowSize int) *Atr {
	if windowSize <= 0 {
		panic("window size must be > 0")
	}
	return &Atr{
		windowSize: windowSize,
		lastClose:  fixed.Zero,
		lastAtr:    fixed.Zero,
		currentAtr: fixed.Zero,
		currentTr:  fixed.Zero,
	}
}

func (a *Atr) OnCandle(c market.Candle) {
	defer func() {
		a.lastClose = c.Close
	}()

	if a.seen == 0 {
		a.seen++
		return
	}
	a.seen++

	tr := c.High.Sub(c.Low).Abs()
	if hc := c.High.Sub(a.lastClose).Abs(); hc.Gt(tr) {
		tr = hc
	}
	if lc := c.Low.Sub(a.lastClose).Abs(); lc.Gt(tr) {
		tr = lc
	}
	a.currentTr = tr

	if a.lastAtr.IsZero() {
		a.currentAtr = tr
	} else {
		a.currentAtr = a.lastAtr.MulInt(a.windowSize - 1).Add(tr).DivInt(a.windowSize)
	}
	a.lastAtr = a.currentAtr
}

func (a *Atr) Value() fixed.Point {
	return a.currentAtr
}

func (a *Atr) TrueRange() fixed.Point {
	return a.currentTr
}

func (a *Atr) Ready() bool {
	return a.seen > a.windowSize
}

func (a *Atr) Reset() {
	a.lastClose = fixed.Zero
	a.lastAtr = fixed.Zero
	a.currentAtr = fixed.Zero
	a.currentTr = fixed.Zero
	a.seen = 0
}
