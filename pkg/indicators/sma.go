package indicators

import (
	"github.com/tetuaoro/bts-rs/pkg/market"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

// Sma is a simple moving average over closing prices.
type Sma struct {
	windowSize int

	window []fixed.Point
	head   int
	count  int
	sum    fixed.Point
}

func NewSma(windowSize int) *Sma {
	if windowSize <= 0 {
		panic("window size must be > 0")
	}
	return &Sma{
		windowSize: windowSize,
		window:     make([]fixed.Point, windowSize),
		sum:        fixed.Zero,
	}
}

func (s *Sma) OnCandle(c market.Candle) {
	if s.count == s.windowSize {
		s.sum = s.sum.Sub(s.window[s.head])
	} else {
		s.count++
	}
	s.window[s.head] = c.Close
	s.sum = s.sum.Add(c.Close)
	s.head = (s.head + 1) % s.windowSize
}

func (s *Sma) Value() fixed.Point {
	if s.count == 0 {
		return fixed.Zero
	}
	return s.sum.DivInt(s.count)
}

func (s *Sma) Ready() bool {
	return s.count == s.windowSize
}

func (s *Sma) Reset() {
	s.window = make([]fixed.Point, s.windowSize)
	s.head = 0
	s.count = 0
	s.sum = fixed.Zero
}
