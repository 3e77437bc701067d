package strategy

import (
	"github.com/tetuaoro/bts-rs/pkg/engine"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

var (
	three         = fixed.FromInt(3, 0)
	negativeThree = fixed.FromInt(-3, 0)
)

// MeanReversion fades z-score extremes of the close against a rolling mean.
// A stretch beyond three standard deviations opens against the move with a
// stop at twice the stretch and a take-profit back at the mean.
type MeanReversion struct {
	windowSize int
	size       fixed.Point

	closes []fixed.Point
}

func NewMeanReversion(windowSize int, size fixed.Point) *MeanReversion {
	if windowSize <= 1 {
		panic("window size must be > 1")
	}
	return &MeanReversion{
		windowSize: windowSize,
		size:       size,
	}
}

func (m *MeanReversion) OnCandle(snapshot engine.Snapshot) []engine.Intent {

	m.closes = append(m.closes, snapshot.Candle.Close)
	if len(m.closes) > m.windowSize {
		m.closes = m.closes[1:]
	}
	if len(m.closes) < m.windowSize || snapshot.Position.Side != engine.PositionFlat {
		return nil
	}

	// One bracket leg filling leaves the sibling resting. Clear it before
	// looking for a new setup.
	var stale []engine.Intent
	for _, o := range snapshot.Orders {
		if o.Kind.IsExit() {
			stale = append(stale, engine.Cancel(o.ID))
		}
	}
	if len(stale) > 0 {
		return stale
	}

	mean := fixed.Mean(m.closes)
	stdDev := fixed.StdDev(m.closes, mean)
	if stdDev.IsZero() {
		return nil
	}

	close := snapshot.Candle.Close
	z := close.Sub(mean).Div(stdDev)

	switch {
	case z.Gte(three):
		stretch := close.Sub(mean)
		return []engine.Intent{
			engine.Submit(engine.Order{
				Side:     engine.SideSell,
				Kind:     engine.KindMarket,
				Quantity: m.size,
			}),
			engine.Submit(engine.Order{
				Side:      engine.SideBuy,
				Kind:      engine.KindStopLoss,
				Quantity:  m.size,
				StopPrice: close.Add(stretch),
			}),
			engine.Submit(engine.Order{
				Side:      engine.SideBuy,
				Kind:      engine.KindTakeProfit,
				Quantity:  m.size,
				StopPrice: mean,
			}),
		}
	case z.Lte(negativeThree):
		stretch := mean.Sub(close)
		return []engine.Intent{
			engine.Submit(engine.Order{
				Side:     engine.SideBuy,
				Kind:     engine.KindMarket,
				Quantity: m.size,
			}),
			engine.Submit(engine.Order{
				Side:      engine.SideSell,
				Kind:      engine.KindStopLoss,
				Quantity:  m.size,
				StopPrice: close.Sub(stretch),
			}),
			engine.Submit(engine.Order{
				Side:      engine.SideSell,
				Kind:      engine.KindTakeProfit,
				Quantity:  m.size,
				StopPrice: mean,
			}),
		}
	}
	return nil
}
