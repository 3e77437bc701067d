package strategy

import (
	"github.com/tetuaoro/bts-rs/pkg/engine"
	"github.com/tetuaoro/bts-rs/pkg/indicators"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

// SmaCross goes long on a golden cross and flat on a death cross. The open
// is protected by a trailing stop so a crash between crosses does not ride
// all the way down.
type SmaCross struct {
	fast *indicators.Sma
	slow *indicators.Sma

	size         fixed.Point
	trailPercent fixed.Point

	lastAbove bool
	primed    bool
}

func NewSmaCross(fastWindow, slowWindow int, size, trailPercent fixed.Point) *SmaCross {
	if fastWindow >= slowWindow {
		panic("fast window must be shorter than slow window")
	}
	return &SmaCross{
		fast:         indicators.NewSma(fastWindow),
		slow:         indicators.NewSma(slowWindow),
		size:         size,
		trailPercent: trailPercent,
	}
}

func (s *SmaCross) OnCandle(snapshot engine.Snapshot) []engine.Intent {

	s.fast.OnCandle(snapshot.Candle)
	s.slow.OnCandle(snapshot.Candle)

	if !s.slow.Ready() {
		return nil
	}

	above := s.fast.Value().Gt(s.slow.Value())
	defer func() {
		s.lastAbove = above
		s.primed = true
	}()

	if !s.primed {
		return nil
	}

	switch {
	case above && !s.lastAbove && snapshot.Position.Side == engine.PositionFlat:
		var intents []engine.Intent
		intents = append(intents, engine.Submit(engine.Order{
			Side:     engine.SideBuy,
			Kind:     engine.KindMarket,
			Quantity: s.size,
		}))
		if s.trailPercent.IsPos() {
			intents = append(intents, engine.Submit(engine.Order{
				Side:         engine.SideSell,
				Kind:         engine.KindTrailingStop,
				Quantity:     s.size,
				StopPrice:    snapshot.Candle.Close.Mul(fixed.One.Sub(s.trailPercent.Div(fixed.Hundred))),
				TrailPercent: s.trailPercent,
			}))
		}
		return intents

	case !above && s.lastAbove && snapshot.Position.Side == engine.PositionLong:
		intents := []engine.Intent{engine.Submit(engine.Order{
			Side:     engine.SideSell,
			Kind:     engine.KindMarket,
			Quantity: snapshot.Position.Quantity,
		})}
		for _, o := range snapshot.Orders {
			if o.Kind == engine.KindTrailingStop {
				intents = append(intents, engine.Cancel(o.ID))
			}
		}
		return intents
	}
	return nil
}
