package engine

import (
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

type PositionSide int

const (
	PositionFlat PositionSide = iota
	PositionLong
	PositionShort
)

func (s PositionSide) String() string {
	switch s {
	case PositionLong:
		return "long"
	case PositionShort:
		return "short"
	default:
		return "flat"
	}
}

// Position tracks the single net exposure of a run. Quantity is zero exactly
// when the side is flat; the average entry price is a weighted average over
// increases and untouched by decreases.
type Position struct {
	Side          PositionSide
	Quantity      fixed.Point
	AvgEntryPrice fixed.Point
	RealizedPnL   fixed.Point
	UnrealizedPnL fixed.Point
	Leverage      fixed.Point
}

func newPosition(leverage fixed.Point) Position {
	return Position{Side: PositionFlat, Leverage: leverage}
}

// change summarizes the effect of one fill on the position, in the terms the
// wallet needs: which exposure was opened at the fill price, which exposure
// was closed at its carried entry price, and the gross P&L realized.
type change struct {
	openedQty   fixed.Point
	closedQty   fixed.Point
	closedEntry fixed.Point
	realized    fixed.Point
}

func (p Position) directionSign() fixed.Point {
	if p.Side == PositionShort {
		return fixed.One.Neg()
	}
	return fixed.One
}

func sideOf(s Side) PositionSide {
	if s == SideBuy {
		return PositionLong
	}
	return PositionShort
}

func (s PositionSide) opposite() PositionSide {
	switch s {
	case PositionLong:
		return PositionShort
	case PositionShort:
		return PositionLong
	default:
		return PositionFlat
	}
}

// preview computes the change a fill of quantity at price on the given side
// would produce, without mutating the position. The wallet gate uses the
// opened quantity to size the margin requirement.
func (p Position) preview(side Side, quantity, price fixed.Point) change {
	fillSide := sideOf(side)

	// Flat or same-side fill: pure increase.
	if p.Side == PositionFlat || p.Side == fillSide {
		return change{openedQty: quantity}
	}

	// Opposite-side fill: decrease, possibly flipping.
	closed := quantity.Min(p.Quantity)
	realized := price.Sub(p.AvgEntryPrice).Mul(closed).Mul(p.directionSign())
	ch := change{
		closedQty:   closed,
		closedEntry: p.AvgEntryPrice,
		realized:    realized,
	}
	if quantity.Gt(p.Quantity) {
		ch.openedQty = quantity.Sub(p.Quantity)
	}
	return ch
}

// apply mutates the position according to a fill. Increases recompute the
// weighted average entry; decreases accrue realized P&L proportionally; a
// decrease past zero flips the side and restarts the average entry at the
// fill price for the residual.
func (p *Position) apply(side Side, quantity, price fixed.Point) change {
	ch := p.preview(side, quantity, price)
	fillSide := sideOf(side)

	if !ch.closedQty.IsZero() {
		p.RealizedPnL = p.RealizedPnL.Add(ch.realized)
		p.Quantity = p.Quantity.Sub(ch.closedQty)
		if p.Quantity.IsZero() {
			p.Side = PositionFlat
			p.AvgEntryPrice = fixed.Zero
			p.UnrealizedPnL = fixed.Zero
		}
	}

	if !ch.openedQty.IsZero() {
		if p.Side == PositionFlat {
			p.Side = fillSide
			p.Quantity = ch.openedQty
			p.AvgEntryPrice = price
		} else {
			prior := p.Quantity.Mul(p.AvgEntryPrice)
			added := ch.openedQty.Mul(price)
			p.Quantity = p.Quantity.Add(ch.openedQty)
			p.AvgEntryPrice = prior.Add(added).Div(p.Quantity)
		}
	}

	return ch
}

// mark recomputes the unrealized P&L against the given close price. This is
// what drives the equity sample, independent of fills.
func (p *Position) mark(close fixed.Point) {
	if p.Side == PositionFlat {
		p.UnrealizedPnL = fixed.Zero
		return
	}
	p.UnrealizedPnL = close.Sub(p.AvgEntryPrice).Mul(p.Quantity).Mul(p.directionSign())
}
