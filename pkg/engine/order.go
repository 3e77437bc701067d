package engine

import (
	"fmt"
	"time"

	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

type OrderID int64

type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideBuy {
		return "buy"
	}
	return "sell"
}

// Kind is the closed set of order variants. Fill resolution switches over it
// exhaustively; a new kind requires an explicit case in the resolver.
type Kind int

const (
	KindMarket Kind = iota
	KindLimit
	KindStopLoss
	KindTakeProfit
	KindTrailingStop
)

func (k Kind) String() string {
	switch k {
	case KindMarket:
		return "market"
	case KindLimit:
		return "limit"
	case KindStopLoss:
		return "stop-loss"
	case KindTakeProfit:
		return "take-profit"
	case KindTrailingStop:
		return "trailing-stop"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsExit reports whether the kind belongs to the stop-triggered exit
// category, which resolves before new entries within a candle.
func (k Kind) IsExit() bool {
	return k == KindStopLoss || k == KindTakeProfit || k == KindTrailingStop
}

type Status int

const (
	StatusPending Status = iota
	StatusPartiallyFilled
	StatusFilled
	StatusCancelled
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusPartiallyFilled:
		return "partially-filled"
	case StatusFilled:
		return "filled"
	case StatusCancelled:
		return "cancelled"
	case StatusExpired:
		return "expired"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether the order left the book for good. Terminal orders
// are never mutated again.
func (s Status) Terminal() bool {
	return s == StatusFilled || s == StatusCancelled || s == StatusExpired
}

// Order is owned exclusively by the book until terminal. The strategy only
// ever sees copies.
type Order struct {
	ID       OrderID
	Side     Side
	Kind     Kind
	Quantity fixed.Point

	// LimitPrice is the posted price of a limit order.
	LimitPrice fixed.Point
	// StopPrice is the trigger of a stop-loss, take-profit or trailing stop.
	// For trailing stops it ratchets with favorable movement.
	StopPrice fixed.Point
	// TrailPercent is the trailing distance in percent of the reference
	// extreme. Only meaningful for KindTrailingStop.
	TrailPercent fixed.Point

	Status    Status
	CreatedAt time.Time
	Filled    fixed.Point
}

func (o Order) Remaining() fixed.Point {
	return o.Quantity.Sub(o.Filled)
}

func (o Order) validate() error {
	if !o.Quantity.IsPos() {
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidOrder, o.Quantity)
	}
	switch o.Kind {
	case KindMarket:
	case KindLimit:
		if !o.LimitPrice.IsPos() {
			return fmt.Errorf("%w: limit order needs a positive limit price", ErrInvalidOrder)
		}
	case KindStopLoss, KindTakeProfit:
		if !o.StopPrice.IsPos() {
			return fmt.Errorf("%w: %s order needs a positive stop price", ErrInvalidOrder, o.Kind)
		}
	case KindTrailingStop:
		if !o.StopPrice.IsPos() || !o.TrailPercent.IsPos() {
			return fmt.Errorf("%w: trailing stop needs positive stop price and trail percent", ErrInvalidOrder)
		}
	default:
		return fmt.Errorf("%w: unsupported kind %s", ErrInvalidOrder, o.Kind)
	}
	return nil
}
