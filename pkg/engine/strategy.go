package engine

import (
	"github.com/tetuaoro/bts-rs/pkg/market"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

// Snapshot is the market and account state handed to a strategy after a
// candle has been fully processed. Everything in it is a copy; mutating it
// has no effect on the run.
type Snapshot struct {
	Index  int
	Candle market.Candle

	Position Position
	Wallet   WalletSnapshot
	Orders   []Order

	// Indicators carries the precomputed indicator values aligned to this
	// candle, keyed by the names given at run start.
	Indicators map[string]fixed.Point

	// Rejections lists the intents and fills the engine refused since the
	// previous callback.
	Rejections []Rejection
}

// Strategy decides on each candle. Implementations own their internal state;
// the engine reads nothing from them besides the returned intents, which
// take effect on the next candle.
type Strategy interface {
	OnCandle(snapshot Snapshot) []Intent
}

// StrategyFunc adapts a plain function to the Strategy interface.
type StrategyFunc func(snapshot Snapshot) []Intent

func (f StrategyFunc) OnCandle(snapshot Snapshot) []Intent {
	return f(snapshot)
}

// Intent is one instruction emitted by a strategy. The set is closed:
// submit, cancel, modify.
type Intent interface {
	isIntent()
}

type SubmitIntent struct {
	Order Order
}

type CancelIntent struct {
	ID OrderID
}

type ModifyIntent struct {
	ID OrderID
	// Price replaces the order's governing price: the limit price of a
	// limit order, the stop price of a stop kind.
	Price fixed.Point
}

func (SubmitIntent) isIntent() {}
func (CancelIntent) isIntent() {}
func (ModifyIntent) isIntent() {}

func Submit(order Order) Intent {
	return SubmitIntent{Order: order}
}

func Cancel(id OrderID) Intent {
	return CancelIntent{ID: id}
}

func Modify(id OrderID, price fixed.Point) Intent {
	return ModifyIntent{ID: id, Price: price}
}
