package engine

import (
	"fmt"

	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

// Wallet holds the cash balance and the margin reserved for open exposure.
// Opening locks margin out of cash; closing returns the freed margin plus
// the gross realized P&L. Fees are debited atomically with the fill that
// produced them.
type Wallet struct {
	cash         fixed.Point
	lockedMargin fixed.Point
	feesPaid     fixed.Point
	initial      fixed.Point
}

func NewWallet(initialBalance fixed.Point) (*Wallet, error) {
	if !initialBalance.IsPos() {
		return nil, fmt.Errorf("wallet: initial balance must be positive, got %s", initialBalance)
	}
	return &Wallet{
		cash:         initialBalance,
		lockedMargin: fixed.Zero,
		feesPaid:     fixed.Zero,
		initial:      initialBalance,
	}, nil
}

func (w *Wallet) Cash() fixed.Point           { return w.cash }
func (w *Wallet) LockedMargin() fixed.Point   { return w.lockedMargin }
func (w *Wallet) FeesPaid() fixed.Point       { return w.feesPaid }
func (w *Wallet) InitialBalance() fixed.Point { return w.initial }

// Equity is the cash balance plus the unrealized P&L of open exposure.
func (w *Wallet) Equity(unrealized fixed.Point) fixed.Point {
	return w.cash.Add(unrealized)
}

// RequiredMargin is quantity x price / leverage.
func RequiredMargin(quantity, price, leverage fixed.Point) fixed.Point {
	return quantity.Mul(price).Div(leverage)
}

// canApply reports whether settling the fill keeps the cash balance at or
// above the configured minimum. A fill failing this gate is rejected, never
// partially honored.
func (w *Wallet) canApply(ch change, price, leverage, fee, minimum fixed.Point) bool {
	cash := w.cash
	if !ch.openedQty.IsZero() {
		cash = cash.Sub(RequiredMargin(ch.openedQty, price, leverage))
	}
	if !ch.closedQty.IsZero() {
		freed := RequiredMargin(ch.closedQty, ch.closedEntry, leverage)
		cash = cash.Add(freed).Add(ch.realized)
	}
	return cash.Sub(fee).Gte(minimum)
}

// applyFill settles one accepted fill: lock margin for the opened exposure,
// release the margin carried by the closed exposure together with its gross
// realized P&L, and debit the fee. No intermediate state is observable.
func (w *Wallet) applyFill(ch change, price, leverage, fee fixed.Point) {
	if !ch.openedQty.IsZero() {
		margin := RequiredMargin(ch.openedQty, price, leverage)
		w.cash = w.cash.Sub(margin)
		w.lockedMargin = w.lockedMargin.Add(margin)
	}
	if !ch.closedQty.IsZero() {
		freed := RequiredMargin(ch.closedQty, ch.closedEntry, leverage)
		w.cash = w.cash.Add(freed).Add(ch.realized)
		w.lockedMargin = w.lockedMargin.Sub(freed)
	}
	w.cash = w.cash.Sub(fee)
	w.feesPaid = w.feesPaid.Add(fee)
}

// WalletSnapshot is the read-only view handed to strategies and returned in
// run results.
type WalletSnapshot struct {
	Cash         fixed.Point
	Equity       fixed.Point
	LockedMargin fixed.Point
	FeesPaid     fixed.Point
}

func (w *Wallet) snapshot(unrealized fixed.Point) WalletSnapshot {
	return WalletSnapshot{
		Cash:         w.cash,
		Equity:       w.Equity(unrealized),
		LockedMargin: w.lockedMargin,
		FeesPaid:     w.feesPaid,
	}
}
