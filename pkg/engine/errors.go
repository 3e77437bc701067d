package engine

import (
	"errors"
	"time"
)

var (
	// ErrInvalidOrder rejects a submission with a non-positive quantity or a
	// missing/non-positive price for its kind. The run continues.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInsufficientMargin rejects a fill whose margin requirement cannot be
	// covered. The order is cancelled, the run continues.
	ErrInsufficientMargin = errors.New("insufficient margin")

	// ErrUnknownOrder rejects a cancel or modify intent referencing an order
	// that does not exist or is already terminal.
	ErrUnknownOrder = errors.New("unknown or terminal order")

	// ErrRunFinished reports a Run call on a simulator that already completed
	// or aborted.
	ErrRunFinished = errors.New("simulation already finished")
)

// Rejection records one refused intent or fill so that post-hoc analysis can
// tell "strategy chose not to trade" apart from "engine refused the trade".
type Rejection struct {
	OrderID   OrderID
	Err       error
	TimeStamp time.Time
}
