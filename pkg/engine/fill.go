package engine

import (
	"time"

	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

// TradeEntry is the immutable trade-log record of a completed fill. The
// append order is the trade chronology consumed by metrics. RealizedPnL is
// gross of fees; Fee is accounted once, in the Fee field.
type TradeEntry struct {
	OrderID     OrderID
	Side        Side
	Kind        Kind
	Quantity    fixed.Point
	Price       fixed.Point
	Fee         fixed.Point
	Maker       bool
	TimeStamp   time.Time
	RealizedPnL fixed.Point
}

// EquitySample is one point of the equity curve, appended once per processed
// candle and never revised.
type EquitySample struct {
	TimeStamp time.Time
	Equity    fixed.Point
	Balance   fixed.Point
}
