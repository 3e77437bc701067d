package market

import (
	"fmt"
	"time"

	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

// Candle is one OHLCV interval. Values are immutable once constructed and
// safe to share read-only across concurrent runs.
type Candle struct {
	Open      fixed.Point   `json:"open"`
	High      fixed.Point   `json:"high"`
	Low       fixed.Point   `json:"low"`
	Close     fixed.Point   `json:"close"`
	Volume    fixed.Point   `json:"volume"`
	TimeStamp time.Time     `json:"ts"`
	Period    time.Duration `json:"period,omitempty"`
}

// ErrInvalidCandle reports a bar that violates the OHLC ordering invariant
// or carries a negative value. It is fatal to a simulation run.
type ErrInvalidCandle struct {
	Candle Candle
	Reason string
}

func (e ErrInvalidCandle) Error() string {
	return fmt.Sprintf("invalid candle at %s: %s", e.Candle.TimeStamp.Format(time.RFC3339), e.Reason)
}

// Validate checks low <= min(open, close) <= max(open, close) <= high and
// that no price or volume is negative. Violations are never clamped.
func (c Candle) Validate() error {
	if c.Open.IsNeg() || c.High.IsNeg() || c.Low.IsNeg() || c.Close.IsNeg() {
		return ErrInvalidCandle{Candle: c, Reason: "negative price"}
	}
	if c.Volume.IsNeg() {
		return ErrInvalidCandle{Candle: c, Reason: "negative volume"}
	}
	body := c.Open.Min(c.Close)
	if c.Low.Gt(body) {
		return ErrInvalidCandle{Candle: c, Reason: "low above body"}
	}
	body = c.Open.Max(c.Close)
	if c.High.Lt(body) {
		return ErrInvalidCandle{Candle: c, Reason: "high below body"}
	}
	return nil
}

// Bullish reports whether the candle closed at or above its open. The fill
// resolver uses it to pick the assumed intrabar path direction.
func (c Candle) Bullish() bool {
	return c.Close.Gte(c.Open)
}

// ValidateSeries checks every candle and the strict timestamp ordering of
// the whole sequence.
func ValidateSeries(candles []Candle) error {
	for i, c := range candles {
		if err := c.Validate(); err != nil {
			return err
		}
		if i > 0 && !c.TimeStamp.After(candles[i-1].TimeStamp) {
			return ErrInvalidCandle{Candle: c, Reason: "timestamp not strictly increasing"}
		}
	}
	return nil
}
