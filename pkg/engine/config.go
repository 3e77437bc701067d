package engine

import (
	"fmt"

	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

// IntrabarPolicy selects the deterministic tie-break applied when several
// exits could trigger within one candle. Neither policy claims to know the
// true intrabar price path.
type IntrabarPolicy int

const (
	// IntrabarPathHeuristic assumes the path low->high for bullish candles
	// and high->low for bearish ones: triggers closer to the path start fire
	// first.
	IntrabarPathHeuristic IntrabarPolicy = iota
	// IntrabarPessimistic assumes the adverse level is always reached first:
	// stop-losses and trailing stops fire before take-profits.
	IntrabarPessimistic
)

// Config is constructed once per run and immutable thereafter. Rates are
// fractions: a MakerFeeRate of 0.001 charges 0.1% of the fill notional.
type Config struct {
	InitialBalance fixed.Point
	Leverage       fixed.Point
	MarginMinimum  fixed.Point

	MakerFeeRate fixed.Point
	TakerFeeRate fixed.Point

	// SlippageRate adjusts taker fill prices against the trader: buys fill
	// higher, sells lower.
	SlippageRate fixed.Point

	// MaxFillPerCandle caps the quantity one order may fill in a single
	// candle; zero disables partial fills.
	MaxFillPerCandle fixed.Point

	Intrabar IntrabarPolicy

	// CloseOnFinish liquidates any open position at the last candle's close
	// so the run ends flat.
	CloseOnFinish bool
}

func (c Config) Validate() error {
	if !c.InitialBalance.IsPos() {
		return fmt.Errorf("config: initial balance must be positive, got %s", c.InitialBalance)
	}
	if c.Leverage.Lt(fixed.One) {
		return fmt.Errorf("config: leverage must be >= 1, got %s", c.Leverage)
	}
	if c.MarginMinimum.IsNeg() {
		return fmt.Errorf("config: margin minimum must not be negative, got %s", c.MarginMinimum)
	}
	if c.MakerFeeRate.IsNeg() || c.TakerFeeRate.IsNeg() {
		return fmt.Errorf("config: fee rates must not be negative")
	}
	if c.SlippageRate.IsNeg() {
		return fmt.Errorf("config: slippage rate must not be negative, got %s", c.SlippageRate)
	}
	if c.MaxFillPerCandle.IsNeg() {
		return fmt.Errorf("config: max fill per candle must not be negative, got %s", c.MaxFillPerCandle)
	}
	switch c.Intrabar {
	case IntrabarPathHeuristic, IntrabarPessimistic:
	default:
		return fmt.Errorf("config: unknown intrabar policy %d", c.Intrabar)
	}
	return nil
}

func (c Config) feeModel() FeeModel {
	return FeeModel{MakerRate: c.MakerFeeRate, TakerRate: c.TakerFeeRate}
}
