package main

import (
	"time"

	"github.com/tetuaoro/bts-rs/pkg/engine"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

var SimulationStart = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
var SimulationEnd = time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)

const (
	CandleDataSource = "data/btcusd_1h.bin"
	Verbose          = false

	FastWindow = 20
	SlowWindow = 50

	// Hourly candles, trading around the clock.
	PeriodsPerYear = 24 * 365
)

var (
	OrderSize    = fixed.FromInt(1, 1)
	TrailPercent = fixed.FromInt(5, 0)

	SimulationConfig = engine.Config{
		InitialBalance:   fixed.FromInt(10_000, 0),
		Leverage:         fixed.FromInt(10, 0),
		MarginMinimum:    fixed.Zero,
		MakerFeeRate:     fixed.FromInt(2, 4),
		TakerFeeRate:     fixed.FromInt(4, 4),
		SlippageRate:     fixed.FromInt(1, 4),
		MaxFillPerCandle: fixed.Zero,
		Intrabar:         engine.IntrabarPathHeuristic,
		CloseOnFinish:    true,
	}
)
