package main

import (
	"time"

	"github.com/tetuaoro/bts-rs/pkg/engine"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

var OptimizeStart = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
var OptimizeEnd = time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)

const (
	CandleDataSource = "data/btcusd_1h.bin"
	Verbose          = false
	Workers          = 0 // 0 means one per CPU
	PeriodsPerYear   = 24 * 365
)

var (
	OrderSize = fixed.FromInt(1, 1)

	FastWindows   = []fixed.Point{fixed.FromInt(10, 0), fixed.FromInt(20, 0), fixed.FromInt(30, 0)}
	SlowWindows   = []fixed.Point{fixed.FromInt(50, 0), fixed.FromInt(100, 0), fixed.FromInt(200, 0)}
	TrailPercents = []fixed.Point{fixed.FromInt(3, 0), fixed.FromInt(5, 0), fixed.FromInt(8, 0)}

	BaseConfig = engine.Config{
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
