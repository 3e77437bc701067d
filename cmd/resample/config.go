package main

import "time"

var ResampleStart = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
var ResampleEnd = time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)

const (
	CandleDatabase = "data/candles.db"
	Symbol         = "btcusd_1m"
	ResampledAs    = "btcusd_1h"

	SourcePeriod   = time.Minute
	TargetInterval = time.Hour

	ArchiveOutput = "data/btcusd_1h.bin"
	Verbose       = false
)
