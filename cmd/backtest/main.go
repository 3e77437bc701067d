package main

import (
	"go.uber.org/zap"

	"github.com/tetuaoro/bts-rs/internal/dbg"
	"github.com/tetuaoro/bts-rs/pkg/datasource/historical"
	"github.com/tetuaoro/bts-rs/pkg/engine"
	"github.com/tetuaoro/bts-rs/pkg/metrics"
	"github.com/tetuaoro/bts-rs/pkg/strategy"
	"github.com/tetuaoro/bts-rs/pkg/utility"
)

func main() {
	logger := dbg.NewLogger(Verbose)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	logger.Info("backtest started", zap.Stringer("execution_id", utility.GetExecutionID()))
	defer logger.Info("backtest finished")

	source := historical.NewSource[historical.BinaryCandle](CandleDataSource)
	if err := source.Open(); err != nil {
		logger.Fatal("unable to open candle data source", zap.Error(err))
	}
	defer source.Close()

	reader := historical.NewCandleReader(source, SimulationStart, SimulationEnd)
	candles, err := reader.ReadAll()
	if err != nil {
		logger.Fatal("unable to load candles", zap.Error(err))
	}
	logger.Info("candles loaded", zap.Int("count", len(candles)))

	simulator, err := engine.NewSimulator(logger, SimulationConfig)
	if err != nil {
		logger.Fatal("invalid simulation config", zap.Error(err))
	}

	smaCross := strategy.NewSmaCross(FastWindow, SlowWindow, OrderSize, TrailPercent)

	result, err := simulator.Run(candles, smaCross, nil)
	if err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}

	report := metrics.Compute(result, PeriodsPerYear)
	report.Print(logger)
}
