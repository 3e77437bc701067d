package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tetuaoro/bts-rs/internal/dbg"
	"github.com/tetuaoro/bts-rs/pkg/datasource/historical"
	"github.com/tetuaoro/bts-rs/pkg/engine"
	"github.com/tetuaoro/bts-rs/pkg/metrics"
	"github.com/tetuaoro/bts-rs/pkg/runner"
	"github.com/tetuaoro/bts-rs/pkg/strategy"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

func main() {
	logger := dbg.NewLogger(Verbose)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	logger.Info("optimize started")
	defer logger.Info("optimize finished")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	source := historical.NewSource[historical.BinaryCandle](CandleDataSource)
	if err := source.Open(); err != nil {
		logger.Fatal("unable to open candle data source", zap.Error(err))
	}
	defer source.Close()

	reader := historical.NewCandleReader(source, OptimizeStart, OptimizeEnd)
	candles, err := reader.ReadAll()
	if err != nil {
		logger.Fatal("unable to load candles", zap.Error(err))
	}
	logger.Info("candles loaded", zap.Int("count", len(candles)))

	grid := []runner.Parameter{
		{Name: "fast", Values: FastWindows},
		{Name: "slow", Values: SlowWindows},
		{Name: "trail", Values: TrailPercents},
	}

	sharpe := func(report metrics.Report) fixed.Point { return report.SharpeRatio }

	optimizer := runner.NewOptimizer(runner.New(logger, Workers), sharpe, PeriodsPerYear)

	evaluations, best, err := optimizer.Optimize(ctx, candles, grid, func(params runner.Params) runner.Job {
		fast := mustInt(params["fast"])
		slow := mustInt(params["slow"])
		trail := params["trail"]
		return runner.Job{
			Name:   fmt.Sprintf("sma-%d-%d-%s", fast, slow, trail),
			Config: BaseConfig,
			Strategy: func() engine.Strategy {
				return strategy.NewSmaCross(fast, slow, OrderSize, trail)
			},
		}
	})
	if err != nil {
		logger.Fatal("optimization failed", zap.Error(err))
	}

	logger.Info("grid swept", zap.Int("evaluations", len(evaluations)))
	logger.Info("best parameters",
		zap.String("job", best.Outcome.Job.Name),
		zap.Stringer("score", best.Score),
	)
	best.Report.Print(logger)
}

func mustInt(p fixed.Point) int {
	f, _ := p.Float64()
	return int(f)
}
