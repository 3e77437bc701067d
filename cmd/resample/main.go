package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tetuaoro/bts-rs/internal/dbg"
	"github.com/tetuaoro/bts-rs/pkg/datasource/duckdb"
	"github.com/tetuaoro/bts-rs/pkg/datasource/historical"
	"github.com/tetuaoro/bts-rs/pkg/market"
)

func main() {
	logger := dbg.NewLogger(Verbose)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	logger.Info("resample started", zap.String("symbol", Symbol), zap.Duration("interval", TargetInterval))
	defer logger.Info("resample finished")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reader := duckdb.NewReader(CandleDatabase)
	if err := reader.Connect(); err != nil {
		logger.Fatal("unable to connect to candle database", zap.Error(err))
	}
	defer reader.Close()

	candles, err := reader.ReadAll(ctx, Symbol, SourcePeriod, ResampleStart, ResampleEnd)
	if err != nil {
		logger.Fatal("unable to load candles", zap.Error(err))
	}
	logger.Info("candles loaded", zap.Int("count", len(candles)))

	resampled, err := market.Aggregate(candles, TargetInterval)
	if err != nil {
		logger.Fatal("unable to aggregate candles", zap.Error(err))
	}
	logger.Info("candles aggregated", zap.Int("count", len(resampled)))

	writer := duckdb.NewWriter(CandleDatabase)
	if err := writer.Connect(); err != nil {
		logger.Fatal("unable to connect for writing", zap.Error(err))
	}
	defer writer.Close()

	if err := writer.StoreCandles(ctx, ResampledAs, resampled); err != nil {
		logger.Fatal("unable to store resampled candles", zap.Error(err))
	}

	if ArchiveOutput != "" {
		if err := historical.WriteArchive(ArchiveOutput, resampled); err != nil {
			logger.Fatal("unable to write binary archive", zap.Error(err))
		}
		logger.Info("binary archive written", zap.String("path", ArchiveOutput))
	}
}
