package metrics

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tetuaoro/bts-rs/pkg/engine"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

// Report reduces a completed run to its performance figures. It reads the
// equity curve and trade log only; engine state is never mutated.
type Report struct {
	StartDate time.Time
	EndDate   time.Time

	InitialEquity fixed.Point
	FinalEquity   fixed.Point
	TotalReturn   fixed.Point
	MaxDrawdown   fixed.Point
	TotalFees     fixed.Point

	TotalTrades    int
	RealizingFills int
	WinningTrades  int
	LosingTrades   int
	WinRate        fixed.Point
	ProfitFactor   fixed.Point
	AverageWin     fixed.Point
	AverageLoss    fixed.Point
	Expectancy     fixed.Point
	RecoveryFactor fixed.Point

	SharpeRatio          fixed.Point
	SortinoRatio         fixed.Point
	AnnualizedVolatility fixed.Point
}

// Compute builds the report from a run result. periodsPerYear is the number
// of equity samples in one year at the run's candle interval (252 for daily
// bars, 35040 for 15m bars, ...) and scales Sharpe, Sortino and volatility.
func Compute(result *engine.Result, periodsPerYear int) Report {
	report := Report{}
	curve := result.EquityCurve
	if len(curve) == 0 {
		return report
	}

	report.StartDate = curve[0].TimeStamp
	report.EndDate = curve[len(curve)-1].TimeStamp
	report.InitialEquity = curve[0].Equity
	report.FinalEquity = curve[len(curve)-1].Equity
	report.TotalFees = result.Wallet.FeesPaid

	if report.InitialEquity.IsPos() {
		report.TotalReturn = report.FinalEquity.Div(report.InitialEquity).Sub(fixed.One).Mul(fixed.Hundred).Rescale(2)
	}

	report.MaxDrawdown = maxDrawdown(curve)

	// Trade statistics cover the fills that realized P&L; entry fills open
	// exposure and realize nothing.
	var totalProfit, totalLoss fixed.Point
	for _, trade := range result.Trades {
		report.TotalTrades++
		if trade.RealizedPnL.IsPos() {
			report.RealizingFills++
			report.WinningTrades++
			totalProfit = totalProfit.Add(trade.RealizedPnL)
		} else if trade.RealizedPnL.IsNeg() {
			report.RealizingFills++
			report.LosingTrades++
			totalLoss = totalLoss.Add(trade.RealizedPnL.Neg())
		}
	}

	if report.WinningTrades > 0 {
		report.AverageWin = totalProfit.DivInt(report.WinningTrades)
	}
	if report.LosingTrades > 0 {
		report.AverageLoss = totalLoss.DivInt(report.LosingTrades)
	}
	if totalLoss.IsPos() {
		report.ProfitFactor = totalProfit.Div(totalLoss)
	}
	if report.RealizingFills > 0 {
		report.Expectancy = totalProfit.Sub(totalLoss).DivInt(report.RealizingFills)
		report.WinRate = fixed.FromInt(report.WinningTrades, 0).DivInt(report.RealizingFills).Mul(fixed.Hundred).Rescale(2)
	}
	if report.MaxDrawdown.IsPos() {
		report.RecoveryFactor = report.TotalReturn.Div(report.MaxDrawdown)
	}

	returns := sampleReturns(curve)
	mean := fixed.Mean(returns)
	volatility := fixed.StdDev(returns, mean)
	if !volatility.IsZero() {
		annualize := fixed.FromInt(periodsPerYear, 0).Sqrt()
		report.AnnualizedVolatility = volatility.Mul(annualize).Mul(fixed.Hundred).Rescale(2)
		report.SharpeRatio = fixed.SharpeRatio(returns, fixed.Zero).Mul(annualize).Rescale(5)
		report.SortinoRatio = fixed.SortinoRatio(returns, fixed.Zero).Mul(annualize).Rescale(5)
	}

	return report
}

// maxDrawdown is the largest peak-to-trough equity decline, in percent.
func maxDrawdown(curve []engine.EquitySample) fixed.Point {
	peak := curve[0].Equity
	drawdown := fixed.Zero
	for _, sample := range curve {
		if sample.Equity.Gt(peak) {
			peak = sample.Equity
		}
		if !peak.IsPos() {
			continue
		}
		dd := peak.Sub(sample.Equity).Div(peak)
		if dd.Gt(drawdown) {
			drawdown = dd
		}
	}
	return drawdown.Mul(fixed.Hundred).Rescale(2)
}

func sampleReturns(curve []engine.EquitySample) []fixed.Point {
	var returns []fixed.Point
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev.IsZero() {
			continue
		}
		returns = append(returns, curve[i].Equity.Div(prev).Sub(fixed.One))
	}
	return returns
}

func (report Report) Print(logger *zap.Logger) {
	logger.Info("performance report",
		zap.String("initial_equity", report.InitialEquity.String()),
		zap.String("final_equity", report.FinalEquity.String()),
		zap.String("total_return", fmt.Sprintf("%s%%", report.TotalReturn.String())),
		zap.String("max_drawdown", fmt.Sprintf("%s%%", report.MaxDrawdown.String())),
		zap.String("total_fees", report.TotalFees.String()),
		zap.String("recovery_factor", report.RecoveryFactor.String()),
	)

	logger.Info("trade statistics",
		zap.Int("total_fills", report.TotalTrades),
		zap.Int("realizing_fills", report.RealizingFills),
		zap.Int("winning", report.WinningTrades),
		zap.Int("losing", report.LosingTrades),
		zap.String("win_rate", fmt.Sprintf("%s%%", report.WinRate.String())),
		zap.String("expectancy", report.Expectancy.String()),
		zap.String("profit_factor", report.ProfitFactor.String()),
		zap.String("average_win", report.AverageWin.String()),
		zap.String("average_loss", report.AverageLoss.String()),
	)

	logger.Info("risk metrics",
		zap.String("sharpe_ratio", report.SharpeRatio.String()),
		zap.String("sortino_ratio", report.SortinoRatio.String()),
		zap.String("annualized_volatility", fmt.Sprintf("%s%%", report.AnnualizedVolatility.String())),
	)
}
