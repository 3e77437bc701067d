package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tetuaoro/bts-rs/pkg/market"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

var simStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func simCandle(i int, open, high, low, close float64) market.Candle {
	return market.Candle{
		Open:      fixed.FromFloat64(open),
		High:      fixed.FromFloat64(high),
		Low:       fixed.FromFloat64(low),
		Close:     fixed.FromFloat64(close),
		Volume:    fixed.One,
		TimeStamp: simStart.Add(time.Duration(i) * time.Minute),
		Period:    time.Minute,
	}
}

func simConfig() Config {
	return Config{
		InitialBalance: fixed.FromInt(10_000, 0),
		Leverage:       fixed.One,
		Intrabar:       IntrabarPathHeuristic,
	}
}

// submitOnce submits the given orders on the first candle and stays quiet
// afterwards.
func submitOnce(orders ...Order) Strategy {
	return StrategyFunc(func(snapshot Snapshot) []Intent {
		if snapshot.Index != 0 {
			return nil
		}
		intents := make([]Intent, 0, len(orders))
		for _, order := range orders {
			intents = append(intents, Submit(order))
		}
		return intents
	})
}

func TestSimulator_MarketFillAtNextOpenWithSlippage(t *testing.T) {
	cfg := simConfig()
	cfg.SlippageRate = fixed.FromInt(1, 3)

	sim, err := NewSimulator(zaptest.NewLogger(t), cfg)
	require.NoError(t, err)

	candles := []market.Candle{
		simCandle(0, 100, 101, 99, 100),
		simCandle(1, 50, 51, 49, 50),
		simCandle(2, 50, 51, 49, 50),
	}

	result, err := sim.Run(candles, submitOnce(Order{Side: SideBuy, Kind: KindMarket, Quantity: fixed.One}), nil)
	require.NoError(t, err)
	require.Equal(t, StateCompleted, result.State)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.True(t, trade.Price.Eq(fixed.FromFloat64(50.05)))
	assert.True(t, trade.TimeStamp.Equal(candles[1].TimeStamp))
	assert.Equal(t, OrderID(1), trade.OrderID)

	assert.True(t, result.Wallet.Cash.Eq(fixed.FromFloat64(9_949.95)))
	assert.True(t, result.Wallet.LockedMargin.Eq(fixed.FromFloat64(50.05)))

	// Equity after the fill carries the slippage as unrealized loss.
	assert.True(t, result.EquityCurve[1].Equity.Eq(fixed.FromFloat64(9_949.90)))
}

func TestSimulator_IntentsNeverAffectTheirOwnCandle(t *testing.T) {
	sim, err := NewSimulator(zaptest.NewLogger(t), simConfig())
	require.NoError(t, err)

	candles := []market.Candle{simCandle(0, 100, 101, 99, 100)}

	result, err := sim.Run(candles, submitOnce(Order{Side: SideBuy, Kind: KindMarket, Quantity: fixed.One}), nil)
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, result.State)
	assert.Empty(t, result.Trades)
	assert.True(t, result.Wallet.Cash.Eq(fixed.FromInt(10_000, 0)))
}

func TestSimulator_MarginRejectionCancelsWholeFill(t *testing.T) {
	cfg := simConfig()
	cfg.InitialBalance = fixed.FromInt(100, 0)

	sim, err := NewSimulator(zaptest.NewLogger(t), cfg)
	require.NoError(t, err)

	var seen []Rejection
	strat := StrategyFunc(func(snapshot Snapshot) []Intent {
		seen = append(seen, snapshot.Rejections...)
		if snapshot.Index == 0 {
			return []Intent{Submit(Order{Side: SideBuy, Kind: KindMarket, Quantity: fixed.One})}
		}
		return nil
	})

	candles := []market.Candle{
		simCandle(0, 100, 101, 99, 100),
		simCandle(1, 150, 151, 149, 150),
	}

	result, err := sim.Run(candles, strat, nil)
	require.NoError(t, err)

	assert.Empty(t, result.Trades)
	require.Len(t, result.Rejections, 1)
	assert.ErrorIs(t, result.Rejections[0].Err, ErrInsufficientMargin)
	assert.Equal(t, OrderID(1), result.Rejections[0].OrderID)

	// State is untouched by the rejected fill.
	assert.True(t, result.Wallet.Cash.Eq(fixed.FromInt(100, 0)))
	assert.Equal(t, PositionFlat, result.Position.Side)

	// The rejection reaches the strategy on the candle that produced it.
	require.Len(t, seen, 1)
	assert.ErrorIs(t, seen[0].Err, ErrInsufficientMargin)
}

func TestSimulator_LimitFillIsMaker(t *testing.T) {
	cfg := simConfig()
	cfg.MakerFeeRate = fixed.FromInt(1, 3)
	cfg.TakerFeeRate = fixed.FromInt(2, 3)

	sim, err := NewSimulator(zaptest.NewLogger(t), cfg)
	require.NoError(t, err)

	candles := []market.Candle{
		simCandle(0, 105, 106, 102, 104),
		simCandle(1, 105, 106, 101, 103), // low stays above the limit
		simCandle(2, 102, 103, 100, 101), // touch
	}

	result, err := sim.Run(candles, submitOnce(Order{
		Side: SideBuy, Kind: KindLimit, Quantity: fixed.One, LimitPrice: fixed.FromInt(100, 0),
	}), nil)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.True(t, trade.Price.Eq(fixed.FromInt(100, 0)))
	assert.True(t, trade.Maker)
	assert.True(t, trade.Fee.Eq(fixed.FromFloat64(0.1)))
	assert.True(t, trade.TimeStamp.Equal(candles[2].TimeStamp))
	assert.True(t, result.Wallet.FeesPaid.Eq(fixed.FromFloat64(0.1)))
}

func TestSimulator_CloseOnFinishLiquidatesAtLastClose(t *testing.T) {
	cfg := simConfig()
	cfg.CloseOnFinish = true

	sim, err := NewSimulator(zaptest.NewLogger(t), cfg)
	require.NoError(t, err)

	candles := []market.Candle{
		simCandle(0, 100, 101, 99, 100),
		simCandle(1, 100, 101, 99, 100),
		simCandle(2, 110, 121, 109, 120),
	}

	result, err := sim.Run(candles, submitOnce(Order{Side: SideBuy, Kind: KindMarket, Quantity: fixed.One}), nil)
	require.NoError(t, err)

	require.Len(t, result.Trades, 2)

	entry := result.Trades[0]
	assert.True(t, entry.Price.Eq(fixed.FromInt(100, 0)))
	assert.True(t, entry.RealizedPnL.IsZero())

	exit := result.Trades[1]
	assert.Equal(t, OrderID(0), exit.OrderID)
	assert.Equal(t, SideSell, exit.Side)
	assert.True(t, exit.Price.Eq(fixed.FromInt(120, 0)))
	assert.True(t, exit.RealizedPnL.Eq(fixed.FromInt(20, 0)))

	assert.Equal(t, PositionFlat, result.Position.Side)

	// Once flat, final equity is the initial balance plus realized P&L
	// minus fees.
	final := result.EquityCurve[len(result.EquityCurve)-1]
	assert.True(t, final.Equity.Eq(fixed.FromInt(10_020, 0)))
	assert.True(t, final.Balance.Eq(fixed.FromInt(10_020, 0)))
}

func TestSimulator_PartialFillsUnderCap(t *testing.T) {
	cfg := simConfig()
	cfg.MaxFillPerCandle = fixed.FromFloat64(0.5)

	sim, err := NewSimulator(zaptest.NewLogger(t), cfg)
	require.NoError(t, err)

	candles := []market.Candle{
		simCandle(0, 100, 101, 99, 100),
		simCandle(1, 100, 101, 99, 100),
		simCandle(2, 110, 111, 109, 110),
	}

	result, err := sim.Run(candles, submitOnce(Order{Side: SideBuy, Kind: KindMarket, Quantity: fixed.One}), nil)
	require.NoError(t, err)

	require.Len(t, result.Trades, 2)
	assert.True(t, result.Trades[0].Quantity.Eq(fixed.FromFloat64(0.5)))
	assert.True(t, result.Trades[0].Price.Eq(fixed.FromInt(100, 0)))
	assert.True(t, result.Trades[1].Quantity.Eq(fixed.FromFloat64(0.5)))
	assert.True(t, result.Trades[1].Price.Eq(fixed.FromInt(110, 0)))

	assert.True(t, result.Position.Quantity.Eq(fixed.One))
	assert.True(t, result.Position.AvgEntryPrice.Eq(fixed.FromInt(105, 0)))
}

func TestSimulator_TrailingStopRatchetsOnPreviousCandle(t *testing.T) {
	sim, err := NewSimulator(zaptest.NewLogger(t), simConfig())
	require.NoError(t, err)

	candles := []market.Candle{
		simCandle(0, 100, 101, 99, 100),
		simCandle(1, 100, 101, 99, 100),  // entry fills; stop 95 untouched
		simCandle(2, 150, 160, 149, 155), // run-up; stop ratchets to 95.95 first
		simCandle(3, 150, 151, 140, 145), // stop now 152, triggers
	}

	result, err := sim.Run(candles, submitOnce(
		Order{Side: SideBuy, Kind: KindMarket, Quantity: fixed.One},
		Order{Side: SideSell, Kind: KindTrailingStop, Quantity: fixed.One,
			StopPrice: fixed.FromInt(95, 0), TrailPercent: fixed.FromInt(5, 0)},
	), nil)
	require.NoError(t, err)

	require.Len(t, result.Trades, 2)
	exit := result.Trades[1]
	assert.Equal(t, KindTrailingStop, exit.Kind)
	// Stop ratcheted to 160 * 0.95 = 152, capped by the candle open.
	assert.True(t, exit.Price.Eq(fixed.FromInt(150, 0)))
	assert.True(t, exit.RealizedPnL.Eq(fixed.FromInt(50, 0)))

	assert.Equal(t, PositionFlat, result.Position.Side)
	assert.True(t, result.Wallet.Cash.Eq(fixed.FromInt(10_050, 0)))
}

func TestSimulator_UnknownOrderRejections(t *testing.T) {
	sim, err := NewSimulator(zaptest.NewLogger(t), simConfig())
	require.NoError(t, err)

	strat := StrategyFunc(func(snapshot Snapshot) []Intent {
		if snapshot.Index == 0 {
			return []Intent{Cancel(OrderID(99)), Modify(OrderID(42), fixed.One)}
		}
		return nil
	})

	result, err := sim.Run([]market.Candle{
		simCandle(0, 100, 101, 99, 100),
		simCandle(1, 100, 101, 99, 100),
	}, strat, nil)
	require.NoError(t, err)

	require.Len(t, result.Rejections, 2)
	assert.ErrorIs(t, result.Rejections[0].Err, ErrUnknownOrder)
	assert.ErrorIs(t, result.Rejections[1].Err, ErrUnknownOrder)
}

func TestSimulator_AbortPreservesPartialResult(t *testing.T) {
	sim, err := NewSimulator(zaptest.NewLogger(t), simConfig())
	require.NoError(t, err)

	broken := market.Candle{
		Open:      fixed.FromInt(100, 0),
		High:      fixed.FromInt(90, 0), // below the body
		Low:       fixed.FromInt(99, 0),
		Close:     fixed.FromInt(100, 0),
		TimeStamp: simStart.Add(time.Minute),
	}

	result, err := sim.Run([]market.Candle{
		simCandle(0, 100, 101, 99, 100),
		broken,
	}, nil, nil)
	require.Error(t, err)

	var invalid market.ErrInvalidCandle
	assert.ErrorAs(t, err, &invalid)
	require.NotNil(t, result)
	assert.Equal(t, StateAborted, result.State)
	assert.Len(t, result.EquityCurve, 1)
}

func TestSimulator_RunIsSingleShot(t *testing.T) {
	sim, err := NewSimulator(zaptest.NewLogger(t), simConfig())
	require.NoError(t, err)

	candles := []market.Candle{simCandle(0, 100, 101, 99, 100)}

	_, err = sim.Run(candles, nil, nil)
	require.NoError(t, err)

	_, err = sim.Run(candles, nil, nil)
	assert.ErrorIs(t, err, ErrRunFinished)
}

func TestSimulator_RejectsBadInput(t *testing.T) {
	sim, err := NewSimulator(zaptest.NewLogger(t), simConfig())
	require.NoError(t, err)
	_, err = sim.Run(nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoCandles)

	sim2, err := NewSimulator(zaptest.NewLogger(t), simConfig())
	require.NoError(t, err)
	_, err = sim2.Run(
		[]market.Candle{simCandle(0, 100, 101, 99, 100)},
		nil,
		IndicatorSet{"sma": make([]fixed.Point, 2)},
	)
	assert.Error(t, err)

	_, err = NewSimulator(nil, Config{})
	assert.Error(t, err)
}

func TestSimulator_IndicatorsReachSnapshots(t *testing.T) {
	sim, err := NewSimulator(zaptest.NewLogger(t), simConfig())
	require.NoError(t, err)

	series := []fixed.Point{fixed.One, fixed.Two}
	var got []fixed.Point
	strat := StrategyFunc(func(snapshot Snapshot) []Intent {
		got = append(got, snapshot.Indicators["sma"])
		return nil
	})

	_, err = sim.Run([]market.Candle{
		simCandle(0, 100, 101, 99, 100),
		simCandle(1, 100, 101, 99, 100),
	}, strat, IndicatorSet{"sma": series})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.True(t, got[0].Eq(fixed.One))
	assert.True(t, got[1].Eq(fixed.Two))
}

func TestSimulator_Deterministic(t *testing.T) {
	candles := []market.Candle{
		simCandle(0, 100, 102, 98, 101),
		simCandle(1, 101, 105, 100, 104),
		simCandle(2, 104, 106, 95, 96),
		simCandle(3, 96, 99, 94, 98),
		simCandle(4, 98, 103, 97, 102),
	}

	run := func() *Result {
		cfg := simConfig()
		cfg.TakerFeeRate = fixed.FromInt(2, 3)
		cfg.SlippageRate = fixed.FromInt(1, 3)
		cfg.CloseOnFinish = true

		sim, err := NewSimulator(zaptest.NewLogger(t), cfg)
		require.NoError(t, err)

		strat := StrategyFunc(func(snapshot Snapshot) []Intent {
			if snapshot.Index%2 == 0 && snapshot.Position.Side == PositionFlat {
				return []Intent{Submit(Order{Side: SideBuy, Kind: KindMarket, Quantity: fixed.One})}
			}
			if snapshot.Index%2 == 1 && snapshot.Position.Side == PositionLong {
				return []Intent{Submit(Order{Side: SideSell, Kind: KindMarket, Quantity: fixed.One})}
			}
			return nil
		})

		result, err := sim.Run(candles, strat, nil)
		require.NoError(t, err)
		return result
	}

	first := run()
	second := run()
	assert.Equal(t, *first, *second)
}

func TestSimulator_EquityIdentityHoldsPerSample(t *testing.T) {
	cfg := simConfig()
	cfg.CloseOnFinish = true

	sim, err := NewSimulator(zaptest.NewLogger(t), cfg)
	require.NoError(t, err)

	candles := []market.Candle{
		simCandle(0, 100, 101, 99, 100),
		simCandle(1, 100, 101, 99, 95),
		simCandle(2, 95, 101, 94, 101),
		simCandle(3, 101, 103, 100, 102),
	}

	result, err := sim.Run(candles, submitOnce(Order{Side: SideBuy, Kind: KindMarket, Quantity: fixed.One}), nil)
	require.NoError(t, err)

	// Fill at 100 on candle 1 locks 100 as margin, so equity dips by the
	// collateral while the position is open. Liquidated at 102 on candle 3.
	expected := []fixed.Point{
		fixed.FromInt(10_000, 0),
		fixed.FromInt(9_895, 0), // balance 9900, unrealized -5
		fixed.FromInt(9_901, 0), // unrealized +1
		fixed.FromInt(10_002, 0),
	}
	require.Len(t, result.EquityCurve, len(expected))
	for i, sample := range result.EquityCurve {
		assert.True(t, sample.Equity.Eq(expected[i]), "sample %d: got %s want %s", i, sample.Equity, expected[i])
	}
}
