package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetuaoro/bts-rs/pkg/engine"
	"github.com/tetuaoro/bts-rs/pkg/market"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

func snapshotAt(i int, close float64, position engine.Position) engine.Snapshot {
	c := fixed.FromFloat64(close)
	return engine.Snapshot{
		Index: i,
		Candle: market.Candle{
			Open: c, High: c, Low: c, Close: c,
			TimeStamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
			Period:    time.Hour,
		},
		Position: position,
	}
}

func TestSmaCross_GoldenCrossOpensLong(t *testing.T) {
	size := fixed.One
	s := NewSmaCross(2, 3, size, fixed.FromInt(5, 0))

	flat := engine.Position{Side: engine.PositionFlat}

	assert.Nil(t, s.OnCandle(snapshotAt(0, 10, flat)))
	assert.Nil(t, s.OnCandle(snapshotAt(1, 9, flat)))
	// Slow window fills here: fast 8.5 < slow 9, no cross yet.
	assert.Nil(t, s.OnCandle(snapshotAt(2, 8, flat)))

	// Fast 14 > slow 12.33: golden cross.
	intents := s.OnCandle(snapshotAt(3, 20, flat))
	require.Len(t, intents, 2)

	submit, ok := intents[0].(engine.SubmitIntent)
	require.True(t, ok)
	assert.Equal(t, engine.SideBuy, submit.Order.Side)
	assert.Equal(t, engine.KindMarket, submit.Order.Kind)
	assert.True(t, submit.Order.Quantity.Eq(size))

	trail, ok := intents[1].(engine.SubmitIntent)
	require.True(t, ok)
	assert.Equal(t, engine.KindTrailingStop, trail.Order.Kind)
	assert.Equal(t, engine.SideSell, trail.Order.Side)
	// Initial stop 5% under the cross close.
	assert.True(t, trail.Order.StopPrice.Eq(fixed.FromInt(19, 0)))
}

func TestSmaCross_DeathCrossClosesLong(t *testing.T) {
	size := fixed.One
	s := NewSmaCross(2, 3, size, fixed.Zero)

	flat := engine.Position{Side: engine.PositionFlat}
	long := engine.Position{Side: engine.PositionLong, Quantity: size}

	assert.Nil(t, s.OnCandle(snapshotAt(0, 10, flat)))
	assert.Nil(t, s.OnCandle(snapshotAt(1, 9, flat)))
	assert.Nil(t, s.OnCandle(snapshotAt(2, 8, flat)))
	// Golden cross; trail percent zero, so only the entry intent.
	require.Len(t, s.OnCandle(snapshotAt(3, 20, flat)), 1)

	// Fast stays above slow through the first pullback candle.
	assert.Nil(t, s.OnCandle(snapshotAt(4, 1, long)))

	// Fast 1 < slow 7.33: death cross while long.
	intents := s.OnCandle(snapshotAt(5, 1, long))
	require.Len(t, intents, 1)
	submit, ok := intents[0].(engine.SubmitIntent)
	require.True(t, ok)
	assert.Equal(t, engine.SideSell, submit.Order.Side)
	assert.True(t, submit.Order.Quantity.Eq(size))
}

func TestSmaCross_PanicsOnBadWindows(t *testing.T) {
	assert.Panics(t, func() { NewSmaCross(10, 10, fixed.One, fixed.Zero) })
}

func TestMeanReversion_FadesUpwardStretch(t *testing.T) {
	m := NewMeanReversion(10, fixed.One)
	flat := engine.Position{Side: engine.PositionFlat}

	for i := 0; i < 9; i++ {
		assert.Nil(t, m.OnCandle(snapshotAt(i, 100, flat)))
	}

	// Nine flat closes then a spike: mean 105, deviation 15, z exactly 3.
	// The strategy sells into the move with a protective bracket.
	intents := m.OnCandle(snapshotAt(9, 150, flat))
	require.Len(t, intents, 3)

	entry := intents[0].(engine.SubmitIntent)
	assert.Equal(t, engine.SideSell, entry.Order.Side)
	assert.Equal(t, engine.KindMarket, entry.Order.Kind)

	stop := intents[1].(engine.SubmitIntent)
	assert.Equal(t, engine.KindStopLoss, stop.Order.Kind)
	assert.Equal(t, engine.SideBuy, stop.Order.Side)
	assert.True(t, stop.Order.StopPrice.Gt(fixed.FromInt(150, 0)))

	target := intents[2].(engine.SubmitIntent)
	assert.Equal(t, engine.KindTakeProfit, target.Order.Kind)
	assert.True(t, target.Order.StopPrice.Lt(fixed.FromInt(150, 0)))
}

func TestMeanReversion_CancelsStaleBracketLegs(t *testing.T) {
	m := NewMeanReversion(2, fixed.One)
	flat := engine.Position{Side: engine.PositionFlat}

	snap := snapshotAt(0, 100, flat)
	snap.Orders = []engine.Order{
		{ID: 7, Kind: engine.KindTakeProfit, Side: engine.SideBuy, Quantity: fixed.One},
	}
	m.OnCandle(snapshotAt(0, 100, flat))
	snap.Index = 1

	intents := m.OnCandle(snap)
	require.Len(t, intents, 1)
	cancel, ok := intents[0].(engine.CancelIntent)
	require.True(t, ok)
	assert.Equal(t, engine.OrderID(7), cancel.ID)
}

func TestMeanReversion_QuietMarketStaysOut(t *testing.T) {
	m := NewMeanReversion(3, fixed.One)
	flat := engine.Position{Side: engine.PositionFlat}

	for i, close := range []float64{100, 100.5, 99.8, 100.2, 100.1} {
		assert.Nil(t, m.OnCandle(snapshotAt(i, close, flat)))
	}
}
