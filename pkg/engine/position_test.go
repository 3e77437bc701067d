package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

func TestPosition_OpenAndIncrease(t *testing.T) {
	p := newPosition(fixed.One)

	ch := p.apply(SideBuy, fixed.FromInt(10, 0), fixed.FromInt(100, 0))
	assert.True(t, ch.openedQty.Eq(fixed.FromInt(10, 0)))
	assert.True(t, ch.closedQty.IsZero())
	assert.Equal(t, PositionLong, p.Side)
	assert.True(t, p.AvgEntryPrice.Eq(fixed.FromInt(100, 0)))

	// Adding at a higher price moves the weighted average.
	p.apply(SideBuy, fixed.FromInt(10, 0), fixed.FromInt(110, 0))
	assert.True(t, p.Quantity.Eq(fixed.FromInt(20, 0)))
	assert.True(t, p.AvgEntryPrice.Eq(fixed.FromInt(105, 0)))
}

func TestPosition_DecreaseRealizesProportionally(t *testing.T) {
	p := newPosition(fixed.One)
	p.apply(SideBuy, fixed.FromInt(10, 0), fixed.FromInt(100, 0))

	ch := p.apply(SideSell, fixed.FromInt(4, 0), fixed.FromInt(120, 0))
	assert.True(t, ch.closedQty.Eq(fixed.FromInt(4, 0)))
	assert.True(t, ch.closedEntry.Eq(fixed.FromInt(100, 0)))
	assert.True(t, ch.realized.Eq(fixed.FromInt(80, 0)))

	assert.Equal(t, PositionLong, p.Side)
	assert.True(t, p.Quantity.Eq(fixed.FromInt(6, 0)))
	// The average entry is untouched by a decrease.
	assert.True(t, p.AvgEntryPrice.Eq(fixed.FromInt(100, 0)))
	assert.True(t, p.RealizedPnL.Eq(fixed.FromInt(80, 0)))
}

func TestPosition_CloseToFlat(t *testing.T) {
	p := newPosition(fixed.One)
	p.apply(SideSell, fixed.FromInt(5, 0), fixed.FromInt(200, 0))
	require.Equal(t, PositionShort, p.Side)

	ch := p.apply(SideBuy, fixed.FromInt(5, 0), fixed.FromInt(180, 0))
	// Short profits when the price falls.
	assert.True(t, ch.realized.Eq(fixed.FromInt(100, 0)))
	assert.Equal(t, PositionFlat, p.Side)
	assert.True(t, p.Quantity.IsZero())
	assert.True(t, p.AvgEntryPrice.IsZero())
	assert.True(t, p.UnrealizedPnL.IsZero())
}

func TestPosition_FlipRestartsEntry(t *testing.T) {
	p := newPosition(fixed.One)
	p.apply(SideBuy, fixed.FromInt(10, 0), fixed.FromInt(100, 0))

	// Selling 15 closes the 10 long and opens a 5 short at the fill price.
	ch := p.apply(SideSell, fixed.FromInt(15, 0), fixed.FromInt(110, 0))
	assert.True(t, ch.closedQty.Eq(fixed.FromInt(10, 0)))
	assert.True(t, ch.openedQty.Eq(fixed.FromInt(5, 0)))
	assert.True(t, ch.realized.Eq(fixed.FromInt(100, 0)))

	assert.Equal(t, PositionShort, p.Side)
	assert.True(t, p.Quantity.Eq(fixed.FromInt(5, 0)))
	assert.True(t, p.AvgEntryPrice.Eq(fixed.FromInt(110, 0)))
}

func TestPosition_PreviewDoesNotMutate(t *testing.T) {
	p := newPosition(fixed.One)
	p.apply(SideBuy, fixed.FromInt(10, 0), fixed.FromInt(100, 0))
	before := p

	ch := p.preview(SideSell, fixed.FromInt(10, 0), fixed.FromInt(90, 0))
	assert.True(t, ch.realized.Eq(fixed.FromInt(-100, 0)))
	assert.Equal(t, before, p)
}

func TestPosition_Mark(t *testing.T) {
	p := newPosition(fixed.One)
	p.mark(fixed.FromInt(100, 0))
	assert.True(t, p.UnrealizedPnL.IsZero())

	p.apply(SideBuy, fixed.FromInt(10, 0), fixed.FromInt(100, 0))
	p.mark(fixed.FromInt(90, 0))
	assert.True(t, p.UnrealizedPnL.Eq(fixed.FromInt(-100, 0)))

	p2 := newPosition(fixed.One)
	p2.apply(SideSell, fixed.FromInt(10, 0), fixed.FromInt(100, 0))
	p2.mark(fixed.FromInt(90, 0))
	assert.True(t, p2.UnrealizedPnL.Eq(fixed.FromInt(100, 0)))
}
