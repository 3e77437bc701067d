package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

func TestAggregate(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	minutes := []Candle{
		testCandle(t0, 100, 105, 99, 102),
		testCandle(t0.Add(1*time.Minute), 102, 108, 101, 107),
		testCandle(t0.Add(2*time.Minute), 107, 107, 96, 98),
		testCandle(t0.Add(3*time.Minute), 98, 103, 97, 101),
		testCandle(t0.Add(4*time.Minute), 101, 104, 100, 103),
		testCandle(t0.Add(5*time.Minute), 103, 106, 102, 105),
	}

	hours, err := Aggregate(minutes, 5*time.Minute)
	require.NoError(t, err)
	require.Len(t, hours, 2)

	first := hours[0]
	assert.True(t, first.TimeStamp.Equal(t0))
	assert.Equal(t, 5*time.Minute, first.Period)
	assert.True(t, first.Open.Eq(fixed.FromInt(100, 0)))
	assert.True(t, first.High.Eq(fixed.FromInt(108, 0)))
	assert.True(t, first.Low.Eq(fixed.FromInt(96, 0)))
	assert.True(t, first.Close.Eq(fixed.FromInt(103, 0)))
	assert.True(t, first.Volume.Eq(fixed.FromInt(500, 0)))

	second := hours[1]
	assert.True(t, second.TimeStamp.Equal(t0.Add(5*time.Minute)))
	assert.True(t, second.Open.Eq(fixed.FromInt(103, 0)))
	assert.True(t, second.Close.Eq(fixed.FromInt(105, 0)))
}

func TestAggregate_UnalignedStart(t *testing.T) {
	// A series starting mid-bucket keeps its first partial bucket.
	t0 := time.Date(2024, 1, 1, 0, 3, 0, 0, time.UTC)

	minutes := []Candle{
		testCandle(t0, 100, 105, 99, 102),
		testCandle(t0.Add(1*time.Minute), 102, 108, 101, 107),
		testCandle(t0.Add(2*time.Minute), 107, 110, 105, 109),
	}

	out, err := Aggregate(minutes, 5*time.Minute)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].TimeStamp.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, out[1].TimeStamp.Equal(time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC)))
}

func TestAggregate_Rejects(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := Aggregate([]Candle{testCandle(t0, 100, 105, 99, 102)}, 0)
	assert.Error(t, err)

	unordered := []Candle{
		testCandle(t0.Add(time.Minute), 100, 105, 99, 102),
		testCandle(t0, 100, 105, 99, 102),
	}
	_, err = Aggregate(unordered, time.Hour)
	assert.Error(t, err)
}

func TestAggregate_Empty(t *testing.T) {
	out, err := Aggregate(nil, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, out)
}
