package historical

import (
	"time"

	"github.com/tetuaoro/bts-rs/pkg/market"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

// BinaryCandle is the on-disk record layout. Timestamps are unix
// nanoseconds, the period is in nanoseconds as well.
type BinaryCandle struct {
	TimeStamp int64
	Period    int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

func (binaryCandle BinaryCandle) ToCandle(candle *market.Candle) {
	candle.TimeStamp = time.Unix(0, binaryCandle.TimeStamp)
	candle.Period = time.Duration(binaryCandle.Period)
	candle.Open = fixed.FromFloat64(binaryCandle.Open)
	candle.High = fixed.FromFloat64(binaryCandle.High)
	candle.Low = fixed.FromFloat64(binaryCandle.Low)
	candle.Close = fixed.FromFloat64(binaryCandle.Close)
	candle.Volume = fixed.FromFloat64(binaryCandle.Volume)
}

// FromCandle fills the binary record from a candle, for writing archives.
func FromCandle(candle market.Candle) BinaryCandle {
	return BinaryCandle{
		TimeStamp: candle.TimeStamp.UnixNano(),
		Period:    int64(candle.Period),
		Open:      mustFloat(candle.Open),
		High:      mustFloat(candle.High),
		Low:       mustFloat(candle.Low),
		Close:     mustFloat(candle.Close),
		Volume:    mustFloat(candle.Volume),
	}
}

func mustFloat(p fixed.Point) float64 {
	f, _ := p.Float64()
	return f
}
