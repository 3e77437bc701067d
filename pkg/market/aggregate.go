package market

import (
	"fmt"
	"time"
)

// Aggregate resamples source candles into interval-aligned buckets. Each
// bucket takes the first open, the maximum high, the minimum low, the last
// close, the summed volume and the bucket start as its timestamp.
//
// Source candles must be strictly time ordered; the whole run is rejected
// otherwise.
func Aggregate(candles []Candle, interval time.Duration) ([]Candle, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("aggregate: interval must be positive, got %s", interval)
	}
	if err := ValidateSeries(candles); err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	var (
		out     []Candle
		current *Candle
	)
	for _, c := range candles {
		bucket := c.TimeStamp.Truncate(interval)

		if current != nil && !bucket.Equal(current.TimeStamp) {
			out = append(out, *current)
			current = nil
		}

		if current == nil {
			bar := c
			bar.TimeStamp = bucket
			bar.Period = interval
			current = &bar
			continue
		}

		if c.High.Gt(current.High) {
			current.High = c.High
		}
		if c.Low.Lt(current.Low) {
			current.Low = c.Low
		}
		current.Close = c.Close
		current.Volume = current.Volume.Add(c.Volume)
	}

	if current != nil {
		out = append(out, *current)
	}
	return out, nil
}
