package historical

import (
	"errors"
	"fmt"
	"time"

	"github.com/tetuaoro/bts-rs/pkg/market"
)

const invalidIndex = -1

// CandleReader streams candles from a binary archive between two
// timestamps. The archive must be sorted by timestamp; the start position is
// found by binary search on the first read.
type CandleReader struct {
	source *Source[BinaryCandle]

	from int64
	to   int64
	idx  int64
}

func NewCandleReader(source *Source[BinaryCandle], from, to time.Time) *CandleReader {
	return &CandleReader{
		source: source,
		from:   from.UnixNano(),
		to:     to.UnixNano(),
		idx:    invalidIndex,
	}
}

// GetNext returns the next candle in range, or ErrEof past the end.
func (r *CandleReader) GetNext() (market.Candle, error) {

	var candle market.Candle
	var binCandle BinaryCandle

	if r.idx == invalidIndex {
		if err := r.lookupStartIndex(); err != nil {
			return candle, err
		}
	}

	if err := r.source.Read(r.idx, &binCandle); err != nil {
		return candle, fmt.Errorf("error reading entry at index %d: %w", r.idx, err)
	}
	r.idx++

	if binCandle.TimeStamp < r.from {
		return candle, fmt.Errorf("timestamp is not from the proposed range")
	}

	if binCandle.TimeStamp > r.to {
		return candle, ErrEof
	}

	binCandle.ToCandle(&candle)
	return candle, nil
}

// ReadAll drains the reader into a slice and validates the series.
func (r *CandleReader) ReadAll() ([]market.Candle, error) {
	var candles []market.Candle
	for {
		candle, err := r.GetNext()
		if err != nil {
			if errors.Is(err, ErrEof) {
				break
			}
			return nil, err
		}
		candles = append(candles, candle)
	}
	if err := market.ValidateSeries(candles); err != nil {
		return nil, err
	}
	return candles, nil
}

func (r *CandleReader) lookupStartIndex() error {
	entryCount, err := r.source.EntryCount()
	if err != nil {
		return fmt.Errorf("error getting entry count: %w", err)
	}

	if entryCount == 0 {
		return fmt.Errorf("entry count is zero")
	}

	var entry BinaryCandle

	low := int64(0)
	high := entryCount - 1

	for low <= high {
		mid := (low + high) / 2

		if err := r.source.Read(mid, &entry); err != nil {
			return fmt.Errorf("error reading entry at index %d: %w", mid, err)
		}

		if entry.TimeStamp < r.from {
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	if low >= entryCount {
		return fmt.Errorf("no entry found with timestamp >= from")
	}

	r.idx = low
	return nil
}
