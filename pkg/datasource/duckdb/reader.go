package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/tetuaoro/bts-rs/pkg/market"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

type Reader struct {
	dataSourceName string
	db             *sql.DB
}

func NewReader(dataSourceName string) *Reader {
	return &Reader{
		dataSourceName: dataSourceName,
	}
}

func (r *Reader) Connect() error {
	db, err := sql.Open("duckdb", r.dataSourceName)
	if err != nil {
		return fmt.Errorf("sql.Open: %v", err)
	}
	r.db = db
	return nil
}

func (r *Reader) Close() {
	_ = r.db.Close()
}

// LoadCandles streams candles from the <symbol>_candles table between the
// two timestamps, in ascending order, invoking handler per row.
func (r *Reader) LoadCandles(ctx context.Context, symbol string, period time.Duration, from, to time.Time, handler func(candle market.Candle) error) error {

	query := fmt.Sprintf(`SELECT ts, open, high, low, close, volume FROM %s_candles WHERE ts BETWEEN ? AND ? ORDER BY ts`, symbol)

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return fmt.Errorf("error preparing query: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			panic(err)
		}
	}(rows)

	for rows.Next() {
		var (
			timeStamp                      time.Time
			open, high, low, close, volume float64
		)
		if err := rows.Scan(&timeStamp, &open, &high, &low, &close, &volume); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		candle := market.Candle{
			TimeStamp: timeStamp,
			Period:    period,
			Open:      fixed.FromFloat64(open),
			High:      fixed.FromFloat64(high),
			Low:       fixed.FromFloat64(low),
			Close:     fixed.FromFloat64(close),
			Volume:    fixed.FromFloat64(volume),
		}
		if err := handler(candle); err != nil {
			return fmt.Errorf("error processing candle: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error scanning rows: %w", err)
	}

	return nil
}

// ReadAll loads the full range into a validated slice.
func (r *Reader) ReadAll(ctx context.Context, symbol string, period time.Duration, from, to time.Time) ([]market.Candle, error) {
	var candles []market.Candle
	err := r.LoadCandles(ctx, symbol, period, from, to, func(candle market.Candle) error {
		candles = append(candles, candle)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := market.ValidateSeries(candles); err != nil {
		return nil, err
	}
	return candles, nil
}
