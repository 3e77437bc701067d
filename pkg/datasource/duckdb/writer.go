package duckdb

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/tetuaoro/bts-rs/pkg/market"
)

type Writer struct {
	dataSourceName string
	db             *sql.DB
}

func NewWriter(dataSourceName string) *Writer {
	return &Writer{
		dataSourceName: dataSourceName,
	}
}

func (w *Writer) Connect() error {
	db, err := sql.Open("duckdb", w.dataSourceName)
	if err != nil {
		return fmt.Errorf("sql.Open: %v", err)
	}
	w.db = db
	return nil
}

func (w *Writer) Close() {
	_ = w.db.Close()
}

// StoreCandles creates the <symbol>_candles table if needed and appends the
// given candles in one transaction.
func (w *Writer) StoreCandles(ctx context.Context, symbol string, candles []market.Candle) error {

	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s_candles (
		ts TIMESTAMP NOT NULL,
		open DOUBLE NOT NULL,
		high DOUBLE NOT NULL,
		low DOUBLE NOT NULL,
		close DOUBLE NOT NULL,
		volume DOUBLE NOT NULL
	)`, symbol)

	if _, err := w.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s_candles (ts, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?)`, symbol)

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("error preparing insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, candle := range candles {
		open, _ := candle.Open.Float64()
		high, _ := candle.High.Float64()
		low, _ := candle.Low.Float64()
		close, _ := candle.Close.Float64()
		volume, _ := candle.Volume.Float64()

		if _, err := stmt.ExecContext(ctx, candle.TimeStamp, open, high, low, close, volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("error inserting candle: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}
