package historical

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/tetuaoro/bts-rs/pkg/market"
)

// WriteArchive writes candles as consecutive binary records, in the layout
// Source reads back. Records use the native byte order, so archives are not
// portable across architectures.
func WriteArchive(dataSourceName string, candles []market.Candle) error {

	if err := market.ValidateSeries(candles); err != nil {
		return err
	}

	f, err := os.Create(dataSourceName)
	if err != nil {
		return fmt.Errorf("unable to create archive %q: %w", dataSourceName, err)
	}
	defer func() {
		_ = f.Close()
	}()

	for _, candle := range candles {
		record := FromCandle(candle)
		buffer := (*[unsafe.Sizeof(record)]byte)(unsafe.Pointer(&record))[:] // #nosec G103
		if _, err := f.Write(buffer); err != nil {
			return fmt.Errorf("unable to write record: %w", err)
		}
	}
	return nil
}
