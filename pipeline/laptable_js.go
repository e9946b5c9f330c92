//go:build js

package pipeline

import "errors"

func marshalLapParquet([]lapRow) ([]byte, error) {
	return nil, errors.New("parquet lap table is not available in js builds; use lap_table: csv")
}
