//go:build !js

package pipeline

import (
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type lapParquetRow struct {
	WorkoutIndex  int32   `parquet:"name=workout_index, type=INT32"`
	Sport         string  `parquet:"name=sport, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	LapIndex      int32   `parquet:"name=lap_index, type=INT32"`
	LapName       string  `parquet:"name=lap_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	StartOffsetS  float64 `parquet:"name=start_offset_s, type=DOUBLE"`
	PointCount    int64   `parquet:"name=point_count, type=INT64"`
	TotalSeconds  float64 `parquet:"name=total_seconds, type=DOUBLE"`
	DistanceM     float64 `parquet:"name=distance_m, type=DOUBLE"`
	MaxSpeedMps   float64 `parquet:"name=max_speed_mps, type=DOUBLE"`
	AvgSpeedMps   float64 `parquet:"name=avg_speed_mps, type=DOUBLE"`
	Calories      int32   `parquet:"name=calories, type=INT32"`
	AvgHRBPM      float64 `parquet:"name=avg_hr_bpm, type=DOUBLE"`
	MaxHRBPM      float64 `parquet:"name=max_hr_bpm, type=DOUBLE"`
	SpeedInferred bool    `parquet:"name=speed_inferred, type=BOOLEAN"`
}

func marshalLapParquet(rows []lapRow) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(lapParquetRow), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		row := lapParquetRow{
			WorkoutIndex:  int32(r.WorkoutIndex),
			Sport:         r.Sport,
			LapIndex:      int32(r.LapIndex),
			LapName:       r.LapName,
			StartOffsetS:  r.StartOffsetS,
			PointCount:    int64(r.PointCount),
			TotalSeconds:  r.TotalSeconds,
			DistanceM:     r.DistanceM,
			MaxSpeedMps:   r.MaxSpeedMps,
			AvgSpeedMps:   r.AvgSpeedMps,
			Calories:      int32(r.Calories),
			AvgHRBPM:      valueOrNaN(r.AvgHRBPM),
			MaxHRBPM:      valueOrNaN(r.MaxHRBPM),
			SpeedInferred: r.SpeedInferred,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
