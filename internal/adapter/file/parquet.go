package file

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/couchcryptid/festival-map/internal/domain"
)

// RecordRow is the Parquet schema of one parsed festival record. Missing
// coordinates and attendance are stored as NULL.
type RecordRow struct {
	ID                string   `parquet:"id"`
	Line              int64    `parquet:"line"`
	Name              string   `parquet:"name"`
	Country           string   `parquet:"country,dict"`
	Continent         string   `parquet:"continent,dict"`
	Genres            string   `parquet:"genres"`
	Attendance        string   `parquet:"attendance"`
	TicketPrice       string   `parquet:"ticket_price"`
	Latitude          *float64 `parquet:"latitude,optional"`
	Longitude         *float64 `parquet:"longitude,optional"`
	Geohash           string   `parquet:"geohash"`
	AttendanceNumeric *float64 `parquet:"attendance_numeric,optional"`
	Size              string   `parquet:"size,dict"`
	Color             string   `parquet:"color,dict"`
}

func toRecordRow(rec domain.FestivalRecord) RecordRow {
	return RecordRow{
		ID:                rec.ID,
		Line:              int64(rec.Line),
		Name:              rec.Name,
		Country:           rec.Country,
		Continent:         rec.Continent,
		Genres:            rec.Genres,
		Attendance:        rec.Attendance,
		TicketPrice:       rec.TicketPrice,
		Latitude:          rec.Latitude,
		Longitude:         rec.Longitude,
		Geohash:           rec.Geohash,
		AttendanceNumeric: rec.AttendanceNumeric,
		Size:              string(rec.SizeCategory),
		Color:             rec.Color,
	}
}

// EncodeParquet writes every record, mapped or not, as a Snappy-compressed
// Parquet table.
func EncodeParquet(records []domain.FestivalRecord) ([]byte, error) {
	rows := make([]RecordRow, len(records))
	for i, rec := range records {
		rows[i] = toRecordRow(rec)
	}

	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[RecordRow](
		&buf,
		parquet.SchemaOf(new(RecordRow)),
		parquet.Compression(&parquet.Snappy),
		parquet.CreatedBy("festmap", "1.0", "0"),
	)
	if _, err := writer.Write(rows); err != nil {
		writer.Close()
		return nil, fmt.Errorf("encode parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("encode parquet: %w", err)
	}
	return buf.Bytes(), nil
}
