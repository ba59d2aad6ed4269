package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/festival-map/internal/domain"
)

// FestivalTransformer implements Transformer using the domain parse, build
// and aggregate functions.
type FestivalTransformer struct {
	palette domain.Palette
	build   domain.BuildOptions
	agg     domain.AggregateOptions
	logger  *slog.Logger
}

// NewTransformer creates a FestivalTransformer that colors records with
// palette.
func NewTransformer(palette domain.Palette, build domain.BuildOptions, agg domain.AggregateOptions, logger *slog.Logger) *FestivalTransformer {
	return &FestivalTransformer{
		palette: palette,
		build:   build,
		agg:     agg,
		logger:  logger,
	}
}

// Transform parses every row and encodes the GeoJSON and stats documents.
// Malformed fields degrade per record and never fail the batch.
func (t *FestivalTransformer) Transform(ctx context.Context, rows []domain.RawRow, generatedAt time.Time) (domain.Artifacts, error) {
	records := domain.ParseRows(rows, t.palette)
	for _, rec := range records {
		if !rec.HasCoordinates() {
			t.logger.Debug("coordinates not parsed, record left off the map",
				"line", rec.Line, "name", rec.Name, "coordinates", rec.Coordinates)
		}
		if rec.AttendanceNumeric == nil {
			t.logger.Debug("attendance not numeric",
				"line", rec.Line, "name", rec.Name, "attendance", rec.Attendance)
		}
	}
	if err := ctx.Err(); err != nil {
		return domain.Artifacts{}, err
	}

	fc, err := domain.BuildFeatureCollection(records, t.build)
	if err != nil {
		return domain.Artifacts{}, err
	}
	geo, err := domain.EncodeFeatureCollection(fc)
	if err != nil {
		return domain.Artifacts{}, err
	}

	stats := domain.Aggregate(records, t.agg)
	statsJSON, err := domain.EncodeStats(stats)
	if err != nil {
		return domain.Artifacts{}, err
	}

	return domain.Artifacts{
		Records:     records,
		Collection:  fc,
		Stats:       stats,
		GeneratedAt: generatedAt,
		GeoJSON:     geo,
		StatsJSON:   statsJSON,
	}, nil
}
