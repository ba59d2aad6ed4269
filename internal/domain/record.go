package domain

import (
	"time"

	"github.com/twpayne/go-geom/encoding/geojson"
)

// Placeholders substituted for blank text fields.
const (
	SentinelGenres  = "Multigênero"
	SentinelMissing = "Não informado"
)

// SizeCategory buckets a festival by its numeric attendance.
type SizeCategory string

const (
	SizeLarge   SizeCategory = "Large"
	SizeMedium  SizeCategory = "Medium"
	SizeSmall   SizeCategory = "Small"
	SizeUnknown SizeCategory = "Unknown"
)

// RawRow is one data row of the input sheet, already mapped to named columns.
type RawRow struct {
	Line        int // 1-based data row index, header excluded
	Name        string
	Country     string
	Continent   string
	Coordinates string // "lat,lon"
	Genres      string
	Attendance  string
	TicketPrice string
}

// FestivalRecord is a parsed row with its derived attributes.
type FestivalRecord struct {
	ID          string
	Line        int
	Name        string
	Country     string
	Continent   string
	Genres      string
	Attendance  string
	TicketPrice string

	Coordinates string
	Latitude    *float64
	Longitude   *float64
	Geohash     string

	AttendanceNumeric *float64
	SizeCategory      SizeCategory
	Color             string
}

// HasCoordinates reports whether the record can be placed on the map.
func (r FestivalRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// OutputFile is one generated artifact, addressed by a path relative to the
// output root.
type OutputFile struct {
	Path        string
	ContentType string
	Body        []byte
}

// Artifacts bundles everything one run produces. It is fully built in memory
// before any loader sees it.
type Artifacts struct {
	Records     []FestivalRecord
	Collection  *geojson.FeatureCollection
	Stats       AggregateStats
	GeneratedAt time.Time

	GeoJSON     []byte
	StatsJSON   []byte
	MapPage     []byte
	ProjectPage []byte
}

// Output locations relative to the output root.
const (
	GeoJSONPath     = "data/processed/festivais_mundiais.geojson"
	StatsPath       = "data/processed/estatisticas_festivais.json"
	ParquetPath     = "data/processed/festivais.parquet"
	MapPagePath     = "projetos/festivais-mundiais/index.html"
	ProjectPagePath = "projetos/festivais-mundiais/projeto-detalhado.html"
)

// Files lists the encoded artifacts in write order. Pages that were not
// rendered are skipped.
func (a Artifacts) Files() []OutputFile {
	files := []OutputFile{
		{Path: GeoJSONPath, ContentType: "application/geo+json", Body: a.GeoJSON},
		{Path: StatsPath, ContentType: "application/json", Body: a.StatsJSON},
	}
	if a.MapPage != nil {
		files = append(files, OutputFile{Path: MapPagePath, ContentType: "text/html; charset=utf-8", Body: a.MapPage})
	}
	if a.ProjectPage != nil {
		files = append(files, OutputFile{Path: ProjectPagePath, ContentType: "text/html; charset=utf-8", Body: a.ProjectPage})
	}
	return files
}
