// Command validate checks the integrity of a generated site: the GeoJSON
// collection, the statistics document, the optional Parquet export and the
// map page. It verifies geometry ranges, identifier uniqueness and that the
// documents agree with each other.
//
// Usage:
//
//	go run ./cmd/validate -dir .
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	fileadapter "github.com/couchcryptid/festival-map/internal/adapter/file"
	"github.com/couchcryptid/festival-map/internal/domain"
)

var hexColorRe = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

var requiredProperties = []string{
	"name", "country", "continent", "genres", "attendance",
	"attendance_numeric", "size", "color", "ticket_price", "geohash",
}

var validSizes = map[string]bool{
	string(domain.SizeLarge):   true,
	string(domain.SizeMedium):  true,
	string(domain.SizeSmall):   true,
	string(domain.SizeUnknown): true,
}

// statsDoc mirrors the stats file as decoded from disk.
type statsDoc struct {
	Scope             domain.StatsScope     `json:"scope"`
	TotalFestivals    int                   `json:"total_festivals"`
	MappedFestivals   int                   `json:"mapped_festivals"`
	UnmappedFestivals int                   `json:"unmapped_festivals"`
	ByContinent       map[string]int        `json:"by_continent"`
	BySize            map[string]int        `json:"by_size"`
	TopCountries      []domain.CountryCount `json:"top_countries"`
	TotalAttendance   float64               `json:"total_attendance"`
	AverageAttendance float64               `json:"average_attendance"`
	Continents        []string              `json:"continents"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	errors  []string
	skipped bool
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("dir", ".", "output root of a generated site")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	fmt.Fprintln(stdout, "=== Festival Map Integrity Validation ===")
	fmt.Fprintln(stdout)

	fc, err := loadFeatureCollection(filepath.Join(*dir, filepath.FromSlash(domain.GeoJSONPath)))
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: load GeoJSON: %v\n", err)
		return 1
	}
	stats, err := loadStats(filepath.Join(*dir, filepath.FromSlash(domain.StatsPath)))
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: load stats: %v\n", err)
		return 1
	}
	rows, err := loadParquet(filepath.Join(*dir, filepath.FromSlash(domain.ParquetPath)))
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: load Parquet: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateFeatures(fc),
		validateStats(stats, fc),
		validateParquet(rows, fc, stats),
		validatePage(filepath.Join(*dir, filepath.FromSlash(domain.MapPagePath))),
	}

	fmt.Fprintln(stdout)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if p.skipped {
			status = "SKIP"
		}
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(stdout, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Records: %d features, %d festivals in stats, %d parquet rows\n",
		len(fc.Features), stats.TotalFestivals, len(rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(stdout, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(stdout, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(stdout, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(stdout, "\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

func loadStats(path string) (statsDoc, error) {
	var s statsDoc
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	err = json.Unmarshal(data, &s)
	return s, err
}

// loadParquet returns nil rows when the export was not generated.
func loadParquet(path string) ([]fileadapter.RecordRow, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return parquet.ReadFile[fileadapter.RecordRow](path)
}

// ── Phase 1: Features ──
// Validates geometry, identifiers and properties of every feature.

func validateFeatures(fc *geojson.FeatureCollection) *phase {
	p := &phase{name: "Phase 1: Features (GeoJSON)"}

	seen := map[string]bool{}
	for i, f := range fc.Features {
		if f.ID == "" {
			p.errorf("feature %d: missing id", i)
		} else if seen[f.ID] {
			p.errorf("feature %d: duplicate id %q", i, f.ID)
		}
		seen[f.ID] = true

		checkGeometry(p, i, f.Geometry)
		checkProperties(p, i, f.Properties)
	}
	return p
}

func checkGeometry(p *phase, i int, g geom.T) {
	point, ok := g.(*geom.Point)
	if !ok {
		p.errorf("feature %d: geometry is %T, want Point", i, g)
		return
	}
	lon, lat := point.X(), point.Y()
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		p.errorf("feature %d: latitude %v out of range", i, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		p.errorf("feature %d: longitude %v out of range", i, lon)
	}
}

func checkProperties(p *phase, i int, props map[string]interface{}) {
	for _, key := range requiredProperties {
		if _, ok := props[key]; !ok {
			p.errorf("feature %d: missing property %q", i, key)
		}
	}
	if size, _ := props["size"].(string); !validSizes[size] {
		p.errorf("feature %d: invalid size %q", i, size)
	}
	if color, _ := props["color"].(string); !hexColorRe.MatchString(color) {
		p.errorf("feature %d: invalid color %q", i, color)
	}
	numeric, hasNumeric := props["attendance_numeric"].(float64)
	size, _ := props["size"].(string)
	if !hasNumeric && size != string(domain.SizeUnknown) {
		p.errorf("feature %d: size %q without numeric attendance", i, size)
	}
	if hasNumeric && size == string(domain.SizeUnknown) {
		p.errorf("feature %d: numeric attendance %v classified Unknown", i, numeric)
	}
}

// ── Phase 2: Statistics ──
// Validates internal consistency of the stats and agreement with the features.

func validateStats(s statsDoc, fc *geojson.FeatureCollection) *phase {
	p := &phase{name: "Phase 2: Statistics (JSON vs GeoJSON)"}

	if s.MappedFestivals != len(fc.Features) {
		p.errorf("mapped_festivals %d, GeoJSON has %d features", s.MappedFestivals, len(fc.Features))
	}

	switch s.Scope {
	case domain.ScopeAll:
		if s.TotalFestivals != s.MappedFestivals+s.UnmappedFestivals {
			p.errorf("total_festivals %d != mapped %d + unmapped %d",
				s.TotalFestivals, s.MappedFestivals, s.UnmappedFestivals)
		}
	case domain.ScopeMapped:
		if s.TotalFestivals != s.MappedFestivals {
			p.errorf("mapped scope: total_festivals %d != mapped %d", s.TotalFestivals, s.MappedFestivals)
		}
	default:
		p.errorf("unknown scope %q", s.Scope)
	}

	if n := sum(s.ByContinent); n != s.TotalFestivals {
		p.errorf("by_continent sums to %d, total_festivals is %d", n, s.TotalFestivals)
	}
	if n := sum(s.BySize); n != s.TotalFestivals {
		p.errorf("by_size sums to %d, total_festivals is %d", n, s.TotalFestivals)
	}
	if len(s.Continents) != len(s.ByContinent) {
		p.errorf("continents lists %d names, by_continent has %d", len(s.Continents), len(s.ByContinent))
	}
	for _, c := range s.Continents {
		if _, ok := s.ByContinent[c]; !ok {
			p.errorf("continent %q missing from by_continent", c)
		}
	}
	for i := 1; i < len(s.TopCountries); i++ {
		if s.TopCountries[i].Count > s.TopCountries[i-1].Count {
			p.errorf("top_countries not sorted at %d (%s)", i, s.TopCountries[i].Country)
		}
	}
	if s.TotalAttendance < 0 || s.AverageAttendance < 0 {
		p.errorf("negative attendance totals")
	}
	if s.AverageAttendance > s.TotalAttendance {
		p.errorf("average_attendance %v exceeds total_attendance %v", s.AverageAttendance, s.TotalAttendance)
	}
	return p
}

func sum(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

// ── Phase 3: Parquet ──
// Validates the optional record export against the other documents.

func validateParquet(rows []fileadapter.RecordRow, fc *geojson.FeatureCollection, s statsDoc) *phase {
	p := &phase{name: "Phase 3: Export (Parquet vs GeoJSON)"}
	if rows == nil {
		p.skipped = true
		return p
	}

	if want := s.MappedFestivals + s.UnmappedFestivals; len(rows) != want {
		p.errorf("parquet has %d rows, stats count %d records", len(rows), want)
	}

	mapped := map[string]bool{}
	for _, r := range rows {
		if (r.Latitude == nil) != (r.Longitude == nil) {
			p.errorf("row %d (%s): only one coordinate present", r.Line, r.ID)
		}
		if r.Latitude != nil && r.Longitude != nil {
			mapped[r.ID] = true
		}
	}
	for i, f := range fc.Features {
		if !mapped[f.ID] {
			p.errorf("feature %d: id %q not a mapped parquet row", i, f.ID)
		}
	}
	if len(mapped) != len(fc.Features) {
		p.errorf("parquet has %d mapped rows, GeoJSON has %d features", len(mapped), len(fc.Features))
	}
	return p
}

// ── Phase 4: Map page ──

func validatePage(path string) *phase {
	p := &phase{name: "Phase 4: Map page (HTML)"}

	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read map page: %v", err)
		return p
	}
	page := string(data)
	for _, marker := range []string{"const festivalData =", "const continentColors =", `id="map"`} {
		if !strings.Contains(page, marker) {
			p.errorf("map page missing %q", marker)
		}
	}
	if n := strings.Count(page, "</script>"); n != strings.Count(page, "<script") {
		p.errorf("map page has %d closing script tags for %d openings", n, strings.Count(page, "<script"))
	}
	return p
}
