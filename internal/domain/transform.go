package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mmcloughlin/geohash"
)

// geohashPrecision of 7 characters is roughly a 150 m cell, enough to tell
// festival grounds apart.
const geohashPrecision = 7

// Attendance thresholds for size classification.
const (
	largeAttendance  = 20000
	mediumAttendance = 5000
)

var (
	// numberRunRe matches a run of digits possibly broken by commas and dots,
	// e.g. "10,000", "5000,7000", "1.5".
	numberRunRe = regexp.MustCompile(`[0-9][0-9.,]*`)

	// numberRe matches one number inside a separator-free piece of a run.
	numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ParseRow turns a raw sheet row into a FestivalRecord. It never fails:
// unusable values degrade to sentinels or nil.
func ParseRow(row RawRow, palette Palette) FestivalRecord {
	lat, lon := parseCoordinates(row.Coordinates)
	attendance := ExtractAttendance(row.Attendance)

	rec := FestivalRecord{
		Line:        row.Line,
		Name:        textOrSentinel(row.Name, SentinelMissing),
		Country:     textOrSentinel(row.Country, SentinelMissing),
		Continent:   textOrSentinel(row.Continent, SentinelMissing),
		Genres:      textOrSentinel(row.Genres, SentinelGenres),
		Attendance:  textOrSentinel(row.Attendance, SentinelMissing),
		TicketPrice: textOrSentinel(row.TicketPrice, SentinelMissing),

		Coordinates: strings.TrimSpace(row.Coordinates),
		Latitude:    lat,
		Longitude:   lon,

		AttendanceNumeric: attendance,
		SizeCategory:      ClassifySize(attendance),
	}
	rec.Color = palette.ColorFor(rec.Continent)
	if rec.HasCoordinates() {
		rec.Geohash = geohash.EncodeWithPrecision(*lat, *lon, geohashPrecision)
	}
	rec.ID = generateID(rec.Name, rec.Country, lat, lon, row.Line)
	return rec
}

// ParseRows parses every row, preserving input order.
func ParseRows(rows []RawRow, palette Palette) []FestivalRecord {
	records := make([]FestivalRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, ParseRow(row, palette))
	}
	return records
}

// textOrSentinel trims s and substitutes sentinel when nothing is left.
func textOrSentinel(s, sentinel string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return sentinel
	}
	return s
}

// parseCoordinates splits "lat,lon" into two floats. Both results are nil
// unless there are exactly two finite, in-range numbers.
func parseCoordinates(s string) (*float64, *float64) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, nil
	}

	lat, okLat := parseFinite(parts[0])
	lon, okLon := parseFinite(parts[1])
	if !okLat || !okLon {
		return nil, nil
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, nil
	}
	return &lat, &lon
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ExtractAttendance pulls a head count out of free text. It returns the mean
// of the first two numbers found, the only number when there is one, or nil.
//
//	"10000"                 -> 10000
//	"10,000 to 15,000"      -> 12500
//	"5000,7000"             -> 6000
//	"cerca de 8000 pessoas" -> 8000
//	"Não informado"         -> nil
func ExtractAttendance(text string) *float64 {
	nums := make([]float64, 0, 2)

scan:
	for _, run := range numberRunRe.FindAllString(text, -1) {
		for _, piece := range splitNumberRun(run) {
			for _, tok := range numberRe.FindAllString(piece, -1) {
				v, err := strconv.ParseFloat(tok, 64)
				if err != nil {
					continue
				}
				nums = append(nums, v)
				if len(nums) == 2 {
					break scan
				}
			}
		}
	}

	switch len(nums) {
	case 0:
		return nil
	case 1:
		v := nums[0]
		return &v
	default:
		mean := (nums[0] + nums[1]) / 2
		return &mean
	}
}

// splitNumberRun drops thousands separators from a run and splits it on the
// remaining commas: "10,000" -> ["10000"], "5000,7000" -> ["5000", "7000"].
func splitNumberRun(run string) []string {
	parts := strings.Split(run, ",")
	out := make([]string, 0, len(parts))
	cur := parts[0]
	for _, p := range parts[1:] {
		if cur != "" && !strings.Contains(cur, ".") && isThousandsGroup(p) {
			cur += p
			continue
		}
		out = append(out, cur)
		cur = p
	}
	return append(out, cur)
}

// isThousandsGroup reports whether p starts with exactly three digits,
// optionally followed by a decimal part.
func isThousandsGroup(p string) bool {
	if len(p) < 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if p[i] < '0' || p[i] > '9' {
			return false
		}
	}
	return len(p) == 3 || p[3] == '.'
}

// ClassifySize maps numeric attendance to its size bucket.
func ClassifySize(attendance *float64) SizeCategory {
	if attendance == nil {
		return SizeUnknown
	}
	switch a := *attendance; {
	case a >= largeAttendance:
		return SizeLarge
	case a >= mediumAttendance:
		return SizeMedium
	default:
		return SizeSmall
	}
}

// generateID produces a deterministic ID from the record's identifying fields.
// The line number keeps duplicate rows apart.
func generateID(name, country string, lat, lon *float64, line int) string {
	coords := "-|-"
	if lat != nil && lon != nil {
		coords = fmt.Sprintf("%.4f|%.4f", *lat, *lon)
	}
	input := fmt.Sprintf("%s|%s|%s|%d", name, country, coords, line)
	hash := sha256.Sum256([]byte(input))
	return "fest-" + hex.EncodeToString(hash[:8])
}
