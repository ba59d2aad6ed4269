package tabular

import (
	"strings"

	"github.com/couchcryptid/festival-map/internal/domain"
)

// field is one logical column, in positional order.
type field int

const (
	fieldName field = iota
	fieldCountry
	fieldContinent
	fieldCoordinates
	fieldGenres
	fieldAttendance
	fieldTicketPrice
	fieldCount
)

// headerAliases lists the accepted header spellings per field. The first
// alias is the one used in log messages.
var headerAliases = [fieldCount][]string{
	fieldName:        {"Nome do Festival", "festival_name", "name"},
	fieldCountry:     {"País", "country"},
	fieldContinent:   {"Continente", "continent"},
	fieldCoordinates: {"Coordenadas (Aproximadas)", "coordinates"},
	fieldGenres:      {"Vertentes", "music_genres", "genres"},
	fieldAttendance:  {"Média de público", "avg_attendance", "attendance"},
	fieldTicketPrice: {"Ingressos", "ticket_price"},
}

// columns maps each field to a record index, or -1 when absent.
type columns [fieldCount]int

// resolveColumns matches header cells against the known aliases. When nothing
// matches, fields fall back to their positional order. A header at least as
// wide as the fixed schema also gives each unmatched field its positional
// index unless a matched field already claimed it; those fields are returned
// in positional so the caller can report them.
func resolveColumns(header []string) (cols columns, matched int, positional []string) {
	for i := range cols {
		cols[i] = -1
	}

	for idx, cell := range header {
		name := strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
		for f, aliases := range headerAliases {
			if cols[f] >= 0 || !matchesAny(name, aliases) {
				continue
			}
			cols[f] = idx
			matched++
			break
		}
	}

	if matched == 0 {
		for i := range cols {
			cols[i] = i
		}
		return cols, 0, nil
	}
	if len(header) < int(fieldCount) {
		return cols, matched, nil
	}

	claimed := make(map[int]bool, matched)
	for _, idx := range cols {
		if idx >= 0 {
			claimed[idx] = true
		}
	}
	for f := range cols {
		if cols[f] < 0 && !claimed[f] {
			cols[f] = f
			positional = append(positional, headerAliases[f][0])
		}
	}
	return cols, matched, positional
}

func matchesAny(name string, aliases []string) bool {
	for _, a := range aliases {
		if strings.EqualFold(name, a) {
			return true
		}
	}
	return false
}

func (c columns) missing() []string {
	var out []string
	for f, idx := range c {
		if idx < 0 {
			out = append(out, headerAliases[f][0])
		}
	}
	return out
}

func (c columns) row(line int, rec []string) domain.RawRow {
	return domain.RawRow{
		Line:        line,
		Name:        c.cell(rec, fieldName),
		Country:     c.cell(rec, fieldCountry),
		Continent:   c.cell(rec, fieldContinent),
		Coordinates: c.cell(rec, fieldCoordinates),
		Genres:      c.cell(rec, fieldGenres),
		Attendance:  c.cell(rec, fieldAttendance),
		TicketPrice: c.cell(rec, fieldTicketPrice),
	}
}

func (c columns) cell(rec []string, f field) string {
	idx := c[f]
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}
