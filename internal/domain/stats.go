package domain

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/iancoleman/orderedmap"
)

// StatsScope selects which records feed the aggregate statistics.
type StatsScope string

const (
	// ScopeAll aggregates every parsed record, mapped or not.
	ScopeAll StatsScope = "all"
	// ScopeMapped aggregates only records that produced a map feature.
	ScopeMapped StatsScope = "mapped"
)

// DefaultTopCountries is the length of the country ranking.
const DefaultTopCountries = 5

// AggregateOptions configures Aggregate.
type AggregateOptions struct {
	Scope        StatsScope
	TopCountries int
}

// Tally counts string keys and remembers the order they were first seen in.
type Tally struct {
	order  []string
	counts map[string]int
}

// Add increments key by one.
func (t *Tally) Add(key string) {
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

// Get returns the count for key.
func (t *Tally) Get(key string) int { return t.counts[key] }

// Keys returns the keys in first-seen order.
func (t *Tally) Keys() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of distinct keys.
func (t *Tally) Len() int { return len(t.order) }

// MarshalJSON writes the tally as an object whose keys keep first-seen order.
func (t Tally) MarshalJSON() ([]byte, error) {
	om := orderedmap.New()
	om.SetEscapeHTML(false)
	for _, k := range t.order {
		om.Set(k, t.counts[k])
	}
	return json.Marshal(om)
}

// CountryCount is one entry of the country ranking.
type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// AggregateStats summarizes a run.
type AggregateStats struct {
	Scope             StatsScope     `json:"scope"`
	TotalFestivals    int            `json:"total_festivals"`
	MappedFestivals   int            `json:"mapped_festivals"`
	UnmappedFestivals int            `json:"unmapped_festivals"`
	ByContinent       Tally          `json:"by_continent"`
	BySize            Tally          `json:"by_size"`
	TopCountries      []CountryCount `json:"top_countries"`
	TotalAttendance   float64        `json:"total_attendance"`
	AverageAttendance float64        `json:"average_attendance"`
	Continents        []string       `json:"continents"`
}

// Aggregate computes the statistics in a single pass over records. The mean
// covers only records with numeric attendance and is 0 when there are none.
func Aggregate(records []FestivalRecord, opts AggregateOptions) AggregateStats {
	scope := opts.Scope
	if scope == "" {
		scope = ScopeAll
	}
	topN := opts.TopCountries
	if topN <= 0 {
		topN = DefaultTopCountries
	}

	stats := AggregateStats{Scope: scope}
	var countries Tally
	var attendanceCount int

	for _, rec := range records {
		mapped := rec.HasCoordinates()
		if mapped {
			stats.MappedFestivals++
		} else {
			stats.UnmappedFestivals++
		}
		if scope == ScopeMapped && !mapped {
			continue
		}

		stats.TotalFestivals++
		stats.ByContinent.Add(rec.Continent)
		stats.BySize.Add(string(rec.SizeCategory))
		countries.Add(rec.Country)
		if rec.AttendanceNumeric != nil {
			stats.TotalAttendance += *rec.AttendanceNumeric
			attendanceCount++
		}
	}

	if attendanceCount > 0 {
		stats.AverageAttendance = stats.TotalAttendance / float64(attendanceCount)
	}
	stats.TopCountries = rankCountries(&countries, topN)
	stats.Continents = stats.ByContinent.Keys()
	return stats
}

// rankCountries sorts by descending count; ties keep first-seen order.
func rankCountries(t *Tally, n int) []CountryCount {
	ranked := make([]CountryCount, 0, t.Len())
	for _, k := range t.Keys() {
		ranked = append(ranked, CountryCount{Country: k, Count: t.Get(k)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// LargestContinent returns the continent with the most festivals, preferring
// the first seen on ties. It returns "" for empty stats.
func (s AggregateStats) LargestContinent() string {
	best, bestCount := "", 0
	for _, k := range s.ByContinent.Keys() {
		if c := s.ByContinent.Get(k); c > bestCount {
			best, bestCount = k, c
		}
	}
	return best
}

// EncodeStats serializes stats as indented UTF-8 JSON.
func EncodeStats(stats AggregateStats) ([]byte, error) {
	data, err := marshalIndent(stats)
	if err != nil {
		return nil, fmt.Errorf("encode stats: %w", err)
	}
	return data, nil
}
