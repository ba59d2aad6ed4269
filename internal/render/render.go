// Package render turns generated data into the static HTML pages of the site.
// Rendering is pure: the same input always yields the same page.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/iancoleman/orderedmap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/couchcryptid/festival-map/internal/domain"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"join": func(items []string) string { return strings.Join(items, ", ") },
}).ParseFS(templateFS, "templates/*.html.tmpl"))

const (
	// DefaultSourceName labels the dataset in the page footer.
	DefaultSourceName = "DATA-TRANCE - Festivais Mundiais"
	dateLayout        = "02/01/2006"
)

// MapPage is the input of RenderMap.
type MapPage struct {
	Title       string
	GeoJSON     []byte // encoded FeatureCollection
	Stats       domain.AggregateStats
	Palette     domain.Palette
	SourceName  string
	GeneratedAt time.Time
}

type mapView struct {
	Title             string
	TotalFestivals    string
	Continents        string
	TotalAttendance   string
	AverageAttendance string
	Unmapped          int
	SourceName        string
	ProcessedAt       string
	FeatureData       template.JS
	Palette           template.JS
	FallbackColor     string
}

// RenderMap renders the dashboard page: sidebar figures, continent filters,
// distribution chart, legend and the Leaflet map with every feature embedded.
func RenderMap(p MapPage) (string, error) {
	features, err := scriptJSON(p.GeoJSON)
	if err != nil {
		return "", fmt.Errorf("render map: embed geojson: %w", err)
	}
	palette, err := paletteJSON(p.Palette)
	if err != nil {
		return "", fmt.Errorf("render map: embed palette: %w", err)
	}

	title := p.Title
	if title == "" {
		title = "Mapa de Festivais de Música Eletrônica - Portfólio Geo"
	}
	source := p.SourceName
	if source == "" {
		source = DefaultSourceName
	}

	view := mapView{
		Title:             title,
		TotalFestivals:    FormatInt(float64(p.Stats.TotalFestivals)),
		Continents:        FormatInt(float64(len(p.Stats.Continents))),
		TotalAttendance:   FormatInt(p.Stats.TotalAttendance),
		AverageAttendance: FormatInt(p.Stats.AverageAttendance),
		Unmapped:          p.Stats.UnmappedFestivals,
		SourceName:        source,
		ProcessedAt:       p.GeneratedAt.Format(dateLayout),
		FeatureData:       features,
		Palette:           palette,
		FallbackColor:     p.Palette.Fallback(),
	}
	return execute("map.html.tmpl", view)
}

// ProjectPage is the input of RenderProjectPage.
type ProjectPage struct {
	Title       string
	Heading     string
	Completed   string
	Tags        []string
	Sources     []string
	MapHref     string
	Methodology string
	TechStack   []string
}

// DefaultProjectPage describes this generator for the portfolio detail page.
func DefaultProjectPage(generatedAt time.Time) ProjectPage {
	return ProjectPage{
		Title:       "Festivais Mundiais - Análise Geoespacial | Portfólio",
		Heading:     "Análise Geoespacial de Festivais de Música Eletrônica",
		Completed:   generatedAt.Format("2006"),
		Tags:        []string{"Web GIS", "Data Visualization", "Go"},
		Sources:     []string{"DATA-TRANCE Dataset"},
		MapHref:     "index.html",
		Methodology: "Processamento de dados tabulares, normalização de coordenadas, análise espacial e visualização interativa.",
		TechStack:   []string{"Go", "GeoJSON", "Leaflet.js", "Chart.js"},
	}
}

// RenderProjectPage renders the detail page that embeds the map in an iframe.
func RenderProjectPage(p ProjectPage) (string, error) {
	if p.MapHref == "" {
		p.MapHref = "index.html"
	}
	return execute("project.html.tmpl", p)
}

// FormatInt truncates v and formats it with pt-BR digit grouping, e.g.
// 1234567 becomes "1.234.567".
func FormatInt(v float64) string {
	return message.NewPrinter(language.BrazilianPortuguese).Sprintf("%d", int64(v))
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// scriptJSON compacts an encoded document and escapes <, > and & so it can
// sit inside a script element.
func scriptJSON(doc []byte) (template.JS, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, doc); err != nil {
		return "", err
	}
	var safe bytes.Buffer
	json.HTMLEscape(&safe, compact.Bytes())
	return template.JS(safe.String()), nil //nolint:gosec // escaped above
}

// paletteJSON encodes the palette as a JS object in legend order.
func paletteJSON(p domain.Palette) (template.JS, error) {
	om := orderedmap.New()
	for _, e := range p.Entries() {
		om.Set(e.Continent, e.Color)
	}
	data, err := json.Marshal(om)
	if err != nil {
		return "", err
	}
	return scriptJSON(data)
}
