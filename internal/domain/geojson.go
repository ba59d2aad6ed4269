package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// BuildOptions controls which presentation extras go into feature properties.
type BuildOptions struct {
	// IncludePopup adds a pre-rendered "popupContent" HTML snippet.
	IncludePopup bool
}

var popupTmpl = template.Must(template.New("popup").Parse(`<div class="festival-popup">
<h3>{{.Name}}</h3>
<p><strong>País:</strong> {{.Country}}</p>
<p><strong>Continente:</strong> {{.Continent}}</p>
<p><strong>Estilo Musical:</strong> {{.Genres}}</p>
<p><strong>Público Médio:</strong> {{.Attendance}}</p>
<p><strong>Ingressos:</strong> {{.TicketPrice}}</p>
<p><strong>Categoria:</strong> {{.SizeCategory}}</p>
</div>`))

// BuildFeatureCollection emits one Point feature per record with coordinates,
// in input order. Records without coordinates are skipped.
func BuildFeatureCollection(records []FestivalRecord, opts BuildOptions) (*geojson.FeatureCollection, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(records))}
	for _, rec := range records {
		if !rec.HasCoordinates() {
			continue
		}
		f, err := buildFeature(rec, opts)
		if err != nil {
			return nil, err
		}
		fc.Features = append(fc.Features, f)
	}
	return fc, nil
}

func buildFeature(rec FestivalRecord, opts BuildOptions) (*geojson.Feature, error) {
	point, err := geom.NewPoint(geom.XY).SetCoords(geom.Coord{*rec.Longitude, *rec.Latitude})
	if err != nil {
		return nil, fmt.Errorf("build point for %s: %w", rec.ID, err)
	}

	props := map[string]interface{}{
		"name":               rec.Name,
		"country":            rec.Country,
		"continent":          rec.Continent,
		"genres":             rec.Genres,
		"attendance":         rec.Attendance,
		"attendance_numeric": rec.AttendanceNumeric,
		"size":               string(rec.SizeCategory),
		"color":              rec.Color,
		"ticket_price":       rec.TicketPrice,
		"geohash":            rec.Geohash,
	}
	if opts.IncludePopup {
		popup, err := RenderPopup(rec)
		if err != nil {
			return nil, err
		}
		props["popupContent"] = popup
	}

	return &geojson.Feature{
		ID:         rec.ID,
		Geometry:   point,
		Properties: props,
	}, nil
}

// RenderPopup renders the HTML shown when a map marker is clicked. Field
// values are HTML-escaped.
func RenderPopup(rec FestivalRecord) (string, error) {
	var buf bytes.Buffer
	if err := popupTmpl.Execute(&buf, rec); err != nil {
		return "", fmt.Errorf("render popup for %s: %w", rec.ID, err)
	}
	return buf.String(), nil
}

// EncodeFeatureCollection serializes the collection as indented UTF-8 JSON.
// go-geom marshals each feature with json.Marshal, so <, > and & inside
// properties come out as \u003c, \u003e and \u0026. Non-ASCII text is kept.
func EncodeFeatureCollection(fc *geojson.FeatureCollection) ([]byte, error) {
	data, err := marshalIndent(fc)
	if err != nil {
		return nil, fmt.Errorf("encode feature collection: %w", err)
	}
	return data, nil
}

// marshalIndent encodes v with two-space indentation and a trailing newline.
// HTML escaping is off for values encoded here; values that marshal
// themselves keep whatever escaping they chose.
func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
