package render

import (
	"context"

	"github.com/couchcryptid/festival-map/internal/domain"
)

// Presenter fills the HTML pages of a built artifact bundle.
// It implements pipeline.Presenter.
type Presenter struct {
	palette    domain.Palette
	sourceName string
}

// NewPresenter creates a Presenter that colors the legend with palette.
func NewPresenter(palette domain.Palette, sourceName string) *Presenter {
	return &Presenter{palette: palette, sourceName: sourceName}
}

// Present renders the map and project pages from the encoded GeoJSON and
// stats already held in art.
func (p *Presenter) Present(_ context.Context, art domain.Artifacts) (domain.Artifacts, error) {
	mapPage, err := RenderMap(MapPage{
		GeoJSON:     art.GeoJSON,
		Stats:       art.Stats,
		Palette:     p.palette,
		SourceName:  p.sourceName,
		GeneratedAt: art.GeneratedAt,
	})
	if err != nil {
		return art, err
	}
	projectPage, err := RenderProjectPage(DefaultProjectPage(art.GeneratedAt))
	if err != nil {
		return art, err
	}

	art.MapPage = []byte(mapPage)
	art.ProjectPage = []byte(projectPage)
	return art, nil
}
