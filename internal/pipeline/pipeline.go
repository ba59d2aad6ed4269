package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/festival-map/internal/domain"
	"github.com/couchcryptid/festival-map/internal/observability"
)

// Extractor reads every raw row of the input.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.RawRow, error)
}

// Transformer parses rows and builds the encoded data artifacts.
type Transformer interface {
	Transform(ctx context.Context, rows []domain.RawRow, generatedAt time.Time) (domain.Artifacts, error)
}

// Presenter adds the rendered pages to a built bundle.
type Presenter interface {
	Present(ctx context.Context, art domain.Artifacts) (domain.Artifacts, error)
}

// Loader writes a complete bundle to a destination.
type Loader interface {
	Load(ctx context.Context, art domain.Artifacts) error
}

// Sink is a named Loader. The name labels logs and metrics.
type Sink struct {
	Name   string
	Loader Loader
}

// Pipeline orchestrates one extract-transform-present-load run.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	presenter   Presenter
	sinks       []Sink
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	ready       atomic.Bool
}

// New creates a Pipeline with the given stages and observability. A nil
// presenter skips the HTML pages; a nil clock uses the real clock.
func New(e Extractor, t Transformer, p Presenter, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		extractor:   e,
		transformer: t,
		presenter:   p,
		sinks:       sinks,
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
	}
}

// CheckReadiness returns nil once a run has completed, or an error describing
// why the site is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Run builds every artifact in memory, then hands the bundle to each sink in
// order. Nothing is loaded when extraction, transformation or rendering
// fails. The first failing sink stops the run.
func (p *Pipeline) Run(ctx context.Context) (domain.Artifacts, error) {
	start := p.clock.Now()

	rows, err := p.extractor.Extract(ctx)
	if err != nil {
		return domain.Artifacts{}, fmt.Errorf("extract: %w", err)
	}
	p.metrics.RowsRead.Add(float64(len(rows)))

	art, err := p.transformer.Transform(ctx, rows, start)
	if err != nil {
		return domain.Artifacts{}, fmt.Errorf("transform: %w", err)
	}
	p.recordQuality(art)

	if p.presenter != nil {
		art, err = p.presenter.Present(ctx, art)
		if err != nil {
			return domain.Artifacts{}, fmt.Errorf("present: %w", err)
		}
	}

	for _, s := range p.sinks {
		if err := ctx.Err(); err != nil {
			return art, err
		}
		if err := s.Loader.Load(ctx, art); err != nil {
			p.metrics.LoadErrors.WithLabelValues(s.Name).Inc()
			p.logger.Error("load failed", "sink", s.Name, "error", err)
			return art, fmt.Errorf("load %s: %w", s.Name, err)
		}
		p.logger.Debug("artifacts loaded", "sink", s.Name)
	}

	duration := p.clock.Since(start)
	p.metrics.RunDuration.Observe(duration.Seconds())
	p.metrics.LastSuccess.Set(float64(p.clock.Now().Unix()))
	p.ready.Store(true)

	p.logger.Info("run complete",
		"rows", len(rows),
		"features", art.Stats.MappedFestivals,
		"unmapped", art.Stats.UnmappedFestivals,
		"sinks", len(p.sinks),
		"duration", duration,
	)
	return art, nil
}

func (p *Pipeline) recordQuality(art domain.Artifacts) {
	if art.Collection != nil {
		p.metrics.FeaturesEmitted.Add(float64(len(art.Collection.Features)))
	}
	for _, rec := range art.Records {
		if !rec.HasCoordinates() {
			p.metrics.CoordinateFailures.Inc()
		}
		if rec.AttendanceNumeric == nil {
			p.metrics.AttendanceUnparsed.Inc()
		}
	}
}
