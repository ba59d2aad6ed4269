// Package app wires configuration into a ready-to-run generator pipeline.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"

	fileadapter "github.com/couchcryptid/festival-map/internal/adapter/file"
	kafkaadapter "github.com/couchcryptid/festival-map/internal/adapter/kafka"
	s3adapter "github.com/couchcryptid/festival-map/internal/adapter/s3"
	"github.com/couchcryptid/festival-map/internal/adapter/tabular"
	"github.com/couchcryptid/festival-map/internal/config"
	"github.com/couchcryptid/festival-map/internal/domain"
	"github.com/couchcryptid/festival-map/internal/observability"
	"github.com/couchcryptid/festival-map/internal/pipeline"
	"github.com/couchcryptid/festival-map/internal/render"
)

// DefaultInputPath is the input offered when none is configured.
const DefaultInputPath = "data/raw/DATA-TRANCE - Folha1.csv"

// Generator is a wired pipeline plus the resources it holds open.
type Generator struct {
	*pipeline.Pipeline
	closers []func() error
}

// Close releases sink resources such as the Kafka producer.
func (g *Generator) Close() error {
	var errs []error
	for _, c := range g.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// abort releases what a failed Build already opened and returns err joined
// with any close errors.
func (g *Generator) abort(err error) error {
	return errors.Join(err, g.Close())
}

// Build assembles the pipeline for cfg: the tabular reader, the festival
// transformer, the HTML presenter and the enabled sinks. The file sink always
// runs first. A nil clock uses the real clock.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) (*Generator, error) {
	if cfg.InputPath == "" {
		return nil, errors.New("no input path configured")
	}

	reader := tabular.NewReader(cfg.InputPath, logger)
	transformer := pipeline.NewTransformer(
		cfg.Palette,
		domain.BuildOptions{IncludePopup: cfg.IncludePopup},
		domain.AggregateOptions{Scope: cfg.StatsScope, TopCountries: cfg.TopCountries},
		logger,
	)
	presenter := render.NewPresenter(cfg.Palette, "")

	g := &Generator{}
	sinks := []pipeline.Sink{
		{Name: "file", Loader: fileadapter.NewWriter(cfg.OutputDir, cfg.ExportParquet, logger)},
	}
	if cfg.KafkaEnabled() {
		w := kafkaadapter.NewWriter(cfg, logger)
		g.closers = append(g.closers, w.Close)
		sinks = append(sinks, pipeline.Sink{Name: "kafka", Loader: w})
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	if cfg.S3Enabled() {
		pub, err := s3adapter.NewPublisher(ctx, cfg, logger)
		if err != nil {
			return nil, g.abort(fmt.Errorf("s3 sink: %w", err))
		}
		sinks = append(sinks, pipeline.Sink{Name: "s3", Loader: pub})
	}

	g.Pipeline = pipeline.New(reader, transformer, presenter, sinks, logger, metrics, clock)
	return g, nil
}

// SiteReadiness reports ready once the map page exists under an output root.
// It serves previews of a site built by an earlier run.
type SiteReadiness struct {
	Dir string
}

// CheckReadiness returns an error while the map page is missing.
func (s SiteReadiness) CheckReadiness(_ context.Context) error {
	page := filepath.Join(s.Dir, filepath.FromSlash(domain.MapPagePath))
	if _, err := os.Stat(page); err != nil {
		return fmt.Errorf("map page not generated: %w", err)
	}
	return nil
}
