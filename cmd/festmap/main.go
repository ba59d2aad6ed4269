// Command festmap reads the festival spreadsheet and generates the GeoJSON
// collection, the statistics document and the static map pages.
//
// Usage:
//
//	go run ./cmd/festmap -input "data/raw/DATA-TRANCE - Folha1.csv" -open
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/browser"

	fileadapter "github.com/couchcryptid/festival-map/internal/adapter/file"
	"github.com/couchcryptid/festival-map/internal/adapter/tabular"
	"github.com/couchcryptid/festival-map/internal/app"
	"github.com/couchcryptid/festival-map/internal/config"
	"github.com/couchcryptid/festival-map/internal/domain"
	"github.com/couchcryptid/festival-map/internal/observability"
	"github.com/couchcryptid/festival-map/internal/render"
)

const inputPrompt = "Digite o caminho do arquivo CSV (ou pressione Enter para usar o padrão): "

// options are the command-line overrides applied on top of the environment.
type options struct {
	input    string
	out      string
	open     bool
	noPrompt bool
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "input", "", "input CSV or XLSX file (overrides INPUT_PATH)")
	flag.StringVar(&opts.out, "out", "", "output root (overrides OUTPUT_DIR)")
	flag.BoolVar(&opts.open, "open", false, "open the generated map in a browser")
	flag.BoolVar(&opts.noPrompt, "no-prompt", false, "use the default input instead of asking on stdin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	opts.apply(cfg)

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = generate(ctx, cfg, opts, logger, metrics, os.Stdin, os.Stdout)
	if cfg.MetricsTextfile != "" {
		if werr := metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			logger.Error("metrics textfile", "error", werr)
		}
	}
	if err != nil {
		if errors.Is(err, tabular.ErrInputNotFound) {
			fmt.Fprintf(os.Stderr, "Arquivo não encontrado: %s\n", cfg.InputPath)
			fmt.Fprintln(os.Stderr, "Coloque a planilha em data/raw/ ou informe o caminho com -input.")
		}
		logger.Error("generation failed", "error", err)
		stop()
		os.Exit(1) //nolint:gocritic // deferred stop already called
	}
}

// apply copies the flag overrides into cfg.
func (o options) apply(cfg *config.Config) {
	if o.input != "" {
		cfg.InputPath = o.input
	}
	if o.out != "" {
		cfg.OutputDir = o.out
	}
}

// generate scaffolds the output tree, resolves the input and runs the
// pipeline once.
func generate(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger, metrics *observability.Metrics, stdin io.Reader, stdout io.Writer) error {
	if err := fileadapter.Scaffold(cfg.OutputDir); err != nil {
		return err
	}

	input, err := resolveInput(cfg.InputPath, !opts.noPrompt, stdin, stdout)
	if err != nil {
		return err
	}
	cfg.InputPath = input
	logger.Info("generating festival map", "input", cfg.InputPath, "output", cfg.OutputDir)

	gen, err := app.Build(ctx, cfg, logger, metrics, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := gen.Close(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}()

	art, err := gen.Run(ctx)
	if err != nil {
		return err
	}
	logSummary(logger, art.Stats)

	mapPage := filepath.Join(cfg.OutputDir, filepath.FromSlash(domain.MapPagePath))
	fmt.Fprintf(stdout, "Mapa gerado em %s\n", mapPage)

	if opts.open {
		if err := browser.OpenFile(mapPage); err != nil {
			logger.Warn("could not open browser", "path", mapPage, "error", err)
		}
	}
	return nil
}

// resolveInput returns configured when set. Otherwise it asks on stdin when
// prompting is enabled, and falls back to app.DefaultInputPath on an empty
// answer or when prompting is off.
func resolveInput(configured string, prompt bool, stdin io.Reader, stdout io.Writer) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if !prompt {
		return app.DefaultInputPath, nil
	}

	fmt.Fprint(stdout, inputPrompt)
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input path: %w", err)
	}
	if line = strings.TrimSpace(line); line != "" {
		return line, nil
	}
	return app.DefaultInputPath, nil
}

func logSummary(logger *slog.Logger, stats domain.AggregateStats) {
	logger.Info("run summary",
		"festivals", stats.TotalFestivals,
		"mapped", stats.MappedFestivals,
		"continents", len(stats.Continents),
		"estimated_attendance", render.FormatInt(stats.TotalAttendance),
		"largest_continent", stats.LargestContinent(),
	)
}
