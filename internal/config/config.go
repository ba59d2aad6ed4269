package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/festival-map/internal/domain"
)

var hexColorRe = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// Config holds all generator settings, populated from environment variables.
type Config struct {
	InputPath string
	OutputDir string

	StatsScope    domain.StatsScope
	TopCountries  int
	IncludePopup  bool
	ExportParquet bool
	Palette       domain.Palette
	PaletteFile   string

	LogLevel        string
	LogFormat       string
	LogFile         string
	MetricsTextfile string

	// Optional Kafka sink; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string

	// Optional S3 publisher; disabled when S3Bucket is empty.
	S3Bucket   string
	S3Prefix   string
	S3Region   string
	S3Endpoint string

	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// KafkaEnabled reports whether features should be published to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// S3Enabled reports whether the site should be uploaded to S3.
func (c *Config) S3Enabled() bool { return c.S3Bucket != "" }

// Load reads an optional .env file, then configuration from environment
// variables, applying defaults where unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	topCountries, err := parsePositiveInt("TOP_COUNTRIES", domain.DefaultTopCountries)
	if err != nil {
		return nil, err
	}
	includePopup, err := parseBool("INCLUDE_POPUP", true)
	if err != nil {
		return nil, err
	}
	exportParquet, err := parseBool("EXPORT_PARQUET", false)
	if err != nil {
		return nil, err
	}

	scope := domain.StatsScope(sharedcfg.EnvOrDefault("STATS_SCOPE", string(domain.ScopeAll)))
	if scope != domain.ScopeAll && scope != domain.ScopeMapped {
		return nil, fmt.Errorf("invalid STATS_SCOPE %q: must be %q or %q", scope, domain.ScopeAll, domain.ScopeMapped)
	}

	paletteFile := os.Getenv("PALETTE_FILE")
	palette := domain.DefaultPalette()
	if paletteFile != "" {
		palette, err = LoadPalette(paletteFile)
		if err != nil {
			return nil, err
		}
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		InputPath: os.Getenv("INPUT_PATH"),
		OutputDir: sharedcfg.EnvOrDefault("OUTPUT_DIR", "."),

		StatsScope:    scope,
		TopCountries:  topCountries,
		IncludePopup:  includePopup,
		ExportParquet: exportParquet,
		Palette:       palette,
		PaletteFile:   paletteFile,

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		LogFile:         os.Getenv("LOG_FILE"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "festival-features"),

		S3Bucket:   os.Getenv("S3_BUCKET"),
		S3Prefix:   sharedcfg.EnvOrDefault("S3_PREFIX", "festivais-mundiais"),
		S3Region:   sharedcfg.EnvOrDefault("S3_REGION", "us-east-1"),
		S3Endpoint: os.Getenv("S3_ENDPOINT"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}
	if cfg.KafkaEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// paletteFile is the on-disk shape of PALETTE_FILE.
type paletteFile struct {
	Fallback   string                `yaml:"fallback"`
	Continents []domain.PaletteEntry `yaml:"continents"`
}

// LoadPalette reads a YAML continent palette:
//
//	fallback: "#666666"
//	continents:
//	  - name: Europa
//	    color: "#2E7D32"
func LoadPalette(path string) (domain.Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Palette{}, fmt.Errorf("read PALETTE_FILE: %w", err)
	}

	var pf paletteFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return domain.Palette{}, fmt.Errorf("parse PALETTE_FILE %q: %w", path, err)
	}
	if len(pf.Continents) == 0 {
		return domain.Palette{}, fmt.Errorf("PALETTE_FILE %q defines no continents", path)
	}
	if pf.Fallback != "" && !hexColorRe.MatchString(pf.Fallback) {
		return domain.Palette{}, fmt.Errorf("PALETTE_FILE %q: invalid fallback color %q", path, pf.Fallback)
	}
	for _, e := range pf.Continents {
		if e.Continent == "" {
			return domain.Palette{}, fmt.Errorf("PALETTE_FILE %q: entry without name", path)
		}
		if !hexColorRe.MatchString(e.Color) {
			return domain.Palette{}, fmt.Errorf("PALETTE_FILE %q: invalid color %q for %s", path, e.Color, e.Continent)
		}
	}

	return domain.NewPalette(pf.Continents, pf.Fallback), nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, s)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: must be true or false", key, s)
	}
	return b, nil
}
