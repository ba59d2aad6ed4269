package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/festival-map/internal/domain"
)

const testBroker = "localhost:9092"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.InputPath)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, domain.ScopeAll, cfg.StatsScope)
	assert.Equal(t, 5, cfg.TopCountries)
	assert.True(t, cfg.IncludePopup)
	assert.False(t, cfg.ExportParquet)
	assert.Equal(t, domain.DefaultPalette().Entries(), cfg.Palette.Entries())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.LogFile)
	assert.Empty(t, cfg.MetricsTextfile)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "festival-features", cfg.KafkaTopic)
	assert.False(t, cfg.S3Enabled())
	assert.Equal(t, "festivais-mundiais", cfg.S3Prefix)
	assert.Equal(t, "us-east-1", cfg.S3Region)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	palette := writeFile(t, "palette.yaml", `
fallback: "#999999"
continents:
  - name: Oceania
    color: "#123456"
`)
	t.Setenv("INPUT_PATH", "festivals.xlsx")
	t.Setenv("OUTPUT_DIR", "/tmp/site")
	t.Setenv("STATS_SCOPE", "mapped")
	t.Setenv("TOP_COUNTRIES", "3")
	t.Setenv("INCLUDE_POPUP", "false")
	t.Setenv("EXPORT_PARQUET", "true")
	t.Setenv("PALETTE_FILE", palette)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_FILE", "/tmp/festmap.log")
	t.Setenv("METRICS_TEXTFILE", "/tmp/festmap.prom")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-features")
	t.Setenv("S3_BUCKET", "portfolio")
	t.Setenv("S3_PREFIX", "maps")
	t.Setenv("S3_REGION", "sa-east-1")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "festivals.xlsx", cfg.InputPath)
	assert.Equal(t, "/tmp/site", cfg.OutputDir)
	assert.Equal(t, domain.ScopeMapped, cfg.StatsScope)
	assert.Equal(t, 3, cfg.TopCountries)
	assert.False(t, cfg.IncludePopup)
	assert.True(t, cfg.ExportParquet)
	assert.Equal(t, "#123456", cfg.Palette.ColorFor("Oceania"))
	assert.Equal(t, "#999999", cfg.Palette.ColorFor("Europa"))
	assert.Equal(t, palette, cfg.PaletteFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/tmp/festmap.log", cfg.LogFile)
	assert.Equal(t, "/tmp/festmap.prom", cfg.MetricsTextfile)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "custom-features", cfg.KafkaTopic)
	assert.True(t, cfg.S3Enabled())
	assert.Equal(t, "portfolio", cfg.S3Bucket)
	assert.Equal(t, "maps", cfg.S3Prefix)
	assert.Equal(t, "sa-east-1", cfg.S3Region)
	assert.Equal(t, "http://localhost:9000", cfg.S3Endpoint)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_SingleBroker(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", testBroker)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{testBroker}, cfg.KafkaBrokers)
}

func TestLoad_InvalidStatsScope(t *testing.T) {
	t.Setenv("STATS_SCOPE", "some")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STATS_SCOPE")
}

func TestLoad_InvalidTopCountries(t *testing.T) {
	for _, v := range []string{"0", "-2", "five"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("TOP_COUNTRIES", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "TOP_COUNTRIES")
		})
	}
}

func TestLoad_InvalidBool(t *testing.T) {
	t.Setenv("INCLUDE_POPUP", "sometimes")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INCLUDE_POPUP")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_MissingPaletteFile(t *testing.T) {
	t.Setenv("PALETTE_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PALETTE_FILE")
}

func TestLoadPalette(t *testing.T) {
	t.Run("valid file keeps order", func(t *testing.T) {
		path := writeFile(t, "palette.yaml", `
continents:
  - name: Ásia
    color: "#00838F"
  - name: Europa
    color: "#2E7D32"
`)
		p, err := LoadPalette(path)
		require.NoError(t, err)
		assert.Equal(t, []domain.PaletteEntry{
			{Continent: "Ásia", Color: "#00838F"},
			{Continent: "Europa", Color: "#2E7D32"},
		}, p.Entries())
		assert.Equal(t, domain.DefaultFallbackColor, p.ColorFor("Oceania"))
	})

	t.Run("invalid color", func(t *testing.T) {
		path := writeFile(t, "palette.yaml", `
continents:
  - name: Europa
    color: green
`)
		_, err := LoadPalette(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid color")
	})

	t.Run("invalid fallback", func(t *testing.T) {
		path := writeFile(t, "palette.yaml", `
fallback: gray
continents:
  - name: Europa
    color: "#2E7D32"
`)
		_, err := LoadPalette(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fallback")
	})

	t.Run("empty", func(t *testing.T) {
		path := writeFile(t, "palette.yaml", "fallback: \"#000\"\n")
		_, err := LoadPalette(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no continents")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, "palette.yaml", "continents: [\n")
		_, err := LoadPalette(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse PALETTE_FILE")
	})

	t.Run("missing name", func(t *testing.T) {
		path := writeFile(t, "palette.yaml", `
continents:
  - color: "#2E7D32"
`)
		_, err := LoadPalette(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "without name")
	})
}
