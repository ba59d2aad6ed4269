// Command genmock writes a synthetic festival spreadsheet in the input
// schema. A configurable share of rows carries malformed coordinates or blank
// attendance so the degraded paths of the generator are visible on the map
// and in the stats.
//
// Usage:
//
//	go run ./cmd/genmock -n 200 -seed 42 -out data/raw/mock_festivais.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaswdr/faker"
)

// header uses the Portuguese spellings of the original sheet.
var header = []string{
	"Nome do Festival", "País", "Continente", "Coordenadas (Aproximadas)",
	"Vertentes", "Média de público", "Ingressos",
}

type country struct {
	name, continent string
	lat, lon        float64
	currency        string
}

var countries = []country{
	{"Bélgica", "Europa", 51.0, 4.4, "€"},
	{"Holanda", "Europa", 52.4, 4.9, "€"},
	{"Alemanha", "Europa", 52.5, 13.4, "€"},
	{"Espanha", "Europa", 41.4, 2.2, "€"},
	{"Brasil", "América do Sul", -23.5, -46.6, "R$"},
	{"Argentina", "América do Sul", -34.6, -58.4, "ARS"},
	{"Estados Unidos", "América do Norte", 36.1, -115.2, "US$"},
	{"México", "América do Norte", 20.6, -87.1, "MXN"},
	{"Japão", "Ásia", 35.7, 139.7, "¥"},
	{"Índia", "Ásia", 15.5, 73.8, "₹"},
	{"África do Sul", "África", -33.9, 18.4, "ZAR"},
	{"Marrocos", "África", 31.6, -8.0, "MAD"},
	{"Austrália", "Oceania", -33.9, 151.2, "AU$"},
	{"Nova Zelândia", "Oceania", -36.8, 174.8, "NZ$"},
}

var (
	namePrefixes = []string{"Dream", "Solar", "Cosmic", "Pulse", "Electric", "Psy", "Neon", "Ocean"}
	nameSuffixes = []string{"Festival", "Gathering", "Open Air", "Experience", "Fest", "Weekender"}
	genres       = []string{"Techno", "House", "Trance", "Psytrance", "Drum and Bass", "Dubstep", "EDM", "Hardstyle"}
	badCoords    = []string{"", "sem coordenadas", "91.0,10.0", "abc,def", "45.0"}
)

// options control the shape of the generated sheet.
type options struct {
	rows            int
	badCoords       float64
	blankAttendance float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	n := flag.Int("n", 100, "number of festival rows")
	out := flag.String("out", "data/raw/mock_festivais.csv", "output CSV path")
	seed := flag.Int64("seed", 1, "random seed for reproducible output")
	bad := flag.Float64("bad-coords", 0.1, "fraction of rows with malformed coordinates")
	blank := flag.Float64("blank-attendance", 0.1, "fraction of rows without attendance")
	flag.Parse()

	if *n <= 0 {
		return fmt.Errorf("-n must be positive, got %d", *n)
	}
	if !validFraction(*bad) || !validFraction(*blank) {
		return fmt.Errorf("fractions must be within [0, 1]")
	}

	f := faker.NewWithSeed(rand.NewSource(*seed))
	rows := generate(f, options{rows: *n, badCoords: *bad, blankAttendance: *blank})

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	file, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := writeCSV(file, rows); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	log.Printf("wrote %d festivals to %s", len(rows), *out)
	return file.Close()
}

func validFraction(v float64) bool { return v >= 0 && v <= 1 }

// generate returns opts.rows data rows, header excluded.
func generate(f faker.Faker, opts options) [][]string {
	rows := make([][]string, 0, opts.rows)
	for i := 0; i < opts.rows; i++ {
		c := countries[f.IntBetween(0, len(countries)-1)]

		coords := fmt.Sprintf("%.4f,%.4f", c.lat+f.Float64(4, -2, 2), c.lon+f.Float64(4, -2, 2))
		if chance(f, opts.badCoords) {
			coords = f.RandomStringElement(badCoords)
		}

		attendance := attendanceText(f)
		if chance(f, opts.blankAttendance) {
			attendance = ""
		}

		rows = append(rows, []string{
			festivalName(f),
			c.name,
			c.continent,
			coords,
			genreList(f),
			attendance,
			fmt.Sprintf("%s %d", c.currency, f.IntBetween(5, 60)*10),
		})
	}
	return rows
}

func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// chance reports true with probability p.
func chance(f faker.Faker, p float64) bool {
	if p <= 0 {
		return false
	}
	return float64(f.IntBetween(0, 9999)) < p*10000
}

func festivalName(f faker.Faker) string {
	if f.IntBetween(0, 1) == 0 {
		return f.RandomStringElement(namePrefixes) + " " + f.RandomStringElement(nameSuffixes)
	}
	return f.Address().City() + " " + f.RandomStringElement(nameSuffixes)
}

func genreList(f faker.Faker) string {
	n := f.IntBetween(1, 3)
	picked := make([]string, 0, n)
	seen := map[string]bool{}
	for len(picked) < n {
		g := f.RandomStringElement(genres)
		if seen[g] {
			continue
		}
		seen[g] = true
		picked = append(picked, g)
	}
	return strings.Join(picked, ", ")
}

// attendanceText varies the free-text styles found in the real sheet.
func attendanceText(f faker.Faker) string {
	low := f.IntBetween(2, 400) * 500
	switch f.IntBetween(0, 3) {
	case 0:
		return fmt.Sprintf("%d", low)
	case 1:
		return fmt.Sprintf("%s a %s", thousands(low), thousands(low+f.IntBetween(1, 20)*1000))
	case 2:
		return fmt.Sprintf("cerca de %d pessoas", low)
	default:
		return thousands(low)
	}
}

// thousands formats n with comma thousands separators.
func thousands(n int) string {
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
