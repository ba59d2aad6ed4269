package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEuropa = "Europa"
	testAfrica = "África"
	testAsia   = "Ásia"
)

func ptr(v float64) *float64 { return &v }

func TestParseRow(t *testing.T) {
	palette := DefaultPalette()

	t.Run("complete row", func(t *testing.T) {
		row := RawRow{
			Line:        1,
			Name:        " Tomorrowland ",
			Country:     "Bélgica",
			Continent:   testEuropa,
			Coordinates: "51.0917, 4.3844",
			Genres:      "EDM, Techno",
			Attendance:  "400000",
			TicketPrice: "€ 120 - 350",
		}
		rec := ParseRow(row, palette)

		assert.Equal(t, "Tomorrowland", rec.Name)
		assert.Equal(t, "Bélgica", rec.Country)
		assert.Equal(t, testEuropa, rec.Continent)
		assert.Equal(t, "EDM, Techno", rec.Genres)
		assert.Equal(t, "€ 120 - 350", rec.TicketPrice)
		require.True(t, rec.HasCoordinates())
		assert.Equal(t, 51.0917, *rec.Latitude)
		assert.Equal(t, 4.3844, *rec.Longitude)
		require.NotNil(t, rec.AttendanceNumeric)
		assert.Equal(t, 400000.0, *rec.AttendanceNumeric)
		assert.Equal(t, SizeLarge, rec.SizeCategory)
		assert.Equal(t, "#2E7D32", rec.Color)
		assert.Len(t, rec.Geohash, geohashPrecision)
		assert.True(t, strings.HasPrefix(rec.ID, "fest-"))
	})

	t.Run("blank fields get sentinels", func(t *testing.T) {
		rec := ParseRow(RawRow{Line: 2, Name: "Sem Dados", Continent: "Oceania"}, palette)

		assert.Equal(t, SentinelMissing, rec.Country)
		assert.Equal(t, SentinelGenres, rec.Genres)
		assert.Equal(t, SentinelMissing, rec.Attendance)
		assert.Equal(t, SentinelMissing, rec.TicketPrice)
		assert.Nil(t, rec.AttendanceNumeric)
		assert.Equal(t, SizeUnknown, rec.SizeCategory)
		assert.Equal(t, DefaultFallbackColor, rec.Color)
		assert.False(t, rec.HasCoordinates())
		assert.Empty(t, rec.Geohash)
	})

	t.Run("whitespace-only name", func(t *testing.T) {
		rec := ParseRow(RawRow{Name: "   "}, palette)
		assert.Equal(t, SentinelMissing, rec.Name)
		assert.Equal(t, SentinelMissing, rec.Continent)
	})

	t.Run("deterministic ID", func(t *testing.T) {
		row := RawRow{Line: 7, Name: "A", Country: "X", Coordinates: "1,2"}
		assert.Equal(t, ParseRow(row, palette).ID, ParseRow(row, palette).ID)

		other := row
		other.Line = 8
		assert.NotEqual(t, ParseRow(row, palette).ID, ParseRow(other, palette).ID)
	})
}

func TestParseRows_PreservesOrder(t *testing.T) {
	rows := []RawRow{{Line: 1, Name: "C"}, {Line: 2, Name: "A"}, {Line: 3, Name: "B"}}
	records := ParseRows(rows, DefaultPalette())

	require.Len(t, records, 3)
	assert.Equal(t, "C", records[0].Name)
	assert.Equal(t, "A", records[1].Name)
	assert.Equal(t, "B", records[2].Name)
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		in      string
		wantLat *float64
		wantLon *float64
	}{
		{"45.0,10.0", ptr(45.0), ptr(10.0)},
		{" -1.0 , 36.0 ", ptr(-1.0), ptr(36.0)},
		{"-33.8688,151.2093", ptr(-33.8688), ptr(151.2093)},
		{"90,180", ptr(90), ptr(180)},
		{"bad,coord", nil, nil},
		{"45.0", nil, nil},
		{"45.0;10.0", nil, nil},
		{"1,2,3", nil, nil},
		{"", nil, nil},
		{",", nil, nil},
		{"NaN,10", nil, nil},
		{"Inf,10", nil, nil},
		{"91,10", nil, nil},
		{"10,-181", nil, nil},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			lat, lon := parseCoordinates(tc.in)
			assert.Equal(t, tc.wantLat, lat)
			assert.Equal(t, tc.wantLon, lon)
		})
	}
}

func TestExtractAttendance(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"10000", ptr(10000)},
		{"10,000 to 15,000", ptr(12500)},
		{"cerca de 8000 pessoas", ptr(8000)},
		{"Não informado", nil},
		{"", nil},
		{"5000,7000", ptr(6000)},
		{"15000", ptr(15000)},
		{"2000", ptr(2000)},
		{"10,000–15,000 people", ptr(12500)},
		{"1,234,567", ptr(1234567)},
		{"2.5 mil", ptr(2.5)},
		{"8000.", ptr(8000)},
		{"entre 1000 e 3000 (dia), 9000 total", ptr(2000)},
		{"1,2345", ptr(1173)},
		{"10,000.5", ptr(10000.5)},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got := ExtractAttendance(tc.in)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 1e-9)
		})
	}
}

func TestSplitNumberRun(t *testing.T) {
	assert.Equal(t, []string{"10000"}, splitNumberRun("10,000"))
	assert.Equal(t, []string{"5000", "7000"}, splitNumberRun("5000,7000"))
	assert.Equal(t, []string{"10000", ""}, splitNumberRun("10,000,"))
	assert.Equal(t, []string{"1.5", "500"}, splitNumberRun("1.5,500"))
}

func TestClassifySize(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want SizeCategory
	}{
		{"nil", nil, SizeUnknown},
		{"zero", ptr(0), SizeSmall},
		{"4999", ptr(4999), SizeSmall},
		{"5000", ptr(5000), SizeMedium},
		{"19999", ptr(19999), SizeMedium},
		{"20000", ptr(20000), SizeLarge},
		{"huge", ptr(400000), SizeLarge},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifySize(tc.in))
		})
	}
}
