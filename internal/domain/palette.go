package domain

// DefaultFallbackColor is used for continents missing from the palette.
const DefaultFallbackColor = "#666666"

// PaletteEntry maps one continent name to a CSS hex color.
type PaletteEntry struct {
	Continent string `yaml:"name"`
	Color     string `yaml:"color"`
}

// Palette is an immutable continent -> color lookup. The zero value maps
// everything to DefaultFallbackColor.
type Palette struct {
	entries  []PaletteEntry
	index    map[string]string
	fallback string
}

// NewPalette copies entries into a Palette. Later duplicates override earlier
// colors but keep the first position. An empty fallback means
// DefaultFallbackColor.
func NewPalette(entries []PaletteEntry, fallback string) Palette {
	if fallback == "" {
		fallback = DefaultFallbackColor
	}
	p := Palette{
		entries:  make([]PaletteEntry, 0, len(entries)),
		index:    make(map[string]string, len(entries)),
		fallback: fallback,
	}
	for _, e := range entries {
		if _, seen := p.index[e.Continent]; seen {
			for i := range p.entries {
				if p.entries[i].Continent == e.Continent {
					p.entries[i].Color = e.Color
				}
			}
		} else {
			p.entries = append(p.entries, e)
		}
		p.index[e.Continent] = e.Color
	}
	return p
}

// DefaultPalette returns the colors the dashboard has always used.
func DefaultPalette() Palette {
	return NewPalette([]PaletteEntry{
		{Continent: "Europa", Color: "#2E7D32"},
		{Continent: "América do Norte", Color: "#1565C0"},
		{Continent: "América do Sul", Color: "#D84315"},
		{Continent: "América Central", Color: "#FF8F00"},
		{Continent: "África", Color: "#7B1FA2"},
		{Continent: "Ásia", Color: "#00838F"},
	}, DefaultFallbackColor)
}

// ColorFor returns the continent's color, or the fallback when unmapped.
func (p Palette) ColorFor(continent string) string {
	if c, ok := p.index[continent]; ok {
		return c
	}
	return p.Fallback()
}

// Fallback returns the color for unmapped continents.
func (p Palette) Fallback() string {
	if p.fallback == "" {
		return DefaultFallbackColor
	}
	return p.fallback
}

// Entries returns a copy of the palette in declaration order.
func (p Palette) Entries() []PaletteEntry {
	out := make([]PaletteEntry, len(p.entries))
	copy(out, p.entries)
	return out
}
