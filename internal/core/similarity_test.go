package core_test

import (
	"testing"

	"recon-engine/internal/core"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"legal suffixes dropped", "Klingspor Schleifsysteme GmbH & Co. KG", []string{"klingspor", "schleifsysteme"}},
		{"diacritics folded", "Müller Söhne", []string{"muller", "sohne"}},
		{"sharp s", "Großhandel Weiß", []string{"grosshandel", "weiss"}},
		{"short tokens dropped", "AB Holz XY Bau", []string{"holz", "bau"}},
		{"punctuation splits", "Rhein-Main.Logistik/Süd", []string{"rhein", "main", "logistik", "sud"}},
		{"filler words", "Bäckerei und Konditorei der Stadt", []string{"backerei", "konditorei", "stadt"}},
		{"empty", "", []string{}},
		{"only stopwords", "GmbH & Co KG", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, core.Normalize(tt.in))
		})
	}
}

func TestCanonicalTaxID(t *testing.T) {
	assert.Equal(t, "DE123456789", core.CanonicalTaxID(" de 123.456-789 "))
	assert.Equal(t, "ATU12345678", core.CanonicalTaxID("ATU 1234 5678"))
	assert.Equal(t, "", core.CanonicalTaxID("  "))
}

func TestTokenSimilarity(t *testing.T) {
	sim := core.TokenSimilarity{}

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"exact after normalization", "Würth GmbH", "WURTH", 1.0},
		{"containment", "Klingspor Schleifsysteme GmbH", "Klingspor AG", 0.8},
		{"token containment", "Schleiftechnik Nord", "Schleiftechniken Sued", 0.35},
		{"prefix only", "Hoffmann Werkzeuge", "Hofmann Maschinen", 0.15},
		{"shared token", "Bosch Werkzeuge Berlin", "Werkzeuge Hamburg Kiel", 1.0 / 3},
		{"unrelated", "Amazon Payments", "Deutsche Telekom", 0},
		{"empty left", "", "Klingspor", 0},
		{"empty right", "Klingspor", "GmbH", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, sim.Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTokenSimilarity_Bounded(t *testing.T) {
	sim := core.TokenSimilarity{}
	got := sim.Similarity("Werk Werkzeug Werkzeuge Werkstatt", "Werkzeug Werkzeuge Werkstatt Werk")
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)
}

func TestLevenshteinSimilarity(t *testing.T) {
	sim := core.LevenshteinSimilarity{}
	assert.Equal(t, 1.0, sim.Similarity("Würth GmbH", "wurth"))
	assert.InDelta(t, 1-1.0/8, sim.Similarity("Hoffmann", "Hofmann"), 1e-9)
	assert.Equal(t, 0.0, sim.Similarity("", "Hofmann"))
}

func TestSimilarityByName(t *testing.T) {
	assert.IsType(t, core.LevenshteinSimilarity{}, core.SimilarityByName("Levenshtein"))
	assert.IsType(t, core.TokenSimilarity{}, core.SimilarityByName("token"))
	assert.IsType(t, core.TokenSimilarity{}, core.SimilarityByName(""))
}
