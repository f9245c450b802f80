package core

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity scores two free-text names in [0,1].
type Similarity interface {
	Similarity(a, b string) float64
}

// SimilarityFunc adapts a plain function to Similarity.
type SimilarityFunc func(a, b string) float64

func (f SimilarityFunc) Similarity(a, b string) float64 { return f(a, b) }

// TokenSimilarity is the token-overlap heuristic. Every point it awards can be
// traced to a concrete token pair, which keeps the name score explainable.
type TokenSimilarity struct{}

func (TokenSimilarity) Similarity(a, b string) float64 {
	ta, tb := Normalize(a), Normalize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	na, nb := strings.Join(ta, " "), strings.Join(tb, " ")
	if na == nb {
		return 1.0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.8
	}

	var points float64
	for _, x := range ta {
		if utf8.RuneCountInString(x) <= 3 {
			continue
		}
		for _, y := range tb {
			if utf8.RuneCountInString(y) <= 3 {
				continue
			}
			points += tokenPoints(x, y)
		}
	}

	return clamp(points/float64(max(len(ta), len(tb))), 0, 1)
}

func tokenPoints(x, y string) float64 {
	switch {
	case x == y:
		return 1.0
	case strings.Contains(x, y) || strings.Contains(y, x):
		return 0.7
	case prefix3(x) == prefix3(y):
		return 0.3
	}
	return 0
}

func prefix3(s string) string {
	r := []rune(s)
	if len(r) < 3 {
		return s
	}
	return string(r[:3])
}

// LevenshteinSimilarity compares normalized names by edit distance relative to
// the longer name.
type LevenshteinSimilarity struct{}

func (LevenshteinSimilarity) Similarity(a, b string) float64 {
	na, nb := NormalizedName(a), NormalizedName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	longest := max(utf8.RuneCountInString(na), utf8.RuneCountInString(nb))
	dist := levenshtein.ComputeDistance(na, nb)
	return clamp(1-float64(dist)/float64(longest), 0, 1)
}

// SimilarityByName returns the named implementation; unknown names fall back to token overlap.
func SimilarityByName(name string) Similarity {
	if strings.EqualFold(name, "levenshtein") {
		return LevenshteinSimilarity{}
	}
	return TokenSimilarity{}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
