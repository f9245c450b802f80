package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legalStoplist holds legal-entity suffixes and filler words that carry no identity.
var legalStoplist = map[string]struct{}{
	"gmbh": {}, "co": {}, "kg": {}, "ag": {}, "gbr": {}, "ohg": {},
	"ltd": {}, "inc": {}, "corp": {}, "e.k.": {}, "ek": {}, "mbh": {}, "se": {},
	"and": {}, "und": {}, "der": {}, "die": {}, "das": {},
}

// German letters without a decomposed form.
var foldReplacer = strings.NewReplacer("ß", "ss", "æ", "ae", "ø", "o", "œ", "oe", "ł", "l")

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize lowercases a name, folds diacritics, splits it on non-alphanumeric
// boundaries and drops legal-entity tokens and tokens of two characters or fewer.
func Normalize(name string) []string {
	s := fold(foldReplacer.Replace(strings.ToLower(name)))
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) <= 2 {
			continue
		}
		if _, stop := legalStoplist[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// NormalizedName is the space-joined token form used for equality and containment checks.
func NormalizedName(name string) string {
	return strings.Join(Normalize(name), " ")
}

// CanonicalTaxID upper-cases a VAT ID and removes the separators people type into it.
func CanonicalTaxID(taxID string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(taxID)) {
		switch r {
		case ' ', '.', '-', '/', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
