// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns raw label text into a ParsedLabel: canonical text,
// detected sections, ingredient tokens, and statement tokens. It also
// locates evidence spans for matched terms.
//
// Nothing in this package returns an error. Malformed or empty input
// produces an empty ParsedLabel.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/safescan/pkg/types"
)

// ParseIngredientLabel canonicalizes raw, detects the ingredients, contains
// and may-contain sections, and splits them into tokens.
func ParseIngredientLabel(raw string) types.ParsedLabel {
	text := Canonicalize(raw)
	label := types.ParsedLabel{
		Ingredients:          []string{},
		ContainsStatements:   []string{},
		MayContainStatements: []string{},
		NormalizedText:       text,
		Sections:             make(map[types.SectionName]types.Span),
	}
	if text == "" {
		return label
	}

	lower := lowerASCII(text)
	markers := detectMarkers(lower)

	sp := ingredientsSpan(markers, len(lower))
	label.Sections[types.SectionIngredients] = sp
	label.IngredientsRawText = strings.TrimSpace(text[sp.Start:sp.End])
	label.Ingredients = SplitIngredients(label.IngredientsRawText)

	containsSeen := make(map[string]bool)
	maySeen := make(map[string]bool)
	for i, m := range markers {
		if m.kind != markerContains && m.kind != markerMayContain {
			continue
		}
		sp := statementSpan(lower, markers, i)
		body := text[sp.Start:sp.End]

		name := types.SectionContains
		dst, seen := &label.ContainsStatements, containsSeen
		if m.kind == markerMayContain {
			name = types.SectionMayContain
			dst, seen = &label.MayContainStatements, maySeen
		}
		if _, ok := label.Sections[name]; !ok {
			label.Sections[name] = sp
		}
		for _, tok := range SplitStatement(body) {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			*dst = append(*dst, tok)
		}
	}

	return label
}

// Canonicalize applies NFKC, maps quote and dash variants to ASCII, drops
// control characters, and collapses every kind of whitespace to one space.
func Canonicalize(raw string) string {
	s := norm.NFKC.String(raw)
	s = strings.Map(canonicalRune, s)
	return strings.Join(strings.Fields(s), " ")
}

func canonicalRune(r rune) rune {
	switch r {
	case '‘', '’', '‚', '‛', '′', '´', '`':
		return '\''
	case '“', '”', '„', '‟', '″', '«', '»':
		return '"'
	case '‐', '‑', '‒', '–', '—', '―', '−', '﹘', '﹣':
		return '-'
	}
	if unicode.IsSpace(r) {
		return ' '
	}
	if unicode.IsControl(r) {
		return -1
	}
	return r
}

// lowerASCII lowercases ASCII letters only, so byte offsets in the result
// line up with the input.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// FindEvidenceSpans returns every case-insensitive occurrence of term in
// text whose neighbours are string edges, whitespace, or punctuation, left to
// right. "salt" is found in "sea salt, pepper" but not in "saltpeter".
func FindEvidenceSpans(text, term string) []types.Span {
	t := lowerASCII(strings.TrimSpace(term))
	if t == "" || len(t) > len(text) {
		return nil
	}
	lower := lowerASCII(text)

	var spans []types.Span
	for from := 0; from <= len(lower)-len(t); {
		idx := strings.Index(lower[from:], t)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(t)
		if (start == 0 || isBoundary(lower[start-1])) && (end == len(lower) || isBoundary(lower[end])) {
			spans = append(spans, types.Span{Start: start, End: end})
			from = end
			continue
		}
		from = start + 1
	}
	return spans
}

// isBoundary reports whether b separates words. Bytes of multi-byte runes
// count as word characters.
func isBoundary(b byte) bool {
	if b >= 0x80 {
		return false
	}
	r := rune(b)
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}
