// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/safescan/pkg/types"
)

// Section header patterns. They run on ASCII-lowercased canonical text and
// are tried most specific first: may-contain claims its ranges before the
// contains family looks at the text.
var (
	// mayContainRe matches "may contain", "may also contain traces of" and
	// shared-facility statements such as "produced in a facility that also
	// processes".
	mayContainRe = regexp.MustCompile(
		`\bmay\s+(?:also\s+)?contains?(?:\s+traces\s+of)?\s*:?` +
			`|\b(?:produced|processed|manufactured|made|packaged|packed)\s+(?:in|on)\s+(?:a\s+|the\s+same\s+)?` +
			`(?:facility|equipment|plant|line)\s+(?:that|which|where)\s+(?:also\s+)?` +
			`(?:processes|handles|uses|produces|manufactures|packages)\s*:?`)

	// containsRe matches "contains" and "allergens" headers. Group 1 is the
	// colon, present for explicit headers.
	containsRe = regexp.MustCompile(`\b(?:contains|allergens?|allergy\s+information)\b\s*(:)?`)

	// ingredientsRe matches the ingredients header. Group 1 is the colon.
	ingredientsRe = regexp.MustCompile(`\bingredients?\b\s*(:)?`)

	// terminalRe matches keywords that end any section without opening one
	// the engine reads.
	terminalRe = regexp.MustCompile(
		`\b(?:nutrition\s+facts|serving\s+size|calories|distributed\s+by|manufactured\s+by|manufactured\s+for|packed\s+by)\b`)

	// sentenceEndRe matches a period that closes a statement.
	sentenceEndRe = regexp.MustCompile(`\.(?:\s|$)`)

	// pctBodyRe matches a percentage right after "contains", as in
	// "contains 2% or less of", which continues the ingredient list.
	pctBodyRe = regexp.MustCompile(`^\s*(?:less\s+than\s+)?\d+(?:\.\d+)?\s*%`)
)

// mayLookback is how many bytes before a contains header are checked for
// "may" to avoid misfiring inside "may contain".
const mayLookback = 5

type markerKind int

const (
	markerIngredients markerKind = iota
	markerContains
	markerMayContain
	markerTerminal
)

// marker is one recognized section keyword. start is where the keyword
// begins, body where the section content begins.
type marker struct {
	kind  markerKind
	start int
	body  int
}

// detectMarkers finds every recognized section keyword in lower, sorted by
// position.
func detectMarkers(lower string) []marker {
	var markers []marker
	var claimed []types.Span

	for _, m := range mayContainRe.FindAllStringIndex(lower, -1) {
		markers = append(markers, marker{kind: markerMayContain, start: m[0], body: m[1]})
		claimed = append(claimed, types.Span{Start: m[0], End: m[1]})
	}

	for _, m := range containsRe.FindAllStringSubmatchIndex(lower, -1) {
		start, end := m[0], m[1]
		if overlaps(claimed, start, end) {
			continue
		}
		if strings.Contains(lower[max(0, start-mayLookback):start], "may") {
			continue
		}
		hasColon := m[2] >= 0
		if !hasColon && !atSentenceStart(lower, start) {
			continue
		}
		if pctBodyRe.MatchString(lower[end:]) || bracketDepth(lower[:start]) > 0 {
			continue
		}
		markers = append(markers, marker{kind: markerContains, start: start, body: end})
	}

	for _, m := range ingredientsRe.FindAllStringSubmatchIndex(lower, -1) {
		start, end := m[0], m[1]
		hasColon := m[2] >= 0
		if !hasColon && !atSentenceStart(lower, start) {
			continue
		}
		markers = append(markers, marker{kind: markerIngredients, start: start, body: end})
	}

	for _, m := range terminalRe.FindAllStringIndex(lower, -1) {
		if overlaps(claimed, m[0], m[1]) {
			continue
		}
		markers = append(markers, marker{kind: markerTerminal, start: m[0], body: m[1]})
	}

	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].start < markers[j].start
	})
	return markers
}

// atSentenceStart reports whether only whitespace separates offset from the
// start of text or from a sentence terminator.
func atSentenceStart(lower string, offset int) bool {
	i := offset - 1
	for i >= 0 && lower[i] == ' ' {
		i--
	}
	if i < 0 {
		return true
	}
	switch lower[i] {
	case '.', '!', '?', '|':
		return true
	}
	return false
}

// bracketDepth returns how many brackets are left open at the end of s.
func bracketDepth(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}

func overlaps(spans []types.Span, start, end int) bool {
	for _, s := range spans {
		if start < s.End && s.Start < end {
			return true
		}
	}
	return false
}

// sectionEnd returns where the section opened by markers[i] ends: the start
// of the next marker after its body, or n.
func sectionEnd(markers []marker, i, n int) int {
	for _, m := range markers[i+1:] {
		if m.start >= markers[i].body {
			return m.start
		}
	}
	return n
}

// ingredientsSpan locates the ingredients region. Without an ingredients
// header the region starts at the beginning of the text and, like every
// section, ends at the next recognized keyword.
func ingredientsSpan(markers []marker, n int) types.Span {
	for i, m := range markers {
		if m.kind == markerIngredients {
			return types.Span{Start: m.body, End: sectionEnd(markers, i, n)}
		}
	}
	if len(markers) > 0 {
		return types.Span{Start: 0, End: markers[0].start}
	}
	return types.Span{Start: 0, End: n}
}

// statementSpan returns the body of the contains or may-contain statement
// opened by markers[i]. A statement ends at the next marker or at the first
// sentence-ending period, whichever comes first.
func statementSpan(lower string, markers []marker, i int) types.Span {
	start := markers[i].body
	end := sectionEnd(markers, i, len(lower))
	if loc := sentenceEndRe.FindStringIndex(lower[start:end]); loc != nil {
		end = start + loc[0]
	}
	return types.Span{Start: start, End: end}
}
