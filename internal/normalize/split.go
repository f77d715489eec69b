// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"regexp"
	"strings"
)

// Token splitting patterns.
var (
	// segmentRe separates list entries: commas, semicolons, and a period
	// followed by whitespace. Decimal points are left alone.
	segmentRe = regexp.MustCompile(`[,;]|\.\s`)

	// conjunctionRe splits "a and b" and "a and/or b" inside one entry.
	conjunctionRe = regexp.MustCompile(`(?i)\s+(?:and/or|and|&)\s+`)

	// statementSepRe splits contains and may-contain statement bodies.
	statementSepRe = regexp.MustCompile(`(?i)[,;]|\s+(?:and/or|and)\s+`)

	leadingConjRe = regexp.MustCompile(`^(?:and/or|and|or|&)\s+`)
	bulletRe      = regexp.MustCompile(`^[\s\-*•·●▪‣>+]+`)

	// leadingHeaderRe strips an allergen header left inside a parenthetical,
	// as in "chocolate (contains: milk)".
	leadingHeaderRe = regexp.MustCompile(`^(?:contains|allergens?)\s*:\s*`)

	// leadingPctRe strips "2% or less of", "less than 2% of", and
	// "contains 2% or less of:" prefixes.
	leadingPctRe = regexp.MustCompile(
		`^(?:contains\s+)?(?:less\s+than\s+)?\d+(?:\.\d+)?\s*%\s*(?:or\s+less\s+)?(?:of\s*)?(?:each\s+of\s+the\s+following\s*)?:?\s*`)

	// trailingPctRe strips "salt 2%" and "salt less than 2%" suffixes.
	trailingPctRe = regexp.MustCompile(`\s*(?:less\s+than\s+)?\d+(?:\.\d+)?\s*%(?:\s*or\s+less)?$`)
)

// maxStatementToken bounds statement tokens; anything longer is OCR noise.
const maxStatementToken = 50

// SplitIngredients splits an ingredients region into lowercase tokens in
// order of appearance. Parenthetical and bracketed sub-lists are hoisted as
// siblings, so "flour (wheat, niacin)" yields flour, wheat, niacin.
// Duplicates are kept.
func SplitIngredients(raw string) []string {
	flat := strings.Map(hoistGroups, raw)

	tokens := []string{}
	for _, seg := range segmentRe.Split(flat, -1) {
		for _, part := range conjunctionRe.Split(seg, -1) {
			if tok := cleanIngredient(part); tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}
	return tokens
}

func hoistGroups(r rune) rune {
	switch r {
	case '(', ')', '[', ']', '{', '}':
		return ','
	}
	return r
}

func cleanIngredient(tok string) string {
	t := strings.ToLower(strings.TrimSpace(tok))
	t = leadingConjRe.ReplaceAllString(t, "")
	t = bulletRe.ReplaceAllString(t, "")
	t = leadingHeaderRe.ReplaceAllString(t, "")
	t = leadingPctRe.ReplaceAllString(t, "")
	t = trailingPctRe.ReplaceAllString(t, "")
	return strings.Trim(t, " .:*-\"")
}

// SplitStatement splits a contains or may-contain statement body on commas,
// semicolons and "and". Bracketed sub-lists are hoisted like ingredients.
// Tokens are lowercased; tokens of 50 or more bytes are dropped.
func SplitStatement(body string) []string {
	tokens := []string{}
	for _, part := range statementSepRe.Split(strings.Map(hoistGroups, body), -1) {
		t := strings.ToLower(strings.TrimSpace(part))
		t = leadingConjRe.ReplaceAllString(t, "")
		t = strings.Trim(t, " .:*-\"")
		if t == "" || len(t) >= maxStatementToken {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}
