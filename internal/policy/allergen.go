// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package policy

import (
	"fmt"

	"github.com/pdiddy/safescan/internal/terms"
	"github.com/pdiddy/safescan/pkg/types"
)

// allergenHit is one allergen a token was matched to.
type allergenHit struct {
	canonical  string
	confidence float64
	reason     string
}

// allergenHits matches one token against the profile's allergies in
// precedence order: exact synonym, synonym substring, then the raw allergy
// name. The first hit per allergen wins.
func allergenHits(db *terms.DB, prof profile, token string) []allergenHit {
	var hits []allergenHit
	got := make(map[string]bool)

	for _, c := range db.Allergens(token) {
		if !prof.canonical[c] || got[c] || excluded(db, token, token, c) {
			continue
		}
		got[c] = true
		hits = append(hits, allergenHit{
			canonical:  c,
			confidence: ConfidenceExact,
			reason:     fmt.Sprintf("%q is a known source of %s", token, c),
		})
	}

	for _, key := range db.SynonymKeys() {
		for _, c := range db.Allergens(key) {
			if !prof.canonical[c] || got[c] {
				continue
			}
			if !containsEither(token, key, allergenBand) || excluded(db, token, key, c) {
				continue
			}
			got[c] = true
			hits = append(hits, allergenHit{
				canonical:  c,
				confidence: ConfidenceSynonym,
				reason:     fmt.Sprintf("%q matches %q, a source of %s", token, key, c),
			})
		}
	}

	for _, a := range prof.allergies {
		if got[a.label] {
			continue
		}
		if a.known && db.IsFalsePositive(token, a.label) {
			continue
		}
		if !containsEither(token, a.raw, noBand) {
			continue
		}
		got[a.label] = true
		hits = append(hits, allergenHit{
			canonical:  a.label,
			confidence: ConfidenceRawAllergy,
			reason:     fmt.Sprintf("%q matches allergy %q", token, a.label),
		})
	}
	return hits
}

// excluded reports whether token is a false positive for canonical, either
// directly or for the allergen the synonym key belongs to.
func excluded(db *terms.DB, token, key, canonical string) bool {
	if db.IsFalsePositive(token, canonical) {
		return true
	}
	own, ok := db.Lookup(key)
	return ok && own != canonical && db.IsFalsePositive(token, own)
}

// matchAllergens adds allergen findings from the contains statements, the
// ingredient list, and the may-contain statements, in that order, so that a
// dedup collision keeps the strongest evidence.
func matchAllergens(db *terms.DB, label types.ParsedLabel, prof profile, set *findingSet) {
	if len(prof.allergies) == 0 {
		return
	}

	matchStatements(db, label, prof, set, label.ContainsStatements,
		types.SourceContains, types.SeverityUnsafe, ConfidenceContains, "contains statement lists %q (%s)")

	for _, tok := range label.Ingredients {
		for _, h := range allergenHits(db, prof, tok) {
			set.add(types.Finding{
				Kind:          types.KindAllergen,
				Severity:      types.SeverityUnsafe,
				MatchedText:   tok,
				CanonicalTerm: h.canonical,
				Reason:        h.reason,
				EvidenceSpans: evidence(label, tok, types.SourceIngredients),
				Source:        types.SourceIngredients,
				Confidence:    h.confidence,
			})
		}
	}

	sev := types.SeverityCaution
	if prof.mayAsUnsafe {
		sev = types.SeverityUnsafe
	}
	matchStatements(db, label, prof, set, label.MayContainStatements,
		types.SourceMayContain, sev, ConfidenceMayContain, "may-contain warning lists %q (%s)")
}

// matchStatements emits at most one finding per allergen across all tokens
// of one statement kind.
func matchStatements(db *terms.DB, label types.ParsedLabel, prof profile, set *findingSet,
	tokens []string, source types.FindingSource, sev types.Severity, confidence float64, reason string) {
	done := make(map[string]bool)
	for _, tok := range tokens {
		for _, h := range allergenHits(db, prof, tok) {
			if done[h.canonical] {
				continue
			}
			done[h.canonical] = true
			set.add(types.Finding{
				Kind:          types.KindAllergen,
				Severity:      sev,
				MatchedText:   tok,
				CanonicalTerm: h.canonical,
				Reason:        fmt.Sprintf(reason, tok, h.canonical),
				EvidenceSpans: evidence(label, tok, source),
				Source:        source,
				Confidence:    confidence,
			})
		}
	}
}
