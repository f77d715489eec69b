// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package policy

import (
	"fmt"

	"github.com/pdiddy/safescan/internal/terms"
	"github.com/pdiddy/safescan/pkg/types"
)

// matchDietary checks every ingredient against each of the profile's
// dietary rules. A violation suppresses the caution check for the same
// ingredient and rule.
func matchDietary(db *terms.DB, label types.ParsedLabel, prof profile, set *findingSet) {
	for _, rule := range prof.rules {
		for _, tok := range label.Ingredients {
			if f, ok := dietaryFinding(db, label, rule, tok, rule.Violations, types.SeverityUnsafe); ok {
				set.add(f)
				continue
			}
			if f, ok := dietaryFinding(db, label, rule, tok, rule.Cautions, types.SeverityCaution); ok {
				set.add(f)
			}
		}
	}
}

func dietaryFinding(db *terms.DB, label types.ParsedLabel, rule terms.DietaryRule, tok string,
	list []string, sev types.Severity) (types.Finding, bool) {
	for _, term := range list {
		ok, reverse := matchTerm(tok, term, dietaryBand)
		if !ok || db.IsPlantBased(tok, term) || db.IsDietaryException(tok, term) {
			continue
		}
		confidence := ConfidenceDietary
		if reverse {
			confidence = ConfidenceDietaryReverse
		}
		return types.Finding{
			Kind:          types.KindDietary,
			Severity:      sev,
			MatchedText:   tok,
			CanonicalTerm: rule.Key,
			Reason:        fmt.Sprintf(rule.Explanation, tok),
			EvidenceSpans: evidence(label, tok, types.SourceIngredients),
			Source:        types.SourceIngredients,
			Confidence:    confidence,
		}, true
	}
	return types.Finding{}, false
}
