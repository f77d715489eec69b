// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package result

import (
	"slices"
	"strings"

	"github.com/pdiddy/safescan/internal/policy"
	"github.com/pdiddy/safescan/pkg/types"
)

// ToLegacy flattens r into the legacy allergensDetected shape. Findings for
// the same allergen and ingredient across profiles collapse into one match
// carrying every affected profile and the worst severity.
func ToLegacy(r types.AnalysisResult) types.LegacyAnalysis {
	type key struct{ allergen, ingredient string }
	index := make(map[key]int)
	matches := []types.AllergenMatch{}

	for _, pr := range r.Results {
		for _, f := range pr.FindingsOfKind(types.KindAllergen) {
			k := key{f.CanonicalTerm, f.MatchedText}
			i, ok := index[k]
			if !ok {
				index[k] = len(matches)
				matches = append(matches, types.AllergenMatch{
					Allergen:   f.CanonicalTerm,
					Ingredient: f.MatchedText,
					Severity:   f.Severity,
					ProfileIDs: []string{},
				})
				i = len(matches) - 1
			}
			m := &matches[i]
			if f.Severity == types.SeverityUnsafe {
				m.Severity = types.SeverityUnsafe
			}
			if pr.ProfileID != "" && !slices.Contains(m.ProfileIDs, pr.ProfileID) {
				m.ProfileIDs = append(m.ProfileIDs, pr.ProfileID)
			}
		}
	}

	return types.LegacyAnalysis{
		Ingredients:       slices.Clone(r.Ingredients),
		AllergensDetected: matches,
		DietaryFlags:      slices.Clone(r.DietaryFlags),
		Confidence:        r.Confidence,
	}
}

// FromLegacy rebuilds per-profile results from the legacy shape. Each match
// becomes an allergen finding for every profile it names; matches naming no
// profile go to a result with an empty profile ID. Finding confidence is the
// legacy confidence, or 1.0 when absent.
func FromLegacy(l types.LegacyAnalysis) types.AnalysisResult {
	conf := 1.0
	if l.Confidence != nil {
		conf = *l.Confidence
	}

	var order []string
	byProfile := make(map[string][]types.Finding)
	for _, m := range l.AllergensDetected {
		ids := m.ProfileIDs
		if len(ids) == 0 {
			ids = []string{""}
		}
		sev := m.Severity
		if sev == "" {
			sev = types.SeverityUnsafe
		}
		for _, id := range ids {
			if _, ok := byProfile[id]; !ok {
				order = append(order, id)
			}
			byProfile[id] = append(byProfile[id], types.Finding{
				Kind:          types.KindAllergen,
				Severity:      sev,
				MatchedText:   strings.ToLower(strings.TrimSpace(m.Ingredient)),
				CanonicalTerm: m.Allergen,
				Reason:        "reported by legacy analysis",
				EvidenceSpans: []types.Span{},
				Source:        types.SourceIngredients,
				Confidence:    conf,
			})
		}
	}

	var results []types.PolicyResult
	if l.AllergensDetected != nil {
		results = []types.PolicyResult{}
	}
	for _, id := range order {
		results = append(results, policy.Aggregate(id, "", policy.DedupFindings(byProfile[id]), nil))
	}

	return types.AnalysisResult{
		Ingredients:  slices.Clone(l.Ingredients),
		Results:      results,
		DietaryFlags: slices.Clone(l.DietaryFlags),
		Confidence:   l.Confidence,
	}
}
