// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package result merges analysis results from different sources, applies
// user overrides, derives admin alerts, and converts between the canonical
// per-profile shape and the legacy flat allergen shape.
package result

import (
	"slices"

	"github.com/pdiddy/safescan/pkg/types"
)

// UserCorrectedFlag marks a result that a user override changed.
const UserCorrectedFlag = "user_corrected"

// MergeAnalysis combines a locally computed result with a server result.
// Each field takes the server value when present, else the local value,
// else an empty value. Confidence is the larger of the two, with absent
// counting as 0, so a partial merge never lowers it.
func MergeAnalysis(local, server types.AnalysisResult) types.AnalysisResult {
	conf := max(valueOr(local.Confidence), valueOr(server.Confidence))
	return types.AnalysisResult{
		Ingredients:  pick(server.Ingredients, local.Ingredients),
		Results:      pick(server.Results, local.Results),
		DietaryFlags: pick(server.DietaryFlags, local.DietaryFlags),
		Confidence:   &conf,
	}
}

// ApplyUserOverrideToResult merges override over base and, when the override
// carries allergen findings, adds the user_corrected flag once.
func ApplyUserOverrideToResult(base, override types.AnalysisResult) types.AnalysisResult {
	merged := MergeAnalysis(base, override)
	if len(Allergens(override)) > 0 && !slices.Contains(merged.DietaryFlags, UserCorrectedFlag) {
		merged.DietaryFlags = append(merged.DietaryFlags, UserCorrectedFlag)
	}
	return merged
}

// pick returns a copy of the first non-nil slice, or an empty slice.
func pick[T any](first, second []T) []T {
	switch {
	case first != nil:
		return slices.Clone(first)
	case second != nil:
		return slices.Clone(second)
	}
	return []T{}
}

func valueOr(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Allergens returns the distinct canonical allergens with a finding in any
// profile result, in order of first appearance.
func Allergens(r types.AnalysisResult) []string {
	var out []string
	seen := make(map[string]bool)
	for _, pr := range r.Results {
		for _, f := range pr.FindingsOfKind(types.KindAllergen) {
			if !seen[f.CanonicalTerm] {
				seen[f.CanonicalTerm] = true
				out = append(out, f.CanonicalTerm)
			}
		}
	}
	return out
}

// FromOutput converts a pipeline output to the canonical result shape.
// DietaryFlags lists the rule keys with findings; Confidence is the lowest
// profile confidence, absent when there are no profiles.
func FromOutput(o types.Output) types.AnalysisResult {
	r := types.AnalysisResult{
		Ingredients:  slices.Clone(o.Ingredients),
		Results:      slices.Clone(o.Results),
		DietaryFlags: []string{},
	}
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Results == nil {
		r.Results = []types.PolicyResult{}
	}

	for i, pr := range o.Results {
		for _, f := range pr.FindingsOfKind(types.KindDietary) {
			if !slices.Contains(r.DietaryFlags, f.CanonicalTerm) {
				r.DietaryFlags = append(r.DietaryFlags, f.CanonicalTerm)
			}
		}
		if i == 0 || pr.Confidence < *r.Confidence {
			c := pr.Confidence
			r.Confidence = &c
		}
	}
	return r
}
