// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package policy

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/safescan/internal/terms"
	"github.com/pdiddy/safescan/pkg/types"
)

// EscalateInferredRisks returns a copy of result in which every inferred
// risk naming an allowlisted allergen becomes an UNSAFE allergen finding
// marked as escalated, and forces the status to UNSAFE. Risks that match
// nothing are kept in InferredRisks and do not affect the status.
func EscalateInferredRisks(result types.PolicyResult, inferred []string, allowlist []string) types.PolicyResult {
	if len(inferred) == 0 {
		return result
	}

	set := newFindingSet(result.Findings...)
	remaining := append([]string(nil), result.InferredRisks...)
	kept := make(map[string]bool, len(remaining))
	for _, r := range remaining {
		kept[strings.ToLower(r)] = true
	}

	escalated := false
	for _, risk := range inferred {
		risk = strings.TrimSpace(risk)
		if risk == "" {
			continue
		}
		entry, ok := terms.MatchAllowlist(risk, allowlist)
		if !ok {
			if !kept[strings.ToLower(risk)] {
				kept[strings.ToLower(risk)] = true
				remaining = append(remaining, risk)
			}
			continue
		}
		escalated = true
		canonical := cases.Title(language.English).String(entry)
		set.add(types.Finding{
			Kind:                  types.KindAllergen,
			Severity:              types.SeverityUnsafe,
			MatchedText:           strings.ToLower(risk),
			CanonicalTerm:         canonical,
			Reason:                fmt.Sprintf("inferred risk %q points to high-risk allergen %s", risk, canonical),
			EvidenceSpans:         []types.Span{},
			Source:                types.SourceInferred,
			Confidence:            ConfidenceInferred,
			EscalatedFromInferred: true,
		})
	}

	out := Aggregate(result.ProfileID, result.ProfileName, set.list(), remaining)
	if escalated {
		out.Status = types.StatusUnsafe
	} else if result.Status == types.StatusManualReview {
		out.Status = result.Status
		out.Confidence = result.Confidence
	}
	return out
}
