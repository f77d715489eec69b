// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package policy

import (
	"fmt"

	"github.com/pdiddy/safescan/internal/normalize"
	"github.com/pdiddy/safescan/pkg/types"
)

// matchKeywords matches the profile's forbidden keywords against every
// ingredient in both directions, then scans the full text for keywords no
// ingredient matched.
func matchKeywords(label types.ParsedLabel, prof profile, set *findingSet) {
	for _, kw := range prof.keywords {
		for _, tok := range label.Ingredients {
			if !containsEither(tok, kw, noBand) {
				continue
			}
			set.add(types.Finding{
				Kind:          types.KindForbiddenKeyword,
				Severity:      types.SeverityUnsafe,
				MatchedText:   tok,
				CanonicalTerm: kw,
				Reason:        fmt.Sprintf("%q matches forbidden keyword %q", tok, kw),
				EvidenceSpans: evidence(label, tok, types.SourceIngredients),
				Source:        types.SourceIngredients,
				Confidence:    ConfidenceKeyword,
			})
		}
		if set.covers(types.KindForbiddenKeyword, kw) {
			continue
		}

		spans := normalize.FindEvidenceSpans(label.NormalizedText, kw)
		if len(spans) == 0 {
			continue
		}
		set.add(types.Finding{
			Kind:          types.KindForbiddenKeyword,
			Severity:      types.SeverityUnsafe,
			MatchedText:   kw,
			CanonicalTerm: kw,
			Reason:        fmt.Sprintf("label text mentions forbidden keyword %q", kw),
			EvidenceSpans: spans,
			Source:        sectionSource[label.SectionAt(spans[0].Start)],
			Confidence:    ConfidenceFullText,
		})
	}
}
