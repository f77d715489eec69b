// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package policy

import (
	"strings"

	"github.com/pdiddy/safescan/internal/terms"
	"github.com/pdiddy/safescan/pkg/types"
)

// allergy is one profile allergy entry after normalization.
type allergy struct {
	// raw is the lowercase entry as the user wrote it.
	raw string
	// label is the canonical allergen, or the trimmed entry when it has none.
	label string
	// known is true when label is a canonical allergen.
	known bool
}

// profile is a UserProfile with defaults applied: blanks dropped, case
// folded, allergy names resolved, and preferences bound to rules. Matchers
// only ever see this form.
type profile struct {
	id, name    string
	allergies   []allergy
	canonical   map[string]bool
	rules       []terms.DietaryRule
	keywords    []string
	mayAsUnsafe bool
}

func normalizeProfile(db *terms.DB, p types.UserProfile) profile {
	out := profile{
		id:          strings.TrimSpace(p.ID),
		name:        strings.TrimSpace(p.Name),
		canonical:   make(map[string]bool),
		mayAsUnsafe: p.TreatMayContainAsUnsafe,
	}

	seen := make(map[string]bool)
	for _, list := range [][]string{p.Allergies, p.CustomAllergies} {
		for _, entry := range list {
			name := strings.TrimSpace(entry)
			raw := strings.ToLower(name)
			if raw == "" || seen[raw] {
				continue
			}
			seen[raw] = true
			a := allergy{raw: raw, label: name}
			if c, ok := db.CanonicalAllergen(name); ok {
				a.label, a.known = c, true
				out.canonical[c] = true
			}
			out.allergies = append(out.allergies, a)
		}
	}

	ruleSeen := make(map[string]bool)
	for _, pref := range p.Preferences {
		r, ok := db.Rule(pref)
		if !ok || ruleSeen[r.Key] {
			continue
		}
		ruleSeen[r.Key] = true
		out.rules = append(out.rules, r)
	}

	kwSeen := make(map[string]bool)
	for _, kw := range p.ForbiddenKeywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" || kwSeen[k] {
			continue
		}
		kwSeen[k] = true
		out.keywords = append(out.keywords, k)
	}
	return out
}
