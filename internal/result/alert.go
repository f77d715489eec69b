// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package result

import (
	"slices"
	"strings"

	"github.com/pdiddy/safescan/pkg/types"
)

// ShouldCreateAdminAlert reports whether r detected any allergen. Dietary and
// keyword findings never alert, whatever the confidence.
func ShouldCreateAdminAlert(r types.AnalysisResult) bool {
	return len(Allergens(r)) > 0
}

// BuildAdminAlert builds the alert payload for r. ID and CreatedAt are left
// for the caller to assign when it persists the alert.
func BuildAdminAlert(sessionID string, r types.AnalysisResult) types.AdminAlert {
	allergens := Allergens(r)

	var profiles []string
	for _, pr := range r.Results {
		if len(pr.FindingsOfKind(types.KindAllergen)) > 0 && !slices.Contains(profiles, pr.ProfileID) {
			profiles = append(profiles, pr.ProfileID)
		}
	}

	if allergens == nil {
		allergens = []string{}
	}
	if profiles == nil {
		profiles = []string{}
	}
	return types.AdminAlert{
		SessionID:  sessionID,
		Summary:    Summary(allergens),
		Allergens:  allergens,
		ProfileIDs: profiles,
	}
}

// Summary renders "Contains X", "Contains X and Y", or "Contains X, Y and Z".
func Summary(allergens []string) string {
	switch len(allergens) {
	case 0:
		return ""
	case 1:
		return "Contains " + allergens[0]
	}
	last := len(allergens) - 1
	return "Contains " + strings.Join(allergens[:last], ", ") + " and " + allergens[last]
}
