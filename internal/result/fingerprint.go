// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package result

import "strings"

// FingerprintPrefix starts every item fingerprint.
const FingerprintPrefix = "fp:"

// ComputeItemFingerprint returns a stable slug for an item name, preferring
// the confirmed name over the guessed one. Nil, blank, and names with no
// letters or digits count as absent and yield nil.
//
//	ComputeItemFingerprint("Grilled Chicken!", nil) -> "fp:grilled-chicken"
func ComputeItemFingerprint(confirmed, guessed *string) *string {
	name := firstPresent(confirmed, guessed)
	if name == "" {
		return nil
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			return r
		}
		return -1
	}, strings.ToLower(name))

	slug := strings.Join(strings.Fields(cleaned), "-")
	if slug == "" {
		return nil
	}
	fp := FingerprintPrefix + slug
	return &fp
}

func firstPresent(names ...*string) string {
	for _, n := range names {
		if n == nil {
			continue
		}
		if s := strings.TrimSpace(*n); s != "" {
			return s
		}
	}
	return ""
}
