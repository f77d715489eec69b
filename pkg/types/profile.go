// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// UserProfile is the engine-facing view of one person. It is owned by the
// caller and read-only to the engine. Blank entries and case differences are
// tolerated; the engine normalizes them once at its boundary.
type UserProfile struct {
	ID   string `json:"id" yaml:"id" validate:"required"`
	Name string `json:"name" yaml:"name"`

	// Allergies holds canonical allergen names (e.g. "Milk", "Tree Nuts").
	Allergies []string `json:"allergies" yaml:"allergies"`

	// CustomAllergies holds free-text allergen names with no canonical entry.
	CustomAllergies []string `json:"customAllergies" yaml:"custom_allergies"`

	// Preferences holds dietary rule keys (e.g. "vegan", "gluten_free").
	Preferences []string `json:"preferences" yaml:"preferences"`

	// CustomPreferences holds free-text preference names. They carry no rule
	// and are not matched by the dietary matcher.
	CustomPreferences []string `json:"customPreferences" yaml:"custom_preferences"`

	ForbiddenKeywords []string `json:"forbiddenKeywords" yaml:"forbidden_keywords"`

	TreatMayContainAsUnsafe bool `json:"treatMayContainAsUnsafe" yaml:"treat_may_contain_as_unsafe"`
}

// ProfilesFile is the on-disk YAML layout for a set of profiles.
type ProfilesFile struct {
	Profiles []UserProfile `json:"profiles" yaml:"profiles"`
}
