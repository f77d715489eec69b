// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Span is a byte-offset range [Start, End) into ParsedLabel.NormalizedText.
// Invariant: 0 <= Start <= End <= len(NormalizedText).
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether offset lies inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// SectionName identifies a recognized region of a label.
type SectionName string

const (
	SectionIngredients SectionName = "ingredients"
	SectionContains    SectionName = "contains"
	SectionMayContain  SectionName = "may_contain"
)

// ParsedLabel is the normalized, sectioned form of one raw label text. It is
// created once per analysis and never mutated afterwards.
type ParsedLabel struct {
	// Ingredients are lowercase tokens in order of first appearance.
	// Duplicates are kept.
	Ingredients []string `json:"ingredients" yaml:"ingredients"`

	// IngredientsRawText is the ingredients region exactly as it appears in
	// NormalizedText.
	IngredientsRawText string `json:"ingredientsRawText" yaml:"ingredients_raw_text"`

	// ContainsStatements are the lowercase tokens of "Contains:" statements.
	ContainsStatements []string `json:"containsStatements" yaml:"contains_statements"`

	// MayContainStatements are the lowercase tokens of "May contain:" statements.
	MayContainStatements []string `json:"mayContainStatements" yaml:"may_contain_statements"`

	// NormalizedText is the whitespace and punctuation canonicalized full text.
	// Case is preserved.
	NormalizedText string `json:"normalizedText" yaml:"normalized_text"`

	// Sections maps each detected section to its offsets in NormalizedText.
	Sections map[SectionName]Span `json:"sections" yaml:"sections"`
}

// IsEmpty reports whether the label yielded nothing to evaluate.
func (l ParsedLabel) IsEmpty() bool {
	return len(l.Ingredients) == 0 && len(l.ContainsStatements) == 0 && len(l.MayContainStatements) == 0
}

// SectionAt returns the section that contains offset. Offsets outside every
// recognized section belong to the ingredients region.
func (l ParsedLabel) SectionAt(offset int) SectionName {
	for _, name := range []SectionName{SectionMayContain, SectionContains, SectionIngredients} {
		if sp, ok := l.Sections[name]; ok && sp.Contains(offset) {
			return name
		}
	}
	return SectionIngredients
}
