// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FindingKind categorizes what a finding conflicts with.
type FindingKind string

const (
	KindAllergen         FindingKind = "ALLERGEN"
	KindDietary          FindingKind = "DIETARY"
	KindForbiddenKeyword FindingKind = "FORBIDDEN_KEYWORD"
)

// Severity is the weight a finding carries toward the overall status.
type Severity string

const (
	SeverityUnsafe  Severity = "UNSAFE"
	SeverityCaution Severity = "CAUTION"
)

// FindingSource names the label region a finding was drawn from.
type FindingSource string

const (
	SourceIngredients FindingSource = "ingredients"
	SourceContains    FindingSource = "contains"
	SourceMayContain  FindingSource = "may_contain"

	// SourceInferred marks findings escalated from risks that were guessed
	// from context rather than read from the label.
	SourceInferred FindingSource = "inferred"
)

// Status is the overall verdict for one profile.
type Status string

const (
	StatusSafe    Status = "SAFE"
	StatusCaution Status = "CAUTION"
	StatusUnsafe  Status = "UNSAFE"

	// StatusManualReview means there was not enough readable evidence for an
	// automatic verdict. The engine itself never produces it.
	StatusManualReview Status = "MANUAL_REVIEW"
)

// Finding is one piece of evidence that a profile conflicts with label
// content. Findings are immutable once created.
type Finding struct {
	Kind          FindingKind   `json:"kind" yaml:"kind"`
	Severity      Severity      `json:"severity" yaml:"severity"`
	MatchedText   string        `json:"matchedText" yaml:"matched_text"`
	CanonicalTerm string        `json:"canonicalTerm" yaml:"canonical_term"`
	Reason        string        `json:"reason" yaml:"reason"`
	EvidenceSpans []Span        `json:"evidenceSpans" yaml:"evidence_spans"`
	Source        FindingSource `json:"source" yaml:"source"`

	// Confidence is fixed per match type, in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	EscalatedFromInferred bool `json:"escalatedFromInferred,omitempty" yaml:"escalated_from_inferred,omitempty"`
}

// DedupKey returns the composite key findings are deduplicated by.
func (f Finding) DedupKey() FindingKey {
	return FindingKey{Kind: f.Kind, CanonicalTerm: f.CanonicalTerm, MatchedText: f.MatchedText}
}

// FindingKey is the (kind, canonicalTerm, matchedText) triple.
type FindingKey struct {
	Kind          FindingKind
	CanonicalTerm string
	MatchedText   string
}

// PolicyResult is the verdict for one profile against one label.
type PolicyResult struct {
	Status   Status    `json:"status" yaml:"status"`
	Findings []Finding `json:"findings" yaml:"findings"`

	// Confidence is the minimum finding confidence, or 1.0 with no findings.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	ProfileID     string `json:"profileId" yaml:"profile_id"`
	ProfileName   string `json:"profileName" yaml:"profile_name"`
	AllergenCount int    `json:"allergenCount" yaml:"allergen_count"`
	DietaryCount  int    `json:"dietaryCount" yaml:"dietary_count"`
	KeywordCount  int    `json:"keywordCount" yaml:"keyword_count"`

	// InferredRisks lists guessed risks that were not escalated.
	InferredRisks []string `json:"inferredRisks,omitempty" yaml:"inferred_risks,omitempty"`
}

// FindingsOfKind returns the findings with the given kind, in order.
func (r PolicyResult) FindingsOfKind(kind FindingKind) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}
