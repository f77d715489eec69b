// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Input is what a caller hands the pipeline.
type Input struct {
	RawText  string        `json:"rawText" yaml:"raw_text"`
	Profiles []UserProfile `json:"profiles" yaml:"profiles" validate:"required,min=1,dive"`

	// InferredRisks are risks guessed from context (e.g. the dish name)
	// rather than read from the label.
	InferredRisks []string `json:"inferredRisks,omitempty" yaml:"inferred_risks,omitempty"`
}

// MatchedIngredient summarizes one label token that produced at least one
// finding for at least one profile.
type MatchedIngredient struct {
	Name           string   `json:"name" yaml:"name"`
	CanonicalTerms []string `json:"canonicalTerms" yaml:"canonical_terms"`
	ProfileIDs     []string `json:"profileIds" yaml:"profile_ids"`
	Severity       Severity `json:"severity" yaml:"severity"`
}

// Output is the pipeline result returned across the service boundary.
type Output struct {
	Ingredients        []string            `json:"ingredients" yaml:"ingredients"`
	Results            []PolicyResult      `json:"results" yaml:"results"`
	MatchedIngredients []MatchedIngredient `json:"matchedIngredients" yaml:"matched_ingredients"`
	RawExtractedText   string              `json:"rawExtractedText,omitempty" yaml:"raw_extracted_text,omitempty"`
	Warnings           []string            `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NeedsManualReview reports whether any profile result is MANUAL_REVIEW.
func (o Output) NeedsManualReview() bool {
	for _, r := range o.Results {
		if r.Status == StatusManualReview {
			return true
		}
	}
	return false
}

// AnalysisResult is the canonical externally consumed shape. Slice fields
// and Confidence are nil when absent, which is what merging keys off.
type AnalysisResult struct {
	Ingredients  []string       `json:"ingredients" yaml:"ingredients"`
	Results      []PolicyResult `json:"results" yaml:"results"`
	DietaryFlags []string       `json:"dietaryFlags" yaml:"dietary_flags"`
	Confidence   *float64       `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// AllergenMatch is one detected allergen in the legacy flat shape.
type AllergenMatch struct {
	Allergen   string   `json:"allergen" yaml:"allergen"`
	Ingredient string   `json:"ingredient" yaml:"ingredient"`
	Severity   Severity `json:"severity" yaml:"severity"`
	ProfileIDs []string `json:"profileIds" yaml:"profile_ids"`
}

// LegacyAnalysis is the older flat shape keyed by detected allergens. It only
// exists at the boundary; see result.ToLegacy and result.FromLegacy.
type LegacyAnalysis struct {
	Ingredients       []string        `json:"ingredients"`
	AllergensDetected []AllergenMatch `json:"allergensDetected"`
	DietaryFlags      []string        `json:"dietaryFlags"`
	Confidence        *float64        `json:"confidence,omitempty"`
}

// SessionCounters track consecutive manual-review outcomes in one scan
// session. Zero values stand in for missing fields.
type SessionCounters struct {
	AttemptCount         int  `json:"attemptCount" yaml:"attempt_count"`
	ManualReviewCount    int  `json:"manualReviewCount" yaml:"manual_review_count"`
	EscalationShown      bool `json:"escalationShown" yaml:"escalation_shown"`
	ShouldShowEscalation bool `json:"shouldShowEscalation" yaml:"should_show_escalation"`
}

// AdminAlert is emitted when a scan detects allergens.
type AdminAlert struct {
	ID         string    `json:"id" yaml:"id"`
	SessionID  string    `json:"sessionId" yaml:"session_id"`
	Summary    string    `json:"summary" yaml:"summary"`
	Allergens  []string  `json:"allergens" yaml:"allergens"`
	ProfileIDs []string  `json:"profileIds" yaml:"profile_ids"`
	IsRead     bool      `json:"isRead" yaml:"is_read"`
	CreatedAt  time.Time `json:"createdAt" yaml:"created_at"`
}

// OCRType classifies what the vision collaborator believes it saw.
type OCRType string

const (
	OCRIngredientLabel OCRType = "ingredient_label"
	OCRMenu            OCRType = "menu"
	OCRUnreadable      OCRType = "unreadable"
)

// OCRConfidence is the coarse confidence band reported by the collaborator.
type OCRConfidence string

const (
	OCRHigh   OCRConfidence = "high"
	OCRMedium OCRConfidence = "medium"
	OCRLow    OCRConfidence = "low"
)

// OCRResponse is the collaborator's output contract.
type OCRResponse struct {
	Type                OCRType       `json:"type" yaml:"type"`
	RawText             string        `json:"raw_text" yaml:"raw_text"`
	ContainsStatement   string        `json:"contains_statement" yaml:"contains_statement"`
	MayContainStatement string        `json:"may_contain_statement" yaml:"may_contain_statement"`
	Confidence          OCRConfidence `json:"confidence" yaml:"confidence"`
	Notes               string        `json:"notes" yaml:"notes"`
}
