// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/safescan/internal/policy"
	"github.com/pdiddy/safescan/pkg/types"
)

var (
	plain    = types.UserProfile{ID: "a", Name: "Ana"}
	milky    = types.UserProfile{ID: "b", Name: "Ben", Allergies: []string{"Milk"}}
	failShut = Options{LowConfidenceManualReview: true}
)

func TestAnalyzeOCRUnreadableFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		resp types.OCRResponse
	}{
		{"unreadable type", types.OCRResponse{Type: types.OCRUnreadable, RawText: "blurry"}},
		{"empty text", types.OCRResponse{Type: types.OCRIngredientLabel, RawText: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := AnalyzeOCR(policy.New(nil), tt.resp, []types.UserProfile{plain, milky}, nil, failShut)

			require.Len(t, out.Results, 2)
			for i, r := range out.Results {
				assert.Equal(t, types.StatusManualReview, r.Status)
				assert.Equal(t, 0.0, r.Confidence)
				assert.Empty(t, r.Findings)
				assert.Equal(t, []types.UserProfile{plain, milky}[i].ID, r.ProfileID)
			}
			assert.True(t, out.NeedsManualReview())
			assert.Contains(t, out.Warnings, WarnUnreadable)
			assert.Contains(t, out.Warnings, WarnManualReview)
			assert.Empty(t, out.Ingredients)
		})
	}
}

func TestAnalyzeOCRUnreadableFailOpen(t *testing.T) {
	resp := types.OCRResponse{Type: types.OCRUnreadable, Notes: "glare"}
	out := AnalyzeOCR(policy.New(nil), resp, []types.UserProfile{plain}, nil, Options{FailOpenUnreadable: true})

	require.Len(t, out.Results, 1)
	assert.Equal(t, types.StatusSafe, out.Results[0].Status)
	assert.False(t, out.NeedsManualReview())
	assert.Equal(t, []string{WarnUnreadable, WarnFailOpen, "ocr: glare"}, out.Warnings)
}

func TestUnreadableStillEscalatesInferredRisks(t *testing.T) {
	resp := types.OCRResponse{Type: types.OCRUnreadable}
	out := AnalyzeOCR(policy.New(nil), resp, []types.UserProfile{plain}, []string{"peanuts", "celery"}, failShut)

	r := out.Results[0]
	assert.Equal(t, types.StatusUnsafe, r.Status)
	assert.Equal(t, []string{"celery"}, r.InferredRisks)
	require.Len(t, r.Findings, 1)
	assert.True(t, r.Findings[0].EscalatedFromInferred)
}

func TestAnalyzeOCRLowConfidence(t *testing.T) {
	resp := types.OCRResponse{
		Type:       types.OCRIngredientLabel,
		RawText:    "Ingredients: milk, sugar",
		Confidence: types.OCRLow,
	}

	out := AnalyzeOCR(policy.New(nil), resp, []types.UserProfile{plain, milky}, nil, failShut)
	assert.Equal(t, types.StatusManualReview, out.Results[0].Status, "SAFE is downgraded")
	assert.Equal(t, types.StatusUnsafe, out.Results[1].Status, "UNSAFE stands")
	assert.Contains(t, out.Warnings, WarnLowConfidence)
	assert.Contains(t, out.Warnings, WarnManualReview)

	out = AnalyzeOCR(policy.New(nil), resp, []types.UserProfile{plain}, nil, Options{})
	assert.Equal(t, types.StatusSafe, out.Results[0].Status)
	assert.Equal(t, []string{WarnLowConfidence}, out.Warnings)
}

func TestAnalyzeOCRAppendsStatements(t *testing.T) {
	resp := types.OCRResponse{
		Type:                types.OCRIngredientLabel,
		RawText:             "Ingredients: flour, sugar",
		ContainsStatement:   "milk, wheat",
		MayContainStatement: "May contain peanuts",
		Confidence:          types.OCRHigh,
	}
	assert.Equal(t, "Ingredients: flour, sugar. Contains: milk, wheat. May contain peanuts", ComposeText(resp))

	out := AnalyzeOCR(policy.New(nil), resp, []types.UserProfile{milky}, nil, failShut)
	r := out.Results[0]
	assert.Equal(t, types.StatusUnsafe, r.Status)
	require.Len(t, r.Findings, 1)
	assert.Equal(t, types.SourceContains, r.Findings[0].Source)
	assert.Equal(t, "Ingredients: flour, sugar", out.RawExtractedText)
}

func TestComposeTextSkipsPresentStatements(t *testing.T) {
	resp := types.OCRResponse{
		RawText:           "Ingredients: cocoa. Contains: milk.",
		ContainsStatement: "milk",
	}
	assert.Equal(t, "Ingredients: cocoa. Contains: milk.", ComposeText(resp))
}

func TestAnalyzeOCRMenuWarning(t *testing.T) {
	resp := types.OCRResponse{Type: types.OCRMenu, RawText: "grilled salmon, rice", Confidence: types.OCRMedium}
	out := AnalyzeOCR(policy.New(nil), resp, []types.UserProfile{plain}, nil, failShut)
	assert.Equal(t, []string{WarnMenu}, out.Warnings)
	assert.Equal(t, []string{"grilled salmon", "rice"}, out.Ingredients)
}

func TestAnalyzeMatchedIngredients(t *testing.T) {
	vegan := types.UserProfile{ID: "c", Allergies: []string{"Milk"}, Preferences: []string{"vegan"}}
	out := Analyze(policy.New(nil), types.Input{
		RawText:  "Ingredients: milk, sugar, wheat flour",
		Profiles: []types.UserProfile{milky, vegan},
	}, failShut)

	require.Len(t, out.MatchedIngredients, 2)
	milk := out.MatchedIngredients[0]
	assert.Equal(t, "milk", milk.Name)
	assert.Equal(t, []string{"Milk", "vegan"}, milk.CanonicalTerms)
	assert.Equal(t, []string{"b", "c"}, milk.ProfileIDs)
	assert.Equal(t, types.SeverityUnsafe, milk.Severity)

	sugar := out.MatchedIngredients[1]
	assert.Equal(t, "sugar", sugar.Name)
	assert.Equal(t, types.SeverityCaution, sugar.Severity)
	assert.Equal(t, []string{"c"}, sugar.ProfileIDs)
	assert.Empty(t, out.Warnings)
}

func TestAnalyzeEdgeCases(t *testing.T) {
	e := policy.New(nil)

	out := Analyze(e, types.Input{RawText: "", Profiles: []types.UserProfile{plain}}, failShut)
	assert.Equal(t, types.StatusManualReview, out.Results[0].Status)

	out = Analyze(e, types.Input{RawText: "...", Profiles: []types.UserProfile{plain}}, failShut)
	assert.Equal(t, types.StatusSafe, out.Results[0].Status)
	assert.Equal(t, 1.0, out.Results[0].Confidence)
	assert.Equal(t, []string{WarnNoIngredients}, out.Warnings)

	out = Analyze(e, types.Input{RawText: "Ingredients: rice", InferredRisks: []string{"shrimp paste", "Shellfish"}, Profiles: []types.UserProfile{plain}}, failShut)
	assert.Equal(t, types.StatusUnsafe, out.Results[0].Status)
	assert.Equal(t, []string{"shrimp paste"}, out.Results[0].InferredRisks)
}

func TestOptionsFrom(t *testing.T) {
	opts := OptionsFrom(types.EngineConfig{FailOpenUnreadable: true, LowConfidenceManualReview: true})
	assert.Equal(t, Options{FailOpenUnreadable: true, LowConfidenceManualReview: true}, opts)
}
