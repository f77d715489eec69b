// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/safescan/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func allergenFinding(canonical, matched string, sev types.Severity) types.Finding {
	return types.Finding{
		Kind:          types.KindAllergen,
		Severity:      sev,
		CanonicalTerm: canonical,
		MatchedText:   matched,
		Source:        types.SourceIngredients,
		Confidence:    1.0,
	}
}

func sampleResult() types.AnalysisResult {
	return types.AnalysisResult{
		Ingredients: []string{"wheat flour", "milk"},
		Results: []types.PolicyResult{
			{
				ProfileID: "a",
				Status:    types.StatusUnsafe,
				Findings: []types.Finding{
					allergenFinding("Milk", "milk", types.SeverityUnsafe),
					allergenFinding("Wheat", "wheat flour", types.SeverityUnsafe),
				},
			},
			{
				ProfileID: "b",
				Status:    types.StatusCaution,
				Findings: []types.Finding{
					allergenFinding("Milk", "milk", types.SeverityCaution),
					{Kind: types.KindDietary, CanonicalTerm: "vegan", MatchedText: "milk", Severity: types.SeverityUnsafe},
				},
			},
		},
		DietaryFlags: []string{"vegan"},
		Confidence:   ptr(0.9),
	}
}

func TestMergeAnalysisWithEmptyServerKeepsLocal(t *testing.T) {
	x := sampleResult()
	got := MergeAnalysis(x, types.AnalysisResult{})

	assert.Equal(t, x.Ingredients, got.Ingredients)
	assert.Equal(t, x.Results, got.Results)
	assert.Equal(t, x.DietaryFlags, got.DietaryFlags)
	require.NotNil(t, got.Confidence)
	assert.Equal(t, 0.9, *got.Confidence)
}

func TestMergeAnalysis(t *testing.T) {
	tests := []struct {
		name   string
		local  types.AnalysisResult
		server types.AnalysisResult
		want   types.AnalysisResult
	}{
		{
			name:   "server wins per field",
			local:  types.AnalysisResult{Ingredients: []string{"a"}, DietaryFlags: []string{"x"}, Confidence: ptr(0.9)},
			server: types.AnalysisResult{Ingredients: []string{"b"}, Confidence: ptr(0.4)},
			want: types.AnalysisResult{
				Ingredients:  []string{"b"},
				Results:      []types.PolicyResult{},
				DietaryFlags: []string{"x"},
				Confidence:   ptr(0.9),
			},
		},
		{
			name:   "empty server slice still wins",
			local:  types.AnalysisResult{Ingredients: []string{"a"}},
			server: types.AnalysisResult{Ingredients: []string{}},
			want: types.AnalysisResult{
				Ingredients:  []string{},
				Results:      []types.PolicyResult{},
				DietaryFlags: []string{},
				Confidence:   ptr(0.0),
			},
		},
		{
			name:   "both absent",
			local:  types.AnalysisResult{},
			server: types.AnalysisResult{},
			want: types.AnalysisResult{
				Ingredients:  []string{},
				Results:      []types.PolicyResult{},
				DietaryFlags: []string{},
				Confidence:   ptr(0.0),
			},
		},
		{
			name:   "higher server confidence",
			local:  types.AnalysisResult{Confidence: ptr(0.2)},
			server: types.AnalysisResult{Confidence: ptr(0.8)},
			want: types.AnalysisResult{
				Ingredients:  []string{},
				Results:      []types.PolicyResult{},
				DietaryFlags: []string{},
				Confidence:   ptr(0.8),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeAnalysis(tt.local, tt.server))
		})
	}
}

func TestMergeAnalysisDoesNotAlias(t *testing.T) {
	local := types.AnalysisResult{DietaryFlags: make([]string, 1, 4)}
	merged := ApplyUserOverrideToResult(local, sampleResult())
	merged.DietaryFlags[0] = "changed"
	assert.Equal(t, []string{"vegan"}, sampleResult().DietaryFlags)
	assert.Equal(t, "", local.DietaryFlags[0])
}

func TestApplyUserOverrideIsIdempotent(t *testing.T) {
	base := types.AnalysisResult{Ingredients: []string{"milk"}, DietaryFlags: []string{"vegan"}}
	override := types.AnalysisResult{
		Results: []types.PolicyResult{{ProfileID: "a", Findings: []types.Finding{allergenFinding("Milk", "milk", types.SeverityUnsafe)}}},
	}

	once := ApplyUserOverrideToResult(base, override)
	twice := ApplyUserOverrideToResult(once, override)

	assert.Equal(t, []string{"vegan", UserCorrectedFlag}, once.DietaryFlags)
	assert.Equal(t, once.DietaryFlags, twice.DietaryFlags)

	count := 0
	for _, f := range twice.DietaryFlags {
		if f == UserCorrectedFlag {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestApplyUserOverrideWithoutAllergens(t *testing.T) {
	base := types.AnalysisResult{DietaryFlags: []string{"vegan"}}
	override := types.AnalysisResult{Ingredients: []string{"water"}}

	got := ApplyUserOverrideToResult(base, override)
	assert.NotContains(t, got.DietaryFlags, UserCorrectedFlag)
	assert.Equal(t, []string{"water"}, got.Ingredients)
}

func TestShouldCreateAdminAlert(t *testing.T) {
	assert.True(t, ShouldCreateAdminAlert(sampleResult()))

	lowConfidence := sampleResult()
	lowConfidence.Confidence = ptr(0.01)
	assert.True(t, ShouldCreateAdminAlert(lowConfidence))

	dietaryOnly := types.AnalysisResult{
		Results: []types.PolicyResult{{
			Findings: []types.Finding{{Kind: types.KindDietary, CanonicalTerm: "vegan"}},
		}},
		Confidence: ptr(1.0),
	}
	assert.False(t, ShouldCreateAdminAlert(dietaryOnly))
	assert.False(t, ShouldCreateAdminAlert(types.AnalysisResult{}))
}

func TestSummary(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"Milk"}, "Contains Milk"},
		{[]string{"Milk", "Wheat"}, "Contains Milk and Wheat"},
		{[]string{"Milk", "Wheat", "Soy"}, "Contains Milk, Wheat and Soy"},
		{[]string{"A", "B", "C", "D"}, "Contains A, B, C and D"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.in))
		})
	}
}

func TestBuildAdminAlert(t *testing.T) {
	alert := BuildAdminAlert("s1", sampleResult())
	assert.Equal(t, "s1", alert.SessionID)
	assert.Equal(t, []string{"Milk", "Wheat"}, alert.Allergens)
	assert.Equal(t, []string{"a", "b"}, alert.ProfileIDs)
	assert.Equal(t, "Contains Milk and Wheat", alert.Summary)
	assert.False(t, alert.IsRead)
	assert.Empty(t, alert.ID)
}

func TestComputeItemFingerprint(t *testing.T) {
	tests := []struct {
		name               string
		confirmed, guessed *string
		want               *string
	}{
		{"both nil", nil, nil, nil},
		{"confirmed", ptr("Grilled Chicken!"), nil, ptr("fp:grilled-chicken")},
		{"confirmed wins", ptr("Caesar Salad"), ptr("Chicken Wrap"), ptr("fp:caesar-salad")},
		{"blank confirmed falls back", ptr("   "), ptr("Chicken Wrap"), ptr("fp:chicken-wrap")},
		{"guessed only", nil, ptr("  Pad  Thai (Spicy) "), ptr("fp:pad-thai-spicy")},
		{"punctuation only", ptr("!!!"), nil, nil},
		{"digits kept", ptr("7-Up 330ml"), nil, ptr("fp:7up-330ml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeItemFingerprint(tt.confirmed, tt.guessed))
		})
	}
}

func TestFromOutput(t *testing.T) {
	out := types.Output{
		Ingredients: []string{"milk"},
		Results: []types.PolicyResult{
			{ProfileID: "a", Confidence: 0.9, Findings: []types.Finding{{Kind: types.KindDietary, CanonicalTerm: "vegan"}}},
			{ProfileID: "b", Confidence: 0.6, Findings: []types.Finding{{Kind: types.KindDietary, CanonicalTerm: "vegan"}}},
		},
	}
	r := FromOutput(out)
	assert.Equal(t, []string{"milk"}, r.Ingredients)
	assert.Equal(t, []string{"vegan"}, r.DietaryFlags)
	require.NotNil(t, r.Confidence)
	assert.Equal(t, 0.6, *r.Confidence)

	empty := FromOutput(types.Output{})
	assert.Nil(t, empty.Confidence)
	assert.NotNil(t, empty.Ingredients)
	assert.NotNil(t, empty.Results)
}

func TestLegacyRoundTrip(t *testing.T) {
	legacy := ToLegacy(sampleResult())

	require.Len(t, legacy.AllergensDetected, 2)
	milk := legacy.AllergensDetected[0]
	assert.Equal(t, "Milk", milk.Allergen)
	assert.Equal(t, "milk", milk.Ingredient)
	assert.Equal(t, types.SeverityUnsafe, milk.Severity, "worst severity across profiles")
	assert.Equal(t, []string{"a", "b"}, milk.ProfileIDs)
	assert.Equal(t, []string{"vegan"}, legacy.DietaryFlags)

	back := FromLegacy(legacy)
	require.Len(t, back.Results, 2)
	assert.Equal(t, "a", back.Results[0].ProfileID)
	assert.Equal(t, 2, back.Results[0].AllergenCount)
	assert.Equal(t, types.StatusUnsafe, back.Results[0].Status)
	assert.Equal(t, "b", back.Results[1].ProfileID)
	assert.Equal(t, 1, back.Results[1].AllergenCount)
	assert.Equal(t, 0.9, back.Results[1].Confidence)
	assert.Equal(t, []string{"Milk", "Wheat"}, Allergens(back))
}

func TestFromLegacyWithoutProfiles(t *testing.T) {
	back := FromLegacy(types.LegacyAnalysis{
		AllergensDetected: []types.AllergenMatch{{Allergen: "Peanuts", Ingredient: " Peanut Oil "}},
	})
	require.Len(t, back.Results, 1)
	assert.Equal(t, "", back.Results[0].ProfileID)
	f := back.Results[0].Findings[0]
	assert.Equal(t, "peanut oil", f.MatchedText)
	assert.Equal(t, types.SeverityUnsafe, f.Severity)
	assert.Equal(t, 1.0, f.Confidence)
	assert.True(t, ShouldCreateAdminAlert(back))

	assert.Nil(t, FromLegacy(types.LegacyAnalysis{}).Results, "absent stays absent for merging")
}
