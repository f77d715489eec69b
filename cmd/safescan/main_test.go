// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/safescan/pkg/types"
)

func TestReadProfiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "profiles.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
profiles:
  - id: ana
    name: Ana
    allergies: [Milk, Peanuts]
    preferences: [vegan]
    treat_may_contain_as_unsafe: true
  - id: ben
    forbidden_keywords: [palm oil]
`), 0o644))

	profiles, err := readProfiles(good)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, []string{"Milk", "Peanuts"}, profiles[0].Allergies)
	assert.True(t, profiles[0].TreatMayContainAsUnsafe)
	assert.Equal(t, []string{"palm oil"}, profiles[1].ForbiddenKeywords)

	tests := []struct {
		name    string
		content string
	}{
		{"empty", "profiles: []"},
		{"missing id", "profiles:\n  - name: x\n"},
		{"malformed", "profiles: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := readProfiles(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadTermsWithoutOverlay(t *testing.T) {
	db, err := loadTerms(types.EngineConfig{})
	require.NoError(t, err)
	assert.NotEmpty(t, db.Canonicals())

	_, err = loadTerms(types.EngineConfig{TermsFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestPrintOutput(t *testing.T) {
	var buf bytes.Buffer
	printOutput(&buf, types.Output{
		Results: []types.PolicyResult{{
			ProfileID:  "ana",
			Status:     types.StatusUnsafe,
			Confidence: 1,
			Findings: []types.Finding{{
				Kind: types.KindAllergen, Severity: types.SeverityUnsafe, CanonicalTerm: "Milk",
				MatchedText: "whey", Source: types.SourceIngredients, Confidence: 0.9,
			}},
			InferredRisks: []string{"shrimp paste"},
		}},
		Warnings: []string{"text recognition confidence is low"},
	})

	out := buf.String()
	assert.Contains(t, out, "ana")
	assert.Contains(t, out, "UNSAFE")
	assert.Contains(t, out, `"whey" via ingredients (0.90)`)
	assert.Contains(t, out, "unconfirmed risks: shrimp paste")
	assert.Contains(t, out, "warning: text recognition confidence is low")
}
