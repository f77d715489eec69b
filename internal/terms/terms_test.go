// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package terms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSynonymsAreLowercaseAndUnique(t *testing.T) {
	seen := make(map[string]string)
	for canonical, syns := range allergenSynonyms {
		for _, s := range syns {
			assert.Equal(t, lowerTrim(s), s, "synonym %q must be lowercase and trimmed", s)
			if prev, ok := seen[s]; ok {
				t.Errorf("synonym %q maps to both %s and %s", s, prev, canonical)
			}
			seen[s] = canonical
		}
	}
}

func TestDefaultReturnsIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()
	a.Synonyms["quark"] = Milk
	a.FalsePositives[Milk] = append(a.FalsePositives[Milk], "x")

	_, ok := b.Lookup("quark")
	assert.False(t, ok)
	assert.NotContains(t, b.FalsePositives[Milk], "x")
}

func TestSynonymKeysOrder(t *testing.T) {
	keys := Default().SynonymKeys()
	require.NotEmpty(t, keys)
	for i := 1; i < len(keys); i++ {
		prev, cur := keys[i-1], keys[i]
		if len(prev) < len(cur) || (len(prev) == len(cur) && prev > cur) {
			t.Fatalf("keys out of order at %d: %q before %q", i, prev, cur)
		}
	}
}

func TestCanonicalAllergen(t *testing.T) {
	db := Default()
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Milk", Milk, true},
		{"  milk ", Milk, true},
		{"TREE NUTS", TreeNuts, true},
		{"dairy", Milk, true},
		{"peanut", Peanuts, true},
		{"kiwi", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := db.CanonicalAllergen(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsFalsePositive(t *testing.T) {
	db := Default()
	assert.True(t, db.IsFalsePositive("peanut butter", Milk))
	assert.True(t, db.IsFalsePositive("sunflower lecithin", Soy))
	assert.True(t, db.IsFalsePositive("live cultures", Eggs))
	assert.True(t, db.IsFalsePositive("organic buckwheat", Wheat))
	assert.False(t, db.IsFalsePositive("butter", Milk))
	assert.False(t, db.IsFalsePositive("soy lecithin", Soy))
	assert.False(t, db.IsFalsePositive("peanut butter", Peanuts))
}

func TestRuleKeyNormalization(t *testing.T) {
	db := Default()
	for _, key := range []string{"gluten_free", "Gluten-Free", "gluten free", " GLUTEN_FREE "} {
		r, ok := db.Rule(key)
		require.True(t, ok, key)
		assert.Equal(t, "gluten_free", r.Key)
	}
	_, ok := db.Rule("paleo")
	assert.False(t, ok)
}

func TestIsPlantBased(t *testing.T) {
	db := Default()
	tests := []struct {
		token, term string
		want        bool
	}{
		{"oat milk", "milk", true},
		{"almond butter", "butter", true},
		{"coconut cream", "cream", true},
		{"sunflower lecithin", "lecithin", true},
		{"milk", "milk", false},
		{"buttermilk", "buttermilk", false},
		{"oat milk", "honey", false},
	}
	for _, tt := range tests {
		t.Run(tt.token+"/"+tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, db.IsPlantBased(tt.token, tt.term))
		})
	}
}

func TestIsDietaryException(t *testing.T) {
	db := Default()
	tests := []struct {
		token, term string
		want        bool
	}{
		{"graham crackers", "ham", true},
		{"roasted eggplant", "egg", true},
		{"licorice extract", "rice", true},
		{"unsalted butter", "salt", true},
		{"smoked ham", "ham", false},
		{"egg yolk", "egg", false},
		{"eggplant", "milk", false},
	}
	for _, tt := range tests {
		t.Run(tt.token+"/"+tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, db.IsDietaryException(tt.token, tt.term))
		})
	}
}

func TestAllergensFollowIncludes(t *testing.T) {
	db := Default()
	assert.Equal(t, []string{Wheat, Gluten}, db.Allergens("semolina"))
	assert.Equal(t, []string{Wheat, Gluten}, db.Allergens("enriched wheat flour"))
	assert.Equal(t, []string{Gluten}, db.Allergens("barley"))
	assert.Equal(t, []string{Milk}, db.Allergens("whey"))
	assert.Nil(t, db.Allergens("water"))

	for _, name := range []string{"gluten", "Celiac", " coeliac "} {
		c, ok := db.CanonicalAllergen(name)
		require.True(t, ok, name)
		assert.Equal(t, Gluten, c)
	}
}

func TestOverlayIncludesAndExceptions(t *testing.T) {
	base := Default()
	db, err := Overlay{
		Includes:          map[string][]string{"Legumes": {Peanuts, Soy}},
		DietaryExceptions: map[string][]string{"Cod": {"Codium Seaweed"}},
	}.Apply(base)
	require.NoError(t, err)

	assert.Equal(t, []string{Peanuts, "Legumes"}, db.Allergens("groundnut"))
	c, ok := db.CanonicalAllergen("legumes")
	require.True(t, ok)
	assert.Equal(t, "Legumes", c)
	assert.True(t, db.IsDietaryException("dried codium seaweed", "cod"))

	assert.Equal(t, []string{Peanuts}, base.Allergens("groundnut"), "base must not be modified")
	assert.False(t, base.IsDietaryException("dried codium seaweed", "cod"))
}

func TestInferenceMatch(t *testing.T) {
	db := Default()
	got, ok := db.InferenceMatch("Possible PEANUTS from sauce")
	require.True(t, ok)
	assert.Equal(t, "peanuts", got)

	got, ok = db.InferenceMatch("milk")
	require.True(t, ok)
	assert.Equal(t, "milk", got)

	_, ok = db.InferenceMatch("celery")
	assert.False(t, ok)
	_, ok = db.InferenceMatch("  ")
	assert.False(t, ok)
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terms.yaml")
	overlay := `
synonyms:
  Lupin: [Lupin, lupin flour]
  Milk: [quark]
false_positives:
  Milk: [quark-style tofu]
rules:
  - key: No-Alcohol
    violations: [Wine, beer]
    explanation: "%s contains alcohol"
`
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0o644))

	base := Default()
	db, err := LoadOverlay(path, base)
	require.NoError(t, err)

	c, ok := db.Lookup("lupin flour")
	require.True(t, ok)
	assert.Equal(t, "Lupin", c)

	c, ok = db.CanonicalAllergen("lupin")
	require.True(t, ok)
	assert.Equal(t, "Lupin", c)

	c, _ = db.Lookup("quark")
	assert.Equal(t, Milk, c)
	assert.True(t, db.IsFalsePositive("quark-style tofu", Milk))

	r, ok := db.Rule("no_alcohol")
	require.True(t, ok)
	assert.Equal(t, []string{"wine", "beer"}, r.Violations)

	_, ok = base.Lookup("quark")
	assert.False(t, ok, "base must not be modified")
	assert.Contains(t, db.SynonymKeys(), "lupin flour")
}

func TestLoadOverlayErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"rule without key", "rules:\n  - violations: [x]\n    explanation: \"%s\"\n"},
		{"explanation without verb", "rules:\n  - key: k\n    explanation: no verb\n"},
		{"malformed yaml", "synonyms: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := LoadOverlay(path, Default())
			assert.Error(t, err)
		})
	}

	_, err := LoadOverlay(filepath.Join(dir, "missing.yaml"), Default())
	assert.Error(t, err)
}
