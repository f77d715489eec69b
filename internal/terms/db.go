// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package terms holds the curated term databases the policy engine matches
// against: the allergen synonym map with its false-positive exclusions, the
// dietary rule table, plant-based exceptions for ambiguous dietary terms, and
// the allowlist of allergens that escalate inferred risks.
//
// A DB is read-only once built and safe for concurrent use. Default returns
// a fresh copy of the built-in data; LoadOverlay extends it from YAML.
package terms

import (
	"sort"
	"strings"
)

// DB is one immutable snapshot of the term databases.
type DB struct {
	// Synonyms maps a lowercase label term to its canonical allergen.
	Synonyms map[string]string

	// FalsePositives maps a canonical allergen to phrases that exclude a token.
	FalsePositives map[string][]string

	// Includes maps a canonical allergen to other canonicals whose sources
	// also count as its sources. Gluten includes Wheat.
	Includes map[string][]string

	// Aliases resolve loose profile entries ("dairy") to canonical names.
	Aliases map[string]string

	// Rules maps a preference key to its dietary rule.
	Rules map[string]DietaryRule

	// PlantBased maps an ambiguous dietary term to plant-based exceptions.
	PlantBased map[string][]string

	// DietaryExceptions maps a dietary term to unrelated words that contain
	// it ("ham" in "graham").
	DietaryExceptions map[string][]string

	// InferenceAllowlist lists lowercase allergens that escalate inferred risks.
	InferenceAllowlist []string

	canonicals  map[string]string   // lowercase canonical -> canonical
	includedBy  map[string][]string // canonical -> canonicals that include it
	synonymKeys []string
}

// Default returns the built-in term databases.
func Default() *DB {
	db := &DB{
		Synonyms:           make(map[string]string),
		FalsePositives:     make(map[string][]string, len(allergenFalsePositives)),
		Includes:           make(map[string][]string, len(allergenIncludes)),
		Aliases:            make(map[string]string, len(allergenAliases)),
		Rules:              builtinRules(),
		PlantBased:         make(map[string][]string, len(plantBasedExceptions)),
		DietaryExceptions:  make(map[string][]string, len(dietaryExceptions)),
		InferenceAllowlist: append([]string(nil), inferenceAllowlist...),
	}
	for canonical, syns := range allergenSynonyms {
		for _, s := range syns {
			db.Synonyms[s] = canonical
		}
	}
	for canonical, phrases := range allergenFalsePositives {
		db.FalsePositives[canonical] = append([]string(nil), phrases...)
	}
	for canonical, included := range allergenIncludes {
		db.Includes[canonical] = append([]string(nil), included...)
	}
	for alias, canonical := range allergenAliases {
		db.Aliases[alias] = canonical
	}
	for term, phrases := range plantBasedExceptions {
		db.PlantBased[term] = append([]string(nil), phrases...)
	}
	for term, words := range dietaryExceptions {
		db.DietaryExceptions[term] = append([]string(nil), words...)
	}
	db.finalize()
	return db
}

// clone returns a deep copy that can be extended without touching db.
func (db *DB) clone() *DB {
	out := &DB{
		Synonyms:           make(map[string]string, len(db.Synonyms)),
		FalsePositives:     make(map[string][]string, len(db.FalsePositives)),
		Includes:           make(map[string][]string, len(db.Includes)),
		Aliases:            make(map[string]string, len(db.Aliases)),
		Rules:              make(map[string]DietaryRule, len(db.Rules)),
		PlantBased:         make(map[string][]string, len(db.PlantBased)),
		DietaryExceptions:  make(map[string][]string, len(db.DietaryExceptions)),
		InferenceAllowlist: append([]string(nil), db.InferenceAllowlist...),
	}
	for k, v := range db.Synonyms {
		out.Synonyms[k] = v
	}
	for k, v := range db.FalsePositives {
		out.FalsePositives[k] = append([]string(nil), v...)
	}
	for k, v := range db.Includes {
		out.Includes[k] = append([]string(nil), v...)
	}
	for k, v := range db.Aliases {
		out.Aliases[k] = v
	}
	for k, v := range db.Rules {
		v.Violations = append([]string(nil), v.Violations...)
		v.Cautions = append([]string(nil), v.Cautions...)
		out.Rules[k] = v
	}
	for k, v := range db.PlantBased {
		out.PlantBased[k] = append([]string(nil), v...)
	}
	for k, v := range db.DietaryExceptions {
		out.DietaryExceptions[k] = append([]string(nil), v...)
	}
	return out
}

// finalize builds the derived lookup tables. It must run after every
// mutation and before the DB is shared.
func (db *DB) finalize() {
	db.canonicals = make(map[string]string)
	for _, canonical := range db.Synonyms {
		db.canonicals[strings.ToLower(canonical)] = canonical
	}
	for _, canonical := range db.Aliases {
		db.canonicals[strings.ToLower(canonical)] = canonical
	}

	db.includedBy = make(map[string][]string)
	for canonical, included := range db.Includes {
		db.canonicals[strings.ToLower(canonical)] = canonical
		for _, c := range included {
			db.includedBy[c] = append(db.includedBy[c], canonical)
		}
	}
	for _, parents := range db.includedBy {
		sort.Strings(parents)
	}

	db.synonymKeys = make([]string, 0, len(db.Synonyms))
	for k := range db.Synonyms {
		db.synonymKeys = append(db.synonymKeys, k)
	}
	// Longest first so the most specific key explains a match.
	sort.Slice(db.synonymKeys, func(i, j int) bool {
		a, b := db.synonymKeys[i], db.synonymKeys[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
}

// SynonymKeys returns every synonym key, longest first, then alphabetical.
// The returned slice must not be modified.
func (db *DB) SynonymKeys() []string {
	return db.synonymKeys
}

// Canonicals returns the canonical allergen names, sorted.
func (db *DB) Canonicals() []string {
	out := make([]string, 0, len(db.canonicals))
	for _, c := range db.canonicals {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// CanonicalAllergen resolves a profile allergy entry to its canonical name.
// Matching ignores case and surrounding whitespace; aliases such as "dairy"
// resolve too. Unknown names report false.
func (db *DB) CanonicalAllergen(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", false
	}
	if c, ok := db.canonicals[n]; ok {
		return c, true
	}
	if c, ok := db.Aliases[n]; ok {
		return c, true
	}
	return "", false
}

// Lookup returns the canonical allergen for an exact synonym.
func (db *DB) Lookup(term string) (string, bool) {
	c, ok := db.Synonyms[term]
	return c, ok
}

// Allergens returns every canonical allergen a synonym is a source of: its
// own canonical first, then the allergens that include it. Unknown terms
// return nil.
func (db *DB) Allergens(term string) []string {
	c, ok := db.Synonyms[term]
	if !ok {
		return nil
	}
	return append([]string{c}, db.includedBy[c]...)
}

// IsFalsePositive reports whether token must not register as canonical.
func (db *DB) IsFalsePositive(token, canonical string) bool {
	for _, phrase := range db.FalsePositives[canonical] {
		if strings.Contains(token, phrase) {
			return true
		}
	}
	return false
}

// Rule returns the dietary rule for a preference key. Keys are matched
// case-insensitively with spaces and hyphens treated as underscores.
func (db *DB) Rule(key string) (DietaryRule, bool) {
	r, ok := db.Rules[RuleKey(key)]
	return r, ok
}

// RuleKey canonicalizes a preference key ("Gluten-Free" -> "gluten_free").
func RuleKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(k)
}

// IsPlantBased reports whether token is a plant-based form of an ambiguous
// term that matchedTerm contains (e.g. "oat milk" for "milk").
func (db *DB) IsPlantBased(token, matchedTerm string) bool {
	for ambiguous, exceptions := range db.PlantBased {
		if !strings.Contains(matchedTerm, ambiguous) {
			continue
		}
		for _, e := range exceptions {
			if strings.Contains(token, e) {
				return true
			}
		}
	}
	return false
}

// IsDietaryException reports whether token merely contains term inside an
// unrelated word, such as "eggplant" for "egg".
func (db *DB) IsDietaryException(token, term string) bool {
	for _, word := range db.DietaryExceptions[term] {
		if strings.Contains(token, word) {
			return true
		}
	}
	return false
}

// InferenceMatch returns the allowlisted allergen a risk refers to.
func (db *DB) InferenceMatch(risk string) (string, bool) {
	return MatchAllowlist(risk, db.InferenceAllowlist)
}

// MatchAllowlist returns the lowercase allowlist entry risk refers to.
// Matching is case-insensitive substring in either direction; the risk may
// only sit inside an entry when it is at least 3 bytes long.
func MatchAllowlist(risk string, allowlist []string) (string, bool) {
	r := strings.ToLower(strings.TrimSpace(risk))
	if r == "" {
		return "", false
	}
	for _, entry := range allowlist {
		a := strings.ToLower(strings.TrimSpace(entry))
		if a == "" {
			continue
		}
		if strings.Contains(r, a) || (len(r) >= 3 && strings.Contains(a, r)) {
			return a, true
		}
	}
	return "", false
}
