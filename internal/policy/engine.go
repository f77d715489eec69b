// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package policy evaluates a parsed label against user profiles and produces
// evidence-backed findings. The engine is pure: it performs no I/O and shares
// nothing mutable between profile evaluations, so any number of evaluations
// may run concurrently.
package policy

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pdiddy/safescan/internal/normalize"
	"github.com/pdiddy/safescan/internal/terms"
	"github.com/pdiddy/safescan/pkg/types"
)

// Fixed confidences per match type.
const (
	ConfidenceExact      = 1.0
	ConfidenceSynonym    = 0.9
	ConfidenceRawAllergy = 0.85
	ConfidenceContains   = 1.0
	ConfidenceMayContain = 0.6
	ConfidenceKeyword    = 1.0
	ConfidenceFullText   = 0.9
	ConfidenceInferred   = 0.6

	// Dietary matches have no fixed table; direct containment is certain,
	// the reverse short-token match slightly less so.
	ConfidenceDietary        = 1.0
	ConfidenceDietaryReverse = 0.9
)

// Reverse-match length bands: a term may contain the token only when their
// lengths differ by at most this much. noBand disables the check.
const (
	allergenBand = 3
	dietaryBand  = 4
	noBand       = -1

	// minReverseLen is the shortest token allowed to match in reverse.
	minReverseLen = 3
)

// Engine evaluates labels against profiles using one term database. The
// database can be swapped while evaluations run; each evaluation uses the
// snapshot current when it started.
type Engine struct {
	db atomic.Pointer[terms.DB]
}

// New returns an engine over db. A nil db means the built-in databases.
func New(db *terms.DB) *Engine {
	if db == nil {
		db = terms.Default()
	}
	e := &Engine{}
	e.db.Store(db)
	return e
}

// DB returns the term database currently in effect.
func (e *Engine) DB() *terms.DB {
	return e.db.Load()
}

// SetDB replaces the term database for subsequent evaluations.
func (e *Engine) SetDB(db *terms.DB) {
	if db != nil {
		e.db.Store(db)
	}
}

// EvaluateLabel runs the allergen, dietary, and keyword matchers for one
// profile and aggregates their findings.
func (e *Engine) EvaluateLabel(label types.ParsedLabel, p types.UserProfile) types.PolicyResult {
	return evaluate(e.DB(), label, p)
}

// EvaluateLabelForProfiles evaluates every profile concurrently. Results are
// in the same order as profiles.
func (e *Engine) EvaluateLabelForProfiles(label types.ParsedLabel, profiles []types.UserProfile) []types.PolicyResult {
	db := e.DB()
	results := make([]types.PolicyResult, len(profiles))

	var wg sync.WaitGroup
	for i, p := range profiles {
		wg.Add(1)
		go func(i int, p types.UserProfile) {
			defer wg.Done()
			results[i] = evaluate(db, label, p)
		}(i, p)
	}
	wg.Wait()
	return results
}

// Escalate applies EscalateInferredRisks with the engine's allowlist.
func (e *Engine) Escalate(result types.PolicyResult, inferred []string) types.PolicyResult {
	return EscalateInferredRisks(result, inferred, e.DB().InferenceAllowlist)
}

func evaluate(db *terms.DB, label types.ParsedLabel, p types.UserProfile) types.PolicyResult {
	prof := normalizeProfile(db, p)
	set := newFindingSet()

	matchAllergens(db, label, prof, set)
	matchDietary(db, label, prof, set)
	matchKeywords(label, prof, set)

	return Aggregate(prof.id, prof.name, set.list(), nil)
}

// Aggregate builds a result from findings: UNSAFE beats CAUTION beats SAFE,
// and confidence is the minimum finding confidence, or 1.0 with none.
func Aggregate(id, name string, findings []types.Finding, inferred []string) types.PolicyResult {
	r := types.PolicyResult{
		Status:        types.StatusSafe,
		Findings:      findings,
		Confidence:    1.0,
		ProfileID:     id,
		ProfileName:   name,
		InferredRisks: inferred,
	}
	for _, f := range findings {
		switch f.Severity {
		case types.SeverityUnsafe:
			r.Status = types.StatusUnsafe
		case types.SeverityCaution:
			if r.Status == types.StatusSafe {
				r.Status = types.StatusCaution
			}
		}
		if f.Confidence < r.Confidence {
			r.Confidence = f.Confidence
		}
		switch f.Kind {
		case types.KindAllergen:
			r.AllergenCount++
		case types.KindDietary:
			r.DietaryCount++
		case types.KindForbiddenKeyword:
			r.KeywordCount++
		}
	}
	return r
}

var sourceSection = map[types.FindingSource]types.SectionName{
	types.SourceIngredients: types.SectionIngredients,
	types.SourceContains:    types.SectionContains,
	types.SourceMayContain:  types.SectionMayContain,
}

var sectionSource = map[types.SectionName]types.FindingSource{
	types.SectionIngredients: types.SourceIngredients,
	types.SectionContains:    types.SourceContains,
	types.SectionMayContain:  types.SourceMayContain,
}

// evidence locates text in the label, preferring occurrences inside the
// section the finding came from. It never returns nil.
func evidence(label types.ParsedLabel, text string, source types.FindingSource) []types.Span {
	all := normalize.FindEvidenceSpans(label.NormalizedText, text)
	want, ok := sourceSection[source]
	if !ok || len(all) == 0 {
		return append([]types.Span{}, all...)
	}
	var inSection []types.Span
	for _, sp := range all {
		if label.SectionAt(sp.Start) == want {
			inSection = append(inSection, sp)
		}
	}
	if len(inSection) == 0 {
		return all
	}
	return inSection
}

// containsEither reports whether token contains term, or term contains a
// token of at least minReverseLen bytes whose length is within band of the
// term's. A negative band allows any length difference.
func containsEither(token, term string, band int) bool {
	ok, _ := matchTerm(token, term, band)
	return ok
}

// matchTerm is containsEither that also reports a reverse match.
func matchTerm(token, term string, band int) (ok, reverse bool) {
	if token == "" || term == "" {
		return false, false
	}
	if strings.Contains(token, term) {
		return true, false
	}
	if len(token) < minReverseLen {
		return false, false
	}
	if diff := len(term) - len(token); band >= 0 && (diff > band || -diff > band) {
		return false, false
	}
	if strings.Contains(term, token) {
		return true, true
	}
	return false, false
}
