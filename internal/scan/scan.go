// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan runs the analysis pipeline end to end: label text or an OCR
// response in, one verdict per profile out. It applies the fail-closed rules
// for unreadable and low-confidence input on top of the policy engine.
package scan

import (
	"strings"

	"github.com/pdiddy/safescan/internal/normalize"
	"github.com/pdiddy/safescan/internal/policy"
	"github.com/pdiddy/safescan/pkg/types"
)

// Warnings attached to outputs.
const (
	WarnUnreadable    = "label text could not be read"
	WarnManualReview  = "manual review required: check the label yourself before eating"
	WarnFailOpen      = "no label evidence was evaluated; SAFE is a default, not a verdict"
	WarnNoIngredients = "no ingredients were recognized in the label text"
	WarnLowConfidence = "text recognition confidence is low"
	WarnMenu          = "image looks like a menu rather than an ingredient label"
)

// Options tune the fail-closed behavior.
type Options struct {
	// FailOpenUnreadable reports SAFE instead of MANUAL_REVIEW for
	// unreadable or empty text.
	FailOpenUnreadable bool

	// LowConfidenceManualReview downgrades SAFE to MANUAL_REVIEW when the
	// OCR confidence band is low.
	LowConfidenceManualReview bool
}

// OptionsFrom maps engine configuration to pipeline options.
func OptionsFrom(cfg types.EngineConfig) Options {
	return Options{
		FailOpenUnreadable:        cfg.FailOpenUnreadable,
		LowConfidenceManualReview: cfg.LowConfidenceManualReview,
	}
}

// Analyze parses in.RawText once and evaluates it for every profile.
// Blank text takes the unreadable path.
func Analyze(e *policy.Engine, in types.Input, opts Options) types.Output {
	if strings.TrimSpace(in.RawText) == "" {
		return unreadable(e, in.Profiles, in.InferredRisks, opts)
	}

	label := normalize.ParseIngredientLabel(in.RawText)
	results := e.EvaluateLabelForProfiles(label, in.Profiles)
	if len(in.InferredRisks) > 0 {
		for i := range results {
			results[i] = e.Escalate(results[i], in.InferredRisks)
		}
	}

	out := types.Output{
		Ingredients:        label.Ingredients,
		Results:            results,
		MatchedIngredients: matchedIngredients(label, results),
		RawExtractedText:   in.RawText,
	}
	if label.IsEmpty() {
		out.Warnings = append(out.Warnings, WarnNoIngredients)
	}
	return out
}

// AnalyzeOCR evaluates an OCR response. Unreadable or empty responses
// produce MANUAL_REVIEW for every profile unless opts.FailOpenUnreadable is
// set. Separately reported contains and may-contain statements are added to
// the text when it does not already include them.
func AnalyzeOCR(e *policy.Engine, resp types.OCRResponse, profiles []types.UserProfile, inferred []string, opts Options) types.Output {
	if resp.Type == types.OCRUnreadable || strings.TrimSpace(resp.RawText) == "" {
		out := unreadable(e, profiles, inferred, opts)
		out.RawExtractedText = resp.RawText
		return withNotes(out, resp)
	}

	out := Analyze(e, types.Input{
		RawText:       ComposeText(resp),
		Profiles:      profiles,
		InferredRisks: inferred,
	}, opts)
	out.RawExtractedText = resp.RawText

	if resp.Type == types.OCRMenu {
		out.Warnings = append(out.Warnings, WarnMenu)
	}
	if resp.Confidence == types.OCRLow {
		out.Warnings = append(out.Warnings, WarnLowConfidence)
		if opts.LowConfidenceManualReview {
			downgraded := false
			for i := range out.Results {
				if out.Results[i].Status == types.StatusSafe {
					out.Results[i].Status = types.StatusManualReview
					downgraded = true
				}
			}
			if downgraded {
				out.Warnings = append(out.Warnings, WarnManualReview)
			}
		}
	}
	return withNotes(out, resp)
}

// ComposeText returns the OCR raw text with the separately reported
// statements appended under their headers when the text lacks them.
func ComposeText(resp types.OCRResponse) string {
	text := strings.TrimSpace(resp.RawText)
	lower := strings.ToLower(text)
	for _, st := range []struct{ body, header string }{
		{resp.ContainsStatement, "Contains:"},
		{resp.MayContainStatement, "May contain:"},
	} {
		body := strings.TrimSpace(st.body)
		if body == "" || strings.Contains(lower, strings.ToLower(body)) {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(body), strings.ToLower(strings.TrimSuffix(st.header, ":"))) {
			body = st.header + " " + body
		}
		if text != "" && !strings.HasSuffix(text, ".") {
			text += "."
		}
		text += " " + body
		lower = strings.ToLower(text)
	}
	return strings.TrimSpace(text)
}

// unreadable builds the output for text that could not be read. Inferred
// risks still escalate, since they do not depend on the text.
func unreadable(e *policy.Engine, profiles []types.UserProfile, inferred []string, opts Options) types.Output {
	status := types.StatusManualReview
	warnings := []string{WarnUnreadable, WarnManualReview}
	if opts.FailOpenUnreadable {
		status = types.StatusSafe
		warnings = []string{WarnUnreadable, WarnFailOpen}
	}

	results := make([]types.PolicyResult, len(profiles))
	for i, p := range profiles {
		results[i] = types.PolicyResult{
			Status:      status,
			Findings:    []types.Finding{},
			Confidence:  0,
			ProfileID:   p.ID,
			ProfileName: p.Name,
		}
		if len(inferred) > 0 {
			results[i] = e.Escalate(results[i], inferred)
		}
	}

	return types.Output{
		Ingredients:        []string{},
		Results:            results,
		MatchedIngredients: []types.MatchedIngredient{},
		Warnings:           warnings,
	}
}

func withNotes(out types.Output, resp types.OCRResponse) types.Output {
	if n := strings.TrimSpace(resp.Notes); n != "" {
		out.Warnings = append(out.Warnings, "ocr: "+n)
	}
	return out
}

// matchedIngredients summarizes each ingredient token with at least one
// finding: the terms it matched, the profiles it affects, and the worst
// severity. Order follows the ingredient list.
func matchedIngredients(label types.ParsedLabel, results []types.PolicyResult) []types.MatchedIngredient {
	byName := make(map[string]*types.MatchedIngredient)
	for _, r := range results {
		for _, f := range r.Findings {
			if f.Source != types.SourceIngredients {
				continue
			}
			m, ok := byName[f.MatchedText]
			if !ok {
				m = &types.MatchedIngredient{
					Name:           f.MatchedText,
					CanonicalTerms: []string{},
					ProfileIDs:     []string{},
					Severity:       f.Severity,
				}
				byName[f.MatchedText] = m
			}
			m.CanonicalTerms = appendUnique(m.CanonicalTerms, f.CanonicalTerm)
			m.ProfileIDs = appendUnique(m.ProfileIDs, r.ProfileID)
			if f.Severity == types.SeverityUnsafe {
				m.Severity = types.SeverityUnsafe
			}
		}
	}

	out := []types.MatchedIngredient{}
	for _, name := range label.Ingredients {
		if m, ok := byName[name]; ok {
			out = append(out, *m)
			delete(byName, name)
		}
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
