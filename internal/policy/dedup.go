// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package policy

import "github.com/pdiddy/safescan/pkg/types"

// findingSet collects findings in insertion order, dropping any whose
// (kind, canonicalTerm, matchedText) key was already added. Every matcher
// goes through it so deduplication is identical everywhere.
type findingSet struct {
	seen     map[types.FindingKey]struct{}
	findings []types.Finding
}

func newFindingSet(existing ...types.Finding) *findingSet {
	s := &findingSet{
		seen:     make(map[types.FindingKey]struct{}, len(existing)),
		findings: make([]types.Finding, 0, len(existing)),
	}
	for _, f := range existing {
		s.add(f)
	}
	return s
}

// add records f unless its key is already present. It reports whether f
// was added.
func (s *findingSet) add(f types.Finding) bool {
	k := f.DedupKey()
	if _, dup := s.seen[k]; dup {
		return false
	}
	s.seen[k] = struct{}{}
	s.findings = append(s.findings, f)
	return true
}

// covers reports whether any finding of kind has canonicalTerm.
func (s *findingSet) covers(kind types.FindingKind, canonicalTerm string) bool {
	for _, f := range s.findings {
		if f.Kind == kind && f.CanonicalTerm == canonicalTerm {
			return true
		}
	}
	return false
}

func (s *findingSet) list() []types.Finding {
	return s.findings
}

// DedupFindings returns findings with repeated (kind, canonicalTerm,
// matchedText) keys removed. The first occurrence wins.
func DedupFindings(findings []types.Finding) []types.Finding {
	return newFindingSet(findings...).list()
}
