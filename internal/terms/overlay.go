// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package terms

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.yaml.in/yaml/v3"
)

// Overlay is the YAML layout for extending the built-in databases.
//
//	synonyms:
//	  Milk: [quark, skyr]
//	false_positives:
//	  Milk: [milk chocolate flavour]
//	includes:
//	  Gluten: [Wheat]
//	rules:
//	  - key: no_alcohol
//	    violations: [wine, beer]
//	    explanation: "%s contains alcohol"
type Overlay struct {
	Synonyms          map[string][]string `yaml:"synonyms"`
	FalsePositives    map[string][]string `yaml:"false_positives"`
	Includes          map[string][]string `yaml:"includes"`
	Aliases           map[string]string   `yaml:"aliases"`
	Rules             []DietaryRule       `yaml:"rules"`
	PlantBased        map[string][]string `yaml:"plant_based"`
	DietaryExceptions map[string][]string `yaml:"dietary_exceptions"`
	InferenceExtra    []string            `yaml:"inference_allowlist"`
}

// LoadOverlay reads a YAML overlay from path and returns base extended with
// it. base is not modified. Rules with an existing key replace the built-in
// rule.
func LoadOverlay(path string, base *DB) (*DB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading terms overlay %s: %w", path, err)
	}
	var ov Overlay
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("parsing terms overlay %s: %w", path, err)
	}
	return ov.Apply(base)
}

// Apply returns base extended with the overlay.
func (ov Overlay) Apply(base *DB) (*DB, error) {
	db := base.clone()

	for canonical, syns := range ov.Synonyms {
		canonical = strings.TrimSpace(canonical)
		if canonical == "" {
			return nil, fmt.Errorf("synonyms: empty canonical allergen name")
		}
		for _, s := range syns {
			if s = lowerTrim(s); s != "" {
				db.Synonyms[s] = canonical
			}
		}
	}
	for canonical, phrases := range ov.FalsePositives {
		for _, p := range phrases {
			if p = lowerTrim(p); p != "" {
				db.FalsePositives[canonical] = append(db.FalsePositives[canonical], p)
			}
		}
	}
	for canonical, included := range ov.Includes {
		canonical = strings.TrimSpace(canonical)
		if canonical == "" {
			return nil, fmt.Errorf("includes: empty canonical allergen name")
		}
		for _, c := range included {
			if c = strings.TrimSpace(c); c != "" && c != canonical {
				db.Includes[canonical] = append(db.Includes[canonical], c)
			}
		}
	}
	for alias, canonical := range ov.Aliases {
		db.Aliases[lowerTrim(alias)] = canonical
	}
	for i, r := range ov.Rules {
		key := RuleKey(r.Key)
		if key == "" {
			return nil, fmt.Errorf("rules[%d]: key is required", i)
		}
		if !strings.Contains(r.Explanation, "%s") {
			return nil, fmt.Errorf("rules[%d] %q: explanation must contain %%s", i, key)
		}
		r.Key = key
		if r.Label == "" {
			r.Label = key
		}
		r.Violations = lowerAll(r.Violations)
		r.Cautions = lowerAll(r.Cautions)
		db.Rules[key] = r
	}
	for term, phrases := range ov.PlantBased {
		term = lowerTrim(term)
		db.PlantBased[term] = append(db.PlantBased[term], lowerAll(phrases)...)
	}
	for term, words := range ov.DietaryExceptions {
		term = lowerTrim(term)
		db.DietaryExceptions[term] = append(db.DietaryExceptions[term], lowerAll(words)...)
	}
	db.InferenceAllowlist = append(db.InferenceAllowlist, lowerAll(ov.InferenceExtra)...)

	db.finalize()
	return db, nil
}

// Watch reloads the overlay at path whenever it changes and hands the new DB
// to onChange. Load failures go to onError and keep the previous DB in
// effect. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, base *DB, onChange func(*DB), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files by rename, so watch the directory.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			db, err := LoadOverlay(path, base)
			if err != nil {
				onError(err)
				continue
			}
			onChange(db)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			onError(err)
		}
	}
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = lowerTrim(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
