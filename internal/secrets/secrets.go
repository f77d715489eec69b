// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// The filename is the key and the trimmed contents are the value, so a
// PostgreSQL DSN with a password or an authenticated NATS URL never has to
// live in safescan.yaml.
//
// Recognized keys: store-dsn, nats-url.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Keys read by the CLI.
const (
	KeyStoreDSN = "store-dsn"
	KeyNATSURL  = "nats-url"
)

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty set. Unreadable files are skipped and reported in the
// returned names so the caller can warn.
func Load(dir string) (Secrets, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil, nil
		}
		return nil, nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := Secrets{}
	var skipped []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, skipped, nil
}

// Or returns value when it is set, else the secret stored under key.
// Explicit configuration always wins.
func (s Secrets) Or(key, value string) string {
	if value != "" {
		return value
	}
	return s[key]
}
