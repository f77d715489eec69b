// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Secrets
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyStoreDSN, "  postgres://scan:pw@db/safescan  \n")
				writeFile(t, dir, KeyNATSURL, "nats://user:pw@nats:4222\n")
				return dir
			},
			want: Secrets{
				KeyStoreDSN: "postgres://scan:pw@db/safescan",
				KeyNATSURL:  "nats://user:pw@nats:4222",
			},
		},
		{
			name: "missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files, dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyNATSURL, "nats://localhost:4222")
				writeFile(t, dir, "empty", "   \n\t")
				writeFile(t, dir, ".hidden", "secret")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Secrets{KeyNATSURL: "nats://localhost:4222"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, skipped, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Empty(t, skipped)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadNotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file", "x")
	_, _, err := Load(filepath.Join(dir, "file"))
	assert.Error(t, err)
}

func TestOr(t *testing.T) {
	s := Secrets{KeyStoreDSN: "from-secret"}
	assert.Equal(t, "from-config", s.Or(KeyStoreDSN, "from-config"))
	assert.Equal(t, "from-secret", s.Or(KeyStoreDSN, ""))
	assert.Equal(t, "", s.Or(KeyNATSURL, ""))
}
