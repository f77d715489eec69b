// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/safescan/pkg/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTextFile(t *testing.T) {
	path := writeFile(t, "label.txt", "  Ingredients: oats, salt\n")
	resp, err := TextFile{Path: path}.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.OCRIngredientLabel, resp.Type)
	assert.Equal(t, "Ingredients: oats, salt", resp.RawText)
	assert.Equal(t, types.OCRHigh, resp.Confidence)

	empty := writeFile(t, "empty.txt", " \n")
	resp, err = TextFile{Path: empty, Confidence: types.OCRLow}.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.OCRUnreadable, resp.Type)
	assert.Equal(t, types.OCRLow, resp.Confidence)
}

func TestResponseFile(t *testing.T) {
	path := writeFile(t, "resp.json", `{
		"type": "ingredient_label",
		"raw_text": "Ingredients: cocoa",
		"contains_statement": "milk",
		"may_contain_statement": "",
		"confidence": "low",
		"notes": "partially obscured"
	}`)
	resp, err := ResponseFile{Path: path}.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.OCRResponse{
		Type:              types.OCRIngredientLabel,
		RawText:           "Ingredients: cocoa",
		ContainsStatement: "milk",
		Confidence:        types.OCRLow,
		Notes:             "partially obscured",
	}, resp)
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    types.OCRResponse
		wantErr bool
	}{
		{
			name: "defaults",
			data: `{"raw_text":"salt"}`,
			want: types.OCRResponse{Type: types.OCRIngredientLabel, RawText: "salt", Confidence: types.OCRMedium},
		},
		{
			name: "unreadable",
			data: `{"type":"unreadable","confidence":"low"}`,
			want: types.OCRResponse{Type: types.OCRUnreadable, Confidence: types.OCRLow},
		},
		{name: "bad type", data: `{"type":"poster"}`, wantErr: true},
		{name: "bad confidence", data: `{"confidence":"certain"}`, wantErr: true},
		{name: "malformed", data: `{`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeResponse([]byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, types.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	for _, r := range []Reader{TextFile{Path: missing}, ResponseFile{Path: missing}, PDFFile{Path: missing + ".pdf"}} {
		_, err := r.Read(context.Background())
		assert.Error(t, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := TextFile{Path: missing}.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForPath(t *testing.T) {
	assert.IsType(t, PDFFile{}, ForPath("sheet.PDF"))
	assert.IsType(t, ResponseFile{}, ForPath("resp.json"))
	assert.IsType(t, TextFile{}, ForPath("label.txt"))
	assert.IsType(t, TextFile{}, ForPath("label"))
}
