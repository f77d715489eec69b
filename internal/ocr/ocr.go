// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr defines the text-recognition collaborator contract and the
// local sources that satisfy it. The vision model itself lives outside this
// repository; these readers replay its output or pull text straight from
// files.
package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/safescan/pkg/types"
)

// Reader produces one OCR response.
type Reader interface {
	Read(ctx context.Context) (types.OCRResponse, error)
}

// TextFile reads label text from a plain-text file.
type TextFile struct {
	Path string

	// Confidence is reported as-is (default high).
	Confidence types.OCRConfidence
}

// Read implements Reader.
func (f TextFile) Read(ctx context.Context) (types.OCRResponse, error) {
	if err := ctx.Err(); err != nil {
		return types.OCRResponse{}, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return types.OCRResponse{}, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	return textResponse(string(data), f.Confidence), nil
}

// ResponseFile replays a recorded collaborator response stored as JSON.
type ResponseFile struct {
	Path string
}

// Read implements Reader.
func (f ResponseFile) Read(ctx context.Context) (types.OCRResponse, error) {
	if err := ctx.Err(); err != nil {
		return types.OCRResponse{}, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return types.OCRResponse{}, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	return DecodeResponse(data)
}

// DecodeResponse parses a collaborator response. A missing type means an
// ingredient label; an unknown type or confidence is rejected.
func DecodeResponse(data []byte) (types.OCRResponse, error) {
	var resp types.OCRResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return types.OCRResponse{}, fmt.Errorf("parsing OCR response: %w: %v", types.ErrInvalidInput, err)
	}
	switch resp.Type {
	case "":
		resp.Type = types.OCRIngredientLabel
	case types.OCRIngredientLabel, types.OCRMenu, types.OCRUnreadable:
	default:
		return types.OCRResponse{}, fmt.Errorf("OCR response type %q: %w", resp.Type, types.ErrInvalidInput)
	}
	switch resp.Confidence {
	case "":
		resp.Confidence = types.OCRMedium
	case types.OCRHigh, types.OCRMedium, types.OCRLow:
	default:
		return types.OCRResponse{}, fmt.Errorf("OCR confidence %q: %w", resp.Confidence, types.ErrInvalidInput)
	}
	return resp, nil
}

// PDFFile extracts the text layer of a PDF, such as a manufacturer spec
// sheet. Scanned PDFs without a text layer come back unreadable.
type PDFFile struct {
	Path string
}

// Read implements Reader.
func (f PDFFile) Read(ctx context.Context) (types.OCRResponse, error) {
	if err := ctx.Err(); err != nil {
		return types.OCRResponse{}, err
	}
	file, r, err := pdf.Open(f.Path)
	if err != nil {
		return types.OCRResponse{}, fmt.Errorf("opening PDF %s: %w", f.Path, err)
	}
	defer file.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return types.OCRResponse{}, fmt.Errorf("extracting text from %s: %w", f.Path, err)
	}
	data, err := io.ReadAll(plain)
	if err != nil {
		return types.OCRResponse{}, fmt.Errorf("reading text from %s: %w", f.Path, err)
	}
	return textResponse(string(data), types.OCRHigh), nil
}

// ForPath picks a reader by file extension: .pdf, .json, anything else is
// plain text.
func ForPath(path string) Reader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return PDFFile{Path: path}
	case ".json":
		return ResponseFile{Path: path}
	}
	return TextFile{Path: path}
}

func textResponse(text string, conf types.OCRConfidence) types.OCRResponse {
	if conf == "" {
		conf = types.OCRHigh
	}
	resp := types.OCRResponse{
		Type:       types.OCRIngredientLabel,
		RawText:    strings.TrimSpace(text),
		Confidence: conf,
	}
	if resp.RawText == "" {
		resp.Type = types.OCRUnreadable
	}
	return resp
}
