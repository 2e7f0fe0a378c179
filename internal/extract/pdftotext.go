// Package extract provides document text extractors for the verifier.
// Extraction stays out of the scoring core; a verifier without an
// extractor falls back to filename presence checks.
package extract

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sydcare/carerank/internal/verify"
)

// PdfToText extracts page text using the pdftotext CLI tool.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText extractor. If binPath is empty,
// "pdftotext" is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// Extract runs pdftotext -layout on the document and splits the output
// into pages on the form feeds pdftotext emits between them.
func (p *PdfToText) Extract(path string) ([]verify.Page, error) {
	cmd := exec.Command(p.binPath, "-layout", path, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "extract: pdftotext failed for %s: %s", path, stderr.String())
	}

	return splitPages(stdout.String()), nil
}

// splitPages turns pdftotext output into numbered pages. Trailing empty
// pages (pdftotext ends output with a form feed) are dropped.
func splitPages(text string) []verify.Page {
	parts := strings.Split(text, "\f")
	for len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	pages := make([]verify.Page, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, verify.Page{Number: i + 1, Text: part})
	}
	return pages
}
