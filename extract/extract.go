// Package extract validates uploads and pulls per-page text out of PDF
// documents.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/studyhall/tutor-rag/common/logger"
	"github.com/studyhall/tutor-rag/config"
	"github.com/studyhall/tutor-rag/schema"
)

// UploadError rejects an upload before any processing happens.
type UploadError struct {
	Filename string
	Reason   string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %q rejected: %s", e.Filename, e.Reason)
}

// maxTitleLength bounds the best-guess page title.
const maxTitleLength = 80

// ValidateUpload checks extension and size limits. It runs before any
// byte of the document is parsed.
func ValidateUpload(filename string, size int64, cfg config.IngestConfig) error {
	ext := strings.ToLower(filepath.Ext(filename))
	allowed := false
	for _, a := range cfg.AllowedExtensions {
		if ext == strings.ToLower(a) {
			allowed = true
			break
		}
	}
	if !allowed {
		return &UploadError{
			Filename: filename,
			Reason:   fmt.Sprintf("unsupported file type %q (allowed: %s)", ext, strings.Join(cfg.AllowedExtensions, ", ")),
		}
	}
	if size <= 0 {
		return &UploadError{Filename: filename, Reason: "empty file"}
	}
	if size > cfg.MaxUploadBytes {
		return &UploadError{
			Filename: filename,
			Reason:   fmt.Sprintf("file size %d exceeds limit %d", size, cfg.MaxUploadBytes),
		}
	}
	return nil
}

// Pages extracts per-page text from a PDF. Pages that yield no text are
// logged and skipped; an error is returned only when the document as a
// whole contains no extractable text.
func Pages(filename string, data []byte) ([]schema.RawPage, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf failed, err: %w", err)
	}

	total := reader.NumPage()
	pages := make([]schema.RawPage, 0, total)
	for i := 1; i <= total; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			logger.Warnf("page %d of %s: no content", i, filename)
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			logger.Warnf("page %d of %s: text extraction failed: %v", i, filename, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			logger.Warnf("page %d of %s: no text extracted", i, filename)
			continue
		}
		pages = append(pages, schema.RawPage{
			Source:     filename,
			Page:       i,
			Text:       text,
			Title:      guessTitle(text),
			TotalPages: total,
		})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("document %q contains no extractable text", filename)
	}
	logger.Infof("extracted %d/%d pages from %s", len(pages), total, filename)
	return pages, nil
}

// guessTitle returns the first short non-empty line of the page.
func guessTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len([]rune(line)) <= maxTitleLength {
			return line
		}
		return ""
	}
	return ""
}
