// Package quality drops duplicate and low-value passages between cleaning
// and chunking.
package quality

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/studyhall/tutor-rag/common/logger"
	"github.com/studyhall/tutor-rag/metrics"
)

// Filter rejects passages that are too short, too symbol-heavy, or
// service content (page headers, chapter titles, tables of contents).
type Filter struct {
	// MinLength is the minimum passage length in runes.
	MinLength int
	// MinLetterRatio is the minimum share of letter runes.
	MinLetterRatio float64

	servicePatterns []*regexp.Regexp
}

// Default filter thresholds.
const (
	DefaultMinLength      = 50
	DefaultMinLetterRatio = 0.6
)

var defaultServicePatterns = []string{
	`^\d+$`,
	`^стр\.?\s*\d+`,
	`^страница\s*\d+`,
	`^глава\s*\d+`,
	`^содержание`,
	`^оглавление`,
	`^\.\.\.`,
}

// NewFilter returns a Filter with production thresholds.
func NewFilter() *Filter {
	f := &Filter{
		MinLength:      DefaultMinLength,
		MinLetterRatio: DefaultMinLetterRatio,
	}
	for _, p := range defaultServicePatterns {
		f.servicePatterns = append(f.servicePatterns, regexp.MustCompile(p))
	}
	return f
}

// NormalizeKey collapses whitespace and lowercases, producing the key
// used for duplicate detection.
func NormalizeKey(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Dedup keeps only the first occurrence per normalized value. Later
// exact duplicates are dropped and counted.
func Dedup(texts []string) ([]string, int) {
	if len(texts) == 0 {
		return nil, 0
	}
	seen := make(map[string]struct{}, len(texts))
	unique := make([]string, 0, len(texts))
	dropped := 0
	for _, t := range texts {
		key := NormalizeKey(t)
		if key == "" {
			dropped++
			continue
		}
		if _, ok := seen[key]; ok {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, t)
	}
	if dropped > 0 {
		logger.Infof("removed %d duplicate passages", dropped)
		metrics.AddDroppedPassages("duplicate", dropped)
	}
	return unique, dropped
}

// Acceptable reports whether a single passage passes the quality checks.
func (f *Filter) Acceptable(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < f.MinLength {
		return false
	}
	if letterRatio(text) < f.MinLetterRatio {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, re := range f.servicePatterns {
		if re.MatchString(lower) {
			return false
		}
	}
	return true
}

// Apply filters a batch, returning survivors in order and the number
// rejected.
func (f *Filter) Apply(texts []string) ([]string, int) {
	kept := make([]string, 0, len(texts))
	filtered := 0
	for _, t := range texts {
		if f.Acceptable(t) {
			kept = append(kept, t)
			continue
		}
		filtered++
	}
	if filtered > 0 {
		logger.Infof("filtered %d low-quality passages", filtered)
		metrics.AddDroppedPassages("filtered", filtered)
	}
	return kept, filtered
}

func letterRatio(text string) float64 {
	total := 0
	letters := 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}
