package schema

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Metadata keys attached to stored documents.
const (
	MetaSource      = "source"
	MetaPage        = "page"
	MetaTitle       = "title"
	MetaTotalPages  = "total_pages"
	MetaChunkIndex  = "chunk_index"
	MetaChunkSize   = "chunk_size"
	MetaFingerprint = "fingerprint"
)

// Document is the unit stored in and returned by the vector store.
type Document struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Vector   []float32      `json:"vector,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Source returns the source filename from metadata, if any.
func (d *Document) Source() string {
	if d.Metadata == nil {
		return ""
	}
	if s, ok := d.Metadata[MetaSource].(string); ok {
		return s
	}
	return ""
}

// Page returns the page number from metadata, or 0.
func (d *Document) Page() int {
	if d.Metadata == nil {
		return 0
	}
	switch v := d.Metadata[MetaPage].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// SearchResult is one scored hit from the vector store.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// dedupPrefixRunes bounds the content prefix hashed into the dedup key.
const dedupPrefixRunes = 120

// DedupKey identifies near-identical hits across query variants: same
// source, same page, same normalized content prefix.
func (r *SearchResult) DedupKey() string {
	norm := strings.ToLower(strings.Join(strings.Fields(r.Document.Text), " "))
	runes := []rune(norm)
	if len(runes) > dedupPrefixRunes {
		runes = runes[:dedupPrefixRunes]
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(string(runes)))
	return fmt.Sprintf("%s|%d|%08x", r.Document.Source(), r.Document.Page(), h.Sum32())
}

// RawPage is the per-page extraction result. Immutable once created.
type RawPage struct {
	Source     string `json:"source"`
	Page       int    `json:"page"`
	Text       string `json:"text"`
	Title      string `json:"title"`
	TotalPages int    `json:"total_pages"`
}

// Chunk is a bounded span of cleaned page text, the unit upserted to the
// vector store. Superseded when the parent fingerprint changes.
type Chunk struct {
	Text        string `json:"text"`
	Source      string `json:"source"`
	Page        int    `json:"page"`
	Title       string `json:"title"`
	Index       int    `json:"chunk_index"`
	Size        int    `json:"chunk_size"`
	Fingerprint string `json:"fingerprint"`
	TotalPages  int    `json:"total_pages"`
}

// QuestionAnalysis is the classifier output. Recomputed per question and
// never persisted. Classification always produces a complete value.
type QuestionAnalysis struct {
	Intent        string   `json:"intent"`
	Confidence    float64  `json:"confidence"`
	Keywords      []string `json:"keywords"`
	ExpandedQuery string   `json:"expanded_query"`
	ContextHints  []string `json:"context_hints"`
	Tone          string   `json:"tone"`
}

// Query variant labels, in merge order.
const (
	VariantOriginal     = "original"
	VariantExpanded     = "expanded"
	VariantKeywordsOnly = "keywords_only"
	VariantContextHints = "context_hints"
	VariantCombined     = "combined"
)

// QueryVariant is one labeled retrieval query derived from a question.
type QueryVariant struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// MergedContext is the ordered, deduplicated union of variant results,
// first-seen order preserved.
type MergedContext struct {
	Items []SearchResult `json:"items"`
}

// Sources returns the distinct source filenames in item order.
func (m *MergedContext) Sources() []string {
	seen := make(map[string]struct{}, len(m.Items))
	out := make([]string, 0, len(m.Items))
	for i := range m.Items {
		s := m.Items[i].Document.Source()
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
