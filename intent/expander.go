package intent

import (
	"strings"

	"github.com/studyhall/tutor-rag/schema"
)

// combinedHintBudget caps how many hints feed the combined variant.
const combinedHintBudget = 3

// Variants derives the labeled query variants from one analysis. Empty
// variants are dropped; the order below is the merge order downstream.
func Variants(question string, a schema.QuestionAnalysis) []schema.QueryVariant {
	hints := a.ContextHints
	if len(hints) > combinedHintBudget {
		hints = hints[:combinedHintBudget]
	}
	parts := []string{question}
	if kw := strings.Join(a.Keywords, " "); kw != "" {
		parts = append(parts, kw)
	}
	if h := strings.Join(hints, " "); h != "" {
		parts = append(parts, h)
	}
	combined := strings.TrimSpace(strings.Join(parts, " "))

	candidates := []schema.QueryVariant{
		{Label: schema.VariantOriginal, Text: question},
		{Label: schema.VariantExpanded, Text: a.ExpandedQuery},
		{Label: schema.VariantKeywordsOnly, Text: strings.Join(a.Keywords, " ")},
		{Label: schema.VariantContextHints, Text: strings.Join(a.ContextHints, " ")},
		{Label: schema.VariantCombined, Text: combined},
	}

	out := make([]schema.QueryVariant, 0, len(candidates))
	for _, v := range candidates {
		if strings.TrimSpace(v.Text) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
