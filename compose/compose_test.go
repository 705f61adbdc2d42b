package compose

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhall/tutor-rag/schema"
)

func contextWith(items ...schema.SearchResult) schema.MergedContext {
	return schema.MergedContext{Items: items}
}

func chunk(source string, page int, text string) schema.SearchResult {
	return schema.SearchResult{
		Document: schema.Document{
			Text: text,
			Metadata: map[string]any{
				schema.MetaSource: source,
				schema.MetaPage:   page,
			},
		},
		Score: 0.9,
	}
}

func TestPromptCarriesContextAndAttribution(t *testing.T) {
	c := New()
	analysis := schema.QuestionAnalysis{
		Intent:   "medical_question",
		Tone:     "medical_professional",
		Keywords: []string{"белки", "аминокислоты"},
	}
	merged := contextWith(
		chunk("anatomy.pdf", 12, "Белки состоят из аминокислот."),
		chunk("basics.pdf", 3, "Вода составляет большую часть массы тела."),
	)

	system, user := c.Prompt("Из чего состоят белки?", analysis, merged)

	assert.Contains(t, system, "ассистент нутрициолога")
	assert.Contains(t, system, "медицинский консультант")
	assert.Contains(t, system, "NO_CONTEXT")

	assert.Contains(t, user, "1. [anatomy.pdf, стр. 12] Белки состоят из аминокислот.")
	assert.Contains(t, user, "2. [basics.pdf, стр. 3]")
	assert.Contains(t, user, "Ключевые слова вопроса: белки, аминокислоты")
	assert.True(t, strings.HasSuffix(user, "Вопрос: Из чего состоят белки?"))
}

func TestPromptUnknownToneFallsBackToNeutral(t *testing.T) {
	c := New()
	system, _ := c.Prompt("Привет", schema.QuestionAnalysis{Tone: "unheard_of"}, contextWith())
	assert.Contains(t, system, "нейтрально и доброжелательно")
}

func TestOutcomeAnswered(t *testing.T) {
	c := New()
	analysis := schema.QuestionAnalysis{Intent: "medical_question", Confidence: 0.6}
	merged := contextWith(chunk("anatomy.pdf", 12, "текст"))

	out := c.Outcome("  Белки состоят из аминокислот.  ", nil, analysis, merged)

	assert.Equal(t, schema.OutcomeAnswered, out.Kind)
	assert.Equal(t, "Белки состоят из аминокислот.", out.Answer)
	assert.Equal(t, []string{"anatomy.pdf"}, out.Sources)
	assert.Equal(t, "medical_question", out.Intent)
	assert.InDelta(t, 0.6, out.Confidence, 1e-9)
	require.NoError(t, out.Err)
}

func TestOutcomeNoContextOnEmptyRetrieval(t *testing.T) {
	c := New()
	out := c.Outcome("", nil, schema.QuestionAnalysis{}, contextWith())
	assert.Equal(t, schema.OutcomeNoContext, out.Kind)
	assert.Equal(t, CuratorFallback, out.Answer)
	assert.Empty(t, out.Sources)
}

func TestOutcomeNoContextOnRefusalMarker(t *testing.T) {
	c := New()
	merged := contextWith(chunk("a.pdf", 1, "текст"))
	for _, answer := range []string{"NO_CONTEXT", "  NO_CONTEXT  ", ""} {
		out := c.Outcome(answer, nil, schema.QuestionAnalysis{}, merged)
		assert.Equal(t, schema.OutcomeNoContext, out.Kind, "answer %q", answer)
		assert.Equal(t, CuratorFallback, out.Answer)
	}
}

func TestOutcomeErrorOnGenerationFailure(t *testing.T) {
	c := New()
	merged := contextWith(chunk("a.pdf", 1, "текст"))
	genErr := fmt.Errorf("upstream 503")

	out := c.Outcome("", genErr, schema.QuestionAnalysis{}, merged)

	assert.Equal(t, schema.OutcomeError, out.Kind)
	assert.Equal(t, CuratorFallback, out.Answer)
	assert.ErrorIs(t, out.Err, genErr)
}

func TestAttributionWithoutPage(t *testing.T) {
	d := schema.Document{Metadata: map[string]any{schema.MetaSource: "a.pdf"}}
	assert.Equal(t, "[a.pdf]", attribution(&d))
}
