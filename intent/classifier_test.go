package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhall/tutor-rag/schema"
)

func TestAnalyzeMedicalQuestion(t *testing.T) {
	c := NewClassifier(DefaultWeights())

	a := c.Analyze("у меня болит спина")

	assert.Equal(t, "medical_question", a.Intent)
	assert.Greater(t, a.Confidence, 0.0)
	assert.Equal(t, "medical_professional", a.Tone)

	painRelated := false
	for _, kw := range a.Keywords {
		if kw == "боль" || kw == "болит" {
			painRelated = true
		}
	}
	assert.True(t, painRelated, "keywords %v should contain a pain-related term", a.Keywords)
	// "спина" is a synonym of the spine term, so the canonical term is
	// expected among the keywords.
	assert.Contains(t, a.Keywords, "позвоночник")
}

func TestAnalyzeGreeting(t *testing.T) {
	c := NewClassifier(DefaultWeights())

	a := c.Analyze("Привет!")
	assert.Equal(t, "greeting", a.Intent)
	assert.Greater(t, a.Confidence, 0.0)
	assert.Equal(t, "friendly_greeting", a.Tone)
}

func TestAnalyzeFallbackToGeneral(t *testing.T) {
	c := NewClassifier(DefaultWeights())

	a := c.Analyze("qwerty asdf")
	assert.Equal(t, GeneralIntent, a.Intent)
	assert.Equal(t, 0.0, a.Confidence)
	assert.Empty(t, a.Keywords)
	assert.Equal(t, GeneralTone, a.Tone)
}

func TestAnalyzeDeterminism(t *testing.T) {
	c := NewClassifier(DefaultWeights())

	first := c.Analyze("можно ли тейпировать спину при боли")
	for i := 0; i < 5; i++ {
		again := c.Analyze("можно ли тейпировать спину при боли")
		assert.Equal(t, first, again)
	}
}

func TestClassifyTieBreakByCatalogOrder(t *testing.T) {
	catalog := []Definition{
		{Name: "first", Keywords: []string{"shared"}, Tone: "tone_a"},
		{Name: "second", Keywords: []string{"shared"}, Tone: "tone_b"},
	}
	c := NewClassifierWithCatalog(DefaultWeights(), catalog, nil)

	a := c.Analyze("a shared keyword")
	assert.Equal(t, "first", a.Intent, "equal scores must resolve to the first-defined intent")
	assert.Equal(t, "tone_a", a.Tone)
}

func TestConfidenceCappedAtOne(t *testing.T) {
	catalog := []Definition{
		{
			Name:     "verbose",
			Keywords: []string{"a", "b", "c", "d", "e", "f"},
			Patterns: []string{`a`, `b`, `c`},
			Tone:     "t",
		},
	}
	c := NewClassifierWithCatalog(DefaultWeights(), catalog, nil)

	a := c.Analyze("a b c d e f")
	assert.Equal(t, 1.0, a.Confidence)
}

func TestExpandedQueryContainsSynonymsAndContextTerms(t *testing.T) {
	c := NewClassifier(DefaultWeights())

	a := c.Analyze("помогает ли тейпирование")
	require.Equal(t, "medical_question", a.Intent)
	assert.Contains(t, a.ExpandedQuery, "помогает ли тейпирование")
	assert.Contains(t, a.ExpandedQuery, "кинезиотейпинг")
	assert.Contains(t, a.ExpandedQuery, "терапия")
}

func TestSuggestRelated(t *testing.T) {
	c := NewClassifier(DefaultWeights())

	s := c.SuggestRelated("medical_question")
	require.Len(t, s, 3)
	assert.Empty(t, c.SuggestRelated(GeneralIntent))
}

func TestVariants(t *testing.T) {
	c := NewClassifier(DefaultWeights())
	a := c.Analyze("у меня болит спина")

	vars := Variants("у меня болит спина", a)
	labels := make([]string, 0, len(vars))
	for _, v := range vars {
		assert.NotEmpty(t, v.Text)
		labels = append(labels, v.Label)
	}
	assert.Equal(t, []string{
		schema.VariantOriginal,
		schema.VariantExpanded,
		schema.VariantKeywordsOnly,
		schema.VariantContextHints,
		schema.VariantCombined,
	}, labels)
}

func TestVariantsDropEmpty(t *testing.T) {
	a := schema.QuestionAnalysis{
		Intent:        GeneralIntent,
		ExpandedQuery: "some question",
	}
	vars := Variants("some question", a)

	for _, v := range vars {
		assert.NotEqual(t, schema.VariantKeywordsOnly, v.Label)
		assert.NotEqual(t, schema.VariantContextHints, v.Label)
	}
}
