// Package compose assembles generation prompts from retrieved context
// and classifies the generator's reply into a tagged outcome.
package compose

import (
	"fmt"
	"strings"

	"github.com/studyhall/tutor-rag/schema"
)

// systemBase grounds every answer in the retrieved material.
const systemBase = "Вы — ассистент нутрициолога. Отвечайте кратко, вежливо и только на основе следующего контекста."

// noContextMarker is the reserved token the model outputs when the
// context cannot support an answer. It never reaches the student: the
// outcome classifier replaces it with the curator fallback.
const noContextMarker = "NO_CONTEXT"

// CuratorFallback is shown when no grounded answer is possible.
const CuratorFallback = "Я затрудняюсь ответить на этот вопрос. Куратор уже уведомлён."

// toneInstructions adapt the register of the reply to the question's
// intent. Unknown tones fall back to the neutral entry.
var toneInstructions = map[string]string{
	"medical_professional":   "Отвечайте профессионально и точно, как медицинский консультант. Напомните, что информация не заменяет консультацию врача.",
	"helpful_administrative": "Отвечайте доброжелательно и по существу, как администратор школы нутрициологии.",
	"friendly_cooking":       "Отвечайте тепло и практично, с акцентом на приготовление и сочетание блюд.",
	"nutritional_expert":     "Отвечайте как эксперт по нутрициологии, опираясь на состав и свойства продуктов.",
	"friendly_greeting":      "Поприветствуйте студента дружелюбно и коротко предложите помощь по материалам курса.",
	"neutral_helpful":        "Отвечайте нейтрально и доброжелательно.",
}

// Composer builds prompts and interprets generations.
type Composer struct{}

// New returns a Composer.
func New() *Composer { return &Composer{} }

// Prompt builds the system and user messages for one question. The
// system message carries the grounding rule, the tone instruction and
// the refusal protocol; the user message carries the numbered context
// block with source attributions and the question itself.
func (c *Composer) Prompt(question string, analysis schema.QuestionAnalysis, merged schema.MergedContext) (system, user string) {
	tone, ok := toneInstructions[analysis.Tone]
	if !ok {
		tone = toneInstructions["neutral_helpful"]
	}
	system = fmt.Sprintf("%s %s Если в контексте нет информации для ответа, выведите ровно строку %s.",
		systemBase, tone, noContextMarker)

	var b strings.Builder
	b.WriteString("Контекст:\n")
	for i, item := range merged.Items {
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, attribution(&item.Document), strings.TrimSpace(item.Document.Text))
	}
	if len(analysis.Keywords) > 0 {
		fmt.Fprintf(&b, "\nКлючевые слова вопроса: %s\n", strings.Join(analysis.Keywords, ", "))
	}
	b.WriteString("\nВопрос: ")
	b.WriteString(strings.TrimSpace(question))
	return system, b.String()
}

// Outcome classifies one generation attempt. The caller branches on
// Kind instead of inspecting answer text.
func (c *Composer) Outcome(answer string, genErr error, analysis schema.QuestionAnalysis, merged schema.MergedContext) schema.Outcome {
	out := schema.Outcome{
		Intent:     analysis.Intent,
		Confidence: analysis.Confidence,
	}
	switch {
	case len(merged.Items) == 0:
		out.Kind = schema.OutcomeNoContext
		out.Answer = CuratorFallback
	case genErr != nil:
		out.Kind = schema.OutcomeError
		out.Answer = CuratorFallback
		out.Err = genErr
	case strings.TrimSpace(answer) == "" || strings.Contains(answer, noContextMarker):
		out.Kind = schema.OutcomeNoContext
		out.Answer = CuratorFallback
	default:
		out.Kind = schema.OutcomeAnswered
		out.Answer = strings.TrimSpace(answer)
		out.Sources = merged.Sources()
	}
	return out
}

func attribution(d *schema.Document) string {
	source := d.Source()
	if source == "" {
		return ""
	}
	if page := d.Page(); page > 0 {
		return fmt.Sprintf("[%s, стр. %d]", source, page)
	}
	return fmt.Sprintf("[%s]", source)
}
