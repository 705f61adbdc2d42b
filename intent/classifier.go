package intent

import (
	"regexp"
	"strings"

	"github.com/studyhall/tutor-rag/common/logger"
	"github.com/studyhall/tutor-rag/metrics"
	"github.com/studyhall/tutor-rag/schema"
)

// Weights are the named scoring constants of the classifier.
type Weights struct {
	Keyword int
	Pattern int
	Divisor int
}

// DefaultWeights returns the production scoring weights: +2 per keyword
// hit, +3 per pattern hit, total divided by 10 and capped at 1.0.
func DefaultWeights() Weights {
	return Weights{Keyword: 2, Pattern: 3, Divisor: 10}
}

// Classifier scores questions against a fixed intent catalog and derives
// keywords, an expanded query and search hints. Analyze never fails: an
// unmatched question degrades to the general intent at confidence 0.
type Classifier struct {
	catalog      []Definition
	compiled     [][]*regexp.Regexp
	synonyms     []SynonymEntry
	synonymIndex map[string][]string
	contextTerms map[string][]string
	hintRules    []HintRule
	intentHints  map[string][]string
	suggestions  map[string][]string
	weights      Weights

	// SynonymsPerKeyword caps how many synonyms each matched keyword
	// contributes to the expanded query.
	SynonymsPerKeyword int
}

// NewClassifier builds a classifier over the default catalog.
func NewClassifier(w Weights) *Classifier {
	return NewClassifierWithCatalog(w, DefaultCatalog(), DefaultSynonyms())
}

// NewClassifierWithCatalog builds a classifier over a custom catalog and
// synonym table. Used by tests to pin down small rule sets.
func NewClassifierWithCatalog(w Weights, catalog []Definition, synonyms []SynonymEntry) *Classifier {
	if w.Divisor <= 0 {
		w = DefaultWeights()
	}
	c := &Classifier{
		catalog:            catalog,
		synonyms:           synonyms,
		synonymIndex:       make(map[string][]string, len(synonyms)),
		contextTerms:       DefaultContextTerms(),
		hintRules:          DefaultHintRules(),
		intentHints:        DefaultIntentHints(),
		suggestions:        DefaultSuggestions(),
		weights:            w,
		SynonymsPerKeyword: 3,
	}
	for _, def := range catalog {
		res := make([]*regexp.Regexp, 0, len(def.Patterns))
		for _, p := range def.Patterns {
			res = append(res, regexp.MustCompile(`(?i)`+p))
		}
		c.compiled = append(c.compiled, res)
	}
	for _, s := range synonyms {
		c.synonymIndex[s.Term] = s.Synonyms
	}
	return c
}

// Analyze classifies a question and derives its retrieval material.
func (c *Classifier) Analyze(question string) schema.QuestionAnalysis {
	lower := strings.ToLower(strings.TrimSpace(question))

	name, tone, confidence := c.classify(lower)
	keywords := c.extractKeywords(lower, name)
	expanded := c.expandQuery(question, keywords, name)
	hints := c.contextHints(keywords, name)

	metrics.IncIntent(name)
	logger.Debugf("question analysis: intent=%s confidence=%.2f keywords=%v", name, confidence, keywords)

	return schema.QuestionAnalysis{
		Intent:        name,
		Confidence:    confidence,
		Keywords:      keywords,
		ExpandedQuery: expanded,
		ContextHints:  hints,
		Tone:          tone,
	}
}

// classify scores every catalog intent and picks the best. Ties resolve
// to the first-defined intent; a zero best score falls back to the
// general bucket.
func (c *Classifier) classify(lower string) (name, tone string, confidence float64) {
	best := 0.0
	name = GeneralIntent
	tone = GeneralTone

	for i, def := range c.catalog {
		score := 0
		for _, kw := range def.Keywords {
			if strings.Contains(lower, kw) {
				score += c.weights.Keyword
			}
		}
		for _, re := range c.compiled[i] {
			if re.MatchString(lower) {
				score += c.weights.Pattern
			}
		}
		conf := float64(score) / float64(c.weights.Divisor)
		if conf > 1.0 {
			conf = 1.0
		}
		if conf > best {
			best = conf
			name = def.Name
			tone = def.Tone
		}
	}
	return name, tone, best
}

// extractKeywords returns matched intent keywords plus any domain term
// whose canonical form or synonym appears in the question. Order is
// deterministic: catalog keywords first, then synonym tables in
// definition order, deduplicated first-seen.
func (c *Classifier) extractKeywords(lower, intentName string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(kw string) {
		if _, ok := seen[kw]; ok {
			return
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}

	for _, def := range c.catalog {
		if def.Name != intentName {
			continue
		}
		for _, kw := range def.Keywords {
			if strings.Contains(lower, kw) {
				add(kw)
			}
		}
	}
	for _, entry := range c.synonyms {
		if strings.Contains(lower, entry.Term) {
			add(entry.Term)
			continue
		}
		for _, syn := range entry.Synonyms {
			if strings.Contains(lower, strings.ToLower(syn)) {
				add(entry.Term)
				break
			}
		}
	}
	return out
}

// expandQuery appends up to SynonymsPerKeyword synonyms per matched
// keyword and the intent's canned context terms to the original question.
func (c *Classifier) expandQuery(question string, keywords []string, intentName string) string {
	parts := []string{question}
	for _, kw := range keywords {
		syns, ok := c.synonymIndex[kw]
		if !ok || len(syns) == 0 {
			continue
		}
		n := c.SynonymsPerKeyword
		if n > len(syns) {
			n = len(syns)
		}
		parts = append(parts, strings.Join(syns[:n], " "))
	}
	if terms, ok := c.contextTerms[intentName]; ok {
		parts = append(parts, strings.Join(terms, " "))
	}
	return strings.Join(parts, " ")
}

// contextHints unions keyword-triggered hints with intent hints,
// deduplicated in first-seen order.
func (c *Classifier) contextHints(keywords []string, intentName string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(h string) {
		if _, ok := seen[h]; ok {
			return
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}

	kwSet := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kwSet[kw] = struct{}{}
	}
	for _, rule := range c.hintRules {
		for _, trig := range rule.Triggers {
			if _, ok := kwSet[trig]; ok {
				for _, h := range rule.Hints {
					add(h)
				}
				break
			}
		}
	}
	if hints, ok := c.intentHints[intentName]; ok {
		for _, h := range hints {
			add(h)
		}
	}
	return out
}

// SuggestRelated returns up to three canned follow-up questions for the
// intent, or none when the intent has no suggestion list.
func (c *Classifier) SuggestRelated(intentName string) []string {
	s := c.suggestions[intentName]
	if len(s) > 3 {
		s = s[:3]
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
