package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/studyhall/tutor-rag/common/logger"
	"github.com/studyhall/tutor-rag/metrics"
)

// Engine is the rule-based text cleaner. The pipeline order is a hard
// contract: typo correction runs before slang substitution so dictionary
// keys are already in canonical form, and formatting cleanup assumes
// unicode folding has happened.
type Engine struct {
	rules        Rules
	typoRe       []typoPattern
	cleaningRe   []compiledPattern
	stopRe       []*regexp.Regexp
	acronymRe    []acronymPattern
	sentenceRe   *regexp.Regexp
	junkLineRe   *regexp.Regexp
	spaceRe      *regexp.Regexp
	abbrMatchers []abbrMatcher
}

type typoPattern struct {
	re        *regexp.Regexp
	canonical string
}

type compiledPattern struct {
	re      *regexp.Regexp
	replace string
}

type acronymPattern struct {
	re    *regexp.Regexp
	upper string
}

type abbrMatcher struct {
	re        *regexp.Regexp
	expansion string
}

// minLineLength drops residual lines at or below this length during
// formatting cleanup.
const minLineLength = 3

// reductionLogThreshold is the percentage above which a cleaning pass is
// reported.
const reductionLogThreshold = 5.0

// New compiles the rule tables into a cleaning engine.
func New(rules Rules) *Engine {
	e := &Engine{
		rules:      rules,
		sentenceRe: regexp.MustCompile(`[.!?]\s+`),
		junkLineRe: regexp.MustCompile(`^[\d\s\-.,()]+$`),
		spaceRe:    regexp.MustCompile(`[ \t]+`),
	}
	for _, tr := range rules.TypoCorrections {
		for _, typo := range tr.Typos {
			e.typoRe = append(e.typoRe, typoPattern{
				re:        regexp.MustCompile(`(?i)` + regexp.QuoteMeta(typo)),
				canonical: tr.Canonical,
			})
		}
	}
	for _, pr := range rules.CleaningPatterns {
		e.cleaningRe = append(e.cleaningRe, compiledPattern{
			re:      regexp.MustCompile(pr.Pattern),
			replace: pr.Replace,
		})
	}
	for _, phrase := range rules.StopPhrases {
		// Left boundary is captured and restored; the trailing comma and
		// whitespace go with the phrase.
		e.stopRe = append(e.stopRe, regexp.MustCompile(
			`(?i)(^|[^\p{L}\p{N}])`+regexp.QuoteMeta(phrase)+`[,\s]*`))
	}
	for _, a := range rules.Acronyms {
		e.acronymRe = append(e.acronymRe, acronymPattern{
			re:    regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(strings.ToLower(a)) + `\b`),
			upper: a,
		})
	}
	for _, ab := range rules.AbbreviationExpansions {
		e.abbrMatchers = append(e.abbrMatchers, abbrMatcher{
			re:        regexp.MustCompile(`(?i)` + regexp.QuoteMeta(ab.From)),
			expansion: ab.To,
		})
	}
	return e
}

// Clean runs the full pipeline. Empty or whitespace-only input yields "";
// any other input yields text with no leading/trailing whitespace and no
// internal blank lines. Cleaning already-clean text is a fixed point.
func (e *Engine) Clean(text, sourceInfo string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	originalLen := len([]rune(text))

	text = e.normalizeUnicode(text)
	text = e.fixCase(text)
	text = e.fixTypos(text)
	text = e.fixSlang(text)
	text = e.expandAbbreviations(text)
	text = e.cleanFormatting(text)
	text = e.removeStopPhrases(text)
	text = e.finalCleanup(text)

	cleanedLen := len([]rune(text))
	reduction := float64(originalLen-cleanedLen) / float64(originalLen) * 100
	if reduction > reductionLogThreshold {
		logger.Infof("text cleaning (%s): %d -> %d chars (-%.1f%%)", sourceInfo, originalLen, cleanedLen, reduction)
	}
	if reduction >= 0 {
		metrics.ObserveCleaningReduction(reduction)
	}
	return text
}

func (e *Engine) normalizeUnicode(text string) string {
	text = norm.NFC.String(text)
	for _, r := range e.rules.UnicodeReplacements {
		text = strings.ReplaceAll(text, r.From, r.To)
	}
	return text
}

// fixCase capitalizes the first letter of each sentence and restores
// well-known acronyms to upper case.
func (e *Engine) fixCase(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range e.sentenceRe.FindAllStringIndex(text, -1) {
		b.WriteString(upperFirst(text[last:m[0]]))
		b.WriteString(text[m[0]:m[1]])
		last = m[1]
	}
	b.WriteString(upperFirst(text[last:]))
	text = b.String()

	for _, a := range e.acronymRe {
		text = a.re.ReplaceAllString(text, a.upper)
	}
	return text
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// fixTypos replaces known misspellings with canonical forms,
// case-insensitively, preserving the case of the matched word's first
// letter.
func (e *Engine) fixTypos(text string) string {
	for _, tp := range e.typoRe {
		text = tp.re.ReplaceAllStringFunc(text, func(match string) string {
			return matchCase(tp.canonical, match)
		})
	}
	return text
}

// matchCase uppercases the replacement's first letter when the matched
// text started with an upper-case letter. Keeps repeated cleaning passes
// stable across the sentence-case stage.
func matchCase(replacement, matched string) string {
	for _, r := range matched {
		if unicode.IsUpper(r) {
			return upperFirst(replacement)
		}
		break
	}
	return replacement
}

// fixSlang rewrites token-by-token: the token is looked up with
// punctuation stripped, and the whole token is replaced (or dropped for
// deletion entries).
func (e *Engine) fixSlang(text string) string {
	words := strings.Fields(text)
	out := words[:0]
	for _, w := range words {
		key := strings.ToLower(stripNonWord(w))
		if repl, ok := e.rules.SlangCorrections[key]; ok {
			if repl == "" {
				continue
			}
			out = append(out, matchCase(repl, w))
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

func stripNonWord(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// expandAbbreviations replaces each abbreviation wherever it appears as a
// standalone word. Boundaries are checked manually because the matched
// forms contain dots and hyphens.
func (e *Engine) expandAbbreviations(text string) string {
	for _, m := range e.abbrMatchers {
		text = replaceBounded(text, m.re, m.expansion)
	}
	return text
}

// replaceBounded applies re only where the match is not embedded in a
// longer word: the runes adjacent to the match must not be letters or
// digits.
func replaceBounded(text string, re *regexp.Regexp, replacement string) string {
	matches := re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		if m[0] < last || !boundedAt(text, m[0], m[1]) {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(matchCase(replacement, text[m[0]:m[1]]))
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func boundedAt(text string, start, end int) bool {
	if start > 0 {
		r := lastRune(text[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(text) {
		r := firstRuneOf(text[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}

func firstRuneOf(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// cleanFormatting applies the ordered pattern rules, then drops lines
// that are purely numeric/punctuation or too short.
func (e *Engine) cleanFormatting(text string) string {
	for _, p := range e.cleaningRe {
		text = p.re.ReplaceAllString(text, p.replace)
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || e.junkLineRe.MatchString(line) {
			continue
		}
		if len([]rune(line)) > minLineLength {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func (e *Engine) removeStopPhrases(text string) string {
	for _, re := range e.stopRe {
		text = re.ReplaceAllString(text, "$1")
	}
	return text
}

func (e *Engine) finalCleanup(text string) string {
	text = e.spaceRe.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
