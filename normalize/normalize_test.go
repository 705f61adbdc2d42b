package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanEmptyInput(t *testing.T) {
	e := New(DefaultRules())
	assert.Equal(t, "", e.Clean("", "test"))
	assert.Equal(t, "", e.Clean("   \n\t  ", "test"))
}

func TestCleanTypoScenario(t *testing.T) {
	e := New(DefaultRules())
	got := e.Clean("тейпированее помагает???", "test")

	assert.Contains(t, strings.ToLower(got), "тейпирование")
	assert.Contains(t, strings.ToLower(got), "помогает")
	assert.True(t, strings.HasSuffix(got, "?"), "expected single terminal question mark, got %q", got)
	assert.False(t, strings.Contains(got, "??"))
	assert.False(t, strings.Contains(got, "  "))
	assert.Equal(t, strings.TrimSpace(got), got)
}

func TestCleanFixedPoint(t *testing.T) {
	e := New(DefaultRules())
	inputs := []string{
		"тейпированее помагает???",
		"Белки и углеводы важны для здоровья.  Витамины тоже нужны!",
		"Норм рецепт, спс за инфу",
		"Вес продукта 5 кг, объем 2 л.",
	}
	for _, in := range inputs {
		once := e.Clean(in, "test")
		twice := e.Clean(once, "test")
		assert.Equal(t, once, twice, "cleaning is not a fixed point for %q", in)
	}
}

func TestCleanUnicodeFolding(t *testing.T) {
	e := New(DefaultRules())

	got := e.Clean("Пищевая ценность определяется по ГОСТ, см. параграф ниже: всё о белках", "test")
	assert.NotContains(t, got, "ё")

	got = e.Clean("Документ номер 5 — про белки и жиры", "test")
	assert.NotContains(t, got, "—")
}

func TestCleanSlang(t *testing.T) {
	e := New(DefaultRules())

	got := e.Clean("норм материал про витамины лол", "test")
	lower := strings.ToLower(got)
	assert.Contains(t, lower, "нормально")
	assert.NotContains(t, lower, "лол")
	assert.NotContains(t, lower, "норм материал")
}

func TestCleanAbbreviations(t *testing.T) {
	e := New(DefaultRules())

	got := strings.ToLower(e.Clean("Добавьте 5 кг сахара и 2 л воды", "test"))
	assert.Contains(t, got, "килограмм")
	assert.Contains(t, got, "литр")

	// Embedded letters must not be treated as abbreviations.
	got = strings.ToLower(e.Clean("Логика приготовления остается прежней", "test"))
	assert.NotContains(t, got, "литрогика")
	assert.Contains(t, got, "логика")
}

func TestCleanStopPhrases(t *testing.T) {
	e := New(DefaultRules())

	got := strings.ToLower(e.Clean("Таким образом, белки являются строительным материалом для мышц", "test"))
	assert.NotContains(t, got, "таким образом")
	assert.Contains(t, got, "белки")
}

func TestCleanSentenceCase(t *testing.T) {
	e := New(DefaultRules())

	got := e.Clean("белки важны. они строят мышцы.", "test")
	assert.True(t, strings.HasPrefix(got, "Белки"), "got %q", got)
	assert.Contains(t, got, "Они")
}

func TestCleanNoBlankLines(t *testing.T) {
	e := New(DefaultRules())

	got := e.Clean("Первая строка про белки\n\n\n   \nВторая строка про жиры", "test")
	require.NotEmpty(t, got)
	assert.NotContains(t, got, "\n\n")
	assert.Equal(t, strings.TrimSpace(got), got)
}

func TestCleanCustomRules(t *testing.T) {
	rules := Rules{
		TypoCorrections: []TypoRule{{Canonical: "protein", Typos: []string{"protien"}}},
		SlangCorrections: map[string]string{
			"thx": "thanks",
		},
		CleaningPatterns: []PatternRule{{`\s+`, " "}},
	}
	e := New(rules)

	got := e.Clean("protien shake thx", "test")
	assert.Equal(t, "Protein shake thanks", got)
}
