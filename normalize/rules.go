package normalize

// Rules bundles the immutable rule tables driving the cleaner. Tables are
// supplied at construction so tests can swap a smaller set.
type Rules struct {
	// TypoCorrections maps canonical forms to known misspellings.
	TypoCorrections []TypoRule
	// SlangCorrections maps informal tokens to canonical replacements.
	// An empty replacement deletes the token.
	SlangCorrections map[string]string
	// AbbreviationExpansions is applied with word-boundary matching, in
	// order, so longer forms must precede their prefixes.
	AbbreviationExpansions []Replacement
	// UnicodeReplacements folds homoglyphs and typographic symbols after
	// NFC canonicalization.
	UnicodeReplacements []Replacement
	// CleaningPatterns is an ordered list of formatting fixes. Order is a
	// contract: later patterns assume the output of earlier ones.
	CleaningPatterns []PatternRule
	// StopPhrases are removed near clause boundaries.
	StopPhrases []string
	// Acronyms are forced to upper case during case repair.
	Acronyms []string
}

// TypoRule maps one canonical term to its known misspellings.
type TypoRule struct {
	Canonical string
	Typos     []string
}

// Replacement is one literal from/to substitution.
type Replacement struct {
	From string
	To   string
}

// PatternRule is one regex substitution of the formatting cleanup stage.
type PatternRule struct {
	Pattern string
	Replace string
}

// DefaultRules returns the production rule set for the nutrition-school
// corpus.
func DefaultRules() Rules {
	return Rules{
		TypoCorrections: []TypoRule{
			{"тейпирование", []string{"тейпированее", "тейпирванье", "тейпированиее", "тэйпирование"}},
			{"кинезиотейпинг", []string{"кинезиотейпинк", "кинезиотэйпинг", "кинезиотепинг"}},
			{"нутрициология", []string{"нутрициалогия", "нутрицеология", "нутрециология"}},
			{"витамины", []string{"витаминны", "витамыны", "вытамины"}},
			{"белки", []string{"бельки", "белкки"}},
			{"углеводы", []string{"углеводды", "углевоны", "угливоды"}},
			{"калории", []string{"каллории", "колории", "каллорий"}},
			{"диета", []string{"диэта", "диетта"}},
			{"куратор", []string{"куротор", "кураттор", "куратар"}},
			{"экзамен", []string{"экзаммен", "экзамеен", "экзамне"}},
			{"сертификат", []string{"сертефикат", "сертификатт", "сертифекат"}},
			{"расписание", []string{"росписание", "расписанее", "распесание"}},
			{"рецепт", []string{"рецеппт", "рецепр"}},
			{"ингредиенты", []string{"ингридиенты", "инградиенты", "ингредеенты"}},
			{"приготовление", []string{"преготовление", "приготовленее", "приготовлениее"}},
			{"майонез", []string{"майонэз", "майонейз", "маенез"}},
			{"помогает", []string{"помагает", "помогаеть", "помагаеть"}},
			{"полезно", []string{"полеззно", "полезнно"}},
			{"можно", []string{"можжно", "мошно", "можео"}},
			{"нужно", []string{"нужжно", "нужнно", "нужео"}},
			{"когда", []string{"када", "кагда", "когдда"}},
			{"сколько", []string{"скольько", "сколка", "сколко"}},
		},
		SlangCorrections: map[string]string{
			"норм":   "нормально",
			"кул":    "круто",
			"супер":  "отлично",
			"ок":     "хорошо",
			"окей":   "хорошо",
			"спс":    "спасибо",
			"пжлст":  "пожалуйста",
			"плз":    "пожалуйста",
			"инфа":   "информация",
			"инфо":   "информация",
			"проф":   "профессиональный",
			"макс":   "максимальный",
			"мин":    "минимальный",
			"комп":   "компьютер",
			"чел":    "человек",
			"челы":   "люди",
			"мб":     "может быть",
			"хз":     "не знаю",
			"лол":    "",
			"кек":    "",
			"топ":    "отличный",
			"фигня":  "неважно",
			"крутяк": "отлично",
		},
		AbbreviationExpansions: []Replacement{
			{"и т.д.", "и так далее"},
			{"и т.п.", "и тому подобное"},
			{"т.д.", "так далее"},
			{"т.п.", "тому подобное"},
			{"др.", "другие"},
			{"см.", "смотрите"},
			{"стр.", "страница"},
			{"гл.", "глава"},
			{"разд.", "раздел"},
			{"пп.", "пункты"},
			{"п.", "пункт"},
			{"н-р", "например"},
			{"напр.", "например"},
			{"ч.л.", "чайная ложка"},
			{"ст.л.", "столовая ложка"},
			{"ккал", "килокалории"},
			{"мг", "миллиграмм"},
			{"кг", "килограмм"},
			{"мл", "миллилитр"},
			{"шт", "штук"},
			{"уп.", "упаковка"},
			{"г", "грамм"},
			{"л", "литр"},
		},
		UnicodeReplacements: []Replacement{
			{"ё", "е"},
			{"Ё", "Е"},
			{"№", "номер"},
			{"§", "параграф"},
			{"©", ""},
			{"®", ""},
			{"™", ""},
			{"“", `"`}, {"”", `"`}, {"„", `"`},
			{"‘", "'"}, {"’", "'"}, {"‚", "'"},
			{"–", "-"}, {"—", "-"}, {"−", "-"},
			{"×", "x"}, {"÷", "/"}, {"±", "+/-"},
		},
		CleaningPatterns: []PatternRule{
			{`\s+`, " "},
			{`\s+([,.!?;:])`, "$1"},
			{`([,.!?;:])([\p{L}\p{N}])`, "$1 $2"},
			{`[.]{2,}`, "."},
			{`[!]{2,}`, "!"},
			{`[?]{2,}`, "?"},
			{`[^\p{L}\p{N}_\s\-.,!?;:()\[\]/%°]`, ""},
			{`[-]+`, "-"},
			{`\(\s*\)`, ""},
			{`\[\s*\]`, ""},
		},
		StopPhrases: []string{
			"как известно", "всем известно", "очевидно", "понятно",
			"итак", "таким образом", "следовательно", "в общем",
			"вообще говоря", "кстати", "между прочим", "например",
			"скажем", "допустим", "предположим", "возможно",
		},
		Acronyms: []string{"PDF", "HTML", "URL", "API", "FAQ", "VIP", "CEO", "IT"},
	}
}
