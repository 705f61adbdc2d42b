package intent

// Definition declares one intent of the catalog: its trigger keywords,
// regex patterns and the tone used when composing the answer. Catalog
// order matters: equal scores resolve to the first-defined intent.
type Definition struct {
	Name     string
	Keywords []string
	Patterns []string
	Tone     string
}

// GeneralIntent is the fallback bucket when no intent scores above zero.
const GeneralIntent = "general_question"

// GeneralTone is the tone of the fallback bucket.
const GeneralTone = "neutral_helpful"

// SynonymEntry maps a canonical domain term to related phrasings. A term
// counts as present when the term itself or any synonym is a substring
// of the lowercased question.
type SynonymEntry struct {
	Term     string
	Synonyms []string
}

// HintRule maps trigger keywords to canned search hints.
type HintRule struct {
	Triggers []string
	Hints    []string
}

// DefaultCatalog returns the production intent catalog.
func DefaultCatalog() []Definition {
	return []Definition{
		{
			Name:     "medical_question",
			Keywords: []string{"боль", "болит", "симптом", "лечение", "тейп", "массаж", "помогает", "можно ли", "противопоказания"},
			Patterns: []string{`болит`, `помогает ли`, `можно ли`, `лечить`, `тейп`, `противопоказан`},
			Tone:     "medical_professional",
		},
		{
			Name:     "organizational_question",
			Keywords: []string{"куратор", "экзамен", "сертификат", "обучение", "расписание", "когда", "где", "как получить"},
			Patterns: []string{`когда.*экзамен`, `как.*связаться`, `где.*расписание`, `сколько.*длится`},
			Tone:     "helpful_administrative",
		},
		{
			Name:     "recipe_question",
			Keywords: []string{"рецепт", "как готовить", "ингредиенты", "приготовить", "блюдо", "меню"},
			Patterns: []string{`рецепт`, `как.*готовить`, `приготовить`, `ингредиенты`},
			Tone:     "friendly_cooking",
		},
		{
			Name:     "product_question",
			Keywords: []string{"продукт", "полезно", "вредно", "калории", "состав", "можно есть"},
			Patterns: []string{`полезн`, `вредн`, `калори`, `можно.*есть`, `состав`},
			Tone:     "nutritional_expert",
		},
		{
			Name:     "greeting",
			Keywords: []string{"привет", "здравствуй", "добро", "спасибо", "благодарю"},
			Patterns: []string{`привет`, `здравствуй`, `добр`, `спасибо`, `благодар`},
			Tone:     "friendly_greeting",
		},
	}
}

// DefaultSynonyms returns the domain synonym dictionaries in lookup
// order: medical, organizational, culinary.
func DefaultSynonyms() []SynonymEntry {
	return []SynonymEntry{
		// Medical
		{"боль", []string{"болит", "болезненно", "неприятные ощущения", "дискомфорт", "ноет", "колет", "тянет"}},
		{"позвоночник", []string{"спина", "позвоночный столб", "хребет", "поясница", "грудной отдел", "шейный отдел"}},
		{"суставы", []string{"сочленения", "колени", "локти", "плечи", "тазобедренные", "голеностоп"}},
		{"головная боль", []string{"мигрень", "цефалгия", "головные боли", "боли в голове", "тяжесть в голове"}},
		{"тошнота", []string{"подташнивает", "рвотные позывы", "тошнит", "мутит", "дурнота"}},
		{"тейпирование", []string{"кинезиотейпинг", "тейпы", "пластыри", "кинезио тейп", "терапевтические пластыри"}},
		{"массаж", []string{"растирание", "разминание", "мануальная терапия", "лечебный массаж"}},
		{"упражнения", []string{"гимнастика", "ЛФК", "лечебная физкультура", "зарядка", "тренировки"}},
		{"диета", []string{"рацион", "питание", "меню", "режим питания"}},
		{"витамины", []string{"микроэлементы", "добавки", "БАДы", "нутриенты", "минералы"}},
		{"белки", []string{"протеины", "аминокислоты", "белковая пища"}},
		{"углеводы", []string{"сахара", "крахмал", "глюкоза", "энергия"}},
		{"жиры", []string{"липиды", "масла", "омега", "жирные кислоты"}},
		// Organizational
		{"куратор", []string{"преподаватель", "наставник", "тьютор", "учитель", "инструктор"}},
		{"обучение", []string{"курс", "программа", "занятия", "уроки", "лекции"}},
		{"экзамен", []string{"зачет", "тест", "проверка знаний", "аттестация", "контроль"}},
		{"сертификат", []string{"диплом", "удостоверение", "документ об образовании"}},
		{"расписание", []string{"график", "время занятий", "план", "календарь"}},
		{"задание", []string{"домашнее задание", "упражнение", "практика", "работа"}},
		// Culinary
		{"рецепт", []string{"способ приготовления", "инструкция", "как готовить", "как сделать"}},
		{"ингредиенты", []string{"продукты", "составляющие", "компоненты"}},
		{"приготовление", []string{"готовка", "варка", "жарка", "тушение", "запекание"}},
		{"специи", []string{"приправы", "пряности", "травы", "зелень"}},
		{"соус", []string{"заправка", "подлива", "дрессинг", "майонез"}},
	}
}

// DefaultContextTerms returns canned expansion terms per intent.
func DefaultContextTerms() map[string][]string {
	return map[string][]string{
		"medical_question":        {"лечение", "терапия", "показания", "эффективность"},
		"organizational_question": {"информация", "правила", "процедура", "требования"},
		"recipe_question":         {"приготовление", "кулинария", "способ", "метод"},
		"product_question":        {"свойства", "польза", "применение", "рекомендации"},
	}
}

// DefaultHintRules returns keyword-triggered search hints.
func DefaultHintRules() []HintRule {
	return []HintRule{
		{[]string{"боль", "болит"}, []string{"болевой синдром", "обезболивание", "анальгезия"}},
		{[]string{"тейпирование", "тейп"}, []string{"кинезиотейпинг", "терапевтическое тейпирование", "реабилитация"}},
		{[]string{"куратор", "преподаватель"}, []string{"связь с куратором", "контакты", "обращение к преподавателю"}},
		{[]string{"рецепт", "приготовление"}, []string{"кулинарный рецепт", "способ приготовления", "инструкция"}},
	}
}

// DefaultIntentHints returns canned search hints per intent.
func DefaultIntentHints() map[string][]string {
	return map[string][]string{
		"medical_question":        {"медицинские показания", "терапевтическое применение", "клинические рекомендации"},
		"organizational_question": {"учебный процесс", "административные вопросы", "регламент"},
		"recipe_question":         {"кулинарные рецепты", "приготовление пищи", "пищевые технологии"},
		"product_question":        {"пищевые продукты", "нутриентный состав", "диетические рекомендации"},
	}
}

// DefaultSuggestions returns follow-up questions offered when
// classification confidence is low.
func DefaultSuggestions() map[string][]string {
	return map[string][]string{
		"medical_question": {
			"Какие есть противопоказания к этому методу?",
			"Как долго применять это лечение?",
			"Есть ли побочные эффекты?",
		},
		"organizational_question": {
			"Где найти подробную информацию об этом?",
			"К кому обратиться за помощью?",
			"Какие документы нужны?",
		},
		"recipe_question": {
			"Какие есть альтернативные ингредиенты?",
			"Сколько времени займет приготовление?",
			"Можно ли изменить рецепт?",
		},
	}
}
