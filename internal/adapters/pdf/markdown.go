package pdf

import "regexp"

// Markdown-разметка Telegram вычищается до «голого» текста: читателю
// отчёта маркеры форматирования не нужны, а движку рендеринга — вредны.
var markdownRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	// Жирный текст: **text** и __text__.
	{regexp.MustCompile(`(?s)\*\*(.+?)\*\*`), "$1"},
	{regexp.MustCompile(`(?s)__(.+?)__`), "$1"},
	// Курсив: *text* и _text_.
	{regexp.MustCompile(`\*([^*]+?)\*`), "$1"},
	{regexp.MustCompile(`_([^_]+?)_`), "$1"},
	// Зачёркнутый текст: ~~text~~.
	{regexp.MustCompile(`(?s)~~(.+?)~~`), "$1"},
	// Моноширинный текст: ```text``` и `text`.
	{regexp.MustCompile("(?s)```(.+?)```"), "$1"},
	{regexp.MustCompile("`(.+?)`"), "$1"},
	// Ссылки [text](url) — остаётся только text.
	{regexp.MustCompile(`\[(.+?)\]\(.+?\)`), "$1"},
	// Одиночные звёздочки и подчёркивания на краях строк.
	{regexp.MustCompile(`(?m)^\*+\s*`), ""},
	{regexp.MustCompile(`(?m)\s*\*+$`), ""},
	{regexp.MustCompile(`(?m)^_+\s*`), ""},
	{regexp.MustCompile(`(?m)\s*_+$`), ""},
	// Маркеры списков в начале строки.
	{regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`), ""},
}

// CleanMarkdown удаляет markdown-разметку, сохраняя содержимое.
func CleanMarkdown(text string) string {
	for _, rule := range markdownRules {
		text = rule.re.ReplaceAllString(text, rule.repl)
	}
	return text
}
