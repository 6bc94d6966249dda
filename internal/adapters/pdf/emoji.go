package pdf

import (
	"fmt"
	"strings"

	"github.com/Makhnitskiy-gpt/channel2pdf/internal/domain"
)

// Шрифты wkhtmltopdf не содержат цветных глифов, поэтому составные
// эмодзи заменяются на ближайшие моноширинные эквиваленты, а селекторы
// вариации убираются: с ними поверх глифа остаются артефакты.
var emojiReplacements = []struct{ from, to string }{
	{"❤️", "❤"},
	{"🖤", "♥"},
	{"✌️", "✌"},
	{"☺️", "☺"},
	{"✍️", "✍"},
	{"⚡️", "⚡"},
	{"✅", "✔"},
	{"❗️", "❗"},
	{"‼️", "‼"},
}

const (
	variationSelector15 = "︎"
	variationSelector16 = "️"
	nbsp                = " "
)

// NormalizeEmoji переписывает эмодзи в представление, совместимое со
// шрифтами движка рендеринга. Подстановка не зависит от очистки markdown.
func NormalizeEmoji(text string) string {
	for _, r := range emojiReplacements {
		text = strings.ReplaceAll(text, r.from, r.to)
	}
	text = strings.ReplaceAll(text, variationSelector15, "")
	text = strings.ReplaceAll(text, variationSelector16, "")
	return text
}

// Normalize готовит текст к встраиванию в разметку: сначала очистка
// markdown, затем подстановка эмодзи. Экранирование HTML выполняет
// шаблон документа последним шагом; порядок этапов менять нельзя.
func Normalize(text string) string {
	return NormalizeEmoji(CleanMarkdown(text))
}

// FormatReactions собирает строку реакций «эмодзи количество», связывая
// пары неразрывными пробелами, чтобы рендер не разрывал их при переносе.
func FormatReactions(reactions []domain.Reaction) string {
	parts := make([]string, 0, len(reactions))
	for _, r := range reactions {
		parts = append(parts, fmt.Sprintf("%s%s%d", NormalizeEmoji(r.Emoji), nbsp, r.Count))
	}
	return strings.Join(parts, nbsp+nbsp)
}
