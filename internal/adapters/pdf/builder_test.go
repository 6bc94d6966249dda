package pdf

import (
	"strings"
	"testing"
	"time"

	"github.com/Makhnitskiy-gpt/channel2pdf/internal/domain"
)

func TestRenderHTMLTitleAndBlocks(t *testing.T) {
	posts := []domain.Post{
		{Date: day(0), Text: "первый пост"},
		{Date: day(1), Text: "второй пост"},
		{Date: day(2), Text: "третий пост"},
	}

	html, err := RenderHTML(posts, "@tech_channel")
	if err != nil {
		t.Fatalf("неожиданная ошибка рендеринга: %v", err)
	}

	if !strings.Contains(html, "<h1>Посты из канала @tech_channel</h1>") {
		t.Fatalf("в заголовке нет имени канала:\n%s", html)
	}
	if got := strings.Count(html, `<div class="post">`); got != 3 {
		t.Fatalf("ожидали 3 блока постов, получили %d", got)
	}
	if got := strings.Count(html, `<div class="separator">`); got != 2 {
		t.Fatalf("разделителей должно быть на один меньше, чем постов, получили %d", got)
	}
}

func TestRenderHTMLViewsAndReactions(t *testing.T) {
	views := 1543
	posts := []domain.Post{
		{
			Date:  day(0),
			Text:  "пост с метриками",
			Views: &views,
			Reactions: []domain.Reaction{
				{Emoji: "👍", Count: 12},
			},
		},
		{Date: day(1), Text: "пост без метрик"},
	}

	html, err := RenderHTML(posts, "метрики")
	if err != nil {
		t.Fatalf("неожиданная ошибка рендеринга: %v", err)
	}

	if !strings.Contains(html, "Просмотры: 1543") {
		t.Fatalf("просмотры должны печататься числом:\n%s", html)
	}
	if !strings.Contains(html, "👍"+nbsp+"12") {
		t.Fatalf("реакции должны попадать в шапку поста:\n%s", html)
	}
	if got := strings.Count(html, "Просмотры:"); got != 1 {
		t.Fatalf("блок просмотров печатается только при их наличии, вхождений %d", got)
	}
	if got := strings.Count(html, `class="post-reactions"`); got != 1 {
		t.Fatalf("блок реакций печатается только при их наличии, вхождений %d", got)
	}
}

func TestRenderHTMLEscapesText(t *testing.T) {
	posts := []domain.Post{
		{Date: day(0), Text: `<script>alert("x")</script> и 5 < 7`},
	}

	html, err := RenderHTML(posts, "канал")
	if err != nil {
		t.Fatalf("неожиданная ошибка рендеринга: %v", err)
	}

	if strings.Contains(html, "<script>alert") {
		t.Fatalf("текст поста должен экранироваться:\n%s", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Fatalf("ожидали экранированные угловые скобки:\n%s", html)
	}
}

func TestRenderHTMLNormalizesMarkdown(t *testing.T) {
	posts := []domain.Post{
		{Date: day(0), Text: "это **важно** знать"},
	}

	html, err := RenderHTML(posts, "канал")
	if err != nil {
		t.Fatalf("неожиданная ошибка рендеринга: %v", err)
	}

	if strings.Contains(html, "**") {
		t.Fatalf("markdown-разметка должна удаляться до вставки в шаблон:\n%s", html)
	}
	if !strings.Contains(html, "это важно знать") {
		t.Fatalf("текст без разметки должен сохраниться:\n%s", html)
	}
}

func day(offset int) time.Time {
	return time.Date(2024, 1, 1+offset, 0, 0, 0, 0, time.UTC)
}
