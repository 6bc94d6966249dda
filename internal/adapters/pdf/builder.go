package pdf

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/rs/zerolog"

	"github.com/Makhnitskiy-gpt/channel2pdf/internal/domain"
)

// Builder собирает HTML-разметку отчёта и отдаёт её движку wkhtmltopdf.
type Builder struct {
	log zerolog.Logger
}

// NewBuilder создаёт сборщик документов.
func NewBuilder(log zerolog.Logger) *Builder {
	return &Builder{log: log}
}

var _ domain.DocumentBuilder = (*Builder)(nil)

// Build рендерит посты в PDF по пути outputPath и возвращает
// абсолютный путь к файлу. Посты приходят уже отсортированными.
func (b *Builder) Build(ctx context.Context, posts []domain.Post, channelLabel, outputPath string) (string, error) {
	html, err := RenderHTML(posts, channelLabel)
	if err != nil {
		return "", fmt.Errorf("сборка разметки: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return "", fmt.Errorf("инициализация wkhtmltopdf: %w", err)
	}
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.MarginTop.Set(20)
	pdfg.MarginBottom.Set(20)
	pdfg.MarginLeft.Set(20)
	pdfg.MarginRight.Set(20)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	page.Encoding.Set("utf-8")
	pdfg.AddPage(page)

	if err := pdfg.CreateContext(ctx); err != nil {
		return "", fmt.Errorf("рендеринг PDF: %w", err)
	}
	if err := pdfg.WriteFile(outputPath); err != nil {
		return "", fmt.Errorf("запись файла %s: %w", outputPath, err)
	}

	abs, err := filepath.Abs(outputPath)
	if err != nil {
		abs = outputPath
	}
	b.log.Debug().Str("path", abs).Int("posts", len(posts)).Msg("pdf: документ собран")
	return abs, nil
}

type postView struct {
	Date      string
	Reactions string
	Views     *int
	Text      string
	Last      bool
}

type documentView struct {
	Channel string
	Posts   []postView
}

// RenderHTML строит разметку документа: заголовок с каналом и блок на
// каждый пост. Тексты проходят Normalize, экранирование выполняет шаблон.
func RenderHTML(posts []domain.Post, channelLabel string) (string, error) {
	view := documentView{
		Channel: Normalize(channelLabel),
		Posts:   make([]postView, 0, len(posts)),
	}
	for i, post := range posts {
		view.Posts = append(view.Posts, postView{
			Date:      post.Date.Format("02.01.2006"),
			Reactions: FormatReactions(post.Reactions),
			Views:     post.Views,
			Text:      Normalize(post.Text),
			Last:      i == len(posts)-1,
		})
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
body {
	font-family: 'DejaVu Sans', 'Noto Sans', sans-serif;
	font-size: 12pt;
	line-height: 1.6;
	color: #333;
}
h1 {
	font-size: 18pt;
	font-weight: 600;
	color: #000;
	margin-bottom: 1.5em;
	padding-bottom: 0.5em;
	border-bottom: 2px solid #e0e0e0;
}
.post {
	margin-bottom: 2em;
	page-break-inside: avoid;
}
.post-header {
	font-size: 11pt;
	color: #666;
	margin-bottom: 0.5em;
	font-weight: 500;
}
.post-date {
	color: #0066cc;
	font-weight: 600;
}
.post-text {
	white-space: pre-wrap;
	word-wrap: break-word;
}
.separator {
	border-bottom: 1px solid #e0e0e0;
	margin: 1.5em 0;
}
</style>
</head>
<body>
<h1>Посты из канала {{.Channel}}</h1>
{{range .Posts}}<div class="post">
<div class="post-header"><span class="post-date">[{{.Date}}]</span>{{if .Reactions}} / <span class="post-reactions">{{.Reactions}}</span>{{end}}{{if .Views}} / <span class="post-views">Просмотры: {{.Views}}</span>{{end}}</div>
<div class="post-text">{{.Text}}</div>
</div>
{{if not .Last}}<div class="separator"></div>
{{end}}{{end}}</body>
</html>
`))
