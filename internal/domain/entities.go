package domain

import "time"

// Reaction описывает пару «эмодзи + количество» у поста.
type Reaction struct {
	Emoji string
	Count int
}

// Post представляет сообщение канала, отобранное для отчёта.
type Post struct {
	// Date — календарная дата публикации (время суток не учитывается).
	Date time.Time
	// Text — текст поста; посты без текста отбрасываются при выгрузке.
	Text string
	// Views — количество просмотров; nil означает «данные недоступны».
	Views *int
	// Reactions — максимум три самые популярные реакции.
	Reactions []Reaction
}

// ReactionsTotal возвращает суммарное количество реакций поста.
func (p Post) ReactionsTotal() int {
	total := 0
	for _, r := range p.Reactions {
		total += r.Count
	}
	return total
}

// ViewsOrZero трактует отсутствующие просмотры как ноль.
func (p Post) ViewsOrZero() int {
	if p.Views == nil {
		return 0
	}
	return *p.Views
}

// SortKey — критерий сортировки постов в отчёте.
type SortKey string

const (
	SortByDate      SortKey = "date"
	SortByReactions SortKey = "reactions"
	SortByViews     SortKey = "views"
)

// Valid сообщает, входит ли ключ в известный набор.
func (k SortKey) Valid() bool {
	switch k {
	case SortByDate, SortByReactions, SortByViews:
		return true
	}
	return false
}

// ReportRequest — параметры одной генерации отчёта.
type ReportRequest struct {
	// Channel — username канала (с @ или без) либо ссылка t.me.
	Channel   string
	DateFrom  time.Time
	DateTo    time.Time
	Sort      SortKey
	Ascending bool
	// Filename — имя итогового файла; пустое значение означает
	// автоматическое имя вида {канал}_{от}_{до}.pdf.
	Filename string
}
