// Package demo генерирует фиксированный набор тестовых постов для
// окружений без учётных данных Telegram.
package demo

import (
	"context"
	"time"

	"github.com/Makhnitskiy-gpt/channel2pdf/internal/domain"
)

// Source реализует domain.PostSource на тестовых данных.
type Source struct{}

// NewSource создаёт демо-источник.
func NewSource() *Source {
	return &Source{}
}

var _ domain.PostSource = (*Source)(nil)

// FetchPosts возвращает до семи детерминированных постов, распределённых
// по окну дат. Канал игнорируется, ошибок не бывает.
func (s *Source) FetchPosts(_ context.Context, _ string, from, to time.Time) ([]domain.Post, error) {
	return Posts(from, to), nil
}

// Posts — чистая функция окна: k-й пост смещён от from на
// min(k, дней в окне) и затем отфильтрован по [from, to].
func Posts(from, to time.Time) []domain.Post {
	daysRange := int(to.Sub(from).Hours() / 24)
	if daysRange < 0 {
		daysRange = 0
	}

	offset := func(k int) time.Time {
		if k > daysRange {
			k = daysRange
		}
		return from.AddDate(0, 0, k)
	}

	catalog := []domain.Post{
		{
			Date:  offset(0),
			Text:  "Первый демо-пост! Короткий текст с реакциями и просмотрами.",
			Views: views(1543),
			Reactions: []domain.Reaction{
				{Emoji: "❤️", Count: 120},
				{Emoji: "👍", Count: 85},
				{Emoji: "🔥", Count: 42},
			},
		},
		{
			Date: offset(1),
			Text: "Это второй демо-пост с более длинным текстом.\n\n" +
				"Здесь несколько абзацев, чтобы продемонстрировать, как генератор документов обрабатывает многострочный контент.\n\n" +
				"В этом посте также есть реакции и просмотры. Это помогает протестировать форматирование шапки поста.\n\n" +
				"Третий абзац добавлен для полноты картины.",
			Views: views(2847),
			Reactions: []domain.Reaction{
				{Emoji: "😂", Count: 230},
				{Emoji: "❤️", Count: 156},
				{Emoji: "🎉", Count: 94},
			},
		},
		{
			Date:  offset(2),
			Text:  "Третий пост — без реакций, но с просмотрами. Проверяем, что блок реакций не отображается.",
			Views: views(987),
		},
		{
			Date: offset(3),
			Text: "Четвёртый пост: есть реакции, но нет просмотров. Проверяем корректность отображения.",
			Reactions: []domain.Reaction{
				{Emoji: "👏", Count: 67},
				{Emoji: "💯", Count: 45},
			},
		},
		{
			Date: offset(4),
			Text: "Пятый пост — минималистичный. Ни реакций, ни просмотров. Только дата и текст.",
		},
		{
			Date: offset(5),
			Text: "Шестой пост с огромным количеством реакций!\n\n" +
				"Этот пост особенно популярен по реакциям, но просмотров у него немного.\n\n" +
				"Используется для тестирования сортировки по реакциям.",
			Views: views(543),
			Reactions: []domain.Reaction{
				{Emoji: "🔥", Count: 890},
				{Emoji: "❤️", Count: 723},
				{Emoji: "😍", Count: 612},
			},
		},
		{
			Date: offset(6),
			Text: "Седьмой пост — самый длинный из всех!\n\n" +
				"Этот текст специально создан для проверки того, как генератор документов справляется с большими объёмами текста.\n\n" +
				"Абзац первый: здесь мы говорим о важности тестирования различных граничных случаев при разработке программного обеспечения.\n\n" +
				"Абзац второй: особенно важно проверять, как система обрабатывает граничные случаи — например, очень длинные тексты, отсутствие данных или необычные комбинации параметров.\n\n" +
				"Абзац третий: в данном случае мы тестируем генератор, который должен корректно отображать длинный многострочный текст с сохранением всех переносов строк.\n\n" +
				"Абзац четвёртый: также важно убедиться, что шапка поста (дата, реакции, просмотры) корректно отображается даже для длинных постов.\n\n" +
				"Финальный абзац: если вы видите этот текст в документе с правильным форматированием — всё работает отлично!",
			Views: views(1876),
			Reactions: []domain.Reaction{
				{Emoji: "📚", Count: 234},
				{Emoji: "👍", Count: 187},
				{Emoji: "🤔", Count: 156},
			},
		},
	}

	filtered := make([]domain.Post, 0, len(catalog))
	for _, post := range catalog {
		if post.Date.Before(from) || post.Date.After(to) {
			continue
		}
		filtered = append(filtered, post)
	}
	return filtered
}

func views(n int) *int {
	return &n
}
