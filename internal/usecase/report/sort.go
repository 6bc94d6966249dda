package report

import (
	"sort"

	"github.com/Makhnitskiy-gpt/channel2pdf/internal/domain"
)

// SortPosts возвращает новый срез, отсортированный по ключу. Сортировка
// стабильная: при равных ключах исходный порядок сохраняется в обоих
// направлениях, инвертируется только сравнение ключей.
func SortPosts(posts []domain.Post, key domain.SortKey, ascending bool) ([]domain.Post, error) {
	var less func(a, b domain.Post) bool
	switch key {
	case domain.SortByDate:
		less = func(a, b domain.Post) bool { return a.Date.Before(b.Date) }
	case domain.SortByReactions:
		less = func(a, b domain.Post) bool { return a.ReactionsTotal() < b.ReactionsTotal() }
	case domain.SortByViews:
		less = func(a, b domain.Post) bool { return a.ViewsOrZero() < b.ViewsOrZero() }
	default:
		return nil, domain.NewError(domain.ErrInvalidParameter, "неизвестный тип сортировки: %s", key)
	}

	sorted := append([]domain.Post(nil), posts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return less(sorted[i], sorted[j])
		}
		return less(sorted[j], sorted[i])
	})
	return sorted, nil
}
