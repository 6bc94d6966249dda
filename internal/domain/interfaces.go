package domain

import (
	"context"
	"time"
)

// PostSource отдаёт посты канала за период. Живая реализация обязана
// открывать и гарантированно закрывать соединение в рамках одного вызова.
type PostSource interface {
	FetchPosts(ctx context.Context, channel string, from, to time.Time) ([]Post, error)
}

// DocumentBuilder собирает итоговый документ из отсортированных постов
// и возвращает путь к файлу.
type DocumentBuilder interface {
	Build(ctx context.Context, posts []Post, channelLabel, outputPath string) (string, error)
}
