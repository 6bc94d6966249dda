// Package mtproto выгружает посты каналов через MTProto-клиент gotd.
package mtproto

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"

	"github.com/Makhnitskiy-gpt/channel2pdf/internal/domain"
)

const (
	historyPageSize = 100
	maxReactions    = 3
	// customEmojiFallback подставляется вместо кастомных эмодзи,
	// у которых нет обычного эмотикона.
	customEmojiFallback = "👍"
)

// Fetcher реализует domain.PostSource поверх gotd. Клиент создаётся на
// каждый вызов: соединение живёт ровно в рамках client.Run и
// освобождается на любом пути выхода.
type Fetcher struct {
	apiID       int
	apiHash     string
	sessionFile string
	log         zerolog.Logger
}

// NewFetcher создаёт источник постов.
func NewFetcher(apiID int, apiHash, sessionFile string, log zerolog.Logger) *Fetcher {
	return &Fetcher{apiID: apiID, apiHash: apiHash, sessionFile: sessionFile, log: log}
}

var _ domain.PostSource = (*Fetcher)(nil)

// FetchPosts возвращает посты канала, опубликованные в [from, to].
func (f *Fetcher) FetchPosts(ctx context.Context, channel string, from, to time.Time) ([]domain.Post, error) {
	alias := ParseChannel(channel)
	if alias == "" {
		return nil, domain.NewError(domain.ErrInvalidParameter, "не удалось разобрать идентификатор канала %q", channel)
	}

	client := telegram.NewClient(f.apiID, f.apiHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: f.sessionFile},
	})

	var posts []domain.Post
	err := client.Run(ctx, func(ctx context.Context) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return domain.WrapError(domain.ErrSourceUnavailable, err, "не удалось проверить авторизацию")
		}
		if !status.Authorized {
			return domain.NewError(domain.ErrSourceUnavailable, "сессия Telegram не авторизована, выполните cmd/session")
		}

		api := client.API()
		peer, err := resolveChannel(ctx, api, channel, alias)
		if err != nil {
			return err
		}

		posts, err = f.collectHistory(ctx, api, peer, from, to)
		return err
	})
	if err != nil {
		if domain.KindOf(err) != domain.ErrUnknown {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrSourceUnavailable, err, "не удалось подключиться к Telegram")
	}
	return posts, nil
}

func resolveChannel(ctx context.Context, api *tg.Client, input, alias string) (*tg.InputPeerChannel, error) {
	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: alias})
	switch {
	case tgerr.Is(err, "USERNAME_NOT_OCCUPIED", "USERNAME_INVALID"):
		return nil, domain.WrapError(domain.ErrChannelUnavailable, err, "канал %q не найден, проверьте правильность username", input)
	case tgerr.Is(err, "CHANNEL_PRIVATE"):
		return nil, domain.WrapError(domain.ErrChannelUnavailable, err, "канал %q является приватным или недоступным", input)
	case err != nil:
		return nil, domain.WrapError(domain.ErrChannelUnavailable, err, "не удалось получить доступ к каналу %q", input)
	}

	for _, chat := range resolved.Chats {
		if ch, ok := chat.(*tg.Channel); ok {
			return &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}, nil
		}
	}
	return nil, domain.NewError(domain.ErrChannelUnavailable, "%q не является каналом", input)
}

// collectHistory листает историю от верхней границы окна вниз и
// останавливается, как только дата поста уходит ниже нижней границы:
// источник отдаёт сообщения в невозрастающем хронологическом порядке.
func (f *Fetcher) collectHistory(ctx context.Context, api *tg.Client, peer *tg.InputPeerChannel, from, to time.Time) ([]domain.Post, error) {
	lower := from
	upperExcl := to.AddDate(0, 0, 1)

	var posts []domain.Post
	offsetID := 0
	for {
		history, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:       peer,
			OffsetID:   offsetID,
			OffsetDate: int(upperExcl.Unix()),
			Limit:      historyPageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("получение истории: %w", err)
		}

		channelMessages, ok := history.(*tg.MessagesChannelMessages)
		if !ok {
			return nil, fmt.Errorf("неожиданный ответ истории: %T", history)
		}
		if len(channelMessages.Messages) == 0 {
			return posts, nil
		}

		for _, raw := range channelMessages.Messages {
			offsetID = raw.GetID()

			msg, ok := raw.(*tg.Message)
			if !ok {
				// Служебные сообщения в отчёт не попадают.
				continue
			}
			published := time.Unix(int64(msg.Date), 0).UTC()
			if published.Before(lower) {
				return posts, nil
			}
			if !published.Before(upperExcl) {
				continue
			}
			if strings.TrimSpace(msg.Message) == "" {
				continue
			}
			posts = append(posts, buildPost(msg, published))
		}

		if len(channelMessages.Messages) < historyPageSize {
			return posts, nil
		}
	}
}

func buildPost(msg *tg.Message, published time.Time) domain.Post {
	post := domain.Post{
		Date: time.Date(published.Year(), published.Month(), published.Day(), 0, 0, 0, 0, time.UTC),
		Text: msg.Message,
	}
	if v, ok := msg.GetViews(); ok {
		views := v
		post.Views = &views
	}
	if reactions, ok := msg.GetReactions(); ok {
		post.Reactions = topReactions(reactions.Results)
	}
	return post
}

// topReactions сводит реакции к трём самым популярным; при равном
// количестве сохраняется порядок источника.
func topReactions(results []tg.ReactionCount) []domain.Reaction {
	if len(results) == 0 {
		return nil
	}
	sorted := append([]tg.ReactionCount(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count > sorted[j].Count })
	if len(sorted) > maxReactions {
		sorted = sorted[:maxReactions]
	}

	reactions := make([]domain.Reaction, 0, len(sorted))
	for _, rc := range sorted {
		emoji := customEmojiFallback
		if r, ok := rc.Reaction.(*tg.ReactionEmoji); ok {
			emoji = r.Emoticon
		}
		reactions = append(reactions, domain.Reaction{Emoji: emoji, Count: rc.Count})
	}
	return reactions
}

// ParseChannel приводит пользовательский ввод к username: срезает @,
// вытаскивает последний сегмент из ссылок вида t.me/name.
func ParseChannel(input string) string {
	alias := strings.TrimSpace(input)
	if idx := strings.LastIndex(alias, "t.me/"); idx >= 0 {
		alias = alias[idx+len("t.me/"):]
	}
	alias = strings.TrimPrefix(alias, "@")
	alias = strings.Trim(alias, "/")
	if idx := strings.IndexAny(alias, "/?"); idx >= 0 {
		alias = alias[:idx]
	}
	return alias
}
