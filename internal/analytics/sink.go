// Package analytics пишет события жизненного цикла сервиса в
// append-only лог (одна JSON-строка на событие) и агрегирует его
// для внутренней страницы статистики.
package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Типы событий аналитики.
const (
	EventPageView      = "page_view"
	EventExportStarted = "export_started"
	EventExportSuccess = "export_success"
	EventExportFailed  = "export_failed"
	EventLangChanged   = "lang_changed"
)

// LanguageCookie хранит выбранный язык интерфейса.
const LanguageCookie = "channel2pdf_language"

const (
	maxChannelInput = 100
	maxUserAgent    = 200
)

// Sink — процессный сток событий. Записи сериализуются через
// zerolog.SyncWriter: конкурентные запросы пишут в один файл.
type Sink struct {
	logger zerolog.Logger
}

// NewSink создаёт сток поверх произвольного writer (используется в тестах).
func NewSink(w io.Writer) *Sink {
	return &Sink{logger: zerolog.New(zerolog.SyncWriter(w))}
}

// OpenFileSink открывает файл лога на дозапись. Закрывать файл не
// требуется: сток живёт до завершения процесса.
func OpenFileSink(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return NewSink(f), nil
}

// Log записывает событие с контекстом HTTP-запроса. В extra нельзя
// передавать чувствительные данные и полные трейсы.
func (s *Sink) Log(r *http.Request, eventType string, extra map[string]any) {
	if s == nil {
		return
	}
	event := s.logger.Log().
		Str("timestamp", time.Now().UTC().Format(time.RFC3339)).
		Str("event_type", eventType).
		Str("path", r.URL.Path).
		Str("lang", Language(r)).
		Str("client_ip_hash", hashIP(clientIP(r))).
		Str("user_agent", truncate(r.UserAgent(), maxUserAgent))
	if len(extra) > 0 {
		event = event.Interface("extra", extra)
	}
	event.Send()
}

// PageView фиксирует просмотр главной страницы.
func (s *Sink) PageView(r *http.Request) {
	s.Log(r, EventPageView, map[string]any{"lang": Language(r)})
}

// ExportStarted фиксирует начало генерации отчёта.
func (s *Sink) ExportStarted(r *http.Request, channel, dateFrom, dateTo string) {
	s.Log(r, EventExportStarted, map[string]any{
		"channel_input": truncate(channel, maxChannelInput),
		"date_from":     dateFrom,
		"date_to":       dateTo,
		"lang":          Language(r),
	})
}

// ExportSuccess фиксирует успешную генерацию.
func (s *Sink) ExportSuccess(r *http.Request, channel string, postsCount int) {
	extra := map[string]any{
		"channel_input": truncate(channel, maxChannelInput),
		"lang":          Language(r),
	}
	if postsCount > 0 {
		extra["posts_count"] = postsCount
	}
	s.Log(r, EventExportSuccess, extra)
}

// ExportFailed фиксирует ошибку генерации. errorType — короткая
// категория, не полный текст ошибки.
func (s *Sink) ExportFailed(r *http.Request, channel, errorType string) {
	s.Log(r, EventExportFailed, map[string]any{
		"channel_input": truncate(channel, maxChannelInput),
		"error_type":    truncate(errorType, maxUserAgent),
		"lang":          Language(r),
	})
}

// LangChanged фиксирует переключение языка интерфейса.
func (s *Sink) LangChanged(r *http.Request, newLang string) {
	s.Log(r, EventLangChanged, map[string]any{"new_lang": newLang})
}

// Language возвращает язык интерфейса из cookie; по умолчанию ru.
func Language(r *http.Request) string {
	c, err := r.Cookie(LanguageCookie)
	if err != nil {
		return "ru"
	}
	if c.Value == "en" {
		return "en"
	}
	return "ru"
}

// hashIP необратимо сокращает IP до первых 16 символов sha256-хэша —
// реальные адреса в логе не хранятся.
func hashIP(ip string) string {
	if ip == "" {
		return "unknown"
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])[:16]
}

// clientIP берёт адрес из RemoteAddr; заголовки прокси разворачивает
// middleware.RealIP до этого места.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
