package analytics

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type loggedEvent struct {
	Timestamp    string         `json:"timestamp"`
	EventType    string         `json:"event_type"`
	Path         string         `json:"path"`
	Lang         string         `json:"lang"`
	ClientIPHash string         `json:"client_ip_hash"`
	UserAgent    string         `json:"user_agent"`
	Extra        map[string]any `json:"extra"`
}

func decodeSingle(t *testing.T, buf *bytes.Buffer) loggedEvent {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("ожидали одну строку лога, получили %d: %q", len(lines), buf.String())
	}
	var e loggedEvent
	if err := json.Unmarshal([]byte(lines[0]), &e); err != nil {
		t.Fatalf("строка лога должна быть валидным JSON: %v", err)
	}
	return e
}

func TestSinkLogSchema(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf)

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7:51234"
	r.Header.Set("User-Agent", "test-agent/1.0")

	sink.PageView(r)

	e := decodeSingle(t, &buf)
	if e.EventType != EventPageView {
		t.Fatalf("ожидали event_type %q, получили %q", EventPageView, e.EventType)
	}
	if e.Path != "/" {
		t.Fatalf("ожидали path /, получили %q", e.Path)
	}
	if e.Lang != "ru" {
		t.Fatalf("без cookie язык должен быть ru, получили %q", e.Lang)
	}
	if e.UserAgent != "test-agent/1.0" {
		t.Fatalf("user_agent не совпал: %q", e.UserAgent)
	}
	if _, err := time.Parse(time.RFC3339, e.Timestamp); err != nil {
		t.Fatalf("timestamp должен быть в RFC3339: %v", err)
	}
}

func TestSinkHashesClientIP(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf)

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7:51234"
	sink.PageView(r)

	e := decodeSingle(t, &buf)
	if strings.Contains(buf.String(), "203.0.113.7") {
		t.Fatalf("реальный IP не должен попадать в лог: %q", buf.String())
	}
	if len(e.ClientIPHash) != 16 {
		t.Fatalf("ожидали 16-символьный хэш, получили %q", e.ClientIPHash)
	}

	buf.Reset()
	sink.PageView(r)
	second := decodeSingle(t, &buf)
	if second.ClientIPHash != e.ClientIPHash {
		t.Fatalf("хэш одного и того же IP должен быть стабилен: %q != %q", second.ClientIPHash, e.ClientIPHash)
	}
}

func TestSinkTruncatesUserAgent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf)

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1000"
	r.Header.Set("User-Agent", strings.Repeat("a", 500))
	sink.PageView(r)

	e := decodeSingle(t, &buf)
	if len(e.UserAgent) != maxUserAgent {
		t.Fatalf("user_agent должен обрезаться до %d символов, получили %d", maxUserAgent, len(e.UserAgent))
	}
}

func TestSinkExportFailedExtra(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf)

	r := httptest.NewRequest("POST", "/generate", nil)
	r.RemoteAddr = "10.0.0.1:1000"
	sink.ExportFailed(r, "@tech_channel", "ChannelUnavailable")

	e := decodeSingle(t, &buf)
	if e.EventType != EventExportFailed {
		t.Fatalf("ожидали %q, получили %q", EventExportFailed, e.EventType)
	}
	if e.Extra["channel_input"] != "@tech_channel" {
		t.Fatalf("канал должен попадать в extra: %v", e.Extra)
	}
	if e.Extra["error_type"] != "ChannelUnavailable" {
		t.Fatalf("тип ошибки должен попадать в extra: %v", e.Extra)
	}
}

func TestSinkNilIsNoop(t *testing.T) {
	var sink *Sink
	r := httptest.NewRequest("GET", "/", nil)
	sink.PageView(r)
	sink.ExportFailed(r, "канал", "UnknownError")
}

func TestLanguageFromCookie(t *testing.T) {
	cases := []struct {
		name   string
		cookie string
		want   string
	}{
		{"без cookie", "", "ru"},
		{"русский", "ru", "ru"},
		{"английский", "en", "en"},
		{"мусорное значение", "de", "ru"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tc.cookie != "" {
				r.AddCookie(&http.Cookie{Name: LanguageCookie, Value: tc.cookie})
			}
			if got := Language(r); got != tc.want {
				t.Fatalf("ожидали язык %q, получили %q", tc.want, got)
			}
		})
	}
}
