package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Makhnitskiy-gpt/channel2pdf/internal/adapters/demo"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/analytics"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/domain"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/usecase/report"
)

// stubBuilder записывает файл без запуска wkhtmltopdf.
type stubBuilder struct{}

func (stubBuilder) Build(_ context.Context, posts []domain.Post, _, outputPath string) (string, error) {
	if err := os.WriteFile(outputPath, []byte("%PDF-1.4 stub"), 0o644); err != nil {
		return "", err
	}
	return filepath.Abs(outputPath)
}

func newTestHandler(t *testing.T, production bool) (*Handler, string) {
	t.Helper()
	outputDir := t.TempDir()
	logFile := filepath.Join(t.TempDir(), "server.log")
	logger := zerolog.Nop()

	service := report.NewService(nil, demo.NewSource(), stubBuilder{}, true, outputDir, time.Minute, logger)
	sink, err := analytics.OpenFileSink(logFile)
	if err != nil {
		t.Fatalf("не удалось открыть сток аналитики: %v", err)
	}
	return NewHandler(service, sink, outputDir, logFile, production, logger), outputDir
}

func newTestRouter(t *testing.T, production bool) (chi.Router, string) {
	t.Helper()
	h, outputDir := newTestHandler(t, production)
	r := chi.NewRouter()
	h.Routes(r)
	return r, outputDir
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("неожиданное тело ответа: %q", rec.Body.String())
	}
}

func TestIndexRenders(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Channel2PDF") {
		t.Fatalf("страница должна содержать название сервиса:\n%s", body)
	}
	if !strings.Contains(body, "Демо-режим") {
		t.Fatalf("в демо-режиме страница должна показывать баннер:\n%s", body)
	}
}

func generateForm() url.Values {
	return url.Values{
		"channel":   {"@demo_channel"},
		"date_from": {"2024-01-01"},
		"date_to":   {"2024-01-07"},
		"sort_type": {"date"},
		"direction": {"desc"},
	}
}

func postForm(router chi.Router, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGenerateSuccess(t *testing.T) {
	router, outputDir := newTestRouter(t, false)

	rec := postForm(router, generateForm())
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "demo_channel_2024-01-01_2024-01-07.pdf") {
		t.Fatalf("страница успеха должна называть файл:\n%s", rec.Body.String())
	}

	path := filepath.Join(outputDir, "demo_channel_2024-01-01_2024-01-07.pdf")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("файл отчёта должен существовать: %v", err)
	}
}

func TestGenerateValidationPreservesInput(t *testing.T) {
	router, _ := newTestRouter(t, false)

	form := generateForm()
	form.Set("date_from", "2024-13-99")
	form.Set("channel", "@my_channel")

	rec := postForm(router, form)
	if rec.Code != http.StatusOK {
		t.Fatalf("ошибки валидации рендерятся на той же странице, получили %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Неверный формат даты начала") {
		t.Fatalf("ожидали сообщение об ошибке даты:\n%s", body)
	}
	if !strings.Contains(body, "@my_channel") {
		t.Fatalf("введённый канал должен сохраняться в форме:\n%s", body)
	}
}

func TestGenerateInvertedDates(t *testing.T) {
	router, _ := newTestRouter(t, false)

	form := generateForm()
	form.Set("date_from", "2024-01-07")
	form.Set("date_to", "2024-01-01")

	rec := postForm(router, form)
	if !strings.Contains(rec.Body.String(), "Дата окончания не может быть раньше даты начала") {
		t.Fatalf("ожидали ошибку обратного диапазона:\n%s", rec.Body.String())
	}
}

func TestDownloadRejectsTraversal(t *testing.T) {
	router, _ := newTestRouter(t, false)

	for _, name := range []string{"..%2F..%2Fetc%2Fpasswd", "..pdf..%2F", "a%2Fb.pdf"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/files/"+name, nil))
		if rec.Code != http.StatusForbidden && rec.Code != http.StatusNotFound {
			t.Fatalf("имя %q должно отклоняться, получили %d", name, rec.Code)
		}
	}
}

func TestDownloadServesPDF(t *testing.T) {
	router, outputDir := newTestRouter(t, false)

	name := "report.pdf"
	if err := os.WriteFile(filepath.Join(outputDir, name), []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatalf("не удалось подготовить файл: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/files/"+name, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("ожидали application/pdf, получили %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, name) {
		t.Fatalf("Content-Disposition должен содержать имя файла: %q", got)
	}
}

func TestDownloadMissingFile(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/files/нет-такого.pdf", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("для отсутствующего файла ожидали 404, получили %d", rec.Code)
	}
}

func TestSwitchLangSetsCookie(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/lang/en", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("ожидали редирект 303, получили %d", rec.Code)
	}
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == analytics.LanguageCookie && c.Value == "en" {
			found = true
		}
	}
	if !found {
		t.Fatal("cookie языка должна устанавливаться")
	}
}

func TestAdminAnalyticsHiddenInProduction(t *testing.T) {
	router, _ := newTestRouter(t, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/analytics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("в production страница должна отвечать 404, получили %d", rec.Code)
	}
}

func TestAdminAnalyticsRenders(t *testing.T) {
	router, _ := newTestRouter(t, false)

	// Пара экспортов, чтобы в логе появились события.
	postForm(router, generateForm())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/analytics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Аналитика") {
		t.Fatalf("страница статистики должна рендериться:\n%s", body)
	}
	if !strings.Contains(body, "demo_channel") {
		t.Fatalf("в статистике должен появиться экспортированный канал:\n%s", body)
	}
}
