package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Makhnitskiy-gpt/channel2pdf/internal/domain"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/infra/metrics"
)

// Service реализует пайплайн генерации отчёта: валидация, выбор
// источника, выгрузка, сортировка и сборка документа.
type Service struct {
	live         domain.PostSource
	demo         domain.PostSource
	builder      domain.DocumentBuilder
	demoMode     bool
	outputDir    string
	fetchTimeout time.Duration
	log          zerolog.Logger
}

// NewService создаёт сервис отчётов. В демо-режиме live может быть nil.
func NewService(live, demo domain.PostSource, builder domain.DocumentBuilder, demoMode bool, outputDir string, fetchTimeout time.Duration, log zerolog.Logger) *Service {
	return &Service{
		live:         live,
		demo:         demo,
		builder:      builder,
		demoMode:     demoMode,
		outputDir:    outputDir,
		fetchTimeout: fetchTimeout,
		log:          log,
	}
}

// DemoMode сообщает, работает ли сервис на тестовых данных.
func (s *Service) DemoMode() bool { return s.demoMode }

// Generate выполняет один запрос и возвращает путь к готовому документу.
// Любая ошибка несёт категорию domain.ErrorKind; валидация падает до
// любых сетевых и файловых операций.
func (s *Service) Generate(ctx context.Context, req domain.ReportRequest) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}

	metrics.ExportsStarted.Inc()
	start := time.Now()
	path, err := s.generate(ctx, req)
	metrics.ReportBuildSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExportsFailed.WithLabelValues(domain.KindOf(err).String()).Inc()
		return "", err
	}
	metrics.ExportsSucceeded.Inc()
	return path, nil
}

func (s *Service) generate(ctx context.Context, req domain.ReportRequest) (string, error) {
	posts, err := s.acquirePosts(ctx, req)
	if err != nil {
		return "", err
	}

	if len(posts) == 0 {
		return "", domain.NewError(domain.ErrEmptyResult,
			"постов за период с %s по %s не найдено",
			req.DateFrom.Format("2006-01-02"), req.DateTo.Format("2006-01-02"))
	}

	sorted, err := SortPosts(posts, req.Sort, req.Ascending)
	if err != nil {
		if domain.KindOf(err) == domain.ErrUnknown {
			return "", domain.WrapError(domain.ErrGenerationFailure, err, "ошибка сортировки постов")
		}
		return "", err
	}

	// Файловые операции начинаются только после успешной выгрузки.
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", domain.WrapError(domain.ErrGenerationFailure, err, "не удалось создать директорию %s", s.outputDir)
	}

	outputPath := filepath.Join(s.outputDir, OutputFilename(req))
	path, err := s.builder.Build(ctx, sorted, req.Channel, outputPath)
	if err != nil {
		return "", domain.WrapError(domain.ErrGenerationFailure, err, "ошибка создания документа")
	}
	return path, nil
}

func (s *Service) acquirePosts(ctx context.Context, req domain.ReportRequest) ([]domain.Post, error) {
	if s.demoMode {
		return s.demo.FetchPosts(ctx, req.Channel, req.DateFrom, req.DateTo)
	}

	if s.live == nil {
		return nil, domain.NewError(domain.ErrSourceUnavailable, "источник сообщений не настроен")
	}

	fetchCtx := ctx
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	start := time.Now()
	posts, err := s.live.FetchPosts(fetchCtx, req.Channel, req.DateFrom, req.DateTo)
	metrics.ObserveFetch("live", start, err)
	if err != nil {
		if domain.KindOf(err) == domain.ErrUnknown {
			return nil, domain.WrapError(domain.ErrGenerationFailure, err, "ошибка получения постов")
		}
		return nil, err
	}
	return posts, nil
}

func validate(req domain.ReportRequest) error {
	if strings.TrimSpace(req.Channel) == "" {
		return domain.NewError(domain.ErrInvalidParameter, "канал не может быть пустым")
	}
	if req.DateTo.Before(req.DateFrom) {
		return domain.NewError(domain.ErrInvalidParameter, "дата окончания не может быть раньше даты начала")
	}
	if !req.Sort.Valid() {
		return domain.NewError(domain.ErrInvalidParameter, "неверный тип сортировки: %s", req.Sort)
	}
	return nil
}

// OutputFilename возвращает имя файла отчёта: явное из запроса либо
// детерминированное {канал}_{от}_{до}.pdf. Расширение добавляется всегда.
func OutputFilename(req domain.ReportRequest) string {
	name := strings.TrimSpace(req.Filename)
	if name == "" {
		name = fmt.Sprintf("%s_%s_%s",
			SanitizeChannel(req.Channel),
			req.DateFrom.Format("2006-01-02"),
			req.DateTo.Format("2006-01-02"))
	}
	if !strings.HasSuffix(name, ".pdf") {
		name += ".pdf"
	}
	return name
}

// SanitizeChannel убирает из идентификатора канала символы, непригодные
// для имени файла.
func SanitizeChannel(channel string) string {
	replacer := strings.NewReplacer("@", "", "/", "_", "\\", "_")
	return replacer.Replace(strings.TrimSpace(channel))
}
