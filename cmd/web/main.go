package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Makhnitskiy-gpt/channel2pdf/internal/adapters/demo"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/adapters/mtproto"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/adapters/pdf"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/analytics"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/domain"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/infra/config"
	applog "github.com/Makhnitskiy-gpt/channel2pdf/internal/infra/log"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/infra/metrics"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/usecase/report"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/web"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sink, err := analytics.OpenFileSink(cfg.Analytics.LogFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("web: не удалось открыть лог аналитики")
	}

	var live domain.PostSource
	if !cfg.IsDemoMode() {
		live = mtproto.NewFetcher(cfg.Telegram.APIID, cfg.Telegram.APIHash, cfg.Telegram.SessionFile,
			logger.With().Str("component", "mtproto").Logger())
	} else {
		logger.Warn().Msg("web: демо-режим, отчёты строятся на тестовых данных")
	}

	builder := pdf.NewBuilder(logger.With().Str("component", "pdf").Logger())
	service := report.NewService(live, demo.NewSource(), builder,
		cfg.IsDemoMode(), cfg.OutputDir, cfg.Telegram.FetchTimeout,
		logger.With().Str("component", "report").Logger())

	server := web.NewServer(logger.With().Str("component", "http").Logger())
	handler := web.NewHandler(service, sink, cfg.OutputDir, cfg.Analytics.LogFile,
		cfg.IsProduction(), logger.With().Str("component", "web").Logger())
	handler.Routes(server.Router)

	if err := server.Start(ctx, fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Fatal().Err(err).Msg("web: сервер остановлен с ошибкой")
	}
	logger.Info().Msg("web: остановка")
}
