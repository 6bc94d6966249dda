// Консольная утилита: интерактивно собирает параметры и генерирует
// PDF-отчёт по постам Telegram-канала.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Makhnitskiy-gpt/channel2pdf/internal/adapters/demo"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/adapters/mtproto"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/adapters/pdf"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/domain"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/infra/config"
	applog "github.com/Makhnitskiy-gpt/channel2pdf/internal/infra/log"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/infra/metrics"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/usecase/report"
)

const dateLayout = "2006-01-02"

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)
	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	demoMode := cfg.IsDemoMode()
	req := readRequest(bufio.NewReader(os.Stdin), demoMode)

	var live domain.PostSource
	if !demoMode {
		live = mtproto.NewFetcher(cfg.Telegram.APIID, cfg.Telegram.APIHash, cfg.Telegram.SessionFile,
			logger.With().Str("component", "mtproto").Logger())
	}
	builder := pdf.NewBuilder(logger.With().Str("component", "pdf").Logger())
	// Для CLI отчёт сохраняется в текущую директорию.
	service := report.NewService(live, demo.NewSource(), builder,
		demoMode, ".", cfg.Telegram.FetchTimeout,
		logger.With().Str("component", "report").Logger())

	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	if demoMode {
		fmt.Println("Генерация тестовых данных...")
	} else {
		fmt.Println("Подключение к Telegram и получение постов...")
	}
	fmt.Printf("Канал: %s\n", req.Channel)
	fmt.Printf("Период: с %s по %s\n", req.DateFrom.Format(dateLayout), req.DateTo.Format(dateLayout))
	fmt.Println()

	path, err := service.Generate(ctx, req)
	if err != nil {
		kind := domain.KindOf(err)
		fmt.Println(strings.Repeat("=", 60))
		switch kind {
		case domain.ErrEmptyResult:
			fmt.Println(err.Error())
			fmt.Println(strings.Repeat("=", 60))
			os.Exit(0)
		case domain.ErrSourceUnavailable:
			fmt.Printf("Ошибка подключения: %s\n", err)
		case domain.ErrChannelUnavailable:
			fmt.Printf("Ошибка: %s\n", err)
		case domain.ErrInvalidParameter:
			fmt.Printf("Ошибка: %s\n", err)
		default:
			fmt.Printf("Ошибка генерации отчёта: %s\n", err)
		}
		fmt.Println(strings.Repeat("=", 60))
		os.Exit(1)
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Готово!")
	fmt.Printf("PDF-файл создан: %s\n", path)
	if demoMode {
		fmt.Println()
		fmt.Println("Это был демо-режим с тестовыми данными.")
		fmt.Println("Для работы с реальными каналами задайте TG_API_ID и TG_API_HASH.")
	}
	fmt.Println(strings.Repeat("=", 60))
}

func readRequest(in *bufio.Reader, demoMode bool) domain.ReportRequest {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Парсер Telegram-каналов")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	var channel string
	if demoMode {
		fmt.Println("ДЕМО-РЕЖИМ: TG_API_ID или TG_API_HASH не заданы.")
		fmt.Println("Программа работает с тестовыми данными, ввод канала пропущен.")
		fmt.Println()
		channel = "demo_channel"
	} else {
		channel = prompt(in, "Введите username или ссылку на канал (например, @channelname): ")
		if channel == "" {
			fmt.Println("Ошибка: канал не может быть пустым.")
			os.Exit(1)
		}
	}

	var dateFrom time.Time
	for {
		value := prompt(in, "Введите дату начала периода (YYYY-MM-DD): ")
		parsed, err := time.ParseInLocation(dateLayout, value, time.UTC)
		if err != nil {
			fmt.Println("Ошибка: неверный формат даты. Используйте формат YYYY-MM-DD (например, 2024-01-15).")
			continue
		}
		dateFrom = parsed
		break
	}

	var dateTo time.Time
	for {
		value := prompt(in, "Введите дату конца периода (YYYY-MM-DD): ")
		parsed, err := time.ParseInLocation(dateLayout, value, time.UTC)
		if err != nil {
			fmt.Println("Ошибка: неверный формат даты. Используйте формат YYYY-MM-DD (например, 2024-01-15).")
			continue
		}
		if parsed.Before(dateFrom) {
			fmt.Println("Ошибка: дата конца не может быть раньше даты начала.")
			continue
		}
		dateTo = parsed
		break
	}

	fmt.Println()
	fmt.Println("Выберите тип сортировки:")
	fmt.Println("  1 - по дате")
	fmt.Println("  2 - по количеству реакций")
	fmt.Println("  3 - по количеству просмотров")
	sortKeys := map[string]domain.SortKey{
		"1": domain.SortByDate,
		"2": domain.SortByReactions,
		"3": domain.SortByViews,
	}
	var sortKey domain.SortKey
	for {
		choice := prompt(in, "Введите номер (1-3): ")
		if key, ok := sortKeys[choice]; ok {
			sortKey = key
			break
		}
		fmt.Println("Ошибка: выберите 1, 2 или 3.")
	}

	fmt.Println()
	fmt.Println("Выберите направление сортировки:")
	fmt.Println("  1 - по возрастанию")
	fmt.Println("  2 - по убыванию")
	var ascending bool
	for {
		choice := prompt(in, "Введите номер (1-2): ")
		if choice == "1" || choice == "2" {
			ascending = choice == "1"
			break
		}
		fmt.Println("Ошибка: выберите 1 или 2.")
	}

	fmt.Println()
	defaultName := report.OutputFilename(domain.ReportRequest{
		Channel: channel, DateFrom: dateFrom, DateTo: dateTo,
	})
	filename := prompt(in, fmt.Sprintf("Введите имя PDF-файла (Enter для %q): ", defaultName))

	return domain.ReportRequest{
		Channel:   channel,
		DateFrom:  dateFrom,
		DateTo:    dateTo,
		Sort:      sortKey,
		Ascending: ascending,
		Filename:  filename,
	}
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Println()
		fmt.Println("Операция отменена.")
		os.Exit(0)
	}
	return strings.TrimSpace(line)
}
