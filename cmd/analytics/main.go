// Печатает текстовый отчёт по логу аналитики.
package main

import (
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Makhnitskiy-gpt/channel2pdf/internal/analytics"
)

func main() {
	var (
		logPath     string
		maxChannels int
	)
	flag.StringVar(&logPath, "log", "server.log", "путь к файлу лога аналитики")
	flag.IntVar(&maxChannels, "top", 10, "количество каналов в топе")
	flag.Parse()

	report, err := analytics.ParseLogFile(logPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", logPath).Msg("analytics: не удалось прочитать лог")
	}

	fmt.Print(analytics.FormatReport(report, maxChannels))
}
