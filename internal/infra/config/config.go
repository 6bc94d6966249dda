package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервиса. Заполняется один раз на
// старте и дальше передаётся явно: пайплайн не читает глобальное состояние.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	Telegram struct {
		APIID        int           `envconfig:"TG_API_ID"`
		APIHash      string        `envconfig:"TG_API_HASH"`
		SessionFile  string        `envconfig:"TG_SESSION_FILE" default:"channel2pdf.session"`
		FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"2m"`
	} `envconfig:""`

	// DemoMode принудительно включает работу на тестовых данных.
	DemoMode bool `envconfig:"DEMO_MODE"`

	OutputDir string `envconfig:"OUTPUT_DIR" default:"generated"`

	Analytics struct {
		LogFile string `envconfig:"ANALYTICS_LOG_FILE" default:"server.log"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// IsDemoMode сообщает, работает ли сервис на тестовых данных: демо-режим
// включён явно или отсутствуют учётные данные Telegram.
func (c AppConfig) IsDemoMode() bool {
	if c.DemoMode {
		return true
	}
	if c.Telegram.APIID == 0 {
		return true
	}
	if c.Telegram.APIHash == "" {
		return true
	}
	return false
}

// IsProduction сообщает, что сервис запущен в боевом окружении.
func (c AppConfig) IsProduction() bool {
	return c.AppEnv == "production"
}
