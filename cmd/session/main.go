// Интерактивно авторизует MTProto-сессию и сохраняет её в файл,
// который затем использует выгрузчик постов.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Makhnitskiy-gpt/channel2pdf/internal/infra/config"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.Telegram.APIID == 0 || cfg.Telegram.APIHash == "" {
		log.Fatal().Msg("session: TG_API_ID и TG_API_HASH обязательны, получить их можно на https://my.telegram.org/apps")
	}

	client := telegram.NewClient(cfg.Telegram.APIID, cfg.Telegram.APIHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: cfg.Telegram.SessionFile},
	})

	ctx := context.Background()
	err := client.Run(ctx, func(ctx context.Context) error {
		flow := auth.NewFlow(terminalAuth{in: bufio.NewReader(os.Stdin)}, auth.SendCodeOptions{})
		if err := client.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("авторизация: %w", err)
		}
		self, err := client.Self(ctx)
		if err != nil {
			return fmt.Errorf("проверка профиля: %w", err)
		}
		fmt.Printf("Сессия сохранена в %s (аккаунт: %s %s)\n",
			cfg.Telegram.SessionFile, self.FirstName, self.LastName)
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("session: не удалось создать сессию")
	}
}

// terminalAuth запрашивает телефон, код и пароль в терминале.
type terminalAuth struct {
	in *bufio.Reader
}

func (a terminalAuth) Phone(_ context.Context) (string, error) {
	return a.prompt("Введите номер телефона (в международном формате): ")
}

func (a terminalAuth) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	return a.prompt("Введите код из Telegram: ")
}

func (a terminalAuth) Password(_ context.Context) (string, error) {
	return a.prompt("Введите пароль двухфакторной аутентификации: ")
}

func (a terminalAuth) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return nil
}

func (a terminalAuth) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("регистрация новых аккаунтов не поддерживается")
}

func (a terminalAuth) prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
