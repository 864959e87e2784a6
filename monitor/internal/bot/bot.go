package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Q872/base-sniper-monitor/monitor/internal/engine"
	"github.com/Q872/base-sniper-monitor/monitor/internal/ledger"
	"github.com/Q872/base-sniper-monitor/shared/logger"
	"github.com/Q872/base-sniper-monitor/shared/notifications"
)

var (
	appLogger   *logger.Logger
	botInstance *tgbotapi.BotAPI
	tokenStore  *ledger.Store
	orch        *engine.Orchestrator
)

func InitializeBot(logInstance *logger.Logger, telegram *notifications.Telegram, store *ledger.Store, orchestrator *engine.Orchestrator) error {
	if logInstance == nil {
		return fmt.Errorf("logger instance provided to InitializeBot is nil")
	}
	appLogger = logInstance
	tokenStore = store
	orch = orchestrator
	if telegram == nil {
		appLogger.Warn("Telegram not configured. Command listener disabled.")
		return fmt.Errorf("telegram notifications not configured")
	}
	botInstance = telegram.Bot()
	appLogger.Info("Telegram command services initialized using go-telegram-bot-api/v5.")
	return nil
}

func StartListening(ctx context.Context) {
	if appLogger == nil {
		fmt.Println("ERROR: Logger not initialized for bot listener. Cannot start.")
		return
	}
	if botInstance == nil {
		appLogger.Warn("Bot API instance not available. Cannot start command listener.")
		return
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := botInstance.GetUpdatesChan(u)
	appLogger.Info("Listening for Telegram commands...")

	for {
		select {
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			appLogger.Debug("Received command message",
				"chatID", update.Message.Chat.ID,
				"fromUser", update.Message.From.UserName,
				"text", update.Message.Text,
			)

			go HandleCommand(update)

		case <-ctx.Done():
			appLogger.Info("Context cancelled. Stopping Telegram listener.")
			return
		}
	}
}
