package bot

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func HandleCommand(update tgbotapi.Update) {
	command := update.Message.Command()
	args := update.Message.CommandArguments()

	if appLogger == nil {
		log.Printf("ERROR: appLogger not initialized in bot package when handling command '%s'", command)
		return
	}

	appLogger.Info("Processing command",
		zap.String("command", command),
		zap.String("args", args),
		zap.Int64("ChatID", update.Message.Chat.ID),
		zap.String("User", update.Message.From.UserName),
	)

	switch command {
	case "top":
		handleTopCommand(update, args)
	case "recent":
		handleRecentCommand(update, args)
	case "status":
		handleStatusCommand(update)
	case "start", "help":
		handleHelpCommand(update)
	default:
		appLogger.Warn("Unknown command received", zap.String("command", command))
		SendReply(update.Message.Chat.ID, fmt.Sprintf("Unknown command: /%s", command))
	}
}

func handleTopCommand(update tgbotapi.Update, args string) {
	limit := 10
	if trimmed := strings.TrimSpace(args); trimmed != "" {
		parsed, err := strconv.Atoi(trimmed)
		if err != nil || parsed < 1 || parsed > 25 {
			SendReply(update.Message.Chat.ID, "Usage: /top {1-25}")
			return
		}
		limit = parsed
	}

	performers := tokenStore.TopPerformers(limit)
	if len(performers) == 0 {
		SendReply(update.Message.Chat.ID, "No tokens tracked yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("*Top performers*\n")
	for i, p := range performers {
		sb.WriteString(fmt.Sprintf("%d. `%s` %s: %+.1f%% (%.4g -> %.4g)\n",
			i+1, p.Record.Symbol, shortAddress(p.Record.Address), p.TotalReturnPct,
			p.Record.InitialPrice, p.Record.CurrentPrice))
	}
	SendReply(update.Message.Chat.ID, sb.String())
}

func handleRecentCommand(update tgbotapi.Update, args string) {
	hours := 24
	if trimmed := strings.TrimSpace(args); trimmed != "" {
		parsed, err := strconv.Atoi(trimmed)
		if err != nil || parsed < 1 || parsed > 168 {
			SendReply(update.Message.Chat.ID, "Usage: /recent {hours 1-168}")
			return
		}
		hours = parsed
	}

	recent := tokenStore.RecentTokens(time.Duration(hours)*time.Hour, time.Now())
	if len(recent) == 0 {
		SendReply(update.Message.Chat.ID, fmt.Sprintf("No tokens first seen in the last %dh.", hours))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Tokens first seen in the last %dh*\n", hours))
	for _, rec := range recent {
		sb.WriteString(fmt.Sprintf("- `%s` %s (since %s)\n",
			rec.Symbol, shortAddress(rec.Address), rec.FirstSeen.Format("15:04 MST")))
	}
	SendReply(update.Message.Chat.ID, sb.String())
}

func handleStatusCommand(update tgbotapi.Update) {
	summary, ok := orch.LastSummary()
	if !ok {
		SendReply(update.Message.Chat.ID, "No monitoring cycle has completed yet.")
		return
	}
	msg := fmt.Sprintf("*Last cycle* (%s)\nFetched: %d\nAnalyzed: %d\nSkipped: %d\nMilestone alerts: %d\nRisk alerts: %d\nSuppressed: %d\nFailed: %d\nTracked tokens: %d",
		summary.Duration, summary.Fetched, summary.Analyzed, summary.Skipped,
		summary.MilestoneAlerts, summary.RiskAlerts, summary.Suppressed, summary.Failed,
		tokenStore.Len())
	SendReply(update.Message.Chat.ID, msg)
}

func handleHelpCommand(update tgbotapi.Update) {
	help := "*Commands*\n" +
		"/top {n} - best performing tracked tokens\n" +
		"/recent {hours} - tokens first seen recently\n" +
		"/status - last monitoring cycle summary\n" +
		"/help - this message"
	SendReply(update.Message.Chat.ID, help)
}

func shortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + ".." + address[len(address)-4:]
}

func SendReply(chatID int64, text string) {
	if botInstance == nil {
		log.Println("ERROR: Cannot send reply, bot is not initialized.")
		if appLogger != nil {
			appLogger.Error("Cannot send reply, bot is not initialized.")
		}
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := botInstance.Send(msg); err != nil {
		if appLogger != nil {
			appLogger.Error("Failed to send reply message", zap.Error(err), zap.Int64("chatID", chatID))
		} else {
			log.Printf("ERROR: Failed to send reply: %v", err)
		}
	}
}
