package notifications

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Telegram delivers formatted alerts to a single chat. Send reports an error
// so callers can decide whether a notification actually went out.
type Telegram struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	limiter *rate.Limiter
}

// NewTelegram initializes the bot API and verifies the token with GetMe.
func NewTelegram(botToken string, chatID int64) (*Telegram, error) {
	if botToken == "" {
		return nil, fmt.Errorf("critical error: TELEGRAM_BOT_TOKEN missing from configuration")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("critical error: TELEGRAM_CHAT_ID missing or invalid in configuration")
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot API: %w", err)
	}
	userInfo, err := bot.GetMe()
	if err != nil {
		return nil, fmt.Errorf("failed to verify bot token with GetMe API call: %w", err)
	}
	log.Printf("Telegram bot initialized successfully for @%s", userInfo.UserName)

	return &Telegram{
		bot:     bot,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(0.5), 1),
	}, nil
}

// Bot exposes the underlying API client for the command listener.
func (t *Telegram) Bot() *tgbotapi.BotAPI {
	return t.bot
}

// Send delivers raw MarkdownV2 text with retry. 429 responses honor the
// server-provided backoff; other failures back off exponentially.
func (t *Telegram) Send(text string) error {
	if err := t.limiter.Wait(context.Background()); err != nil {
		return fmt.Errorf("telegram rate limiter wait: %w", err)
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	maxRetries := 3
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		_, err := t.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err

		if tgErr, ok := err.(*tgbotapi.Error); ok {
			log.Printf("ERROR: Failed Telegram send (Attempt %d/%d): API Err %d - %s",
				i+1, maxRetries, tgErr.Code, tgErr.Message)
			if tgErr.Code == 429 {
				retryAfter := tgErr.RetryAfter
				if retryAfter <= 0 {
					retryAfter = 1
				}
				time.Sleep(time.Duration(retryAfter) * time.Second)
				continue
			}
		} else {
			log.Printf("ERROR: Failed Telegram send (Attempt %d/%d): %v", i+1, maxRetries, err)
		}

		if i < maxRetries-1 {
			time.Sleep(time.Duration(math.Pow(2, float64(i))) * time.Second)
		}
	}
	return fmt.Errorf("telegram message failed after %d retries: %w", maxRetries, lastErr)
}

// SendRaw is Send with the error reduced to a log line, for fire-and-forget
// callers such as the logger mirror.
func (t *Telegram) SendRaw(text string) {
	if err := t.Send(text); err != nil {
		log.Printf("ERROR: telegram alert sink: %v", err)
	}
}

// MilestoneAlert announces a newly crossed price multiple.
func (t *Telegram) MilestoneAlert(address, symbol string, multiple int, initialPrice, currentPrice float64) error {
	message := fmt.Sprintf(
		"🚀 *%s hit %dx\\!*\n\n"+
			"CA: `%s`\n"+
			"Entry price: `$%s`\n"+
			"Current price: `$%s`\n\n"+
			"DexScreener: %s",
		EscapeMarkdownV2(symbol),
		multiple,
		address,
		EscapeMarkdownV2(formatPrice(initialPrice)),
		EscapeMarkdownV2(formatPrice(currentPrice)),
		EscapeMarkdownV2(dexScreenerLink(address)),
	)
	return t.Send(message)
}

// RiskAlert announces a new listing together with its risk assessment.
func (t *Telegram) RiskAlert(address, symbol, level string, score int, reasons []string, liquidityUSD float64) error {
	reasonBlock := "none flagged"
	if len(reasons) > 0 {
		reasonBlock = strings.Join(reasons, ", ")
	}
	message := fmt.Sprintf(
		"🔍 *%s* \\[%s\\]\n\n"+
			"CA: `%s`\n"+
			"Risk score: `%d`\n"+
			"Signals: %s\n"+
			"Liquidity: `$%s`\n\n"+
			"DexScreener: %s",
		EscapeMarkdownV2(symbol),
		EscapeMarkdownV2(level),
		address,
		score,
		EscapeMarkdownV2(reasonBlock),
		EscapeMarkdownV2(fmt.Sprintf("%.0f", liquidityUSD)),
		EscapeMarkdownV2(dexScreenerLink(address)),
	)
	return t.Send(message)
}

func dexScreenerLink(address string) string {
	return fmt.Sprintf("https://dexscreener.com/base/%s", address)
}

func formatPrice(p float64) string {
	if p >= 0.01 {
		return fmt.Sprintf("%.4f", p)
	}
	return fmt.Sprintf("%.8f", p)
}

func EscapeMarkdownV2(s string) string {
	charsToEscape := []string{"_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	temp := s
	for _, char := range charsToEscape {
		temp = strings.ReplaceAll(temp, char, "\\"+char)
	}
	return temp
}
