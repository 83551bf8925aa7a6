package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mwaheed/tradepilot/internal/backend"
	"github.com/mwaheed/tradepilot/internal/config"
	"github.com/mwaheed/tradepilot/internal/logger"
)

type Notifier struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	enabled bool
	logger  *logger.Logger
}

func NewNotifier(cfg *config.Config, log *logger.Logger) *Notifier {
	if !cfg.Telegram.Enabled {
		return &Notifier{enabled: false, logger: log}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Error("failed to create telegram bot", "error", err)
		return &Notifier{enabled: false, logger: log}
	}

	log.Info("telegram bot connected", "username", bot.Self.UserName)

	return &Notifier{
		bot:     bot,
		chatID:  cfg.Telegram.ChatID,
		enabled: true,
		logger:  log,
	}
}

func (n *Notifier) NotifyDecision(rec backend.Recommendation, decision backend.Decision) {
	emoji := "✅"
	verb := "Approved"
	if decision == backend.Deny {
		emoji = "🚫"
		verb = "Denied"
	}
	msg := fmt.Sprintf("%s *%s* %s %s\n%d shares @ %.2f\n_%s_",
		emoji, verb, rec.Action, rec.Symbol, rec.Quantity, rec.Price, rec.Reason)
	n.send(msg)
}

func (n *Notifier) NotifyManualTrade(action, symbol string, quantity int64, price float64) {
	emoji := "🟢"
	if action == "SELL" {
		emoji = "🔴"
	}
	msg := fmt.Sprintf("%s *Manual %s* %s\n%d shares @ %.2f", emoji, action, symbol, quantity, price)
	n.send(msg)
}

func (n *Notifier) NotifyCycleError(stage string, err error) {
	msg := fmt.Sprintf("⚠️ *Poll cycle failed* [%s]\n%v", stage, err)
	n.send(msg)
}

func (n *Notifier) NotifyStatus(message string) {
	n.send(message)
}

func (n *Notifier) send(text string) {
	if !n.enabled {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("send telegram message", "error", err)
	}
}
