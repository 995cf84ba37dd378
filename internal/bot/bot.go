package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"modwatch_bot/internal/checker"
	"modwatch_bot/internal/config"
	"modwatch_bot/internal/fetcher"
	"modwatch_bot/internal/queue"
	"modwatch_bot/internal/render"
	"modwatch_bot/internal/storage"
)

// checkQueueSize bounds how many manual check requests may wait at once.
const checkQueueSize = 16

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Bot is the Telegram surface: it handles subscription commands and delivers
// update notifications.
type Bot struct {
	api       telegramAPI
	store     *storage.ConfigStore
	checker   *checker.Checker
	queue     *queue.Queue
	cfg       *config.Config
	renderers render.Registry
	limiter   *rate.Limiter
	log       *slog.Logger
}

// New creates a Bot and its change detector. The bot itself is the
// detector's notifier, so scheduled and manual checks deliver through the
// same path.
func New(token string, cfg *config.Config, store *storage.ConfigStore, states *storage.StateStore,
	clients fetcher.Clients, renderers render.Registry, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	b := &Bot{
		api:       api,
		store:     store,
		queue:     queue.New(checkQueueSize, log),
		cfg:       cfg,
		renderers: renderers,
		// Telegram allows ~20 outbound messages per second.
		limiter: rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
		log:     log,
	}
	b.checker = checker.New(clients, states, b, cfg.DefaultCheckInterval, log)
	return b, nil
}

// Checker exposes the change detector for the scheduler.
func (b *Bot) Checker() *checker.Checker {
	return b.checker
}

// Run starts the manual-check worker and the long-polling loop, blocking
// until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	go b.queue.Start(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			b.handleCommand(update.Message)
		}
	}
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	if err := b.limiter.Wait(context.Background()); err != nil {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
		return
	case "help":
		b.handleHelp(chatID)
		return
	}

	// Everything below manages the current chat's subscriptions.
	if msg.Chat.IsPrivate() {
		b.reply(chatID, "Subscription commands work in group chats. Add me to a group and run them there.")
		return
	}

	allowed, err := b.authorize(msg)
	if err != nil {
		b.log.Error("authorize", "cmd", cmd, "chat_id", chatID, "error", err)
		b.reply(chatID, "Could not verify your role. Try again later.")
		return
	}
	if !allowed {
		b.reply(chatID, "You need a higher role in this chat to manage subscriptions.")
		return
	}

	switch cmd {
	case "add":
		b.handleAdd(chatID, args)
	case "remove":
		b.handleRemove(chatID, args)
	case "list":
		b.handleList(chatID)
	case "enable":
		b.handleEnable(chatID, args)
	case "interval":
		b.handleInterval(chatID, args)
	case "check":
		b.handleCheck(chatID, args)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}

// channelKey is the stored channel ID for a Telegram chat.
func channelKey(chatID int64) string {
	return fmt.Sprintf("telegram:%d", chatID)
}
