package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"modwatch_bot/internal/model"
)

// NotifyUpdate delivers a version update to the channel. Platforms with a
// registered renderer get image cards, everything else gets the plain-text
// card from FormatUpdate.
func (b *Bot) NotifyUpdate(ctx context.Context, channelID string, update *model.Update) error {
	chatID, err := parseChannelID(channelID)
	if err != nil {
		return err
	}

	if renderer, ok := b.renderers[update.Detail.Platform]; ok {
		images, err := renderer.Render(ctx, update)
		if err != nil {
			return fmt.Errorf("render card: %w", err)
		}
		if len(images) > 0 {
			return b.sendPhotos(ctx, chatID, update, images)
		}
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, FormatUpdate(update))
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send update: %w", err)
	}
	return nil
}

func (b *Bot) sendPhotos(ctx context.Context, chatID int64, update *model.Update, images [][]byte) error {
	for i, img := range images {
		if err := b.limiter.Wait(ctx); err != nil {
			return err
		}
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
			Name:  fmt.Sprintf("update-%d.png", i+1),
			Bytes: img,
		})
		if i == 0 {
			photo.Caption = FormatUpdateCaption(update)
		}
		if _, err := b.api.Send(photo); err != nil {
			return fmt.Errorf("send update card: %w", err)
		}
	}
	return nil
}

// parseChannelID extracts the Telegram chat ID from a stored channel ID.
// Bare numeric IDs written by older versions are accepted.
func parseChannelID(channelID string) (int64, error) {
	prefix, rest, found := strings.Cut(channelID, ":")
	if !found {
		rest = prefix
	} else if prefix != "telegram" {
		return 0, fmt.Errorf("unsupported channel %q", channelID)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid channel %q", channelID)
	}
	return id, nil
}
