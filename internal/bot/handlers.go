package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"modwatch_bot/internal/checker"
	"modwatch_bot/internal/model"
	"modwatch_bot/internal/storage"
)

const noSubsReply = "No tracked projects yet. Use /add <mr|cf> <project_id> to track one."

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to Mod Watch Bot!

I watch Modrinth and CurseForge projects and post a message here whenever a new version is released.

Quick start:
1. Add me to a group chat.
2. /add mr sodium - track the Sodium mod on Modrinth
3. /check sodium - fetch its latest version right away

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Subscription management:
/add <mr|cf> <project_id> - track a project
/remove <mr|cf> <project_id> - stop tracking a project
/list - show tracked projects
/enable <on|off> - toggle automatic checks for this chat
/interval <number|project_id> <minutes> - set the check interval (1-10080)
/check [number|project_id] [--force] - check now; --force re-sends the current version

Platforms: mr = Modrinth, cf = CurseForge.
The project ID is the slug or numeric ID from the project's page URL.`)
}

func (b *Bot) handleAdd(chatID int64, args string) {
	platform, projectID, err := ParseSubArgs(args, "/add <mr|cf> <project_id>")
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	sub := model.Subscription{Platform: platform, ProjectID: projectID}
	if err := b.store.AddSub(channelKey(chatID), sub); err != nil {
		if errors.Is(err, storage.ErrSubscriptionExists) {
			b.reply(chatID, fmt.Sprintf("[%s] %s is already tracked in this chat.", platform.Label(), projectID))
			return
		}
		b.reply(chatID, fmt.Sprintf("Failed to save subscription: %v", err))
		return
	}

	b.reply(chatID, fmt.Sprintf("Now tracking [%s] %s. Run /check %s to verify the project ID.",
		platform.Label(), projectID, projectID))
}

func (b *Bot) handleRemove(chatID int64, args string) {
	platform, projectID, err := ParseSubArgs(args, "/remove <mr|cf> <project_id>")
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	if err := b.store.RemoveSub(channelKey(chatID), platform, projectID); err != nil {
		if errors.Is(err, storage.ErrSubscriptionNotFound) {
			b.reply(chatID, fmt.Sprintf("[%s] %s is not tracked in this chat.", platform.Label(), projectID))
			return
		}
		b.reply(chatID, fmt.Sprintf("Failed to remove subscription: %v", err))
		return
	}

	b.reply(chatID, fmt.Sprintf("Stopped tracking [%s] %s.", platform.Label(), projectID))
}

func (b *Bot) handleList(chatID int64) {
	group, err := b.store.Group(channelKey(chatID))
	if err != nil {
		b.reply(chatID, noSubsReply)
		return
	}
	b.reply(chatID, FormatSubList(group, b.cfg.DefaultCheckInterval))
}

func (b *Bot) handleEnable(chatID int64, args string) {
	enabled, err := ParseEnableArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	if err := b.store.SetChannelEnabled(channelKey(chatID), enabled); err != nil {
		b.reply(chatID, noSubsReply)
		return
	}

	if enabled {
		b.reply(chatID, "Automatic checks are on for this chat.")
	} else {
		b.reply(chatID, "Automatic checks are off for this chat. Manual /check still works.")
	}
}

func (b *Bot) handleInterval(chatID int64, args string) {
	target, mins, err := ParseIntervalArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	group, err := b.store.Group(channelKey(chatID))
	if err != nil {
		b.reply(chatID, noSubsReply)
		return
	}

	sub, ok := resolveSub(group, target)
	if !ok {
		b.reply(chatID, fmt.Sprintf("No subscription matches %q. Use /list to see positions.", target))
		return
	}

	if err := b.store.SetSubInterval(channelKey(chatID), sub.Platform, sub.ProjectID, time.Duration(mins)*time.Minute); err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to set interval: %v", err))
		return
	}

	b.reply(chatID, fmt.Sprintf("[%s] %s is now checked every %d min.", sub.Platform.Label(), sub.ProjectID, mins))
}

func (b *Bot) handleCheck(chatID int64, args string) {
	cargs := ParseCheckArgs(args)

	group, err := b.store.Group(channelKey(chatID))
	if err != nil || len(group.Subs) == 0 {
		b.reply(chatID, noSubsReply)
		return
	}

	subs := group.Subs
	if cargs.Target != "" {
		sub, ok := resolveSub(group, cargs.Target)
		if !ok {
			b.reply(chatID, fmt.Sprintf("No subscription matches %q. Use /list to see positions.", cargs.Target))
			return
		}
		subs = []model.Subscription{sub}
	}

	queued := b.queue.Submit(func(ctx context.Context) {
		b.runManualCheck(ctx, chatID, channelKey(chatID), subs, cargs.Force)
	})
	if !queued {
		b.reply(chatID, "A check is already queued. Try again in a moment.")
		return
	}

	b.reply(chatID, fmt.Sprintf("Checking %d subscription(s)...", len(subs)))
}

// runManualCheck runs on the queue worker so a slow platform API never
// blocks command handling.
func (b *Bot) runManualCheck(ctx context.Context, chatID int64, channelID string, subs []model.Subscription, force bool) {
	var updated, unchanged, failed int
	for _, sub := range subs {
		if ctx.Err() != nil {
			return
		}
		res, err := b.checker.Check(ctx, channelID, sub, force)
		if err != nil {
			failed++
			b.log.Error("manual check", "channel_id", channelID, "platform", sub.Platform, "project_id", sub.ProjectID, "error", err)
			continue
		}
		if res.Outcome == checker.OutcomeUpdated {
			updated++
		} else {
			unchanged++
		}
	}
	b.SendMessage(chatID, FormatCheckSummary(updated, unchanged, failed))
}
