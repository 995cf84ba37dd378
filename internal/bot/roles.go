package bot

import (
	"fmt"
	"slices"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Role is a sender's rank in a chat, ordered so roles compare with >=.
type Role int

const (
	RoleNone Role = iota
	RoleMember
	RoleAdmin
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleAdmin:
		return "admin"
	case RoleOwner:
		return "owner"
	}
	return "none"
}

// thresholdRole maps the configured threshold name to the minimum role.
func thresholdRole(s string) Role {
	switch s {
	case "none":
		return RoleNone
	case "owner":
		return RoleOwner
	default:
		return RoleAdmin
	}
}

// authorize reports whether the message sender clears the configured role
// threshold for subscription commands.
func (b *Bot) authorize(msg *tgbotapi.Message) (bool, error) {
	required := thresholdRole(b.cfg.RoleThreshold)
	if required == RoleNone {
		return true, nil
	}
	role, err := b.resolveRole(msg)
	if err != nil {
		return false, err
	}
	return role >= required, nil
}

// resolveRole determines the sender's role. Local signals are consulted
// first; the live membership lookup runs only when none of them applies.
func (b *Bot) resolveRole(msg *tgbotapi.Message) (Role, error) {
	if msg.From != nil {
		if slices.Contains(b.cfg.OwnerUsers, msg.From.ID) {
			return RoleOwner, nil
		}
		if slices.Contains(b.cfg.AdminUsers, msg.From.ID) {
			return RoleAdmin, nil
		}
	}

	// Anonymous group admins post as the group itself.
	if msg.SenderChat != nil && msg.Chat != nil && msg.SenderChat.ID == msg.Chat.ID {
		return RoleAdmin, nil
	}

	if msg.From == nil {
		return RoleNone, nil
	}

	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: msg.Chat.ID,
			UserID: msg.From.ID,
		},
	})
	if err != nil {
		return RoleNone, fmt.Errorf("get chat member: %w", err)
	}

	switch {
	case member.IsCreator():
		return RoleOwner, nil
	case member.IsAdministrator():
		return RoleAdmin, nil
	default:
		return RoleMember, nil
	}
}
