package bot

import (
	"fmt"
	"strconv"
	"strings"

	"modwatch_bot/internal/model"
)

// maxIntervalMinutes caps /interval at one week.
const maxIntervalMinutes = 10080

// ParseSubArgs parses "<platform> <project_id>" command arguments.
func ParseSubArgs(args, usage string) (model.Platform, string, error) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("usage: %s", usage)
	}
	platform, err := model.ParsePlatform(parts[0])
	if err != nil {
		return "", "", fmt.Errorf("unknown platform %q, use mr (Modrinth) or cf (CurseForge)", parts[0])
	}
	return platform, parts[1], nil
}

// ParseEnableArgs parses the /enable on/off argument.
func ParseEnableArgs(args string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("usage: /enable <on|off>")
}

// CheckArgs holds the parsed arguments of /check.
type CheckArgs struct {
	Target string
	Force  bool
}

// ParseCheckArgs parses "[target] [--force]". An empty target means every
// subscription in the chat.
func ParseCheckArgs(args string) CheckArgs {
	var out CheckArgs
	for _, part := range strings.Fields(args) {
		switch part {
		case "--force", "-f":
			out.Force = true
		default:
			if out.Target == "" {
				out.Target = part
			}
		}
	}
	return out
}

// ParseIntervalArgs parses "<target> <minutes>" for /interval.
func ParseIntervalArgs(args string) (string, int, error) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("usage: /interval <number|project_id> <minutes>")
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil || mins < 1 || mins > maxIntervalMinutes {
		return "", 0, fmt.Errorf("interval must be between 1 and %d minutes", maxIntervalMinutes)
	}
	return parts[0], mins, nil
}

// resolveSub resolves a /check or /interval target against a channel group:
// a number selects by 1-based /list position, anything else matches the
// first subscription with that project ID.
func resolveSub(group model.ChannelGroup, target string) (model.Subscription, bool) {
	if n, err := strconv.Atoi(target); err == nil {
		if n < 1 || n > len(group.Subs) {
			return model.Subscription{}, false
		}
		return group.Subs[n-1], true
	}
	for _, sub := range group.Subs {
		if sub.ProjectID == target {
			return sub, true
		}
	}
	return model.Subscription{}, false
}
