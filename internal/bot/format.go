package bot

import (
	"fmt"
	"strings"
	"time"

	"modwatch_bot/internal/model"
)

// FormatSubList formats a channel's subscriptions in stored order; the
// numbers are the indexes /check and /interval accept.
func FormatSubList(group model.ChannelGroup, def time.Duration) string {
	if len(group.Subs) == 0 {
		return "No tracked projects yet. Use /add <mr|cf> <project_id> to track one."
	}

	status := "on"
	if !group.Enabled {
		status = "off"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tracked projects (automatic checks %s):\n", status)
	for i, sub := range group.Subs {
		mins := int(sub.EffectiveInterval(def).Minutes())
		fmt.Fprintf(&b, "\n%d. [%s] %s (every %d min)\n", i+1, sub.Platform.Label(), sub.ProjectID, mins)
	}
	return b.String()
}

// FormatUpdate renders the plain-text notification card for a new version.
func FormatUpdate(u *model.Update) string {
	d, v := u.Detail, u.Latest

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s updated!\n\n", d.Platform.Label(), d.Title)
	fmt.Fprintf(&b, "Version: %s\n", v.Version)
	if v.FileName != "" {
		fmt.Fprintf(&b, "File: %s (%s)\n", v.FileName, formatSize(v.FileSize))
	}
	if !v.DatePublished.IsZero() {
		fmt.Fprintf(&b, "Published: %s\n", v.DatePublished.UTC().Format("2006-01-02 15:04 UTC"))
	}
	if len(v.Loaders) > 0 {
		fmt.Fprintf(&b, "Loaders: %s\n", strings.Join(v.Loaders, ", "))
	}
	if len(v.GameVersions) > 0 {
		fmt.Fprintf(&b, "Game versions: %s\n", strings.Join(v.GameVersions, ", "))
	}

	if changelog := strings.TrimSpace(v.Changelog); changelog != "" {
		if len(changelog) > 300 {
			changelog = changelog[:300] + "..."
		}
		b.WriteString("\n")
		b.WriteString(changelog)
		b.WriteString("\n")
	}

	if d.PageURL != "" {
		b.WriteString("\n")
		b.WriteString(d.PageURL)
	}
	return b.String()
}

// FormatUpdateCaption is the short caption attached to rendered card images.
func FormatUpdateCaption(u *model.Update) string {
	return fmt.Sprintf("%s %s", u.Detail.Title, u.Latest.Version)
}

// FormatCheckSummary summarizes a manual check run.
func FormatCheckSummary(updated, unchanged, failed int) string {
	return fmt.Sprintf("Check finished: %d updated, %d unchanged, %d failed.", updated, unchanged, failed)
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
