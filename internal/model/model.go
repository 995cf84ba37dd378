// Package model defines the domain types used across the application.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies a mod distribution platform. The short codes are the
// wire form used in the config file and in chat commands.
type Platform string

// Supported platforms.
const (
	PlatformModrinth   Platform = "mr"
	PlatformCurseForge Platform = "cf"
)

// ParsePlatform maps a user-supplied platform name or short code to a Platform.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mr", "modrinth":
		return PlatformModrinth, nil
	case "cf", "curseforge":
		return PlatformCurseForge, nil
	default:
		return "", fmt.Errorf("unknown platform %q, use: mr, cf", s)
	}
}

// Label returns the human-readable platform name.
func (p Platform) Label() string {
	switch p {
	case PlatformModrinth:
		return "Modrinth"
	case PlatformCurseForge:
		return "CurseForge"
	default:
		return string(p)
	}
}

// MinInterval is the floor for per-subscription check intervals.
const MinInterval = time.Minute

// Subscription is one tracked project for one channel.
// IntervalMS is the minimum time between automatic checks, in milliseconds;
// zero or negative means "use the global default".
type Subscription struct {
	Platform   Platform `json:"platform"`
	ProjectID  string   `json:"projectId"`
	IntervalMS int64    `json:"interval"`
}

// EffectiveInterval returns the check interval to apply, falling back to def
// when the subscription carries no usable value and clamping to MinInterval.
func (s Subscription) EffectiveInterval(def time.Duration) time.Duration {
	if s.IntervalMS <= 0 {
		if def < MinInterval {
			return MinInterval
		}
		return def
	}
	d := time.Duration(s.IntervalMS) * time.Millisecond
	if d < MinInterval {
		return MinInterval
	}
	return d
}

// ChannelGroup holds the subscriptions and the automatic-check flag for one
// delivery channel. Subscription order is persisted and is the order used for
// numeric selection in manual commands.
type ChannelGroup struct {
	ChannelID string         `json:"channelId"`
	Enabled   bool           `json:"enabled"`
	Subs      []Subscription `json:"subs"`
}

// FindSub returns the index of the subscription matching the exact
// (platform, projectID) pair, or -1.
func (g *ChannelGroup) FindSub(platform Platform, projectID string) int {
	for i, s := range g.Subs {
		if s.Platform == platform && s.ProjectID == projectID {
			return i
		}
	}
	return -1
}

// VersionState records the last observed version label for one subscription.
type VersionState struct {
	LastVersion string `json:"lastVersion"`
}

// StateKey builds the composite key used by the state store and the
// last-check timestamp map.
func StateKey(channelID string, platform Platform, projectID string) string {
	return channelID + "|" + string(platform) + "|" + projectID
}

// LatestVersion is the platform-agnostic projection of a project's most
// recent release. Change detection compares the Version label only.
type LatestVersion struct {
	VersionID     string
	Version       string
	Changelog     string
	Downloads     int64
	DatePublished time.Time
	Loaders       []string
	GameVersions  []string
	FileName      string
	FileSize      int64
}

// ProjectDetail is the project metadata merged with a LatestVersion for
// rendering. Platform doubles as the content-type tag used to select the
// matching card renderer.
type ProjectDetail struct {
	Platform   Platform
	ID         string
	Slug       string
	Title      string
	Summary    string
	IconURL    string
	PageURL    string
	Downloads  int64
	Followers  int64
	Categories []string
	UpdatedAt  time.Time
}

// Update is the payload delivered to renderers and the notifier when a
// subscription produced a new version.
type Update struct {
	Detail *ProjectDetail
	Latest *LatestVersion
}
