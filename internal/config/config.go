// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken     string
	DataDir              string
	LogLevel             string
	DefaultCheckInterval time.Duration
	FetchTimeout         time.Duration
	ModrinthAPIBase      string
	CurseForgeAPIBase    string
	CurseForgeAPIKey     string
	NotifyEnabled        bool
	RoleThreshold        string
	OwnerUsers           []int64
	AdminUsers           []int64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	checkInterval, err := parseDuration("DEFAULT_CHECK_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	notifyEnabled := true
	if raw := os.Getenv("NOTIFY_ENABLED"); raw != "" {
		notifyEnabled, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid NOTIFY_ENABLED %q: %w", raw, err)
		}
	}

	threshold := os.Getenv("ROLE_THRESHOLD")
	if threshold == "" {
		threshold = "admin"
	}
	switch threshold {
	case "none", "admin", "owner":
	default:
		return nil, fmt.Errorf("invalid ROLE_THRESHOLD %q (want none, admin or owner)", threshold)
	}

	ownerUsers, err := parseUserList("OWNER_USERS")
	if err != nil {
		return nil, err
	}
	adminUsers, err := parseUserList("ADMIN_USERS")
	if err != nil {
		return nil, err
	}

	return &Config{
		TelegramBotToken:     token,
		DataDir:              dataDir,
		LogLevel:             logLevel,
		DefaultCheckInterval: checkInterval,
		FetchTimeout:         fetchTimeout,
		ModrinthAPIBase:      os.Getenv("MODRINTH_API_BASE"),
		CurseForgeAPIBase:    os.Getenv("CURSEFORGE_API_BASE"),
		CurseForgeAPIKey:     os.Getenv("CURSEFORGE_API_KEY"),
		NotifyEnabled:        notifyEnabled,
		RoleThreshold:        threshold,
		OwnerUsers:           ownerUsers,
		AdminUsers:           adminUsers,
	}, nil
}

// ConfigPath returns the path of the subscription config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.DataDir, "modwatch_notify_config.json")
}

// StatePath returns the path of the version state file.
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, "modwatch_notify_state.json")
}

func parseDuration(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", name, raw)
	}
	return d, nil
}

func parseUserList(name string) ([]int64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return nil, nil
	}
	var users []int64
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		uid, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q in %s: %w", s, name, err)
		}
		users = append(users, uid)
	}
	return users, nil
}
