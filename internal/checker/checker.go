// Package checker implements update detection for subscriptions: it fetches
// the latest published version, compares it against the recorded one, and
// drives notifications on change.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"modwatch_bot/internal/fetcher"
	"modwatch_bot/internal/model"
	"modwatch_bot/internal/storage"
)

// Outcome classifies the result of a single subscription check.
type Outcome int

const (
	OutcomeNoChange Outcome = iota
	OutcomeUpdated
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoChange:
		return "no_change"
	case OutcomeUpdated:
		return "updated"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Result reports what a check observed. Version is the latest version label
// seen, when the fetch got that far.
type Result struct {
	Outcome Outcome
	Version string
}

// Notifier delivers an update card to a channel.
type Notifier interface {
	NotifyUpdate(ctx context.Context, channelID string, update *model.Update) error
}

// Checker compares fetched versions against recorded state and notifies on
// change. It also tracks, in memory only, when each subscription was last
// checked; the timestamps reset on restart, so every subscription is checked
// once shortly after startup.
type Checker struct {
	clients         fetcher.Clients
	states          *storage.StateStore
	notifier        Notifier
	defaultInterval time.Duration
	log             *slog.Logger

	mu    sync.Mutex
	times map[string]time.Time
}

// New creates a Checker. defaultInterval applies to subscriptions without an
// interval of their own.
func New(clients fetcher.Clients, states *storage.StateStore, notifier Notifier, defaultInterval time.Duration, log *slog.Logger) *Checker {
	return &Checker{
		clients:         clients,
		states:          states,
		notifier:        notifier,
		defaultInterval: defaultInterval,
		log:             log,
		times:           make(map[string]time.Time),
	}
}

// Eligible reports whether the subscription's check interval has elapsed.
// A subscription never checked in this process is eligible immediately.
func (c *Checker) Eligible(channelID string, sub model.Subscription, now time.Time) bool {
	key := model.StateKey(channelID, sub.Platform, sub.ProjectID)
	c.mu.Lock()
	last, ok := c.times[key]
	c.mu.Unlock()
	if !ok {
		return true
	}
	return now.Sub(last) >= sub.EffectiveInterval(c.defaultInterval)
}

// Check fetches the latest version of one subscription and acts on the
// comparison. With force set, a notification is sent regardless of whether
// the version changed. The recorded state only advances after a successful
// notification, so a failed delivery is retried on the next change-free
// check of the same version.
func (c *Checker) Check(ctx context.Context, channelID string, sub model.Subscription, force bool) (Result, error) {
	key := model.StateKey(channelID, sub.Platform, sub.ProjectID)

	// Stamp before fetching: a failing project waits out its full interval
	// instead of being retried every tick.
	c.mu.Lock()
	c.times[key] = time.Now()
	c.mu.Unlock()

	client, ok := c.clients[sub.Platform]
	if !ok {
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("no client for platform %q", sub.Platform)
	}

	latest, err := client.LatestVersion(ctx, sub.ProjectID)
	if err != nil {
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("fetch latest version: %w", err)
	}
	if latest == nil {
		c.log.Debug("project has no versions", "platform", sub.Platform, "project_id", sub.ProjectID)
		return Result{}, nil
	}

	state, exists := c.states.Get(key)

	if force {
		if !exists {
			c.states.Create(key, latest.Version)
		}
		if err := c.notify(ctx, channelID, client, sub.ProjectID, latest); err != nil {
			return Result{Outcome: OutcomeFailed, Version: latest.Version}, err
		}
		c.states.Update(key, latest.Version)
		return Result{Outcome: OutcomeUpdated, Version: latest.Version}, nil
	}

	switch {
	case !exists:
		// First sighting seeds the baseline silently.
		c.states.Create(key, latest.Version)
		return Result{Version: latest.Version}, nil
	case state.LastVersion == "":
		// Blank record, repaired without notifying.
		c.states.Update(key, latest.Version)
		return Result{Version: latest.Version}, nil
	case state.LastVersion == latest.Version:
		return Result{Version: latest.Version}, nil
	}

	if err := c.notify(ctx, channelID, client, sub.ProjectID, latest); err != nil {
		return Result{Outcome: OutcomeFailed, Version: latest.Version}, err
	}
	c.states.Update(key, latest.Version)

	c.log.Info("version update",
		"channel_id", channelID,
		"platform", sub.Platform,
		"project_id", sub.ProjectID,
		"from", state.LastVersion,
		"to", latest.Version)
	return Result{Outcome: OutcomeUpdated, Version: latest.Version}, nil
}

func (c *Checker) notify(ctx context.Context, channelID string, client fetcher.Client, projectID string, latest *model.LatestVersion) error {
	detail, err := client.ProjectDetail(ctx, projectID)
	if err != nil {
		return fmt.Errorf("fetch project detail: %w", err)
	}
	update := &model.Update{Detail: detail, Latest: latest}
	if err := c.notifier.NotifyUpdate(ctx, channelID, update); err != nil {
		return fmt.Errorf("notify channel: %w", err)
	}
	return nil
}
