// Package scheduler drives periodic subscription checks.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"modwatch_bot/internal/checker"
	"modwatch_bot/internal/model"
)

// Config provides the subscription groups to check.
type Config interface {
	AutoEnabled() bool
	Groups() []model.ChannelGroup
}

// Checker runs individual subscription checks.
type Checker interface {
	Eligible(channelID string, sub model.Subscription, now time.Time) bool
	Check(ctx context.Context, channelID string, sub model.Subscription, force bool) (checker.Result, error)
}

// Scheduler walks all enabled subscription groups on a fixed base tick and
// checks every subscription whose own interval has elapsed. Checks run
// strictly one after another; a slow pass simply delays the next one.
type Scheduler struct {
	config  Config
	checker Checker
	log     *slog.Logger
	tick    time.Duration
	delay   time.Duration
}

// New creates a Scheduler with the default 1-minute tick and 10-second
// startup delay.
func New(config Config, checker Checker, log *slog.Logger) *Scheduler {
	return &Scheduler{
		config:  config,
		checker: checker,
		log:     log,
		tick:    1 * time.Minute,
		delay:   10 * time.Second,
	}
}

// SetTickInterval overrides the default base tick.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// SetStartupDelay overrides the grace period before the first pass.
func (s *Scheduler) SetStartupDelay(d time.Duration) {
	s.delay = d
}

// Run starts the scheduler loop, blocking until ctx is cancelled. The first
// pass waits out a startup delay so the process finishes wiring up first.
func (s *Scheduler) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.delay):
	}

	s.checkAll(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAll(ctx)
		}
	}
}

func (s *Scheduler) checkAll(ctx context.Context) {
	if !s.config.AutoEnabled() {
		s.log.Debug("automatic checks disabled")
		return
	}

	now := time.Now()
	var checked, updated, unchanged, failed int

	for _, group := range s.config.Groups() {
		if !group.Enabled {
			continue
		}
		for _, sub := range group.Subs {
			if ctx.Err() != nil {
				return
			}
			if !s.checker.Eligible(group.ChannelID, sub, now) {
				continue
			}

			checked++
			res, err := s.checker.Check(ctx, group.ChannelID, sub, false)
			if err != nil {
				s.log.Error("check subscription",
					"channel_id", group.ChannelID,
					"platform", sub.Platform,
					"project_id", sub.ProjectID,
					"error", err)
			}
			switch res.Outcome {
			case checker.OutcomeUpdated:
				updated++
			case checker.OutcomeFailed:
				failed++
			default:
				unchanged++
			}
		}
	}

	if checked > 0 {
		s.log.Info("check pass finished",
			"checked", checked,
			"updated", updated,
			"unchanged", unchanged,
			"failed", failed)
	}
}
