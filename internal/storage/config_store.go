package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"modwatch_bot/internal/model"
)

// On-disk document shapes. Optional fields are pointers so that absent values
// can fall back to explicit defaults instead of zero values.
type configDocument struct {
	Enabled *bool           `json:"enabled"`
	Groups  []groupDocument `json:"groups"`
}

type groupDocument struct {
	ChannelID string        `json:"channelId"`
	Enabled   *bool         `json:"enabled"`
	Subs      []subDocument `json:"subs"`
}

type subDocument struct {
	Platform  string `json:"platform"`
	ProjectID string `json:"projectId"`
	Interval  int64  `json:"interval"`
}

// ConfigStore holds the master automatic-check switch and the per-channel
// subscription groups. The file is read at most once per process; every
// mutation rewrites it. A failed write is logged and swallowed: the in-memory
// copy stays authoritative for the rest of the run.
type ConfigStore struct {
	path           string
	defaultEnabled bool
	log            *slog.Logger

	mu      sync.Mutex
	loaded  bool
	enabled bool
	groups  []*model.ChannelGroup
}

// NewConfigStore creates a store backed by the JSON file at path.
// defaultEnabled applies when the file is missing or omits the master switch.
func NewConfigStore(path string, defaultEnabled bool, log *slog.Logger) *ConfigStore {
	return &ConfigStore{
		path:           path,
		defaultEnabled: defaultEnabled,
		enabled:        defaultEnabled,
		log:            log,
	}
}

// AutoEnabled reports whether automatic checks are globally enabled.
func (s *ConfigStore) AutoEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()
	return s.enabled
}

// Groups returns a copy of all channel groups in persisted order.
func (s *ConfigStore) Groups() []model.ChannelGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	out := make([]model.ChannelGroup, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, copyGroup(g))
	}
	return out
}

// Group returns a copy of the group for channelID, or ErrChannelNotFound.
func (s *ConfigStore) Group(channelID string) (model.ChannelGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	g := s.findGroupLocked(channelID)
	if g == nil {
		return model.ChannelGroup{}, ErrChannelNotFound
	}
	return copyGroup(g), nil
}

// AddSub adds a subscription to the channel's group, creating the group on
// first use. A (platform, projectId) pair already present in the group is
// rejected with ErrSubscriptionExists and nothing is written.
func (s *ConfigStore) AddSub(channelID string, sub model.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	g := s.findGroupLocked(channelID)
	if g == nil {
		g = &model.ChannelGroup{ChannelID: channelID, Enabled: true}
		s.groups = append(s.groups, g)
	}
	if g.FindSub(sub.Platform, sub.ProjectID) >= 0 {
		return ErrSubscriptionExists
	}
	g.Subs = append(g.Subs, sub)
	s.persistLocked()
	return nil
}

// RemoveSub removes the subscription matching the exact (platform, projectId)
// pair. No match returns ErrSubscriptionNotFound and nothing is written. The
// group itself is kept even when its last subscription is removed.
func (s *ConfigStore) RemoveSub(channelID string, platform model.Platform, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	g := s.findGroupLocked(channelID)
	if g == nil {
		return ErrSubscriptionNotFound
	}
	i := g.FindSub(platform, projectID)
	if i < 0 {
		return ErrSubscriptionNotFound
	}
	g.Subs = append(g.Subs[:i], g.Subs[i+1:]...)
	s.persistLocked()
	return nil
}

// SetChannelEnabled toggles automatic checks for one channel. Disabling keeps
// the subscriptions in place.
func (s *ConfigStore) SetChannelEnabled(channelID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	g := s.findGroupLocked(channelID)
	if g == nil {
		return ErrChannelNotFound
	}
	g.Enabled = enabled
	s.persistLocked()
	return nil
}

// SetSubInterval sets the minimum time between automatic checks for one
// subscription, clamped to model.MinInterval.
func (s *ConfigStore) SetSubInterval(channelID string, platform model.Platform, projectID string, d time.Duration) error {
	if d < model.MinInterval {
		d = model.MinInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	g := s.findGroupLocked(channelID)
	if g == nil {
		return ErrSubscriptionNotFound
	}
	i := g.FindSub(platform, projectID)
	if i < 0 {
		return ErrSubscriptionNotFound
	}
	g.Subs[i].IntervalMS = d.Milliseconds()
	s.persistLocked()
	return nil
}

func (s *ConfigStore) findGroupLocked(channelID string) *model.ChannelGroup {
	for _, g := range s.groups {
		if g.ChannelID == channelID {
			return g
		}
	}
	return nil
}

// ensureLoadedLocked reads the file on the first call. A missing or
// unparseable file falls back to the in-memory defaults; if memory already
// holds groups at that point, they are written back immediately so a damaged
// file is replaced rather than silently shadowed.
func (s *ConfigStore) ensureLoadedLocked() {
	if s.loaded {
		return
	}
	s.loaded = true

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("read notify config", "path", s.path, "error", err)
		}
		if len(s.groups) > 0 {
			s.persistLocked()
		}
		return
	}

	var doc configDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn("parse notify config, falling back to defaults", "path", s.path, "error", err)
		if len(s.groups) > 0 {
			s.persistLocked()
		}
		return
	}

	if doc.Enabled != nil {
		s.enabled = *doc.Enabled
	}
	s.groups = nil
	for _, gd := range doc.Groups {
		if gd.ChannelID == "" {
			s.log.Warn("skipping group without channelId", "path", s.path)
			continue
		}
		g := &model.ChannelGroup{ChannelID: gd.ChannelID, Enabled: true}
		if gd.Enabled != nil {
			g.Enabled = *gd.Enabled
		}
		for _, sd := range gd.Subs {
			platform, err := model.ParsePlatform(sd.Platform)
			if err != nil || sd.ProjectID == "" {
				s.log.Warn("skipping malformed subscription",
					"channel_id", gd.ChannelID, "platform", sd.Platform, "project_id", sd.ProjectID)
				continue
			}
			g.Subs = append(g.Subs, model.Subscription{
				Platform:   platform,
				ProjectID:  sd.ProjectID,
				IntervalMS: sd.Interval,
			})
		}
		s.groups = append(s.groups, g)
	}
}

func (s *ConfigStore) persistLocked() {
	doc := configDocument{Enabled: &s.enabled, Groups: make([]groupDocument, 0, len(s.groups))}
	for _, g := range s.groups {
		gd := groupDocument{ChannelID: g.ChannelID, Enabled: boolPtr(g.Enabled), Subs: make([]subDocument, 0, len(g.Subs))}
		for _, sub := range g.Subs {
			gd.Subs = append(gd.Subs, subDocument{
				Platform:  string(sub.Platform),
				ProjectID: sub.ProjectID,
				Interval:  sub.IntervalMS,
			})
		}
		doc.Groups = append(doc.Groups, gd)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.log.Error("encode notify config", "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		s.log.Error("create config directory", "path", s.path, "error", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o640); err != nil {
		s.log.Error("write notify config", "path", s.path, "error", err)
	}
}

func copyGroup(g *model.ChannelGroup) model.ChannelGroup {
	out := model.ChannelGroup{ChannelID: g.ChannelID, Enabled: g.Enabled}
	out.Subs = append([]model.Subscription(nil), g.Subs...)
	return out
}

func boolPtr(b bool) *bool {
	return &b
}
