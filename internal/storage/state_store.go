package storage

import (
	"encoding/json"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"modwatch_bot/internal/model"
)

// StateStore persists, per subscription key, the last observed version label.
// Entries are created on first observation and updated on every change; they
// are never pruned when the owning subscription goes away.
type StateStore struct {
	path string
	log  *slog.Logger

	mu     sync.Mutex
	loaded bool
	states map[string]model.VersionState

	// saving drops overlapping writes instead of queueing them: an update
	// racing an in-flight save reaches the disk on the next save, while the
	// in-memory map stays the source of truth for all reads.
	saving atomic.Bool
}

// NewStateStore creates a store backed by the JSON file at path.
func NewStateStore(path string, log *slog.Logger) *StateStore {
	return &StateStore{
		path:   path,
		log:    log,
		states: make(map[string]model.VersionState),
	}
}

// Get returns the recorded state for key, if any.
func (s *StateStore) Get(key string) (model.VersionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()
	st, ok := s.states[key]
	return st, ok
}

// Create records the first observed version for key. An existing entry is
// left untouched.
func (s *StateStore) Create(key, version string) {
	s.mu.Lock()
	s.ensureLoadedLocked()
	if _, ok := s.states[key]; !ok {
		s.states[key] = model.VersionState{LastVersion: version}
	}
	snap := maps.Clone(s.states)
	s.mu.Unlock()

	s.save(snap)
}

// Update records a new version for key, creating the entry if needed.
func (s *StateStore) Update(key, version string) {
	s.mu.Lock()
	s.ensureLoadedLocked()
	s.states[key] = model.VersionState{LastVersion: version}
	snap := maps.Clone(s.states)
	s.mu.Unlock()

	s.save(snap)
}

// Len returns the number of recorded entries.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()
	return len(s.states)
}

func (s *StateStore) ensureLoadedLocked() {
	if s.loaded {
		return
	}
	s.loaded = true

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("read notify state", "path", s.path, "error", err)
		}
		return
	}

	var states map[string]model.VersionState
	if err := json.Unmarshal(data, &states); err != nil {
		s.log.Warn("parse notify state, starting empty", "path", s.path, "error", err)
		return
	}
	if states != nil {
		s.states = states
	}
}

func (s *StateStore) save(snapshot map[string]model.VersionState) {
	if !s.saving.CompareAndSwap(false, true) {
		return
	}
	defer s.saving.Store(false)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		s.log.Error("encode notify state", "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		s.log.Error("create state directory", "path", s.path, "error", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o640); err != nil {
		s.log.Error("write notify state", "path", s.path, "error", err)
	}
}
