package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SyncState is what survives between sync runs.
type SyncState struct {
	// LastHash is the fingerprint of the last fully processed scrape.
	// Empty until the first changed sync completes.
	LastHash string `json:"last_hash"`

	// LastSync is the RFC3339 timestamp of the last changed sync.
	LastSync string `json:"last_sync"`

	// EventIDs maps fixture dedupe keys to the calendar event IDs created
	// for them during the last reconciliation.
	EventIDs map[string]string `json:"event_ids"`

	// LastMatchCount is how many fixtures the last changed sync saw.
	LastMatchCount int `json:"last_match_count"`
}

// NewSyncState returns an empty first-run state.
func NewSyncState() *SyncState {
	return &SyncState{
		EventIDs: make(map[string]string),
	}
}

// Store handles persistence of the sync state file.
type Store struct {
	path string
}

// New creates a Store writing to the given path. A "~/" prefix expands to
// the home directory; parent directories are created as needed.
func New(path string) (*Store, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating state directory: %w", err)
		}
	}

	return &Store{path: path}, nil
}

// Load reads the persisted state. A missing file yields an empty first-run
// state; a corrupt file is an error the caller may downgrade to first-run.
func (s *Store) Load() (*SyncState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSyncState(), nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}

	var state SyncState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}
	if state.EventIDs == nil {
		state.EventIDs = make(map[string]string)
	}
	return &state, nil
}

// Save writes the state atomically: the JSON goes to a temp file in the
// same directory, which then replaces the previous state in one rename.
func (s *Store) Save(state *SyncState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing state: %w", err)
	}
	return nil
}
