package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

type fileState struct {
	History []string `json:"history"`
	Theme   Theme    `json:"theme,omitempty"`
}

// FileStore keeps preferences in a single JSON file, rewritten atomically on
// every change.
type FileStore struct {
	path  string
	mu    sync.Mutex
	state fileState
}

func NewFileStore(path string) (*FileStore, error) {
	state, err := loadState(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return &FileStore{path: path, state: state}, nil
}

func (s *FileStore) AddSearch(query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := pushHistory(s.state.History, query)
	if slices.Equal(next, s.state.History) {
		return nil
	}
	prev := s.state.History
	s.state.History = next
	if err := saveState(s.path, s.state); err != nil {
		s.state.History = prev
		return err
	}
	return nil
}

func (s *FileStore) RecentSearches() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.state.History))
	copy(out, s.state.History)
	return out, nil
}

func (s *FileStore) ClearHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state.History
	s.state.History = []string{}
	if err := saveState(s.path, s.state); err != nil {
		s.state.History = prev
		return err
	}
	return nil
}

func (s *FileStore) Theme() (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if validTheme(s.state.Theme) != nil {
		return ThemeLight, nil
	}
	return s.state.Theme, nil
}

func (s *FileStore) SetTheme(t Theme) error {
	if err := validTheme(t); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state.Theme
	s.state.Theme = t
	if err := saveState(s.path, s.state); err != nil {
		s.state.Theme = prev
		return err
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func loadState(path string) (fileState, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileState{History: []string{}}, nil
		}
		return fileState{}, err
	}
	var state fileState
	if err := json.Unmarshal(blob, &state); err != nil {
		return fileState{}, err
	}
	if state.History == nil {
		state.History = []string{}
	}
	if len(state.History) > MaxHistoryItems {
		state.History = state.History[:MaxHistoryItems]
	}
	return state, nil
}

func saveState(path string, state fileState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	blob, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
