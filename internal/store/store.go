// Package store persists the user's recent searches and display theme.
package store

import (
	"errors"
	"fmt"
	"strings"
)

const MaxHistoryItems = 5

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

var ErrInvalidTheme = errors.New(`theme must be "light" or "dark"`)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts a theme name in any case.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
}

type Store interface {
	AddSearch(query string) error
	// RecentSearches returns at most MaxHistoryItems queries, newest first.
	RecentSearches() ([]string, error)
	ClearHistory() error
	Theme() (Theme, error)
	SetTheme(Theme) error
	Close() error
}

// Open returns the store for backend rooted at path.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendSQLite:
		return NewSQLiteStore(path)
	case BackendFile:
		return NewFileStore(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// pushHistory puts query at the front of history, drops earlier entries
// equal to it ignoring case, and caps the result. Blank queries leave
// history unchanged.
func pushHistory(history []string, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return history
	}
	out := make([]string, 0, MaxHistoryItems)
	out = append(out, query)
	for _, h := range history {
		if len(out) == MaxHistoryItems {
			break
		}
		if strings.EqualFold(h, query) {
			continue
		}
		out = append(out, h)
	}
	return out
}

func validTheme(t Theme) error {
	if t != ThemeLight && t != ThemeDark {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, string(t))
	}
	return nil
}
