package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]func() Store {
	t.Helper()
	return map[string]func() Store{
		BackendSQLite: func() Store {
			s, err := Open(BackendSQLite, filepath.Join(t.TempDir(), "kyc.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		BackendFile: func() Store {
			s, err := Open(BackendFile, filepath.Join(t.TempDir(), "state", "kyc.json"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestHistory(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()

			got, err := s.RecentSearches()
			require.NoError(t, err)
			assert.Empty(t, got)

			for _, q := range []string{"Acme", "Globex", "  ", "Initech", "acme"} {
				require.NoError(t, s.AddSearch(q))
			}
			got, err = s.RecentSearches()
			require.NoError(t, err)
			assert.Equal(t, []string{"acme", "Initech", "Globex"}, got)

			for _, q := range []string{"Umbrella", "Hooli", "Stark", "Wayne"} {
				require.NoError(t, s.AddSearch(q))
			}
			got, err = s.RecentSearches()
			require.NoError(t, err)
			assert.Equal(t, []string{"Wayne", "Stark", "Hooli", "Umbrella", "acme"}, got)

			require.NoError(t, s.ClearHistory())
			got, err = s.RecentSearches()
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestTheme(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()

			th, err := s.Theme()
			require.NoError(t, err)
			assert.Equal(t, ThemeLight, th)

			require.NoError(t, s.SetTheme(ThemeDark))
			th, err = s.Theme()
			require.NoError(t, err)
			assert.Equal(t, ThemeDark, th)

			assert.ErrorIs(t, s.SetTheme(Theme("sepia")), ErrInvalidTheme)
			th, err = s.Theme()
			require.NoError(t, err)
			assert.Equal(t, ThemeDark, th)
		})
	}
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{BackendSQLite, BackendFile} {
		path := filepath.Join(dir, "state-"+backend)
		s, err := Open(backend, path)
		require.NoError(t, err)
		require.NoError(t, s.AddSearch("Acme"))
		require.NoError(t, s.SetTheme(ThemeDark))
		require.NoError(t, s.Close())

		s, err = Open(backend, path)
		require.NoError(t, err)
		got, err := s.RecentSearches()
		require.NoError(t, err)
		assert.Equal(t, []string{"Acme"}, got, backend)
		th, err := s.Theme()
		require.NoError(t, err)
		assert.Equal(t, ThemeDark, th, backend)
		require.NoError(t, s.Close())
	}
}

func TestFileStoreRejectsCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kyc.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewFileStore(path)
	assert.Error(t, err)
}

func TestParseTheme(t *testing.T) {
	th, err := ParseTheme(" Dark ")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, th)

	_, err = ParseTheme("blue")
	assert.ErrorIs(t, err, ErrInvalidTheme)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("redis", filepath.Join(t.TempDir(), "x"))
	assert.Error(t, err)
}

func TestPushHistory(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, pushHistory([]string{"a"}, " b "))
	assert.Equal(t, []string{"A"}, pushHistory([]string{"a"}, "A"))
	assert.Nil(t, pushHistory(nil, ""))
}
