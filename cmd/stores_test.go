package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/jecnagames-server/internal/config"
)

func TestOpenStores(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		st, err := openStores(t.Context(), &config.Config{Storage: config.Storage{Backend: config.BackendMemory}})
		require.NoError(t, err)
		assert.NotNil(t, st.users)
		assert.NotNil(t, st.scores)
		assert.NotNil(t, st.refreshTokens)
		assert.NoError(t, st.close())
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.Config{
			Storage: config.Storage{Backend: config.BackendSQLite},
			SQLite:  config.SQLite{Path: filepath.Join(t.TempDir(), "games.db")},
		}
		st, err := openStores(t.Context(), cfg)
		require.NoError(t, err)
		assert.NotNil(t, st.users)
		assert.NoError(t, st.close())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := openStores(t.Context(), &config.Config{Storage: config.Storage{Backend: "etcd"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown storage backend "etcd"`)
	})
}
