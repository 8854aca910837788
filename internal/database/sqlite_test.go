package database_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantasy-ai/backend/internal/database"
)

func TestInitDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fantasy.db")

	db, err := database.InitDB(path)
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	for _, table := range []string{"messages", "subscriptions", "characters", "ai_key", "kv_store"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}

	t.Run("Migrate is idempotent", func(t *testing.T) {
		assert.NoError(t, database.Migrate(db))
	})
}
