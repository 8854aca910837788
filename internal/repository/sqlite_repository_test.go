package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantasy-ai/backend/internal/model"
	"fantasy-ai/backend/internal/realtime"
	"fantasy-ai/backend/internal/repository"
)

func setupSQLiteRepository(t *testing.T) (*repository.SQLiteRepository, sqlmock.Sqlmock, *realtime.Hub) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	hub := realtime.NewHub()
	return repository.NewSQLiteRepository(db, hub), mockDB, hub
}

var messageColumns = []string{"id", "user_id", "character_id", "content", "sender", "image_url", "audio_url", "created_at"}

func TestSQLiteRepository_LoadHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mockDB, _ := setupSQLiteRepository(t)

		rows := sqlmock.NewRows(messageColumns).
			AddRow("m1", "u1", int64(4), "hello", "user", nil, nil, "2024-05-01T10:00:00.000Z").
			AddRow("m2", "u1", int64(4), nil, "ai", "https://img", nil, "2024-05-01T10:00:01.000Z")
		mockDB.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, character_id, content, sender, image_url, audio_url, created_at")).
			WithArgs("u1", int64(4)).
			WillReturnRows(rows)

		msgs, err := repo.LoadHistory(ctx, "u1", 4)
		require.NoError(t, err)
		require.Len(t, msgs, 2)

		assert.Equal(t, "hello", msgs[0].Text)
		assert.Equal(t, model.SenderUser, msgs[0].Sender)
		assert.Equal(t, "[empty message]", msgs[1].Text)
		assert.Equal(t, model.SenderAI, msgs[1].Sender)
		assert.Equal(t, "https://img", msgs[1].ImageRef)
		assert.Equal(t, int64(1714557601000), msgs[1].Timestamp)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Failure - Query error", func(t *testing.T) {
		repo, mockDB, _ := setupSQLiteRepository(t)
		mockDB.ExpectQuery("SELECT id").WillReturnError(errors.New("db down"))

		_, err := repo.LoadHistory(ctx, "u1", 4)
		assert.ErrorContains(t, err, "db down")
	})
}

func TestSQLiteRepository_InsertMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Publishes AI message to subscribers", func(t *testing.T) {
		repo, mockDB, _ := setupSQLiteRepository(t)

		received := make(chan model.ChatMessage, 1)
		sub, err := repo.Subscribe(ctx, "u1", 4, func(m model.ChatMessage) { received <- m })
		require.NoError(t, err)
		defer repo.Unsubscribe(sub)

		msg := model.ChatMessage{ID: "m1", Text: "reply", Sender: model.SenderAI, Timestamp: 1714557600000}
		mockDB.ExpectExec("INSERT INTO messages").
			WithArgs("m1", "u1", int64(4), "reply", "ai", nil, nil, "2024-05-01T10:00:00.000Z").
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.InsertMessage(ctx, "u1", 4, msg))

		select {
		case got := <-received:
			assert.Equal(t, "m1", got.ID)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the inserted message")
		}
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Failure - Exec error is not published", func(t *testing.T) {
		repo, mockDB, _ := setupSQLiteRepository(t)

		received := make(chan model.ChatMessage, 1)
		sub, err := repo.Subscribe(ctx, "u1", 4, func(m model.ChatMessage) { received <- m })
		require.NoError(t, err)
		defer sub.Close()

		mockDB.ExpectExec("INSERT INTO messages").WillReturnError(errors.New("disk full"))

		err = repo.InsertMessage(ctx, "u1", 4, model.ChatMessage{ID: "m1", Text: "x", Sender: model.SenderAI})
		assert.ErrorContains(t, err, "disk full")

		select {
		case <-received:
			t.Fatal("failed insert must not be published")
		case <-time.After(30 * time.Millisecond):
		}
	})
}

func TestSQLiteRepository_CountUserMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("Lifetime", func(t *testing.T) {
		repo, mockDB, _ := setupSQLiteRepository(t)
		mockDB.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM messages WHERE user_id = ? AND sender = 'user'")).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		n, err := repo.CountUserMessages(ctx, "u1", time.Time{})
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Since start of day", func(t *testing.T) {
		repo, mockDB, _ := setupSQLiteRepository(t)
		since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		mockDB.ExpectQuery(regexp.QuoteMeta("AND created_at >= ?")).
			WithArgs("u1", "2024-05-01T00:00:00.000Z").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(50))

		n, err := repo.CountUserMessages(ctx, "u1", since)
		require.NoError(t, err)
		assert.Equal(t, 50, n)
	})
}

func TestSQLiteRepository_IsSubscribed(t *testing.T) {
	ctx := context.Background()

	t.Run("No row means not subscribed", func(t *testing.T) {
		repo, mockDB, _ := setupSQLiteRepository(t)
		mockDB.ExpectQuery("SELECT is_subscribed FROM subscriptions").WithArgs("u1").WillReturnError(sql.ErrNoRows)

		ok, err := repo.IsSubscribed(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Subscribed", func(t *testing.T) {
		repo, mockDB, _ := setupSQLiteRepository(t)
		mockDB.ExpectQuery("SELECT is_subscribed FROM subscriptions").WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"is_subscribed"}).AddRow(true))

		ok, err := repo.IsSubscribed(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestSQLiteRepository_GetCharacter(t *testing.T) {
	ctx := context.Background()
	columns := []string{"id", "name", "description", "greeting", "image_url", "model", "system_prompt", "category", "type", "tags", "example_questions", "sub_tasks"}

	t.Run("Success", func(t *testing.T) {
		repo, mockDB, _ := setupSQLiteRepository(t)
		mockDB.ExpectQuery("SELECT id, name").WithArgs(int64(42)).WillReturnRows(
			sqlmock.NewRows(columns).AddRow(int64(42), "Luna", "Guide", nil, nil, "m", "prompt", "Fitness", "wellness_guide",
				`["Health"]`, `["q1","q2"]`, nil))

		ch, err := repo.GetCharacter(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, "42", ch.ID)
		assert.Equal(t, "Luna", ch.Name)
		assert.Equal(t, []string{"Health"}, ch.Tags)
		assert.Equal(t, []string{"q1", "q2"}, ch.ExampleQuestions)
		assert.Nil(t, ch.SubTasks)
		assert.Equal(t, model.SourceRemote, ch.Source)
	})

	t.Run("Failure - Not found", func(t *testing.T) {
		repo, mockDB, _ := setupSQLiteRepository(t)
		mockDB.ExpectQuery("SELECT id, name").WithArgs(int64(7)).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetCharacter(ctx, 7)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestSQLiteRepository_RecentChats(t *testing.T) {
	repo, mockDB, _ := setupSQLiteRepository(t)
	mockDB.ExpectQuery("SELECT character_id, content, MAX").WithArgs("u1", 20).WillReturnRows(
		sqlmock.NewRows([]string{"character_id", "content", "created_at"}).
			AddRow(int64(4), "latest fitness", "2024-05-02T10:00:00.000Z").
			AddRow(int64(1), nil, "2024-05-01T10:00:00.000Z"))

	chats, err := repo.RecentChats(context.Background(), "u1", 20)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, int64(4), chats[0].CharacterID)
	assert.Equal(t, "latest fitness", chats[0].LastMessage)
	assert.Equal(t, "No messages yet", chats[1].LastMessage)
}

func TestSQLiteRepository_GetAPIKey(t *testing.T) {
	repo, mockDB, _ := setupSQLiteRepository(t)
	mockDB.ExpectQuery("SELECT api_key FROM ai_key").WithArgs("openrouter").
		WillReturnRows(sqlmock.NewRows([]string{"api_key"}).AddRow("sk-123"))
	mockDB.ExpectQuery("SELECT api_key FROM ai_key").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	key, err := repo.GetAPIKey(context.Background(), "openrouter")
	require.NoError(t, err)
	assert.Equal(t, "sk-123", key)

	_, err = repo.GetAPIKey(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
