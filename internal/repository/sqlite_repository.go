package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fantasy-ai/backend/internal/model"
	"fantasy-ai/backend/internal/realtime"
)

// SQLiteRepository stores conversations in the local database and publishes inserted
// rows to an in-process hub, which stands in for the hosted realtime feed.
type SQLiteRepository struct {
	db  *sql.DB
	hub *realtime.Hub
	now func() time.Time
}

var (
	_ ConversationStore = (*SQLiteRepository)(nil)
	_ CharacterSource   = (*SQLiteRepository)(nil)
	_ KeySource         = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(db *sql.DB, hub *realtime.Hub) *SQLiteRepository {
	return &SQLiteRepository{db: db, hub: hub, now: time.Now}
}

func (r *SQLiteRepository) LoadHistory(ctx context.Context, userID string, characterID int64) ([]model.ChatMessage, error) {
	query := `SELECT id, user_id, character_id, content, sender, image_url, audio_url, created_at
		FROM messages WHERE user_id = ? AND character_id = ? ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	now := r.now()
	messages := []model.ChatMessage{}
	for rows.Next() {
		var row model.MessageRow
		var content, sender, image, audio sql.NullString
		if err := rows.Scan(&row.ID, &row.UserID, &row.CharacterID, &content, &sender, &image, &audio, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		row.Content = nullable(content)
		row.Sender = nullable(sender)
		row.ImageURL = nullable(image)
		row.AudioURL = nullable(audio)
		messages = append(messages, row.ToChatMessage(now))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}

func (r *SQLiteRepository) InsertMessage(ctx context.Context, userID string, characterID int64, msg model.ChatMessage) error {
	row := model.NewMessageRow(userID, characterID, msg)
	query := `INSERT INTO messages (id, user_id, character_id, content, sender, image_url, audio_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.UserID, row.CharacterID, row.Content, row.Sender, row.ImageURL, row.AudioURL, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	if r.hub != nil {
		r.hub.Publish(realtime.Event{UserID: userID, CharacterID: characterID, Message: msg})
	}
	return nil
}

func (r *SQLiteRepository) Subscribe(_ context.Context, userID string, characterID int64, sink realtime.Sink) (*realtime.Subscription, error) {
	if r.hub == nil {
		return nil, errors.New("realtime hub is not configured")
	}
	return r.hub.Subscribe(realtime.Filter{UserID: userID, CharacterID: characterID}, sink), nil
}

func (r *SQLiteRepository) Unsubscribe(sub *realtime.Subscription) {
	sub.Close()
}

func (r *SQLiteRepository) CountUserMessages(ctx context.Context, userID string, since time.Time) (int, error) {
	query := "SELECT COUNT(*) FROM messages WHERE user_id = ? AND sender = 'user'"
	args := []any{userID}
	if !since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, model.FormatRowTime(since))
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count user messages: %w", err)
	}
	return count, nil
}

func (r *SQLiteRepository) IsSubscribed(ctx context.Context, userID string) (bool, error) {
	var subscribed bool
	err := r.db.QueryRowContext(ctx, "SELECT is_subscribed FROM subscriptions WHERE user_id = ?", userID).Scan(&subscribed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read subscription: %w", err)
	}
	return subscribed, nil
}

func (r *SQLiteRepository) RecentChats(ctx context.Context, userID string, limit int) ([]model.RecentChat, error) {
	// SQLite takes bare columns from the row that produced MAX().
	query := `SELECT character_id, content, MAX(created_at) FROM messages
		WHERE user_id = ? GROUP BY character_id ORDER BY MAX(created_at) DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent chats: %w", err)
	}
	defer rows.Close()

	var latest []model.MessageRow
	for rows.Next() {
		var row model.MessageRow
		var content sql.NullString
		if err := rows.Scan(&row.CharacterID, &content, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recent chat: %w", err)
		}
		row.Content = nullable(content)
		latest = append(latest, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent chats: %w", err)
	}
	return latestPerCharacter(latest, limit), nil
}

const characterColumns = `id, name, description, greeting, image_url, model, system_prompt, category, type,
	tags, example_questions, sub_tasks`

func (r *SQLiteRepository) GetCharacter(ctx context.Context, id int64) (*model.Character, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+characterColumns+" FROM characters WHERE id = ?", id)
	ch, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read character %d: %w", id, err)
	}
	return ch, nil
}

func (r *SQLiteRepository) ListCharactersByType(ctx context.Context, characterType string) ([]*model.Character, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+characterColumns+" FROM characters WHERE type = ? ORDER BY id", characterType)
	if err != nil {
		return nil, fmt.Errorf("failed to query characters: %w", err)
	}
	defer rows.Close()

	var out []*model.Character
	for rows.Next() {
		ch, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetAPIKey(ctx context.Context, keyName string) (string, error) {
	var key string
	err := r.db.QueryRowContext(ctx, "SELECT api_key FROM ai_key WHERE key_name = ?", keyName).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read api key: %w", err)
	}
	return key, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCharacter(s scanner) (*model.Character, error) {
	var row characterRow
	var name, desc, greeting, image, mdl, prompt, category, typ sql.NullString
	var tags, examples, subTasks sql.NullString
	if err := s.Scan(&row.ID, &name, &desc, &greeting, &image, &mdl, &prompt, &category, &typ, &tags, &examples, &subTasks); err != nil {
		return nil, err
	}
	row.Name = nullable(name)
	row.Description = nullable(desc)
	row.Greeting = nullable(greeting)
	row.ImageURL = nullable(image)
	row.Model = nullable(mdl)
	row.SystemPrompt = nullable(prompt)
	row.Category = nullable(category)
	row.Type = nullable(typ)

	var err error
	if row.Tags, err = decodeList(tags); err != nil {
		return nil, fmt.Errorf("invalid tags: %w", err)
	}
	if row.ExampleQuestions, err = decodeList(examples); err != nil {
		return nil, fmt.Errorf("invalid example_questions: %w", err)
	}
	if row.SubTasks, err = decodeList(subTasks); err != nil {
		return nil, fmt.Errorf("invalid sub_tasks: %w", err)
	}
	return row.toCharacter(), nil
}

// decodeList reads a JSON array column. SQLite has no array type.
func decodeList(s sql.NullString) ([]string, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
