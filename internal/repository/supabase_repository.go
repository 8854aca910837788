package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"fantasy-ai/backend/internal/model"
	"fantasy-ai/backend/internal/realtime"
)

// recentScanLimit is the page size used when building the recent chats list.
const recentScanLimit = 500

// SupabaseConfig holds the hosted project connection settings.
type SupabaseConfig struct {
	URL    string
	APIKey string
}

// SupabaseRepository reads and writes conversations through the project's PostgREST API.
// Live replies arrive through the hub, which a realtime.PGListener feeds.
type SupabaseRepository struct {
	client *supabase.Client
	hub    *realtime.Hub
	now    func() time.Time
}

var (
	_ ConversationStore = (*SupabaseRepository)(nil)
	_ CharacterSource   = (*SupabaseRepository)(nil)
	_ KeySource         = (*SupabaseRepository)(nil)
)

func NewSupabaseRepository(cfg SupabaseConfig, hub *realtime.Hub) (*SupabaseRepository, error) {
	if cfg.URL == "" {
		return nil, errors.New("supabase URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("supabase API key is required")
	}

	client, err := supabase.NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &SupabaseRepository{client: client, hub: hub, now: time.Now}, nil
}

func (r *SupabaseRepository) LoadHistory(_ context.Context, userID string, characterID int64) ([]model.ChatMessage, error) {
	var rows []model.MessageRow
	_, err := r.client.From("messages").
		Select("*", "", false).
		Eq("user_id", userID).
		Eq("character_id", formatID(characterID)).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	now := r.now()
	messages := make([]model.ChatMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.ToChatMessage(now))
	}
	return messages, nil
}

func (r *SupabaseRepository) InsertMessage(_ context.Context, userID string, characterID int64, msg model.ChatMessage) error {
	row := model.NewMessageRow(userID, characterID, msg)
	_, _, err := r.client.From("messages").
		Insert(row, false, "", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *SupabaseRepository) Subscribe(_ context.Context, userID string, characterID int64, sink realtime.Sink) (*realtime.Subscription, error) {
	if r.hub == nil {
		return nil, errors.New("realtime hub is not configured")
	}
	return r.hub.Subscribe(realtime.Filter{UserID: userID, CharacterID: characterID}, sink), nil
}

func (r *SupabaseRepository) Unsubscribe(sub *realtime.Subscription) {
	sub.Close()
}

func (r *SupabaseRepository) CountUserMessages(_ context.Context, userID string, since time.Time) (int, error) {
	q := r.client.From("messages").
		Select("id", "exact", true).
		Eq("user_id", userID).
		Eq("sender", string(model.SenderUser))
	if !since.IsZero() {
		q = q.Gte("created_at", model.FormatRowTime(since))
	}

	_, count, err := q.Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to count user messages: %w", err)
	}
	return int(count), nil
}

func (r *SupabaseRepository) IsSubscribed(_ context.Context, userID string) (bool, error) {
	var rows []struct {
		UserID       string `json:"user_id"`
		IsSubscribed *bool  `json:"is_subscribed"`
	}
	_, err := r.client.From("subscriptions").
		Select("is_subscribed, user_id", "", false).
		Eq("user_id", userID).
		ExecuteTo(&rows)
	if err != nil {
		return false, fmt.Errorf("failed to read subscription: %w", err)
	}
	if len(rows) == 0 || rows[0].IsSubscribed == nil {
		return false, nil
	}
	return *rows[0].IsSubscribed, nil
}

// RecentChats pages through the user's messages newest first. Each page excludes the
// characters already found, so one busy conversation cannot hide the others.
func (r *SupabaseRepository) RecentChats(_ context.Context, userID string, limit int) ([]model.RecentChat, error) {
	var latest []model.MessageRow
	seen := make(map[int64]bool)
	var excluded []string

	for limit <= 0 || len(seen) < limit {
		query := r.client.From("messages").
			Select("character_id, content, created_at", "", false).
			Eq("user_id", userID)
		if len(excluded) > 0 {
			query = query.Not("character_id", "in", "("+strings.Join(excluded, ",")+")")
		}

		var rows []model.MessageRow
		_, err := query.
			Order("created_at", &postgrest.OrderOpts{Ascending: false}).
			Limit(recentScanLimit, "").
			ExecuteTo(&rows)
		if err != nil {
			return nil, fmt.Errorf("failed to load recent chats: %w", err)
		}

		for _, row := range rows {
			if seen[row.CharacterID] {
				continue
			}
			seen[row.CharacterID] = true
			excluded = append(excluded, formatID(row.CharacterID))
			latest = append(latest, row)
		}
		if len(rows) < recentScanLimit {
			break
		}
	}
	return latestPerCharacter(latest, limit), nil
}

func (r *SupabaseRepository) GetCharacter(_ context.Context, id int64) (*model.Character, error) {
	var rows []characterRow
	_, err := r.client.From("characters").
		Select("*", "", false).
		Eq("id", strconv.FormatInt(id, 10)).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read character %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0].toCharacter(), nil
}

func (r *SupabaseRepository) ListCharactersByType(_ context.Context, characterType string) ([]*model.Character, error) {
	var rows []characterRow
	_, err := r.client.From("characters").
		Select("*", "", false).
		Eq("type", characterType).
		Order("id", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to query characters: %w", err)
	}

	out := make([]*model.Character, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toCharacter())
	}
	return out, nil
}

func (r *SupabaseRepository) GetAPIKey(_ context.Context, keyName string) (string, error) {
	var rows []struct {
		APIKey string `json:"api_key"`
	}
	_, err := r.client.From("ai_key").
		Select("api_key", "", false).
		Eq("key_name", keyName).
		ExecuteTo(&rows)
	if err != nil {
		return "", fmt.Errorf("failed to read api key: %w", err)
	}
	if len(rows) == 0 || rows[0].APIKey == "" {
		return "", ErrNotFound
	}
	return rows[0].APIKey, nil
}
