package repository

import (
	"context"
	"time"

	"fantasy-ai/backend/internal/model"
	"fantasy-ai/backend/internal/realtime"
)

// ConversationStore persists authenticated users' conversations and exposes a live feed
// of assistant replies. Implementations exist for the local SQLite database and for the
// hosted Supabase project.
type ConversationStore interface {
	// LoadHistory returns the stored messages of one conversation, oldest first.
	LoadHistory(ctx context.Context, userID string, characterID int64) ([]model.ChatMessage, error)
	InsertMessage(ctx context.Context, userID string, characterID int64, msg model.ChatMessage) error

	// Subscribe delivers assistant-authored messages inserted for (userID, characterID)
	// until the returned subscription is closed.
	Subscribe(ctx context.Context, userID string, characterID int64, sink realtime.Sink) (*realtime.Subscription, error)
	Unsubscribe(sub *realtime.Subscription)

	// CountUserMessages counts user-authored messages across all characters created at
	// or after since. A zero since counts the user's whole history.
	CountUserMessages(ctx context.Context, userID string, since time.Time) (int, error)
	IsSubscribed(ctx context.Context, userID string) (bool, error)

	// RecentChats returns the latest message per character, most recent first.
	RecentChats(ctx context.Context, userID string, limit int) ([]model.RecentChat, error)
}

// CharacterSource reads character rows. GetCharacter returns ErrNotFound when no row matches.
type CharacterSource interface {
	GetCharacter(ctx context.Context, id int64) (*model.Character, error)
	ListCharactersByType(ctx context.Context, characterType string) ([]*model.Character, error)
}

// KeySource reads provider API keys stored alongside the application data.
// GetAPIKey returns ErrNotFound when the key is absent.
type KeySource interface {
	GetAPIKey(ctx context.Context, keyName string) (string, error)
}

// characterRow is the stored shape of a character, shared by both backends.
type characterRow struct {
	ID               int64    `json:"id"`
	Name             *string  `json:"name"`
	Description      *string  `json:"description"`
	Greeting         *string  `json:"greeting"`
	ImageURL         *string  `json:"image_url"`
	Model            *string  `json:"model"`
	SystemPrompt     *string  `json:"system_prompt"`
	Category         *string  `json:"category"`
	Type             *string  `json:"type"`
	Tags             []string `json:"tags"`
	ExampleQuestions []string `json:"example_questions"`
	SubTasks         []string `json:"sub_tasks"`
}

func (r characterRow) toCharacter() *model.Character {
	return &model.Character{
		ID:               formatID(r.ID),
		Name:             deref(r.Name),
		Description:      deref(r.Description),
		Greeting:         deref(r.Greeting),
		AvatarRef:        deref(r.ImageURL),
		Model:            deref(r.Model),
		SystemPrompt:     deref(r.SystemPrompt),
		Category:         deref(r.Category),
		Type:             deref(r.Type),
		Tags:             r.Tags,
		ExampleQuestions: r.ExampleQuestions,
		SubTasks:         r.SubTasks,
		Source:           model.SourceRemote,
	}
}

// latestPerCharacter keeps the first message seen per character from rows ordered newest first.
func latestPerCharacter(rows []model.MessageRow, limit int) []model.RecentChat {
	seen := make(map[int64]bool)
	var out []model.RecentChat
	for _, row := range rows {
		if seen[row.CharacterID] {
			continue
		}
		seen[row.CharacterID] = true
		last := "No messages yet"
		if row.Content != nil && *row.Content != "" {
			last = *row.Content
		}
		out = append(out, model.RecentChat{
			CharacterID:       row.CharacterID,
			LastMessage:       last,
			LastInteractionAt: row.CreatedAt,
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
