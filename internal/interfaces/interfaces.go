package interfaces

import (
	"context"
	"io"

	"fantasy-ai/backend/internal/model"
	"fantasy-ai/backend/internal/service"
)

// The API layer depends on these contracts rather than on the concrete services.

// ChatService serves conversation lists, usage status and transcription.
type ChatService interface {
	ListRecentChats(ctx context.Context, id model.Identity) ([]model.RecentChat, error)
	Usage(ctx context.Context, id model.Identity, characterID string) (model.UsageCounters, error)
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// CharacterService serves the category catalog and character lookups.
type CharacterService interface {
	Categories() []model.Category
	Get(ctx context.Context, id string) (*model.Character, error)
	ByCategory(ctx context.Context, category string) ([]*model.Character, error)
}

// SessionService opens, finds and closes chat sessions on behalf of their owner.
type SessionService interface {
	Open(ctx context.Context, id model.Identity, in service.OpenInput) (*service.ChatSession, error)
	Get(id model.Identity, sessionID string) (*service.ChatSession, error)
	Close(id model.Identity, sessionID string) error
}
