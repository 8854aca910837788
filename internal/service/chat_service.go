package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	app_errors "fantasy-ai/backend/internal/errors"
	"fantasy-ai/backend/internal/llm"
	"fantasy-ai/backend/internal/model"
	"fantasy-ai/backend/internal/repository"
)

// GuestSummaries reads a guest's recent chats.
type GuestSummaries interface {
	LoadSummaries(ctx context.Context, deviceID string) ([]model.GuestSessionSummary, error)
}

// UsageReader reports the counters that apply to the caller's next send.
type UsageReader interface {
	Counters(ctx context.Context, id model.Identity, characterID int64) (model.UsageCounters, error)
}

// ChatService serves the conversation lists, usage status and audio transcription.
type ChatService struct {
	guest       GuestSummaries
	remote      repository.ConversationStore
	usage       UsageReader
	transcriber llm.Transcriber
	recentLimit int
}

func NewChatService(guest GuestSummaries, remote repository.ConversationStore, usage UsageReader, transcriber llm.Transcriber, recentLimit int) *ChatService {
	if recentLimit <= 0 {
		recentLimit = 15
	}
	return &ChatService{guest: guest, remote: remote, usage: usage, transcriber: transcriber, recentLimit: recentLimit}
}

// ListRecentChats returns the caller's conversations, most recent first. Guests get
// their stored summaries; accounts get the latest message per character.
func (s *ChatService) ListRecentChats(ctx context.Context, id model.Identity) ([]model.RecentChat, error) {
	if id.Guest {
		summaries, err := s.guest.LoadSummaries(ctx, id.DeviceID)
		if err != nil {
			return nil, fmt.Errorf("could not load guest chats: %w", err)
		}
		out := make([]model.RecentChat, 0, len(summaries))
		for _, sm := range summaries {
			out = append(out, model.RecentChat{
				CharacterID:       sm.CharacterID,
				Name:              sm.Name,
				LastMessage:       sm.LastMessage,
				LastInteractionAt: sm.LastInteractionAt,
				Category:          sm.Category,
			})
		}
		return out, nil
	}

	chats, err := s.remote.RecentChats(ctx, id.UserID, s.recentLimit)
	if err != nil {
		return nil, fmt.Errorf("could not load recent chats: %w", err)
	}
	if chats == nil {
		chats = []model.RecentChat{}
	}
	return chats, nil
}

// Usage reports the caller's counters for a character.
func (s *ChatService) Usage(ctx context.Context, id model.Identity, characterID string) (model.UsageCounters, error) {
	charID, err := strconv.ParseInt(strings.TrimSpace(characterID), 10, 64)
	if err != nil {
		if id.Guest {
			return model.UsageCounters{}, fmt.Errorf("%w: character_id must be numeric", app_errors.ErrValidation)
		}
		// Account counters do not depend on the character.
		charID = 0
	}
	return s.usage.Counters(ctx, id, charID)
}

// Transcribe converts recorded audio into text.
func (s *ChatService) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if s.transcriber == nil {
		return "", fmt.Errorf("%w: transcription is not configured", app_errors.ErrInternal)
	}
	text, err := s.transcriber.Transcribe(ctx, filename, audio)
	if err != nil {
		slog.Error("Transcription failed", "filename", filename, "error", err)
		return "", fmt.Errorf("could not transcribe audio: %w", err)
	}
	return strings.TrimSpace(text), nil
}
