package guest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"fantasy-ai/backend/internal/kv"
	"fantasy-ai/backend/internal/model"
)

const (
	summariesKey    = "guestChats"
	messagesPrefix  = "guestMessages_"
	countPrefix     = "guestMessageCount_"
	excerptMaxRunes = 100

	DefaultSummaryLimit = 15
)

// Store keeps a guest's per-character history, message counters and recent chats
// summary. Every device is its own namespace; characters never share keys.
type Store struct {
	kv           kv.Store
	summaryLimit int
	now          func() time.Time
}

func NewStore(store kv.Store, summaryLimit int) *Store {
	if summaryLimit <= 0 {
		summaryLimit = DefaultSummaryLimit
	}
	return &Store{kv: store, summaryLimit: summaryLimit, now: time.Now}
}

func messagesKey(characterID int64) string {
	return messagesPrefix + strconv.FormatInt(characterID, 10)
}

func countKey(characterID int64) string {
	return countPrefix + strconv.FormatInt(characterID, 10)
}

// LoadHistory returns the stored history for a character. Data that fails the shape
// check is discarded and reported as empty.
func (s *Store) LoadHistory(ctx context.Context, deviceID string, characterID int64) ([]model.ChatMessage, error) {
	raw, ok, err := s.kv.Get(ctx, deviceID, messagesKey(characterID))
	if err != nil {
		return nil, fmt.Errorf("failed to load guest history: %w", err)
	}
	if !ok {
		return []model.ChatMessage{}, nil
	}

	msgs, err := decodeHistory(raw)
	if err != nil {
		slog.Warn("Discarding malformed guest history", "device_id", deviceID, "character_id", characterID, "error", err)
		if dErr := s.kv.Delete(ctx, deviceID, messagesKey(characterID)); dErr != nil {
			slog.Error("Failed to clear malformed guest history", "device_id", deviceID, "character_id", characterID, "error", dErr)
		}
		return []model.ChatMessage{}, nil
	}
	return msgs, nil
}

// AppendMessage adds msg to the end of a character's history.
func (s *Store) AppendMessage(ctx context.Context, deviceID string, characterID int64, msg model.ChatMessage) error {
	err := s.kv.Update(ctx, deviceID, messagesKey(characterID), func(cur []byte, exists bool) ([]byte, error) {
		var msgs []model.ChatMessage
		if exists {
			decoded, err := decodeHistory(cur)
			if err != nil {
				slog.Warn("Replacing malformed guest history", "device_id", deviceID, "character_id", characterID, "error", err)
			} else {
				msgs = decoded
			}
		}
		msgs = append(msgs, msg)
		return json.Marshal(msgs)
	})
	if err != nil {
		return fmt.Errorf("failed to append guest message: %w", err)
	}
	return nil
}

// LoadCount returns the number of messages the guest has sent to a character.
func (s *Store) LoadCount(ctx context.Context, deviceID string, characterID int64) (int, error) {
	raw, ok, err := s.kv.Get(ctx, deviceID, countKey(characterID))
	if err != nil {
		return 0, fmt.Errorf("failed to load guest message count: %w", err)
	}
	if !ok {
		return 0, nil
	}
	return parseCount(raw), nil
}

// LoadAndIncrementCount bumps the per-character counter and returns the new value.
func (s *Store) LoadAndIncrementCount(ctx context.Context, deviceID string, characterID int64) (int, error) {
	var next int
	err := s.kv.Update(ctx, deviceID, countKey(characterID), func(cur []byte, exists bool) ([]byte, error) {
		next = 1
		if exists {
			next = parseCount(cur) + 1
		}
		return []byte(strconv.Itoa(next)), nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment guest message count: %w", err)
	}
	return next, nil
}

// LoadSummaries returns the guest's recent chats, most recent first.
func (s *Store) LoadSummaries(ctx context.Context, deviceID string) ([]model.GuestSessionSummary, error) {
	raw, ok, err := s.kv.Get(ctx, deviceID, summariesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load guest chats: %w", err)
	}
	if !ok {
		return []model.GuestSessionSummary{}, nil
	}

	var summaries []model.GuestSessionSummary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		slog.Warn("Discarding malformed guest chats", "device_id", deviceID, "error", err)
		if dErr := s.kv.Delete(ctx, deviceID, summariesKey); dErr != nil {
			slog.Error("Failed to clear malformed guest chats", "device_id", deviceID, "error", dErr)
		}
		return []model.GuestSessionSummary{}, nil
	}
	if summaries == nil {
		summaries = []model.GuestSessionSummary{}
	}
	return summaries, nil
}

// UpsertSummary records the latest reply for a character. The excerpt is cut to 100
// characters, the interaction time is set to now, and the list is re-sorted and capped.
func (s *Store) UpsertSummary(ctx context.Context, deviceID string, summary model.GuestSessionSummary) error {
	summary.ID = summary.CharacterID
	summary.LastMessage = excerpt(summary.LastMessage)
	summary.LastInteractionAt = model.FormatRowTime(s.now())

	err := s.kv.Update(ctx, deviceID, summariesKey, func(cur []byte, exists bool) ([]byte, error) {
		var summaries []model.GuestSessionSummary
		if exists {
			if err := json.Unmarshal(cur, &summaries); err != nil {
				slog.Warn("Replacing malformed guest chats", "device_id", deviceID, "error", err)
				summaries = nil
			}
		}

		replaced := false
		for i := range summaries {
			if summaries[i].CharacterID == summary.CharacterID {
				summaries[i] = summary
				replaced = true
				break
			}
		}
		if !replaced {
			summaries = append(summaries, summary)
		}

		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].InteractionTime().After(summaries[j].InteractionTime())
		})
		if len(summaries) > s.summaryLimit {
			summaries = summaries[:s.summaryLimit]
		}
		return json.Marshal(summaries)
	})
	if err != nil {
		return fmt.Errorf("failed to update guest chats: %w", err)
	}
	return nil
}

// decodeHistory accepts only an array whose items all carry id, text, sender and timestamp.
func decodeHistory(raw []byte) ([]model.ChatMessage, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("history is not an array of objects: %w", err)
	}
	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("item %d is null", i)
		}
		for _, field := range []string{"id", "text", "sender", "timestamp"} {
			if _, ok := item[field]; !ok {
				return nil, fmt.Errorf("item %d is missing %q", i, field)
			}
		}
	}

	msgs := make([]model.ChatMessage, 0, len(items))
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, fmt.Errorf("history items have invalid field types: %w", err)
	}
	return msgs, nil
}

func parseCount(raw []byte) int {
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptMaxRunes {
		return text
	}
	return string(runes[:excerptMaxRunes])
}
