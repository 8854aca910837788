package model

import (
	"strconv"
	"strings"
	"time"
)

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// MessageKind separates real conversation turns from synthesized entries.
// The zero value is treated as KindMessage so stored guest history decodes cleanly.
type MessageKind string

const (
	KindMessage  MessageKind = "message"
	KindGreeting MessageKind = "greeting"
	KindError    MessageKind = "error"
)

// ChatMessage is a single turn in a conversation. Timestamp is epoch milliseconds.
type ChatMessage struct {
	ID        string      `json:"id"`
	Text      string      `json:"text"`
	Sender    Sender      `json:"sender"`
	Timestamp int64       `json:"timestamp"`
	ImageRef  string      `json:"imageUri,omitempty"`
	AudioRef  string      `json:"audioUri,omitempty"`
	Kind      MessageKind `json:"kind,omitempty"`
}

// EffectiveKind returns the message kind, defaulting to KindMessage.
func (m ChatMessage) EffectiveKind() MessageKind {
	if m.Kind == "" {
		return KindMessage
	}
	return m.Kind
}

// Time converts the epoch-millisecond timestamp to a time.Time.
func (m ChatMessage) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// DateSeparator is a synthetic transcript entry marking the start of a calendar day.
type DateSeparator struct {
	ID   string `json:"id"`
	Date string `json:"date"`
}

type ItemType string

const (
	ItemMessage   ItemType = "message"
	ItemSeparator ItemType = "date"
)

// ListItem is one rendered transcript element: either a message or a date separator.
type ListItem struct {
	Type      ItemType       `json:"type"`
	Message   *ChatMessage   `json:"message,omitempty"`
	Separator *DateSeparator `json:"separator,omitempty"`
}

// GuestSessionSummary is the per-character entry in a guest's recent chats list.
type GuestSessionSummary struct {
	ID                int64   `json:"id"`
	CharacterID       int64   `json:"characterId"`
	Name              string  `json:"name"`
	Avatar            *string `json:"avatar"`
	LastMessage       string  `json:"lastMessage"`
	LastInteractionAt string  `json:"lastInteractionAt"`
	Category          string  `json:"category,omitempty"`
}

// InteractionTime parses LastInteractionAt, returning the zero time on malformed input.
func (s GuestSessionSummary) InteractionTime() time.Time {
	t, err := time.Parse(time.RFC3339Nano, s.LastInteractionAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// CharacterSource records where a character descriptor came from.
type CharacterSource string

const (
	SourceRemote     CharacterSource = "remote"
	SourceCatalog    CharacterSource = "catalog"
	SourceNavigation CharacterSource = "navigation"
)

// Character is an AI persona a user can chat with.
type Character struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Greeting           string          `json:"greeting,omitempty"`
	OpeningMessage     string          `json:"opening_message,omitempty"`
	SystemPrompt       string          `json:"system_prompt"`
	Model              string          `json:"model"`
	ExampleQuestions   []string        `json:"example_questions"`
	SuggestedQuestions []string        `json:"suggested_questions"`
	SubTasks           []string        `json:"sub_tasks"`
	Category           string          `json:"category,omitempty"`
	Tags               []string        `json:"tags"`
	AvatarRef          string          `json:"avatar,omitempty"`
	Type               string          `json:"type,omitempty"`
	Source             CharacterSource `json:"source"`
}

// NumericID returns the integer form of the character ID used by storage keys and remote rows.
func (c *Character) NumericID() (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(c.ID), 10, 64)
}

// Category is a grouping of assistant tasks shown on the home screen.
type Category struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Group       string   `json:"group"`
	SubTasks    []string `json:"sub_tasks"`
}

// Tier is the usage tier that applies to a single send attempt.
type Tier string

const (
	TierGuest      Tier = "guest"
	TierFree       Tier = "free"
	TierSubscribed Tier = "subscribed"
)

// UsageCounters holds the counter relevant to a tier and the limit it is checked against.
type UsageCounters struct {
	Tier  Tier `json:"tier"`
	Count int  `json:"count"`
	Limit int  `json:"limit"`
}

// Remaining returns how many sends are left before the limit is hit.
func (u UsageCounters) Remaining() int {
	if u.Count >= u.Limit {
		return 0
	}
	return u.Limit - u.Count
}

// NoticeAction is an optional call to action attached to a limit notice.
type NoticeAction struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// LimitNotice is the user-facing message shown when a send is blocked by usage limits.
type LimitNotice struct {
	Title   string        `json:"title"`
	Message string        `json:"message"`
	Action  *NoticeAction `json:"action,omitempty"`
}

// Identity is the caller on whose behalf a session runs.
type Identity struct {
	UserID   string `json:"user_id,omitempty"`
	Email    string `json:"email,omitempty"`
	DeviceID string `json:"device_id,omitempty"`
	Guest    bool   `json:"guest"`
}

// OwnerKey identifies the owner of guest or authenticated state.
func (i Identity) OwnerKey() string {
	if i.Guest {
		return "device:" + i.DeviceID
	}
	return "user:" + i.UserID
}

// StagedMedia is an image attachment waiting to be sent with the next turn.
type StagedMedia struct {
	URI      string `json:"uri,omitempty"`
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type,omitempty"`
}

// RecentChat is one entry in a user's recent conversations list.
type RecentChat struct {
	CharacterID       int64  `json:"characterId"`
	Name              string `json:"name"`
	LastMessage       string `json:"lastMessage"`
	LastInteractionAt string `json:"lastInteractionAt"`
	Category          string `json:"category,omitempty"`
}
