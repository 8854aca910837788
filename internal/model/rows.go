package model

import (
	"time"

	"github.com/google/uuid"
)

// MessageRow is the stored shape of a conversation message, shared by the relational
// stores and the realtime feed.
type MessageRow struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	CharacterID int64   `json:"character_id"`
	Content     *string `json:"content"`
	Sender      *string `json:"sender"`
	ImageURL    *string `json:"image_url,omitempty"`
	AudioURL    *string `json:"audio_url,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// RowTimeFormat is the fixed-width UTC layout used when writing created_at, so stored
// values compare correctly as text.
const RowTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// FormatRowTime renders t for a created_at column.
func FormatRowTime(t time.Time) string {
	return t.UTC().Format(RowTimeFormat)
}

// Postgres renders timestamptz in JSON with a numeric offset and variable precision.
var rowTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseRowTime parses a stored created_at value, reporting false on malformed input.
func ParseRowTime(s string) (time.Time, bool) {
	for _, layout := range rowTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToChatMessage maps a stored row to a transcript message. Missing fields get the same
// placeholders the client has always shown.
func (r MessageRow) ToChatMessage(now time.Time) ChatMessage {
	msg := ChatMessage{
		ID:        r.ID,
		Text:      "[empty message]",
		Sender:    SenderAI,
		Timestamp: now.UnixMilli(),
		Kind:      KindMessage,
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if r.Content != nil {
		msg.Text = *r.Content
	}
	if r.Sender != nil && *r.Sender == string(SenderUser) {
		msg.Sender = SenderUser
	}
	if r.ImageURL != nil {
		msg.ImageRef = *r.ImageURL
	}
	if r.AudioURL != nil {
		msg.AudioRef = *r.AudioURL
	}
	if t, ok := ParseRowTime(r.CreatedAt); ok {
		msg.Timestamp = t.UnixMilli()
	}
	return msg
}

// NewMessageRow builds the row persisted for msg.
func NewMessageRow(userID string, characterID int64, msg ChatMessage) MessageRow {
	content := msg.Text
	sender := string(msg.Sender)
	row := MessageRow{
		ID:          msg.ID,
		UserID:      userID,
		CharacterID: characterID,
		Content:     &content,
		Sender:      &sender,
		CreatedAt:   FormatRowTime(msg.Time()),
	}
	if msg.ImageRef != "" {
		img := msg.ImageRef
		row.ImageURL = &img
	}
	if msg.AudioRef != "" {
		audio := msg.AudioRef
		row.AudioURL = &audio
	}
	return row
}
