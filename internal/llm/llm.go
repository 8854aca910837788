package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrNoAPIKey is returned when no completion API key is configured or stored.
	ErrNoAPIKey = errors.New("no completion api key available")
	// ErrEmptyResponse is returned when the provider answers without any choices.
	ErrEmptyResponse = errors.New("completion response has no choices")
)

// Completer sends a conversation to a language model and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

type CompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type CompletionResponse struct {
	ID      string
	Model   string
	Content string
}

// Message is one chat turn. When Parts is set the content is sent as a list of parts
// instead of a plain string.
type Message struct {
	Role    string
	Content string
	Parts   []ContentPart
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

func TextMessage(role, text string) Message {
	return Message{Role: role, Content: text}
}

// ImageMessage builds a user turn carrying text plus an inline image.
func ImageMessage(text string, data []byte, mimeType string) Message {
	return Message{
		Role: RoleUser,
		Parts: []ContentPart{
			{Type: "text", Text: text},
			{Type: "image_url", ImageURL: &ImageURL{URL: DataURI(data, mimeType)}},
		},
	}
}

func (m Message) MarshalJSON() ([]byte, error) {
	if len(m.Parts) > 0 {
		return json.Marshal(struct {
			Role    string        `json:"role"`
			Content []ContentPart `json:"content"`
		}{m.Role, m.Parts})
	}
	return json.Marshal(struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{m.Role, m.Content})
}

func (m *Message) UnmarshalJSON(b []byte) error {
	var raw struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	m.Role = raw.Role
	if len(raw.Content) == 0 {
		return nil
	}
	if raw.Content[0] == '[' {
		return json.Unmarshal(raw.Content, &m.Parts)
	}
	return json.Unmarshal(raw.Content, &m.Content)
}

// Text returns the plain text of a message, joining text parts when present.
func (m Message) Text() string {
	if len(m.Parts) == 0 {
		return m.Content
	}
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Type == "text" {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// DataURI encodes an image as a base64 data URI, defaulting to JPEG.
func DataURI(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI reverses DataURI.
func ParseDataURI(uri string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("unsupported data uri encoding")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("could not decode data uri: %w", err)
	}
	return strings.TrimSuffix(meta, ";base64"), data, nil
}
