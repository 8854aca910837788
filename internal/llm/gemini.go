package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiCompleter serves completions from Google's Gemini API. Character models are
// ignored when they are not Gemini model names.
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

func NewGeminiCompleter(ctx context.Context, apiKey, modelName string) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("could not create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	return &GeminiCompleter{client: cl, model: modelName}, nil
}

func (g *GeminiCompleter) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	modelName := g.model
	if strings.HasPrefix(req.Model, "gemini") {
		modelName = req.Model
	}

	system, history, last, err := toGeminiContents(req.Messages)
	if err != nil {
		return nil, err
	}

	m := g.client.GenerativeModel(modelName)
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	cs := m.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, last...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return &CompletionResponse{Model: modelName, Content: b.String()}, nil
}

// toGeminiContents splits chat messages into a system instruction, prior turns and the
// parts of the final user turn.
func toGeminiContents(msgs []Message) (string, []*genai.Content, []genai.Part, error) {
	var system []string
	var turns []*genai.Content
	for _, msg := range msgs {
		if msg.Role == RoleSystem {
			system = append(system, msg.Text())
			continue
		}
		parts, err := geminiParts(msg)
		if err != nil {
			return "", nil, nil, err
		}
		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		turns = append(turns, &genai.Content{Role: role, Parts: parts})
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != "user" {
		return "", nil, nil, fmt.Errorf("conversation must end with a user turn")
	}
	last := turns[len(turns)-1]
	return strings.Join(system, "\n\n"), turns[:len(turns)-1], last.Parts, nil
}

func geminiParts(msg Message) ([]genai.Part, error) {
	if len(msg.Parts) == 0 {
		return []genai.Part{genai.Text(msg.Content)}, nil
	}
	parts := make([]genai.Part, 0, len(msg.Parts))
	for _, p := range msg.Parts {
		switch p.Type {
		case "text":
			parts = append(parts, genai.Text(p.Text))
		case "image_url":
			if p.ImageURL == nil {
				continue
			}
			mimeType, data, err := ParseDataURI(p.ImageURL.URL)
			if err != nil {
				return nil, err
			}
			parts = append(parts, genai.Blob{MIMEType: mimeType, Data: data})
		}
	}
	return parts, nil
}
