package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorDetail caps how much of a provider's error body ends up in an error. Error
// text reaches logs and the chat transcript.
const maxErrorDetail = 200

// errorDetail trims a provider error body to at most maxErrorDetail runes.
func errorDetail(body []byte) string {
	detail := strings.TrimSpace(string(body))
	runes := []rune(detail)
	if len(runes) <= maxErrorDetail {
		return detail
	}
	return string(runes[:maxErrorDetail]) + "..."
}

// OpenRouterClient talks to an OpenAI-compatible chat completions API.
type OpenRouterClient struct {
	client *http.Client
	url    string
	keys   KeyProvider
}

func NewOpenRouterClient(url string, keys KeyProvider, timeout time.Duration) *OpenRouterClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenRouterClient{
		client: &http.Client{Timeout: timeout},
		url:    strings.TrimRight(url, "/"),
		keys:   keys,
	}
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one non-streaming completion request. Any non-2xx status fails the attempt.
func (c *OpenRouterClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	key, err := c.keys.APIKey(ctx)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("api returned status %d: %s", resp.StatusCode, errorDetail(bodyBytes))
	}

	var out chatCompletionResponse
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		return nil, fmt.Errorf("could not decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return &CompletionResponse{ID: out.ID, Model: out.Model, Content: out.Choices[0].Message.Content}, nil
}
