package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// WhisperTranscriber posts audio to an OpenAI-compatible /audio/transcriptions endpoint.
type WhisperTranscriber struct {
	client *http.Client
	url    string
	model  string
	keys   KeyProvider
}

func NewWhisperTranscriber(url, model string, keys KeyProvider, timeout time.Duration) *WhisperTranscriber {
	if model == "" {
		model = "whisper"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &WhisperTranscriber{
		client: &http.Client{Timeout: timeout},
		url:    strings.TrimRight(url, "/"),
		model:  model,
		keys:   keys,
	}
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	key, err := t.keys.APIKey(ctx)
	if err != nil {
		return "", err
	}
	if filename == "" {
		filename = "recording.m4a"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("could not create form file: %w", err)
	}
	if _, err := io.Copy(fw, audio); err != nil {
		return "", fmt.Errorf("could not copy audio: %w", err)
	}
	if err := mw.WriteField("model", t.model); err != nil {
		return "", fmt.Errorf("could not write model field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("could not close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("could not create http request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4*maxErrorDetail))
		return "", fmt.Errorf("api returned status %d: %s", resp.StatusCode, errorDetail(bodyBytes))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("could not decode response: %w", err)
	}
	return out.Text, nil
}
