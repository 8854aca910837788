package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	app_errors "fantasy-ai/backend/internal/errors"
	"fantasy-ai/backend/internal/model"
	"fantasy-ai/backend/internal/service"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// CharacterID accepts both the numeric and the string form clients send.
type CharacterID string

func (c *CharacterID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CharacterID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("character id must be a string or a number: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("character id must be an integer: %w", err)
	}
	*c = CharacterID(n.String())
	return nil
}

// CharacterDTO is what a client already knows about a character it navigated to.
type CharacterDTO struct {
	Name             string   `json:"name" validate:"required,max=100" example:"Pirate Pete"`
	Description      string   `json:"description" validate:"max=2000"`
	Category         string   `json:"category" validate:"max=100" example:"Entertainment"`
	Greeting         string   `json:"greeting" validate:"max=2000"`
	OpeningMessage   string   `json:"opening_message" validate:"max=2000"`
	SystemPrompt     string   `json:"system_prompt" validate:"max=8000"`
	Model            string   `json:"model" validate:"max=200"`
	Avatar           string   `json:"avatar" validate:"max=2048"`
	ExampleQuestions []string `json:"example_questions" validate:"max=10,dive,max=300"`
	Tags             []string `json:"tags" validate:"max=20,dive,max=50"`
}

func (d *CharacterDTO) toModel() *model.Character {
	if d == nil {
		return nil
	}
	return &model.Character{
		Name:             d.Name,
		Description:      d.Description,
		Category:         d.Category,
		Greeting:         d.Greeting,
		OpeningMessage:   d.OpeningMessage,
		SystemPrompt:     d.SystemPrompt,
		Model:            d.Model,
		AvatarRef:        d.Avatar,
		ExampleQuestions: d.ExampleQuestions,
		Tags:             d.Tags,
	}
}

// ImageDTO carries an attached picture. Data is base64; URI is the client's own
// reference and is used when no bytes are sent.
type ImageDTO struct {
	Data     string `json:"data" validate:"required_without=URI,omitempty,base64"`
	MimeType string `json:"mime_type" validate:"omitempty,image_mime" example:"image/jpeg"`
	URI      string `json:"uri" validate:"max=2048"`
}

func (d *ImageDTO) toStaged() (*model.StagedMedia, error) {
	if d == nil {
		return nil, nil
	}
	staged := &model.StagedMedia{URI: d.URI, MimeType: d.MimeType}
	if d.Data != "" {
		raw, err := base64.StdEncoding.DecodeString(d.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: image data is not valid base64", app_errors.ErrValidation)
		}
		staged.Data = raw
		if staged.MimeType == "" {
			staged.MimeType = http.DetectContentType(raw)
		}
	}
	return staged, nil
}

type OpenSessionRequest struct {
	CharacterID    CharacterID   `json:"character_id" validate:"required" swaggertype:"string" example:"4"`
	Character      *CharacterDTO `json:"character,omitempty"`
	InitialMessage string        `json:"initial_message,omitempty" validate:"max=4000"`
}

type SendMessageRequest struct {
	Text     string    `json:"text" validate:"max=4000" example:"Plan my workout for today"`
	Image    *ImageDTO `json:"image,omitempty"`
	AudioRef string    `json:"audio_ref,omitempty" validate:"max=2048"`
}

// SessionResponse is returned by every session endpoint. Send is present only when
// the request sent a message.
type SessionResponse struct {
	Session service.Snapshot    `json:"session"`
	Send    *service.SendResult `json:"send,omitempty"`
}

type TranscriptionResponse struct {
	Text string `json:"text"`
}

// respondWithError maps domain errors to status codes. Details of unexpected errors are
// logged and never sent to the client.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "The requested resource was not found."
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, app_errors.ErrUnauthenticated):
		statusCode = http.StatusUnauthorized
		message = "A valid bearer token or device id is required."
	case errors.Is(err, app_errors.ErrResponsePending):
		statusCode = http.StatusConflict
		message = "Please wait for the current reply before sending another message."
	case errors.Is(err, app_errors.ErrConflict):
		statusCode = http.StatusConflict
		message = "The chat is not ready for this action."
	case errors.Is(err, app_errors.ErrSessionClosed):
		statusCode = http.StatusGone
		message = "The chat session has been closed."
	case errors.Is(err, app_errors.ErrPermission):
		statusCode = http.StatusForbidden
		message = "You do not have permission to perform this action."
	default:
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal server error occurred."
	}

	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)

	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

// decodeJSON reads a request body into dst and validates it.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %s", app_errors.ErrValidation, err.Error())
	}
	return validateRequest(dst)
}

// writeStreamEvent writes one named SSE event. A write error means the client is gone.
func writeStreamEvent(w http.ResponseWriter, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal stream data to JSON", "error", err)
		return nil
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return fmt.Errorf("failed to write data to stream: %w", err)
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}

// writeStreamComment keeps idle connections open through proxies.
func writeStreamComment(w http.ResponseWriter, comment string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", comment); err != nil {
		return fmt.Errorf("failed to write comment to stream: %w", err)
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
