package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	app_errors "fantasy-ai/backend/internal/errors"
	"fantasy-ai/backend/internal/interfaces"
	"fantasy-ai/backend/internal/service"
)

const (
	maxAudioUploadBytes = 25 << 20
	defaultKeepAlive    = 15 * time.Second
)

// ChatHandler serves chat sessions, the recent chats list, usage status and transcription.
type ChatHandler struct {
	chats     interfaces.ChatService
	sessions  interfaces.SessionService
	keepAlive time.Duration
}

func NewChatHandler(chats interfaces.ChatService, sessions interfaces.SessionService) *ChatHandler {
	return &ChatHandler{chats: chats, sessions: sessions, keepAlive: defaultKeepAlive}
}

// GetChats godoc
// @Summary      List recent chats
// @Description  Returns the caller's recent conversations, newest first. Guests get their device-local summaries.
// @Tags         Chats
// @Produce      json
// @Param        Authorization  header    string  false  "Bearer token"
// @Param        X-Device-ID    header    string  false  "Guest device id"
// @Success      200            {array}   model.RecentChat
// @Failure      401            {object}  ErrorResponse
// @Failure      500            {object}  ErrorResponse
// @Router       /v1/chats [get]
func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	id, err := identityFrom(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	chats, err := h.chats.ListRecentChats(r.Context(), id)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, chats)
}

// GetUsage godoc
// @Summary      Get usage counters
// @Description  Returns the tier, count and limit that apply to the caller's next message.
// @Tags         Chats
// @Produce      json
// @Param        character_id  query     string  false  "Character ID (required for guests)"
// @Success      200           {object}  model.UsageCounters
// @Failure      400           {object}  ErrorResponse
// @Failure      401           {object}  ErrorResponse
// @Router       /v1/usage [get]
func (h *ChatHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	id, err := identityFrom(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	counters, err := h.chats.Usage(r.Context(), id, r.URL.Query().Get("character_id"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, counters)
}

// OpenSession godoc
// @Summary      Open a chat session
// @Description  Opens a chat with a character, replacing any session the caller already has with it. History is loaded before the response is sent. An initial message pre-fills the session draft and is not sent.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        request  body      OpenSessionRequest  true  "Session to open"
// @Success      201      {object}  SessionResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /v1/sessions [post]
func (h *ChatHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	id, err := identityFrom(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	var req OpenSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}

	sess, err := h.sessions.Open(r.Context(), id, service.OpenInput{
		CharacterID: string(req.CharacterID),
		Fallback:    req.Character.toModel(),
		Draft:       req.InitialMessage,
	})
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, SessionResponse{Session: sess.Snapshot()})
}

// GetSession godoc
// @Summary      Get a chat session
// @Description  Returns the current transcript and state of an open session.
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  SessionResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID} [get]
func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, SessionResponse{Session: sess.Snapshot()})
}

// RetrySession godoc
// @Summary      Retry loading a session
// @Description  Reloads history for a session whose initial load failed.
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  SessionResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/retry [post]
func (h *ChatHandler) RetrySession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.Retry(r.Context()); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, SessionResponse{Session: sess.Snapshot()})
}

// SendMessage godoc
// @Summary      Send a message
// @Description  Sends one user turn and waits for the character's reply. A turn over the usage limit is not an error: the response carries allowed=false and a notice.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string              true  "Session ID"
// @Param        request    body      SendMessageRequest  true  "Message"
// @Success      200        {object}  SessionResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse
// @Failure      410        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/messages [post]
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	image, err := req.Image.toStaged()
	if err != nil {
		respondWithError(w, err)
		return
	}

	result, err := sess.Send(r.Context(), service.SendInput{Text: req.Text, Image: image, AudioRef: req.AudioRef})
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, SessionResponse{Session: sess.Snapshot(), Send: result})
}

// CloseSession godoc
// @Summary      Close a chat session
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  StatusResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID} [delete]
func (h *ChatHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, err := identityFrom(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.sessions.Close(id, chi.URLParam(r, "sessionID")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "closed"})
}

// StreamSessionEvents godoc
// @Summary      Stream session updates
// @Description  Server-Sent Events stream of session snapshots. Each `snapshot` event carries the latest state; a `closed` event ends the stream.
// @Tags         Sessions
// @Produce      text/event-stream
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  service.Snapshot  "Stream of snapshots"
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/events [get]
func (h *ChatHandler) StreamSessionEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	updates, stop := sess.Listen()
	defer stop()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("Client disconnected from session stream", "session_id", sess.ID())
			return
		case snap, open := <-updates:
			if !open {
				_ = writeStreamEvent(w, "closed", StatusResponse{Status: "closed"})
				return
			}
			if err := writeStreamEvent(w, "snapshot", snap); err != nil {
				slog.Warn("Stopping session stream", "session_id", sess.ID(), "error", err)
				return
			}
		case <-ticker.C:
			if err := writeStreamComment(w, "keep-alive"); err != nil {
				return
			}
		}
	}
}

// Transcribe godoc
// @Summary      Transcribe a voice note
// @Description  Converts an uploaded audio file to text that the client can send as a message.
// @Tags         Chats
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Audio file"
// @Success      200   {object}  TranscriptionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /v1/transcriptions [post]
func (h *ChatHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUploadBytes)
	if err := r.ParseMultipartForm(maxAudioUploadBytes); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid multipart form: %s", app_errors.ErrValidation, err.Error()))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, fmt.Errorf("%w: field 'file' is required", app_errors.ErrValidation))
		return
	}
	defer func() {
		if cErr := file.Close(); cErr != nil {
			slog.Warn("Failed to close uploaded audio", "error", cErr)
		}
	}()

	text, err := h.chats.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, TranscriptionResponse{Text: text})
}

func (h *ChatHandler) session(w http.ResponseWriter, r *http.Request) (*service.ChatSession, bool) {
	id, err := identityFrom(r)
	if err != nil {
		respondWithError(w, err)
		return nil, false
	}
	sess, err := h.sessions.Get(id, chi.URLParam(r, "sessionID"))
	if err != nil {
		respondWithError(w, err)
		return nil, false
	}
	return sess, true
}
