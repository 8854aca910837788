package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	app_errors "fantasy-ai/backend/internal/errors"
	"fantasy-ai/backend/internal/llm"
	"fantasy-ai/backend/internal/model"
	"fantasy-ai/backend/internal/realtime"
	"fantasy-ai/backend/internal/repository"
	"fantasy-ai/backend/internal/usage"
)

var ErrClosed = app_errors.ErrSessionClosed

type State string

const (
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateSending    State = "sending"
	StateLoadFailed State = "load_failed"
	StateClosed     State = "closed"
)

// GuestHistory is the device-local storage used in guest mode.
type GuestHistory interface {
	LoadHistory(ctx context.Context, deviceID string, characterID int64) ([]model.ChatMessage, error)
	AppendMessage(ctx context.Context, deviceID string, characterID int64, msg model.ChatMessage) error
	LoadAndIncrementCount(ctx context.Context, deviceID string, characterID int64) (int, error)
	UpsertSummary(ctx context.Context, deviceID string, summary model.GuestSessionSummary) error
}

type UsageChecker interface {
	Check(ctx context.Context, id model.Identity, characterID int64) (usage.Decision, error)
}

type MediaAttacher interface {
	Attach(ctx context.Context, owner string, characterID int64, staged *model.StagedMedia) (string, error)
}

// SessionDeps are the collaborators shared by all chat sessions. Attacher is optional;
// without it staged images keep their client URI.
type SessionDeps struct {
	Guest        GuestHistory
	Remote       repository.ConversationStore
	Gate         UsageChecker
	Completer    llm.Completer
	Attacher     MediaAttacher
	Timeout      time.Duration
	HistoryLimit int
	Clock        func() time.Time
}

func (d *SessionDeps) withDefaults() {
	if d.Timeout <= 0 {
		d.Timeout = 60 * time.Second
	}
	if d.HistoryLimit <= 0 {
		d.HistoryLimit = 10
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
}

// SendInput is one user turn. Image and AudioRef fall back to the session's staged media.
type SendInput struct {
	Text     string
	Image    *model.StagedMedia
	AudioRef string
}

// SendResult describes the outcome of a send attempt. A denied attempt carries a Notice
// and nothing else changes.
type SendResult struct {
	Allowed     bool                `json:"allowed"`
	Notice      *model.LimitNotice  `json:"notice,omitempty"`
	Counters    model.UsageCounters `json:"counters"`
	UserMessage *model.ChatMessage  `json:"user_message,omitempty"`
	Reply       *model.ChatMessage  `json:"reply,omitempty"`
	Failed      bool                `json:"failed"`
}

// Snapshot is a point-in-time copy of a session's visible state.
type Snapshot struct {
	ID          string           `json:"id"`
	CharacterID string           `json:"character_id"`
	Character   model.Character  `json:"character"`
	State       State            `json:"state"`
	Error       string           `json:"error,omitempty"`
	Pending     bool             `json:"pending"`
	Items       []model.ListItem `json:"items"`
	StagedImage bool             `json:"staged_image"`
	StagedAudio string           `json:"staged_audio,omitempty"`
	Draft       string           `json:"draft,omitempty"`
}

// ChatSession owns the transcript of one open chat and drives its send lifecycle.
// The mutex is never held across I/O.
type ChatSession struct {
	id          string
	identity    model.Identity
	character   model.Character
	characterID int64
	deps        SessionDeps

	mu          sync.Mutex
	state       State
	loadErr     string
	messages    []model.ChatMessage
	pending     bool
	closed      bool
	sub         *realtime.Subscription
	playback    Releaser
	recording   Recording
	staged      *model.StagedMedia
	stagedAudio string
	draft       string
	listeners   map[int]chan Snapshot
	nextListen  int
}

func NewChatSession(id model.Identity, ch model.Character, deps SessionDeps) (*ChatSession, error) {
	charID, err := ch.NumericID()
	if err != nil {
		return nil, fmt.Errorf("%w: character id %q is not numeric", app_errors.ErrValidation, ch.ID)
	}
	if id.Guest && deps.Guest == nil {
		return nil, fmt.Errorf("%w: guest storage is not configured", app_errors.ErrInternal)
	}
	if !id.Guest && deps.Remote == nil {
		return nil, fmt.Errorf("%w: remote storage is not configured", app_errors.ErrInternal)
	}
	deps.withDefaults()
	return &ChatSession{
		id:          uuid.NewString(),
		identity:    id,
		character:   ch,
		characterID: charID,
		deps:        deps,
		state:       StateLoading,
		listeners:   make(map[int]chan Snapshot),
	}, nil
}

func (s *ChatSession) ID() string { return s.id }

func (s *ChatSession) Identity() model.Identity { return s.identity }

func (s *ChatSession) Character() model.Character { return s.character }

func (s *ChatSession) CharacterID() int64 { return s.characterID }

// Load reads the stored history and, for accounts, opens the live subscription.
// A failure leaves the session in load_failed; it is not returned.
func (s *ChatSession) Load(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state = StateLoading
	s.loadErr = ""
	s.mu.Unlock()
	s.notify()

	history, err := s.fetchHistory(ctx)
	if err == nil && !s.identity.Guest {
		err = s.resubscribe(ctx)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if err != nil {
		slog.Error("Failed to load chat history", "session_id", s.id, "character_id", s.characterID, "error", err)
		s.state = StateLoadFailed
		s.loadErr = loadErrorText
		s.mu.Unlock()
		s.notify()
		return
	}

	merged := make([]model.ChatMessage, 0, len(history)+len(s.messages))
	merged = append(merged, history...)
	seen := make(map[string]struct{}, len(history))
	for _, m := range history {
		seen[m.ID] = struct{}{}
	}
	for _, m := range s.messages {
		if _, ok := seen[m.ID]; !ok && m.EffectiveKind() == model.KindMessage {
			merged = append(merged, m)
		}
	}
	if len(merged) == 0 {
		merged = append(merged, WelcomeMessage(s.character, s.deps.Clock()))
	}
	SortMessages(merged)
	s.messages = merged
	s.state = StateReady
	s.mu.Unlock()

	slog.Info("Chat session loaded", "session_id", s.id, "character_id", s.characterID, "messages", len(history), "guest", s.identity.Guest)
	s.notify()
}

// Retry reloads a session whose load failed.
func (s *ChatSession) Retry(ctx context.Context) error {
	s.mu.Lock()
	state, closed := s.state, s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if state != StateLoadFailed {
		return fmt.Errorf("%w: session is %s", app_errors.ErrConflict, state)
	}
	s.Load(ctx)
	return nil
}

func (s *ChatSession) fetchHistory(ctx context.Context) ([]model.ChatMessage, error) {
	if s.identity.Guest {
		return s.deps.Guest.LoadHistory(ctx, s.identity.DeviceID, s.characterID)
	}
	return s.deps.Remote.LoadHistory(ctx, s.identity.UserID, s.characterID)
}

// resubscribe closes the current handle before opening a new one, so at most one is open.
func (s *ChatSession) resubscribe(ctx context.Context) error {
	s.mu.Lock()
	prev := s.sub
	s.sub = nil
	s.mu.Unlock()
	if prev != nil {
		s.deps.Remote.Unsubscribe(prev)
	}

	sub, err := s.deps.Remote.Subscribe(ctx, s.identity.UserID, s.characterID, s.receive)
	if err != nil {
		return fmt.Errorf("failed to subscribe to new messages: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.deps.Remote.Unsubscribe(sub)
		return nil
	}
	s.sub = sub
	s.mu.Unlock()
	return nil
}

// receive applies an assistant message pushed by the live subscription.
func (s *ChatSession) receive(msg model.ChatMessage) {
	if s.appendMessage(msg) {
		slog.Debug("Applied pushed message", "session_id", s.id, "message_id", msg.ID)
		s.notify()
	}
}

// appendMessage adds msg unless the session is closed or a message with the same ID is
// already present. It reports whether the transcript changed.
func (s *ChatSession) appendMessage(msg model.ChatMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	for _, m := range s.messages {
		if m.ID == msg.ID {
			return false
		}
	}
	s.messages = append(s.messages, msg)
	SortMessages(s.messages)
	return true
}

// Send runs one user turn through the gate, persistence and the completion call.
// The pipeline is detached from ctx cancellation and bounded by the completion timeout.
func (s *ChatSession) Send(ctx context.Context, in SendInput) (*SendResult, error) {
	in.Text = strings.TrimSpace(in.Text)

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return nil, ErrClosed
	case s.pending:
		s.mu.Unlock()
		return nil, app_errors.ErrResponsePending
	case s.state != StateReady:
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: session is %s", app_errors.ErrConflict, state)
	}
	image := in.Image
	if image == nil {
		image = s.staged
	}
	audioRef := in.AudioRef
	if audioRef == "" {
		audioRef = s.stagedAudio
	}
	if in.Text == "" && image == nil && audioRef == "" {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: message is empty", app_errors.ErrValidation)
	}
	s.pending = true
	s.state = StateSending
	s.mu.Unlock()
	s.notify()

	defer func() {
		s.mu.Lock()
		s.pending = false
		if !s.closed {
			s.state = StateReady
		}
		s.mu.Unlock()
		s.notify()
	}()

	ctx = context.WithoutCancel(ctx)
	log := slog.With("session_id", s.id, "character_id", s.characterID)

	decision, err := s.deps.Gate.Check(ctx, s.identity, s.characterID)
	if err != nil {
		log.Error("Usage check failed", "error", err)
		return nil, fmt.Errorf("failed to check usage: %w", err)
	}
	if !decision.Allowed {
		log.Info("Send blocked by usage limit", "tier", decision.Counters.Tier, "count", decision.Counters.Count)
		return &SendResult{Allowed: false, Notice: decision.Notice, Counters: decision.Counters}, nil
	}

	s.mu.Lock()
	prior := make([]model.ChatMessage, len(s.messages))
	copy(prior, s.messages)
	s.staged = nil
	s.stagedAudio = ""
	s.draft = ""
	s.mu.Unlock()

	result := &SendResult{Allowed: true, Counters: decision.Counters}
	result.Counters.Count++

	imageRef := ""
	if image != nil {
		imageRef, err = s.deps.attach(ctx, s.identity.OwnerKey(), s.characterID, image)
		if err != nil {
			log.Warn("Image upload failed, keeping client reference", "error", err)
			imageRef = image.URI
		}
	}

	userMsg := model.ChatMessage{
		ID:        uuid.NewString(),
		Text:      in.Text,
		Sender:    model.SenderUser,
		Timestamp: s.deps.Clock().UnixMilli(),
		ImageRef:  imageRef,
		AudioRef:  audioRef,
		Kind:      model.KindMessage,
	}
	result.UserMessage = &userMsg
	if !s.appendMessage(userMsg) {
		return nil, ErrClosed
	}
	s.notify()

	if err := s.persistUserMessage(ctx, userMsg); err != nil {
		log.Error("Failed to persist user message", "message_id", userMsg.ID, "error", err)
		notice := errorMessage(uuid.NewString(), persistErrorText, s.deps.Clock())
		s.appendMessage(notice)
		result.Reply = &notice
		result.Failed = true
		return result, nil
	}

	req := &llm.CompletionRequest{Model: s.character.Model, Messages: s.buildMessages(prior, in.Text, image)}
	callCtx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	resp, err := s.deps.Completer.Complete(callCtx, req)
	cancel()

	if err != nil {
		log.Error("Completion failed", "model", req.Model, "error", err)
		notice := errorMessage(uuid.NewString(), fmt.Sprintf("%s %v", errorReplyPrefix, err), s.deps.Clock())
		s.appendMessage(notice)
		result.Reply = &notice
		result.Failed = true
		return result, nil
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		text = emptyReplyText
	}
	reply := model.ChatMessage{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    model.SenderAI,
		Timestamp: s.deps.Clock().UnixMilli(),
		Kind:      model.KindMessage,
	}
	result.Reply = &reply
	if !s.appendMessage(reply) {
		log.Info("Session closed before reply arrived", "message_id", reply.ID)
	}
	s.notify()

	if err := s.persistReply(ctx, reply); err != nil {
		log.Error("Failed to persist reply", "message_id", reply.ID, "error", err)
	}
	return result, nil
}

func (d *SessionDeps) attach(ctx context.Context, owner string, characterID int64, staged *model.StagedMedia) (string, error) {
	if d.Attacher == nil {
		return staged.URI, nil
	}
	return d.Attacher.Attach(ctx, owner, characterID, staged)
}

func (s *ChatSession) buildMessages(prior []model.ChatMessage, text string, image *model.StagedMedia) []llm.Message {
	msgs := make([]llm.Message, 0, s.deps.HistoryLimit+2)
	if prompt := strings.TrimSpace(s.character.SystemPrompt); prompt != "" {
		msgs = append(msgs, llm.TextMessage(llm.RoleSystem, prompt))
	}
	msgs = append(msgs, CompletionHistory(prior, "", s.deps.HistoryLimit)...)
	if image != nil && len(image.Data) > 0 {
		msgs = append(msgs, llm.ImageMessage(text, image.Data, image.MimeType))
	} else {
		msgs = append(msgs, llm.TextMessage(llm.RoleUser, text))
	}
	return msgs
}

func (s *ChatSession) persistUserMessage(ctx context.Context, msg model.ChatMessage) error {
	if s.identity.Guest {
		if _, err := s.deps.Guest.LoadAndIncrementCount(ctx, s.identity.DeviceID, s.characterID); err != nil {
			return err
		}
		return s.deps.Guest.AppendMessage(ctx, s.identity.DeviceID, s.characterID, msg)
	}
	return s.deps.Remote.InsertMessage(ctx, s.identity.UserID, s.characterID, msg)
}

func (s *ChatSession) persistReply(ctx context.Context, reply model.ChatMessage) error {
	if !s.identity.Guest {
		return s.deps.Remote.InsertMessage(ctx, s.identity.UserID, s.characterID, reply)
	}

	var avatar *string
	if s.character.AvatarRef != "" {
		a := s.character.AvatarRef
		avatar = &a
	}
	summary := model.GuestSessionSummary{
		CharacterID: s.characterID,
		Name:        s.character.Name,
		Avatar:      avatar,
		LastMessage: reply.Text,
		Category:    s.character.Category,
	}
	if err := s.deps.Guest.UpsertSummary(ctx, s.identity.DeviceID, summary); err != nil {
		return err
	}
	return s.deps.Guest.AppendMessage(ctx, s.identity.DeviceID, s.characterID, reply)
}

// Snapshot copies the session's visible state.
func (s *ChatSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ChatSession) snapshotLocked() Snapshot {
	return Snapshot{
		ID:          s.id,
		CharacterID: s.character.ID,
		Character:   s.character,
		State:       s.state,
		Error:       s.loadErr,
		Pending:     s.pending,
		Items:       BuildTranscript(s.messages, s.deps.Clock()),
		StagedImage: s.staged != nil,
		StagedAudio: s.stagedAudio,
		Draft:       s.draft,
	}
}

// Messages returns a sorted copy of the transcript without separators.
func (s *ChatSession) Messages() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Listen returns a channel receiving a snapshot after every change, and a func to stop
// listening. Slow listeners only see the latest snapshot. The channel is closed when the
// session closes.
func (s *ChatSession) Listen() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.closed {
		ch <- s.snapshotLocked()
		close(ch)
		return ch, func() {}
	}
	s.nextListen++
	key := s.nextListen
	s.listeners[key] = ch
	ch <- s.snapshotLocked()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if l, ok := s.listeners[key]; ok {
			delete(s.listeners, key)
			close(l)
		}
	}
}

func (s *ChatSession) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.listeners) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.listeners {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// Close tears the session down: the subscription is closed, playback released and any
// recording discarded. Results of an in-flight send are no longer applied.
func (s *ChatSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = StateClosed
	sub := s.sub
	s.sub = nil
	playback, recording := s.playback, s.recording
	s.playback, s.recording = nil, nil
	s.staged, s.stagedAudio = nil, ""
	s.draft = ""

	final := s.snapshotLocked()
	for key, ch := range s.listeners {
		select {
		case <-ch:
		default:
		}
		ch <- final
		close(ch)
		delete(s.listeners, key)
	}
	s.mu.Unlock()

	if sub != nil {
		s.deps.Remote.Unsubscribe(sub)
	}
	if playback != nil {
		release(playback, s.id)
	}
	if recording != nil {
		discard(recording, s.id)
	}
	slog.Info("Chat session closed", "session_id", s.id, "character_id", s.characterID)
}
