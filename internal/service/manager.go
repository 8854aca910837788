package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	app_errors "fantasy-ai/backend/internal/errors"
	"fantasy-ai/backend/internal/model"
)

// CharacterResolver looks characters up by id, returning nil when unknown.
type CharacterResolver interface {
	Resolve(ctx context.Context, id string) (*model.Character, error)
}

// Normalizer fills the defaults of a partially described character.
type Normalizer interface {
	Normalize(ch model.Character) model.Character
}

// OpenInput asks for a session with a character. Fallback carries whatever the client
// already knows about the character and is used only when the id cannot be resolved.
// Draft pre-fills the composer of the new session without sending it.
type OpenInput struct {
	CharacterID string
	Fallback    *model.Character
	Draft       string
}

// SessionManager tracks open sessions and keeps at most one per owner and character.
type SessionManager struct {
	resolver   CharacterResolver
	normalizer Normalizer
	deps       SessionDeps

	mu       sync.Mutex
	sessions map[string]*ChatSession
	byOwner  map[string]string
}

func NewSessionManager(resolver CharacterResolver, normalizer Normalizer, deps SessionDeps) *SessionManager {
	return &SessionManager{
		resolver:   resolver,
		normalizer: normalizer,
		deps:       deps,
		sessions:   make(map[string]*ChatSession),
		byOwner:    make(map[string]string),
	}
}

func ownerSlot(id model.Identity, characterID int64) string {
	return fmt.Sprintf("%s|%d", id.OwnerKey(), characterID)
}

// Open resolves the character, closes any session the owner already has with it and
// loads a new one. A load failure is reported through the session state.
func (m *SessionManager) Open(ctx context.Context, id model.Identity, in OpenInput) (*ChatSession, error) {
	ch, err := m.character(ctx, in)
	if err != nil {
		return nil, err
	}

	sess, err := NewChatSession(id, *ch, m.deps)
	if err != nil {
		return nil, err
	}

	slot := ownerSlot(id, sess.CharacterID())
	m.mu.Lock()
	var prev *ChatSession
	if prevID, ok := m.byOwner[slot]; ok {
		prev = m.sessions[prevID]
		delete(m.sessions, prevID)
	}
	m.sessions[sess.ID()] = sess
	m.byOwner[slot] = sess.ID()
	m.mu.Unlock()

	if prev != nil {
		slog.Info("Replacing open chat session", "previous_session_id", prev.ID(), "session_id", sess.ID())
		prev.Close()
	}

	if draft := strings.TrimSpace(in.Draft); draft != "" {
		sess.SetDraft(draft)
	}
	sess.Load(ctx)
	return sess, nil
}

func (m *SessionManager) character(ctx context.Context, in OpenInput) (*model.Character, error) {
	id := strings.TrimSpace(in.CharacterID)
	if id == "" && in.Fallback != nil {
		id = strings.TrimSpace(in.Fallback.ID)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: character_id is required", app_errors.ErrValidation)
	}

	ch, err := m.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve character: %w", err)
	}
	if ch != nil {
		return ch, nil
	}
	if in.Fallback == nil {
		return nil, fmt.Errorf("%w: character %s", app_errors.ErrNotFound, id)
	}

	fallback := *in.Fallback
	fallback.ID = id
	fallback.Source = model.SourceNavigation
	if m.normalizer != nil {
		fallback = m.normalizer.Normalize(fallback)
		fallback.Source = model.SourceNavigation
	}
	return &fallback, nil
}

// Get returns an open session owned by id. Sessions of other owners are reported as
// not found.
func (m *SessionManager) Get(id model.Identity, sessionID string) (*ChatSession, error) {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok || sess.Identity().OwnerKey() != id.OwnerKey() {
		return nil, fmt.Errorf("%w: session %s", app_errors.ErrNotFound, sessionID)
	}
	return sess, nil
}

// Close closes and forgets a session.
func (m *SessionManager) Close(id model.Identity, sessionID string) error {
	sess, err := m.Get(id, sessionID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.sessions, sessionID)
	slot := ownerSlot(id, sess.CharacterID())
	if m.byOwner[slot] == sessionID {
		delete(m.byOwner, slot)
	}
	m.mu.Unlock()

	sess.Close()
	return nil
}

// CloseAll closes every open session. Used on shutdown.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	open := make([]*ChatSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.sessions = make(map[string]*ChatSession)
	m.byOwner = make(map[string]string)
	m.mu.Unlock()

	for _, s := range open {
		s.Close()
	}
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
