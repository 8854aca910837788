package service

import (
	"log/slog"

	"fantasy-ai/backend/internal/model"
)

// Releaser is a loaded playback resource owned by a session.
type Releaser interface {
	Release() error
}

// Recording is an in-progress audio capture.
type Recording interface {
	// Stop finishes the capture and returns a reference to the recorded audio.
	Stop() (string, error)
	// Discard drops the capture without keeping anything.
	Discard() error
}

// SetPlayback replaces the session's playback resource, releasing the previous one.
// Resources are released after the lock is dropped.
func (s *ChatSession) SetPlayback(r Releaser) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if r != nil {
			release(r, s.id)
		}
		return ErrClosed
	}
	prev := s.playback
	s.playback = r
	s.mu.Unlock()

	if prev != nil {
		release(prev, s.id)
	}
	return nil
}

// StartRecording begins a capture, discarding any capture already running.
func (s *ChatSession) StartRecording(rec Recording) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if rec != nil {
			discard(rec, s.id)
		}
		return ErrClosed
	}
	prev := s.recording
	s.recording = rec
	s.mu.Unlock()

	if prev != nil {
		discard(prev, s.id)
	}
	return nil
}

// StopRecording finishes the current capture and stages its audio for the next send.
func (s *ChatSession) StopRecording() (string, error) {
	s.mu.Lock()
	rec := s.recording
	s.recording = nil
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return "", ErrClosed
	}
	if rec == nil {
		return "", nil
	}
	ref, err := rec.Stop()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if !s.closed {
		s.stagedAudio = ref
	}
	s.mu.Unlock()
	s.notify()
	return ref, nil
}

// Stage attaches media to the next send.
func (s *ChatSession) Stage(media *model.StagedMedia) {
	s.mu.Lock()
	if !s.closed {
		s.staged = media
	}
	s.mu.Unlock()
	s.notify()
}

// SetDraft pre-fills the composer text. The draft is only shown, never sent, and is
// cleared once a send goes through.
func (s *ChatSession) SetDraft(text string) {
	s.mu.Lock()
	if !s.closed {
		s.draft = text
	}
	s.mu.Unlock()
	s.notify()
}

// ClearStaged drops any staged image and audio.
func (s *ChatSession) ClearStaged() {
	s.mu.Lock()
	s.staged = nil
	s.stagedAudio = ""
	s.mu.Unlock()
	s.notify()
}

func release(r Releaser, sessionID string) {
	if err := r.Release(); err != nil {
		slog.Warn("Failed to release playback", "session_id", sessionID, "error", err)
	}
}

func discard(r Recording, sessionID string) {
	if err := r.Discard(); err != nil {
		slog.Warn("Failed to discard recording", "session_id", sessionID, "error", err)
	}
}
