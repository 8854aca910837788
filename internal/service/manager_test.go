package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fantasy-ai/backend/internal/character"
	app_errors "fantasy-ai/backend/internal/errors"
	"fantasy-ai/backend/internal/model"
	"fantasy-ai/backend/internal/service"
)

func newManager(t *testing.T) (*service.SessionManager, guestFixture) {
	t.Helper()
	f := newGuestFixture(t)
	cat := testCatalog()
	m := service.NewSessionManager(character.NewResolver(nil, cat, time.Minute), cat, f.deps)
	t.Cleanup(m.CloseAll)
	return m, f
}

func TestSessionManager_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("Catalog character", func(t *testing.T) {
		m, _ := newManager(t)
		sess, err := m.Open(ctx, guestID, service.OpenInput{CharacterID: "4"})
		require.NoError(t, err)
		assert.Equal(t, "Fitness", sess.Character().Name)
		assert.Equal(t, service.StateReady, sess.Snapshot().State)
	})

	t.Run("Second open for the same character replaces the first", func(t *testing.T) {
		m, _ := newManager(t)
		first, err := m.Open(ctx, guestID, service.OpenInput{CharacterID: "4"})
		require.NoError(t, err)
		second, err := m.Open(ctx, guestID, service.OpenInput{CharacterID: "4"})
		require.NoError(t, err)

		assert.NotEqual(t, first.ID(), second.ID())
		assert.Equal(t, service.StateClosed, first.Snapshot().State)
		assert.Equal(t, 1, m.Len())

		_, err = m.Get(guestID, first.ID())
		assert.ErrorIs(t, err, app_errors.ErrNotFound)
	})

	t.Run("Different characters and owners are independent", func(t *testing.T) {
		m, _ := newManager(t)
		other := model.Identity{DeviceID: "device-2", Guest: true}

		_, err := m.Open(ctx, guestID, service.OpenInput{CharacterID: "4"})
		require.NoError(t, err)
		_, err = m.Open(ctx, guestID, service.OpenInput{CharacterID: "5"})
		require.NoError(t, err)
		_, err = m.Open(ctx, other, service.OpenInput{CharacterID: "4"})
		require.NoError(t, err)
		assert.Equal(t, 3, m.Len())
	})

	t.Run("Navigation fallback for unknown characters", func(t *testing.T) {
		m, _ := newManager(t)
		sess, err := m.Open(ctx, guestID, service.OpenInput{
			CharacterID: "9001",
			Fallback:    &model.Character{Name: "Pirate Pete", Description: "Talks like a pirate."},
		})
		require.NoError(t, err)
		ch := sess.Character()
		assert.Equal(t, "9001", ch.ID)
		assert.Equal(t, model.SourceNavigation, ch.Source)
		assert.NotEmpty(t, ch.SystemPrompt)
	})

	t.Run("Initial message is kept as a draft until sent", func(t *testing.T) {
		m, f := newManager(t)
		sess, err := m.Open(ctx, guestID, service.OpenInput{CharacterID: "4", Draft: "  Plan my workout "})
		require.NoError(t, err)

		snap := sess.Snapshot()
		assert.Equal(t, "Plan my workout", snap.Draft)
		assert.False(t, snap.Pending)
		assert.Len(t, sess.Messages(), 1)

		f.completer.On("Complete", mock.Anything, mock.Anything).Return(reply("Start with squats."), nil).Once()
		result, err := sess.Send(ctx, service.SendInput{Text: snap.Draft})
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Empty(t, sess.Snapshot().Draft)
	})

	t.Run("Unknown character without fallback", func(t *testing.T) {
		m, _ := newManager(t)
		_, err := m.Open(ctx, guestID, service.OpenInput{CharacterID: "9001"})
		assert.ErrorIs(t, err, app_errors.ErrNotFound)
	})

	t.Run("Missing character id", func(t *testing.T) {
		m, _ := newManager(t)
		_, err := m.Open(ctx, guestID, service.OpenInput{})
		assert.ErrorIs(t, err, app_errors.ErrValidation)
	})

	t.Run("Non-numeric fallback id", func(t *testing.T) {
		m, _ := newManager(t)
		_, err := m.Open(ctx, guestID, service.OpenInput{CharacterID: "pete", Fallback: &model.Character{Name: "Pete"}})
		assert.ErrorIs(t, err, app_errors.ErrValidation)
	})
}

func TestSessionManager_GetAndClose(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	sess, err := m.Open(ctx, guestID, service.OpenInput{CharacterID: "4"})
	require.NoError(t, err)

	got, err := m.Get(guestID, sess.ID())
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = m.Get(model.Identity{DeviceID: "intruder", Guest: true}, sess.ID())
	assert.ErrorIs(t, err, app_errors.ErrNotFound)

	require.NoError(t, m.Close(guestID, sess.ID()))
	assert.Equal(t, service.StateClosed, sess.Snapshot().State)
	assert.Equal(t, 0, m.Len())
	assert.ErrorIs(t, m.Close(guestID, sess.ID()), app_errors.ErrNotFound)
}
