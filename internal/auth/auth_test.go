package auth_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantasy-ai/backend/internal/auth"
	app_errors "fantasy-ai/backend/internal/errors"
	"fantasy-ai/backend/internal/model"
)

const secret = "test-secret"

func sign(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func TestAuthenticator_Identify(t *testing.T) {
	a := auth.New(secret)

	t.Run("Bearer token identifies the account", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+sign(t, secret, jwt.MapClaims{
			"sub": "user-1", "email": "a@b.c", "exp": time.Now().Add(time.Hour).Unix(),
		}))
		req.Header.Set(auth.DeviceHeader, "ignored")

		id, err := a.Identify(req)
		require.NoError(t, err)
		assert.Equal(t, model.Identity{UserID: "user-1", Email: "a@b.c"}, id)
	})

	t.Run("Legacy user_id claim", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+sign(t, secret, jwt.MapClaims{"user_id": "u2"}))
		id, err := a.Identify(req)
		require.NoError(t, err)
		assert.Equal(t, "u2", id.UserID)
	})

	t.Run("Device header identifies a guest", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(auth.DeviceHeader, "device-9")
		id, err := a.Identify(req)
		require.NoError(t, err)
		assert.True(t, id.Guest)
		assert.Equal(t, "device:device-9", id.OwnerKey())
	})

	failures := map[string]func() string{
		"Wrong signing key": func() string { return "Bearer " + sign(t, "other", jwt.MapClaims{"sub": "x"}) },
		"Expired token": func() string {
			return "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Hour).Unix()})
		},
		"Missing subject": func() string { return "Bearer " + sign(t, secret, jwt.MapClaims{"email": "x"}) },
		"Not a bearer":    func() string { return "Basic abc" },
		"Garbage token":   func() string { return "Bearer not.a.jwt" },
		"No credentials":  func() string { return "" },
	}
	for name, header := range failures {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if h := header(); h != "" {
				req.Header.Set("Authorization", h)
			}
			_, err := a.Identify(req)
			assert.ErrorIs(t, err, app_errors.ErrUnauthenticated)
		})
	}
}

func TestIdentityContext(t *testing.T) {
	_, ok := auth.FromContext(context.Background())
	assert.False(t, ok)

	ctx := auth.WithIdentity(context.Background(), model.Identity{UserID: "u"})
	id, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u", id.UserID)
}
