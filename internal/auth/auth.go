package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	app_errors "fantasy-ai/backend/internal/errors"
	"fantasy-ai/backend/internal/model"
)

const DeviceHeader = "X-Device-ID"

type ctxKey struct{}

// Authenticator resolves the caller of a request. A valid bearer token identifies an
// account; otherwise a device header identifies a guest.
type Authenticator struct {
	secret []byte
}

func New(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) Identify(r *http.Request) (model.Identity, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenStr) == "" {
			return model.Identity{}, fmt.Errorf("%w: malformed authorization header", app_errors.ErrUnauthenticated)
		}
		return a.parseToken(strings.TrimSpace(tokenStr))
	}

	if device := strings.TrimSpace(r.Header.Get(DeviceHeader)); device != "" {
		return model.Identity{DeviceID: device, Guest: true}, nil
	}
	return model.Identity{}, fmt.Errorf("%w: no credentials supplied", app_errors.ErrUnauthenticated)
}

func (a *Authenticator) parseToken(tokenStr string) (model.Identity, error) {
	if len(a.secret) == 0 {
		return model.Identity{}, fmt.Errorf("%w: token verification is not configured", app_errors.ErrUnauthenticated)
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil || !token.Valid {
		return model.Identity{}, fmt.Errorf("%w: invalid token", app_errors.ErrUnauthenticated)
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		userID, _ = claims["user_id"].(string)
	}
	if userID == "" {
		return model.Identity{}, fmt.Errorf("%w: invalid token claims", app_errors.ErrUnauthenticated)
	}
	email, _ := claims["email"].(string)
	return model.Identity{UserID: userID, Email: email}, nil
}

func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(model.Identity)
	return id, ok
}
