package api

import (
	"net/http"

	"fantasy-ai/backend/internal/auth"
	app_errors "fantasy-ai/backend/internal/errors"
	"fantasy-ai/backend/internal/model"
)

// Identifier resolves the caller of a request.
type Identifier interface {
	Identify(r *http.Request) (model.Identity, error)
}

// RequireIdentity rejects requests that carry neither a valid bearer token nor a device
// id, and stores the resolved identity in the request context.
func RequireIdentity(ident Identifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := ident.Identify(r)
			if err != nil {
				respondWithError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func identityFrom(r *http.Request) (model.Identity, error) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		return model.Identity{}, app_errors.ErrUnauthenticated
	}
	return id, nil
}
