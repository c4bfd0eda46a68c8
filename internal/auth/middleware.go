package auth

import (
	"context"
	"errors"
	"net/http"
)

// HeaderName is the request header the bearer token travels in.
const HeaderName = "x-auth-token"

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the resolved identity.
type contextKey string

const userIDKey contextKey = "userID"

// ErrNoToken is returned when the token header is absent entirely.
var ErrNoToken = errors.New("auth: no token in request")

// RequireAuth enforces authentication on protected routes.
//
// It reads the token from the x-auth-token header, verifies it, and stores
// the resolved userID in the request context. A missing header and every
// kind of verification failure (expired, malformed, bad signature) produce
// the same 401 body; the distinction is never exposed to the caller.
//
// The resolved identity is NOT re-checked against a live user record here:
// a deleted account with an unexpired token still resolves until expiry.
// Handlers that need the live record get NotFound from the store instead.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}` + "\n"))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the identity if a valid token is present but never
// blocks the request. Used on public read paths where a logged-in caller
// may see additional data.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil && userID != "" {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) for an anonymous request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	tokenStr := r.Header.Get(HeaderName)
	if tokenStr == "" {
		return "", ErrNoToken
	}
	return tokens.Validate(tokenStr)
}
