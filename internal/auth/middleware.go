package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const UserIDKey contextKey = "userID"

// Session describes who is editing and where. A canvas persists only when both
// a context id and an authenticated user are present.
type Session struct {
	ContextID     string
	UserID        string
	Authenticated bool
}

// SessionFor resolves the session for a request scoped to contextID. A missing
// or invalid token yields an unauthenticated session rather than an error.
func (s *Service) SessionFor(r *http.Request, contextID string) Session {
	sess := Session{ContextID: contextID}
	token := TokenFromRequest(r)
	if token == "" {
		return sess
	}
	userID, err := s.ValidateToken(token)
	if err != nil {
		return sess
	}
	sess.UserID = userID
	sess.Authenticated = true
	return sess
}

// TokenFromRequest reads a bearer token from the Authorization header, falling
// back to the token query parameter used by websocket clients.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func (s *Service) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
			return
		}

		userID, err := s.ValidateToken(parts[1])
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}

		ctx := WithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
