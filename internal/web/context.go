package web

import (
	"context"
	"net/http"

	"bookshelf/internal/user"
)

type contextKey string

const (
	userKey      contextKey = "user"
	sessionKey   contextKey = "sessionID"
	requestIDKey contextKey = "requestID"
)

// UserFrom retrieves the authenticated user from the request context, if any.
func UserFrom(r *http.Request) (user.User, bool) {
	u, ok := r.Context().Value(userKey).(user.User)
	return u, ok
}

// SessionIDFrom retrieves the verified session id from the request context.
func SessionIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(sessionKey).(string); ok {
		return v
	}
	return ""
}

// RequestIDFrom retrieves the request id from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func contextWithUser(ctx context.Context, u user.User, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userKey, u)
	return context.WithValue(ctx, sessionKey, sessionID)
}

func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
