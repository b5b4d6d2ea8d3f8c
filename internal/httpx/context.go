package httpx

import (
	"context"
	"net/http"
)

type ctxKey int

const (
	principalKey ctxKey = iota
	requestIDKey
	userRecorderKey
)

// principal is the caller identity taken from a verified bearer token.
type principal struct {
	userID string
	role   string
}

func principalFrom(r *http.Request) principal {
	p, _ := r.Context().Value(principalKey).(principal)
	return p
}

// UserIDFrom returns the authenticated user id, or "" for anonymous requests.
func UserIDFrom(r *http.Request) string { return principalFrom(r).userID }

func RoleFrom(r *http.Request) string { return principalFrom(r).role }

func ContextWithUser(ctx context.Context, userID, role string) context.Context {
	return context.WithValue(ctx, principalKey, principal{userID: userID, role: role})
}

func RequestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
