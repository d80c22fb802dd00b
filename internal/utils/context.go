package utils

import (
	"context"
	"errors"

	"github.com/vikasavnish/movein/internal/models"
)

// Key type for context values
type contextKey string

const (
	userKey      contextKey = "user"
	requestIDKey contextKey = "requestID"
)

// ErrNoUser is returned when the request carries no authenticated user.
var ErrNoUser = errors.New("user not found in context")

// GetUserFromContext extracts the authenticated user from the context
func GetUserFromContext(ctx context.Context) (*models.User, error) {
	user, ok := ctx.Value(userKey).(*models.User)
	if !ok || user == nil {
		return nil, ErrNoUser
	}
	return user, nil
}

// SetUserToContext adds the authenticated user to the context
func SetUserToContext(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetRequestID returns the request id set by the logging middleware, if any.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
