package utils

import "context"

type contextKey string

const (
	userIDKey   contextKey = "user_id"
	userNameKey contextKey = "user_name"
	emailKey    contextKey = "email"
)

// WithIdentity stores the authenticated caller on ctx
func WithIdentity(ctx context.Context, userID, name, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, userNameKey, name)
	return context.WithValue(ctx, emailKey, email)
}

// GetUserIDFromContext returns the caller id set by the auth middleware
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func GetUserNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(userNameKey).(string)
	return name
}

func GetEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}
