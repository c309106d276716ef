package contextkeys

import "context"

// Custom type avoids collisions with other context users.
type contextKey string

const (
	// UserIDKey holds the authenticated user's ID in gin/request contexts.
	UserIDKey = contextKey("userID")
	// RoleKey holds the authenticated user's role.
	RoleKey = contextKey("role")
)

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, RoleKey, role)
}

func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(UserIDKey).(string); ok {
		return v
	}
	return ""
}

func Role(ctx context.Context) string {
	if v, ok := ctx.Value(RoleKey).(string); ok {
		return v
	}
	return ""
}
