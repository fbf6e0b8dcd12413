package auth

import "context"

type ctxKey string

const userKey ctxKey = "userClaims"

// Claims is the authenticated identity carried through request contexts.
type Claims struct {
	UserID uint
	Email  string
	Role   string
}

func (c Claims) HasRole(role string) bool { return c.Role == role }

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, userKey, c)
}

func FromContext(ctx context.Context) Claims {
	if v, ok := ctx.Value(userKey).(Claims); ok {
		return v
	}
	return Claims{}
}

// Subject returns the authenticated user id, or 0 when unauthenticated.
func Subject(ctx context.Context) uint {
	return FromContext(ctx).UserID
}
