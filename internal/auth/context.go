package auth

import (
	"context"
	"strings"
)

// Role names carried in JWT claims
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      string
	DisplayName string
	Email       string
	Roles       []string
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// IsAdmin checks if user is an administrator (sees all accounts' data)
func (u *UserContext) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// OwnerFilter returns the user ID repositories should scope queries to.
// Admins get the empty string, meaning no scoping.
func (u *UserContext) OwnerFilter() string {
	if u.IsAdmin() {
		return ""
	}
	return u.UserID
}

// GetEffectiveOwnerFilter returns the owner ID to filter queries by.
// Returns empty string if no filtering should be applied.
func GetEffectiveOwnerFilter(ctx context.Context) string {
	if userCtx, ok := FromContext(ctx); ok {
		return userCtx.OwnerFilter()
	}
	return ""
}
