package auth

import (
	"context"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleLibrarian Role = "LIBRARIAN"
	RoleStaff     Role = "STAFF"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLibrarian, RoleStaff:
		return true
	}
	return false
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   int64
	Username string
	Role     Role
}

type contextKey int

const (
	principalKey contextKey = iota + 1
	clientKey
)

func SetAuthContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func GetAuthContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

func HasAnyRole(ctx context.Context, roles ...Role) bool {
	p, ok := GetAuthContext(ctx)
	if !ok {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

func IsAdmin(ctx context.Context) bool {
	return HasAnyRole(ctx, RoleAdmin)
}

// Client describes where a request came from.
type Client struct {
	IP        string
	UserAgent string
}

func SetClientContext(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey, c)
}

func GetClientContext(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey).(Client)
	return c
}
