package policies

import (
	"context"
	"strings"

	domainbooking "rentops/internal/domain/booking"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleSystem  = "system"
)

// Principal is the authenticated dashboard user.
type Principal struct {
	ID         string
	Role       string
	Properties []string
}

func (p Principal) IsAdmin() bool {
	role := strings.ToLower(p.Role)
	return role == RoleAdmin || role == RoleSystem
}

func (p Principal) CanAccess(propertyID string) bool {
	if p.IsAdmin() {
		return true
	}
	for _, id := range p.Properties {
		if id == propertyID {
			return true
		}
	}
	return false
}

// SystemPrincipal is used by background jobs such as the hold sweeper.
func SystemPrincipal() Principal {
	return Principal{ID: "system", Role: RoleSystem}
}

type Authorizer interface {
	RequireAdmin(ctx context.Context) (Principal, error)
	RequirePropertyAccess(ctx context.Context, propertyID string) error
	FilterBookings(ctx context.Context, p Principal, list []*domainbooking.Booking) []*domainbooking.Booking
}

type principalKey struct{}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	val := ctx.Value(principalKey{})
	if val == nil {
		return Principal{}, false
	}
	p, ok := val.(Principal)
	return p, ok
}
