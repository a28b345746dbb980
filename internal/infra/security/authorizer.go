package security

import (
	"context"

	"rentops/internal/app/policies"
	domainbooking "rentops/internal/domain/booking"
)

// RoleAuthorizer decides from the principal stored in the context. Admins
// see every property; managers only the properties listed on their token.
type RoleAuthorizer struct{}

func (RoleAuthorizer) RequireAdmin(ctx context.Context) (policies.Principal, error) {
	p, ok := policies.PrincipalFromContext(ctx)
	if !ok {
		return policies.Principal{}, &domainbooking.AuthorizationError{Reason: "authentication required"}
	}
	switch p.Role {
	case policies.RoleAdmin, policies.RoleManager, policies.RoleSystem:
		return p, nil
	}
	return policies.Principal{}, &domainbooking.AuthorizationError{PrincipalID: p.ID, Reason: "dashboard role required"}
}

func (a RoleAuthorizer) RequirePropertyAccess(ctx context.Context, propertyID string) error {
	p, err := a.RequireAdmin(ctx)
	if err != nil {
		return err
	}
	if !p.CanAccess(propertyID) {
		return &domainbooking.AuthorizationError{PrincipalID: p.ID, PropertyID: propertyID, Reason: "no access to property"}
	}
	return nil
}

func (RoleAuthorizer) FilterBookings(_ context.Context, p policies.Principal, list []*domainbooking.Booking) []*domainbooking.Booking {
	if p.IsAdmin() {
		return list
	}
	out := make([]*domainbooking.Booking, 0, len(list))
	for _, b := range list {
		if p.CanAccess(b.PropertyID) {
			out = append(out, b)
		}
	}
	return out
}

var _ policies.Authorizer = RoleAuthorizer{}
