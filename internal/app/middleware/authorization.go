package middleware

import (
	"context"

	"rentops/internal/app/policies"
)

// AdminGate is the part of the authorizer that every bus message must pass.
type AdminGate interface {
	RequireAdmin(ctx context.Context) (policies.Principal, error)
}

// Authorization rejects messages from callers that are not dashboard users.
// Property-level checks stay with the handlers, which load the booking first.
func Authorization(a AdminGate) (CommandMiddleware, QueryMiddleware) {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return Before(func(ctx context.Context, _ any) error {
		_, err := a.RequireAdmin(ctx)
		return err
	})
}
