package property

import (
	"context"
	"errors"
)

var ErrPropertyNotFound = errors.New("property: not found")

// Property is the read-only view the booking core needs from the directory.
type Property struct {
	ID       string
	Name     string
	Currency string
	Active   bool
}

type Directory interface {
	ByID(ctx context.Context, id string) (*Property, error)
}
