package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/timesheet/internal/identity"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// IdentityRepo persists the signed-in identity between invocations.
// Only one identity is stored at a time.
type IdentityRepo interface {
	Get(ctx context.Context) (*identity.Identity, error)
	Save(ctx context.Context, id *identity.Identity) error
	Clear(ctx context.Context) error
}
