package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no patient matches the id within the caller's
// ownership scope.
var ErrNotFound = errors.New("patient not found")

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, name string, limit, offset int) ([]*Patient, int, error)
}
