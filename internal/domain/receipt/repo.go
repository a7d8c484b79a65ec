package receipt

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a receipt does not exist or belongs to
// another user.
var ErrNotFound = errors.New("receipt not found")

// Repository defines receipt persistence operations. All lookups are scoped
// to the owning user.
type Repository interface {
	Create(ctx context.Context, rc *Receipt) error
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*Receipt, error)
	Update(ctx context.Context, rc *Receipt) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, patientID uuid.UUID, status string, limit, offset int) ([]*Receipt, int, error)
	MonthlyTotals(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (*MonthlyTotals, error)
}
