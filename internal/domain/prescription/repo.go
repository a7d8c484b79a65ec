package prescription

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a prescription does not exist or belongs to
// another user.
var ErrNotFound = errors.New("prescription not found")

// Repository defines prescription persistence operations. All lookups are
// scoped to the owning user.
type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	UpdateStatus(ctx context.Context, id, ownerID uuid.UUID, status string) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, patientID uuid.UUID, status string, limit, offset int) ([]*Prescription, int, error)

	AddMedication(ctx context.Context, m *PrescriptionMedication) error
	GetMedications(ctx context.Context, prescriptionID uuid.UUID) ([]*PrescriptionMedication, error)
}
