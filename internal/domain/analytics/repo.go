package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatsRepository is the narrow aggregate data source the engine reads from.
// Every operation is owner-scoped; empty windows yield zero values, never
// errors. Window bounds are inclusive on both ends.
type StatsRepository interface {
	CountPatients(ctx context.Context, ownerID uuid.UUID) (int, error)
	CountPatientsBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (int, error)
	SumReceiptsBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
	CountReceiptsBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (int, error)

	// CountActivePrescriptions is a global count, not time-windowed. The
	// asymmetry with the month-windowed revenue figures is an intentional
	// business rule.
	CountActivePrescriptions(ctx context.Context, ownerID uuid.UUID) (int, error)

	// MedicationCountsBetween groups medication facts by name over the
	// owning prescription's creation time. Order is unspecified; ranking
	// is the caller's concern.
	MedicationCountsBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]MedicationUsage, error)
}
