package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Prescription statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Prescription is a treatment plan issued by a professional for a patient.
// Medications is populated on single-resource reads; list endpoints return
// the prescription rows alone.
type Prescription struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	PatientID uuid.UUID `db:"patient_id" json:"patientId"`
	Status    string    `db:"status" json:"status"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Medications []*PrescriptionMedication `db:"-" json:"medications,omitempty"`
}

// PrescriptionMedication is one medication line on a prescription.
type PrescriptionMedication struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescriptionId"`
	MedicationName string    `db:"medication_name" json:"medicationName"`
	Dosage         *string   `db:"dosage" json:"dosage,omitempty"`
	Frequency      *string   `db:"frequency" json:"frequency,omitempty"`
	DurationDays   *int      `db:"duration_days" json:"durationDays,omitempty"`
}
