package prescription

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

var validStatuses = map[string]bool{
	StatusActive:    true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// statusTransitions maps a status to the statuses it may move to. Completed
// and cancelled prescriptions are terminal.
var statusTransitions = map[string][]string{
	StatusActive:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Service implements prescription business logic.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a prescription, optionally with its medication lines.
// New prescriptions start active unless a valid status is given.
func (s *Service) Create(ctx context.Context, p *Prescription) error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("user is required")
	}
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient is required")
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if !validStatuses[p.Status] {
		return fmt.Errorf("invalid status: %s", p.Status)
	}
	for _, m := range p.Medications {
		if err := validateMedication(m); err != nil {
			return err
		}
	}
	return s.repo.Create(ctx, p)
}

func validateMedication(m *PrescriptionMedication) error {
	if m.MedicationName == "" {
		return fmt.Errorf("medication name is required")
	}
	if m.DurationDays != nil && *m.DurationDays <= 0 {
		return fmt.Errorf("duration days must be positive")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id, ownerID uuid.UUID) (*Prescription, error) {
	return s.repo.GetByID(ctx, id, ownerID)
}

func (s *Service) Update(ctx context.Context, p *Prescription) error {
	return s.repo.Update(ctx, p)
}

// UpdateStatus moves a prescription to a new status after checking the
// transition is allowed.
func (s *Service) UpdateStatus(ctx context.Context, id, ownerID uuid.UUID, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("invalid status: %s", status)
	}
	current, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return err
	}
	allowed := false
	for _, next := range statusTransitions[current.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("cannot change status from %s to %s", current.Status, status)
	}
	return s.repo.UpdateStatus(ctx, id, ownerID, status)
}

func (s *Service) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return s.repo.Delete(ctx, id, ownerID)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, patientID uuid.UUID, status string, limit, offset int) ([]*Prescription, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.repo.List(ctx, ownerID, patientID, status, limit, offset)
}

// AddMedication appends a medication line to an active prescription owned by
// ownerID.
func (s *Service) AddMedication(ctx context.Context, prescriptionID, ownerID uuid.UUID, m *PrescriptionMedication) error {
	current, err := s.repo.GetByID(ctx, prescriptionID, ownerID)
	if err != nil {
		return err
	}
	if current.Status != StatusActive {
		return fmt.Errorf("cannot add medication to a %s prescription", current.Status)
	}
	if err := validateMedication(m); err != nil {
		return err
	}
	m.PrescriptionID = prescriptionID
	return s.repo.AddMedication(ctx, m)
}

func (s *Service) GetMedications(ctx context.Context, prescriptionID, ownerID uuid.UUID) ([]*PrescriptionMedication, error) {
	if _, err := s.repo.GetByID(ctx, prescriptionID, ownerID); err != nil {
		return nil, err
	}
	return s.repo.GetMedications(ctx, prescriptionID)
}
