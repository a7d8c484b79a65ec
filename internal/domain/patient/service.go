package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var validGenders = map[string]bool{"male": true, "female": true, "other": true}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetNow overrides the service clock. Tests only.
func (s *Service) SetNow(fn func() time.Time) { s.now = fn }

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("owner is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	p.CPF = NormalizeCPF(p.CPF)
	if !ValidCPF(p.CPF) {
		return fmt.Errorf("invalid cpf")
	}
	if err := s.validateProfile(p); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id, ownerID uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id, ownerID)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	p.CPF = NormalizeCPF(p.CPF)
	if !ValidCPF(p.CPF) {
		return fmt.Errorf("invalid cpf")
	}
	if err := s.validateProfile(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return s.repo.Delete(ctx, id, ownerID)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, name string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, ownerID, name, limit, offset)
}

// Anthropometrics derives BMI and BMR from the patient's stored measurements.
// Height and weight are required; BMR additionally needs birth date and a
// male/female gender and is omitted otherwise.
func (s *Service) Anthropometrics(ctx context.Context, id, ownerID uuid.UUID) (*Anthropometrics, error) {
	p, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if p.HeightCM == nil || p.WeightKG == nil {
		return nil, fmt.Errorf("patient has no height or weight on record")
	}

	now := s.now()
	a := &Anthropometrics{
		PatientID:   p.ID,
		HeightCM:    *p.HeightCM,
		WeightKG:    *p.WeightKG,
		BMI:         BMI(*p.HeightCM, *p.WeightKG),
		GeneratedAt: now,
	}
	a.BMIClassification = ClassifyBMI(a.BMI)

	if p.BirthDate != nil && p.Gender != nil {
		if bmr, ok := BMR(*p.HeightCM, *p.WeightKG, AgeAt(*p.BirthDate, now), *p.Gender); ok {
			a.BMR = &bmr
		}
	}
	return a, nil
}

func (s *Service) validateProfile(p *Patient) error {
	if p.Gender != nil && !validGenders[*p.Gender] {
		return fmt.Errorf("invalid gender: %s", *p.Gender)
	}
	if p.BirthDate != nil && p.BirthDate.After(s.now()) {
		return fmt.Errorf("birth date cannot be in the future")
	}
	if p.HeightCM != nil && *p.HeightCM <= 0 {
		return fmt.Errorf("height must be positive")
	}
	if p.WeightKG != nil && *p.WeightKG <= 0 {
		return fmt.Errorf("weight must be positive")
	}
	return nil
}
