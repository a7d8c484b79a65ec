package receipt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duardo10/EndoData-backend-sub000/internal/platform/cache"
	"github.com/duardo10/EndoData-backend-sub000/internal/platform/timewindow"
)

// ErrInvalidPeriod marks report period validation failures, which reject the
// request before any aggregation runs.
var ErrInvalidPeriod = errors.New("invalid report period")

var validStatuses = map[string]bool{
	StatusPending:   true,
	StatusPaid:      true,
	StatusCancelled: true,
}

const opMonthlyReport = "receipts:monthly-report"

// Service implements receipt business logic.
type Service struct {
	repo  Repository
	cache cache.Store
	now   func() time.Time
}

// NewService creates the receipt service. A nil store disables report
// caching; every call recomputes.
func NewService(repo Repository, store cache.Store) *Service {
	return &Service{repo: repo, cache: store, now: time.Now}
}

// SetNow overrides the service clock. Tests only.
func (s *Service) SetNow(now func() time.Time) { s.now = now }

// Create registers a receipt. New receipts default to pending.
func (s *Service) Create(ctx context.Context, rc *Receipt) error {
	if rc.UserID == uuid.Nil {
		return fmt.Errorf("user is required")
	}
	if rc.PatientID == uuid.Nil {
		return fmt.Errorf("patient is required")
	}
	if rc.Amount.IsNegative() {
		return fmt.Errorf("amount cannot be negative")
	}
	if rc.Status == "" {
		rc.Status = StatusPending
	}
	if !validStatuses[rc.Status] {
		return fmt.Errorf("invalid status: %s", rc.Status)
	}
	return s.repo.Create(ctx, rc)
}

func (s *Service) Get(ctx context.Context, id, ownerID uuid.UUID) (*Receipt, error) {
	return s.repo.GetByID(ctx, id, ownerID)
}

func (s *Service) Update(ctx context.Context, rc *Receipt) error {
	if rc.Amount.IsNegative() {
		return fmt.Errorf("amount cannot be negative")
	}
	if !validStatuses[rc.Status] {
		return fmt.Errorf("invalid status: %s", rc.Status)
	}
	return s.repo.Update(ctx, rc)
}

func (s *Service) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return s.repo.Delete(ctx, id, ownerID)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, patientID uuid.UUID, status string, limit, offset int) ([]*Receipt, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.repo.List(ctx, ownerID, patientID, status, limit, offset)
}

// MonthlyReport aggregates one calendar month of the owner's receipts.
// Month and year are validated before any query runs; out-of-range values
// are an error, never clamped. Results are cached per (owner, month, year)
// and the cached report keeps its original GeneratedAt until it expires.
func (s *Service) MonthlyReport(ctx context.Context, ownerID uuid.UUID, month, year int) (*MonthlyReport, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12, got %d", ErrInvalidPeriod, month)
	}
	if year < 2000 {
		return nil, fmt.Errorf("%w: year must be 2000 or later, got %d", ErrInvalidPeriod, year)
	}

	key := cache.Key(opMonthlyReport, ownerID.String(), strconv.Itoa(month), strconv.Itoa(year))
	if s.cache != nil && ownerID != uuid.Nil {
		if v, ok := s.cache.Get(key); ok {
			if report, ok := v.(*MonthlyReport); ok {
				return report, nil
			}
		}
	}

	from, to, err := timewindow.MonthBounds(year, month, time.UTC)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.MonthlyTotals(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}

	report := &MonthlyReport{
		Month:             month,
		Year:              year,
		TotalRevenue:      totals.TotalRevenue,
		TotalReceipts:     totals.Total,
		PendingReceipts:   totals.Pending,
		PaidReceipts:      totals.Paid,
		CancelledReceipts: totals.Cancelled,
		GeneratedAt:       s.now().UTC(),
	}
	if totals.Total > 0 {
		report.AverageReceiptValue = totals.TotalRevenue.Div(decimal.NewFromInt(int64(totals.Total))).Round(2)
	}

	if s.cache != nil && ownerID != uuid.Nil && ctx.Err() == nil {
		s.cache.Put(key, report)
	}
	return report, nil
}
