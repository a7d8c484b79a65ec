package receipt

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duardo10/EndoData-backend-sub000/internal/platform/cache"
)

type mockRepo struct {
	items      map[uuid.UUID]*Receipt
	totalCalls int
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Receipt)}
}

func (m *mockRepo) Create(ctx context.Context, rc *Receipt) error {
	rc.ID = uuid.New()
	m.items[rc.ID] = rc
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*Receipt, error) {
	rc, ok := m.items[id]
	if !ok || rc.UserID != ownerID {
		return nil, ErrNotFound
	}
	return rc, nil
}

func (m *mockRepo) Update(ctx context.Context, rc *Receipt) error {
	existing, ok := m.items[rc.ID]
	if !ok || existing.UserID != rc.UserID {
		return ErrNotFound
	}
	existing.Amount = rc.Amount
	existing.Status = rc.Status
	existing.Description = rc.Description
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	rc, ok := m.items[id]
	if !ok || rc.UserID != ownerID {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(ctx context.Context, ownerID uuid.UUID, patientID uuid.UUID, status string, limit, offset int) ([]*Receipt, int, error) {
	var items []*Receipt
	for _, rc := range m.items {
		if rc.UserID != ownerID {
			continue
		}
		if patientID != uuid.Nil && rc.PatientID != patientID {
			continue
		}
		if status != "" && rc.Status != status {
			continue
		}
		items = append(items, rc)
	}
	return items, len(items), nil
}

func (m *mockRepo) MonthlyTotals(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (*MonthlyTotals, error) {
	m.totalCalls++
	t := &MonthlyTotals{TotalRevenue: decimal.Zero}
	for _, rc := range m.items {
		if rc.UserID != ownerID {
			continue
		}
		if rc.CreatedAt.Before(from) || rc.CreatedAt.After(to) {
			continue
		}
		t.TotalRevenue = t.TotalRevenue.Add(rc.Amount)
		t.Total++
		switch rc.Status {
		case StatusPending:
			t.Pending++
		case StatusPaid:
			t.Paid++
		case StatusCancelled:
			t.Cancelled++
		}
	}
	return t, nil
}

func newTestService(store cache.Store) (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, store), repo
}

func seedReceipt(repo *mockRepo, owner uuid.UUID, amount, status string, createdAt time.Time) *Receipt {
	rc := &Receipt{
		ID:        uuid.New(),
		UserID:    owner,
		PatientID: uuid.New(),
		Amount:    decimal.RequireFromString(amount),
		Status:    status,
		CreatedAt: createdAt,
	}
	repo.items[rc.ID] = rc
	return rc
}

func TestCreate_DefaultsToPending(t *testing.T) {
	svc, _ := newTestService(nil)
	rc := &Receipt{UserID: uuid.New(), PatientID: uuid.New(), Amount: decimal.NewFromInt(150)}
	if err := svc.Create(context.Background(), rc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.Status != StatusPending {
		t.Errorf("expected pending, got %s", rc.Status)
	}
}

func TestCreate_OwnerRequired(t *testing.T) {
	svc, _ := newTestService(nil)
	rc := &Receipt{PatientID: uuid.New(), Amount: decimal.NewFromInt(150)}
	if err := svc.Create(context.Background(), rc); err == nil {
		t.Fatal("expected error for missing user")
	}
}

func TestCreate_PatientRequired(t *testing.T) {
	svc, _ := newTestService(nil)
	rc := &Receipt{UserID: uuid.New(), Amount: decimal.NewFromInt(150)}
	if err := svc.Create(context.Background(), rc); err == nil {
		t.Fatal("expected error for missing patient")
	}
}

func TestCreate_NegativeAmount(t *testing.T) {
	svc, _ := newTestService(nil)
	rc := &Receipt{UserID: uuid.New(), PatientID: uuid.New(), Amount: decimal.NewFromInt(-5)}
	if err := svc.Create(context.Background(), rc); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestCreate_InvalidStatus(t *testing.T) {
	svc, _ := newTestService(nil)
	rc := &Receipt{UserID: uuid.New(), PatientID: uuid.New(), Amount: decimal.NewFromInt(5), Status: "refunded"}
	if err := svc.Create(context.Background(), rc); err == nil {
		t.Fatal("expected error for invalid status")
	}
}

func TestList_InvalidStatusFilter(t *testing.T) {
	svc, _ := newTestService(nil)
	if _, _, err := svc.List(context.Background(), uuid.New(), uuid.Nil, "refunded", 20, 0); err == nil {
		t.Fatal("expected error for invalid status filter")
	}
}

func TestMonthlyReport(t *testing.T) {
	svc, repo := newTestService(nil)
	owner := uuid.New()
	june := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	seedReceipt(repo, owner, "100.50", StatusPaid, june)
	seedReceipt(repo, owner, "200.00", StatusPending, june.AddDate(0, 0, 5))
	seedReceipt(repo, owner, "49.50", StatusCancelled, june.AddDate(0, 0, 10))

	report, err := svc.MonthlyReport(context.Background(), owner, 6, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.TotalRevenue.Equal(decimal.RequireFromString("350.00")) {
		t.Errorf("expected revenue 350.00, got %s", report.TotalRevenue)
	}
	if report.TotalReceipts != 3 {
		t.Errorf("expected 3 receipts, got %d", report.TotalReceipts)
	}
	if report.PendingReceipts != 1 || report.PaidReceipts != 1 || report.CancelledReceipts != 1 {
		t.Errorf("unexpected status counts: %+v", report)
	}
	// 350 / 3 rounded to cents
	if !report.AverageReceiptValue.Equal(decimal.RequireFromString("116.67")) {
		t.Errorf("expected average 116.67, got %s", report.AverageReceiptValue)
	}
}

func TestMonthlyReport_EmptyMonth(t *testing.T) {
	svc, _ := newTestService(nil)

	report, err := svc.MonthlyReport(context.Background(), uuid.New(), 6, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.TotalRevenue.Equal(decimal.Zero) {
		t.Errorf("expected zero revenue, got %s", report.TotalRevenue)
	}
	if !report.AverageReceiptValue.Equal(decimal.Zero) {
		t.Errorf("expected zero average, got %s", report.AverageReceiptValue)
	}
	if report.TotalReceipts != 0 {
		t.Errorf("expected 0 receipts, got %d", report.TotalReceipts)
	}
}

func TestMonthlyReport_WindowExcludesOtherMonths(t *testing.T) {
	svc, repo := newTestService(nil)
	owner := uuid.New()
	seedReceipt(repo, owner, "100.00", StatusPaid, time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC))
	seedReceipt(repo, owner, "200.00", StatusPaid, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	seedReceipt(repo, owner, "300.00", StatusPaid, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))

	report, err := svc.MonthlyReport(context.Background(), owner, 6, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalReceipts != 1 {
		t.Fatalf("expected 1 receipt in June, got %d", report.TotalReceipts)
	}
	if !report.TotalRevenue.Equal(decimal.RequireFromString("200.00")) {
		t.Errorf("expected revenue 200.00, got %s", report.TotalRevenue)
	}
}

func TestMonthlyReport_InvalidMonth(t *testing.T) {
	svc, repo := newTestService(nil)

	if _, err := svc.MonthlyReport(context.Background(), uuid.New(), 13, 2025); err == nil {
		t.Fatal("expected error for month 13")
	}
	if repo.totalCalls != 0 {
		t.Errorf("expected no aggregation for invalid month, repo called %d times", repo.totalCalls)
	}
}

func TestMonthlyReport_YearTooEarly(t *testing.T) {
	svc, repo := newTestService(nil)

	if _, err := svc.MonthlyReport(context.Background(), uuid.New(), 6, 1999); err == nil {
		t.Fatal("expected error for year 1999")
	}
	if repo.totalCalls != 0 {
		t.Errorf("expected no aggregation for invalid year, repo called %d times", repo.totalCalls)
	}
}

func TestMonthlyReport_CachesResult(t *testing.T) {
	svc, repo := newTestService(cache.NewMemory(10, time.Minute))
	owner := uuid.New()
	seedReceipt(repo, owner, "100.00", StatusPaid, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))

	first := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	svc.SetNow(func() time.Time { return first })
	r1, err := svc.MonthlyReport(context.Background(), owner, 6, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.SetNow(func() time.Time { return first.Add(5 * time.Minute) })
	r2, err := svc.MonthlyReport(context.Background(), owner, 6, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.totalCalls != 1 {
		t.Errorf("expected 1 aggregation, got %d", repo.totalCalls)
	}
	if !r2.GeneratedAt.Equal(r1.GeneratedAt) {
		t.Errorf("cached report changed generatedAt: %v vs %v", r1.GeneratedAt, r2.GeneratedAt)
	}
}

func TestMonthlyReport_CacheKeyedByPeriod(t *testing.T) {
	svc, repo := newTestService(cache.NewMemory(10, time.Minute))
	owner := uuid.New()

	if _, err := svc.MonthlyReport(context.Background(), owner, 6, 2025); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.MonthlyReport(context.Background(), owner, 7, 2025); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.totalCalls != 2 {
		t.Errorf("expected 2 aggregations for distinct months, got %d", repo.totalCalls)
	}
}

func TestMonthlyReport_CacheIsolatedPerOwner(t *testing.T) {
	svc, repo := newTestService(cache.NewMemory(10, time.Minute))
	ownerA := uuid.New()
	ownerB := uuid.New()
	seedReceipt(repo, ownerA, "100.00", StatusPaid, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))

	ra, err := svc.MonthlyReport(context.Background(), ownerA, 6, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rb, err := svc.MonthlyReport(context.Background(), ownerB, 6, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ra.TotalReceipts != 1 || rb.TotalReceipts != 0 {
		t.Errorf("cache leaked across owners: a=%d b=%d", ra.TotalReceipts, rb.TotalReceipts)
	}
}

func TestMonthlyReport_CancelledContextSkipsCache(t *testing.T) {
	store := cache.NewMemory(10, time.Minute)
	svc, _ := newTestService(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.MonthlyReport(ctx, uuid.New(), 6, 2025); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected nothing cached after cancellation, got %d entries", store.Len())
	}
}
