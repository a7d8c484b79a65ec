package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/duardo10/EndoData-backend-sub000/internal/domain/receipt"
	"github.com/duardo10/EndoData-backend-sub000/internal/platform/timewindow"
)

func TestReceiptCRUD(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, ctx)
	pt := createTestPatient(t, ctx, owner, "Gustavo Lima")
	repo := receipt.NewRepoPG(globalDB.Pool)

	created := createTestReceipt(t, ctx, owner, pt.ID, "150.00", receipt.StatusPending)

	t.Run("GetByID", func(t *testing.T) {
		got, err := repo.GetByID(ctx, created.ID, owner)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !got.Amount.Equal(decimal.RequireFromString("150.00")) {
			t.Errorf("amount round-trip lost precision: %s", got.Amount)
		}
		if got.Status != receipt.StatusPending {
			t.Errorf("unexpected status: %s", got.Status)
		}
		if got.CreatedAt.IsZero() {
			t.Error("expected created_at to be set by the database")
		}
	})

	t.Run("GetByID_OtherOwner", func(t *testing.T) {
		other := createTestUser(t, ctx)
		if _, err := repo.GetByID(ctx, created.ID, other); !errors.Is(err, receipt.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		created.Amount = decimal.RequireFromString("175.50")
		created.Status = receipt.StatusPaid
		created.Description = ptrStr("follow-up consultation")
		if err := repo.Update(ctx, created); err != nil {
			t.Fatalf("update: %v", err)
		}
		got, err := repo.GetByID(ctx, created.ID, owner)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !got.Amount.Equal(decimal.RequireFromString("175.50")) {
			t.Errorf("unexpected amount: %s", got.Amount)
		}
		if got.Status != receipt.StatusPaid || got.Description == nil {
			t.Errorf("update not persisted: status=%s description=%v", got.Status, got.Description)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete(ctx, created.ID, owner); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := repo.GetByID(ctx, created.ID, owner); !errors.Is(err, receipt.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

// TestReceiptDecimalExactness sums amounts that cannot be represented in
// binary floats. The NUMERIC column and the registered decimal codec must
// carry them exactly.
func TestReceiptDecimalExactness(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, ctx)
	pt := createTestPatient(t, ctx, owner, "Helena Dias")
	repo := receipt.NewRepoPG(globalDB.Pool)

	createTestReceipt(t, ctx, owner, pt.ID, "0.10", receipt.StatusPaid)
	createTestReceipt(t, ctx, owner, pt.ID, "0.20", receipt.StatusPaid)

	now := time.Now().UTC()
	totals, err := repo.MonthlyTotals(ctx, owner, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("monthly totals: %v", err)
	}
	if !totals.TotalRevenue.Equal(decimal.RequireFromString("0.30")) {
		t.Errorf("expected exactly 0.30, got %s", totals.TotalRevenue)
	}
}

func TestReceiptMonthlyTotalsWindow(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, ctx)
	pt := createTestPatient(t, ctx, owner, "Igor Matos")
	repo := receipt.NewRepoPG(globalDB.Pool)

	seed := func(amount, status string, at time.Time) {
		rc := createTestReceipt(t, ctx, owner, pt.ID, amount, status)
		setCreatedAt(t, ctx, "receipts", rc.ID, at)
	}
	seed("100.00", receipt.StatusPaid, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	seed("50.00", receipt.StatusPending, time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC))
	seed("25.00", receipt.StatusCancelled, time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))
	seed("999.00", receipt.StatusPaid, time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC))
	seed("999.00", receipt.StatusPaid, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))

	from, to, err := timewindow.MonthBounds(2025, 6, time.UTC)
	if err != nil {
		t.Fatalf("month bounds: %v", err)
	}

	t.Run("June", func(t *testing.T) {
		totals, err := repo.MonthlyTotals(ctx, owner, from, to)
		if err != nil {
			t.Fatalf("monthly totals: %v", err)
		}
		if !totals.TotalRevenue.Equal(decimal.RequireFromString("175.00")) {
			t.Errorf("expected revenue 175.00, got %s", totals.TotalRevenue)
		}
		if totals.Total != 3 {
			t.Errorf("expected 3 receipts, got %d", totals.Total)
		}
		if totals.Pending != 1 || totals.Paid != 1 || totals.Cancelled != 1 {
			t.Errorf("unexpected status breakdown: %+v", totals)
		}
	})

	t.Run("EmptyMonth", func(t *testing.T) {
		from, to, err := timewindow.MonthBounds(2025, 1, time.UTC)
		if err != nil {
			t.Fatalf("month bounds: %v", err)
		}
		totals, err := repo.MonthlyTotals(ctx, owner, from, to)
		if err != nil {
			t.Fatalf("monthly totals: %v", err)
		}
		if totals.Total != 0 || !totals.TotalRevenue.IsZero() {
			t.Errorf("expected empty window, got %+v", totals)
		}
	})
}

func TestReceiptListFilters(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, ctx)
	pt := createTestPatient(t, ctx, owner, "Joana Reis")
	repo := receipt.NewRepoPG(globalDB.Pool)

	createTestReceipt(t, ctx, owner, pt.ID, "100.00", receipt.StatusPaid)
	createTestReceipt(t, ctx, owner, pt.ID, "200.00", receipt.StatusPaid)
	createTestReceipt(t, ctx, owner, pt.ID, "300.00", receipt.StatusPending)

	t.Run("ByStatus", func(t *testing.T) {
		_, total, err := repo.List(ctx, owner, pt.ID, receipt.StatusPaid, 10, 0)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 2 {
			t.Errorf("expected 2 paid, got %d", total)
		}
	})

	t.Run("Pagination", func(t *testing.T) {
		items, total, err := repo.List(ctx, owner, pt.ID, "", 2, 0)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 3 || len(items) != 2 {
			t.Errorf("expected total=3 len=2, got total=%d len=%d", total, len(items))
		}
	})
}
