package receipt

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt statuses.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// Receipt is a billing record issued to a patient. Amounts are exact
// decimals; they are stored as NUMERIC and never pass through float64.
type Receipt struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"userId"`
	PatientID   uuid.UUID       `db:"patient_id" json:"patientId"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Status      string          `db:"status" json:"status"`
	Description *string         `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// MonthlyTotals carries the raw aggregates for one month window. Revenue is
// status-agnostic; the per-status counts let callers break the total down.
type MonthlyTotals struct {
	TotalRevenue decimal.Decimal
	Total        int
	Pending      int
	Paid         int
	Cancelled    int
}

// MonthlyReport is the billing report for one calendar month of one user's
// receipts.
type MonthlyReport struct {
	Month               int             `json:"month"`
	Year                int             `json:"year"`
	TotalRevenue        decimal.Decimal `json:"totalRevenue"`
	TotalReceipts       int             `json:"totalReceipts"`
	PendingReceipts     int             `json:"pendingReceipts"`
	PaidReceipts        int             `json:"paidReceipts"`
	CancelledReceipts   int             `json:"cancelledReceipts"`
	AverageReceiptValue decimal.Decimal `json:"averageReceiptValue"`
	GeneratedAt         time.Time       `json:"generatedAt"`
}
