package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trend classifications for the monthly revenue comparison.
const (
	TrendGrowth     = "growth"
	TrendDecline    = "decline"
	TrendStable     = "stable"
	TrendNoBaseline = "no-baseline"
)

// MedicationUsage is one grouped count from the data source: how many times
// a medication was prescribed inside a window.
type MedicationUsage struct {
	Name  string
	Count int
}

// Summary holds the patient headline counts. GeneratedAt is the instant the
// numbers were computed, which a cached response keeps until it expires.
type Summary struct {
	TotalCount    int       `json:"totalCount"`
	CountToday    int       `json:"countToday"`
	CountThisWeek int       `json:"countThisWeek"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// AdvancedMetrics extends the summary with the current month's billing and
// prescription figures.
type AdvancedMetrics struct {
	TotalCount              int             `json:"totalCount"`
	CountToday              int             `json:"countToday"`
	CountThisWeek           int             `json:"countThisWeek"`
	MonthlyRevenue          decimal.Decimal `json:"monthlyRevenue"`
	ActivePrescriptionCount int             `json:"activePrescriptionCount"`
	MonthlyReceiptCount     int             `json:"monthlyReceiptCount"`
	AverageReceiptValue     decimal.Decimal `json:"averageReceiptValue"`
	GeneratedAt             time.Time       `json:"generatedAt"`
}

// WeekPoint is one Monday-to-Sunday point on the weekly patients chart.
// Dates are plain ISO days; the label is the chart axis text.
type WeekPoint struct {
	WeekStart string `json:"weekStart"`
	WeekEnd   string `json:"weekEnd"`
	Count     int    `json:"count"`
	Label     string `json:"label"`
}

// WeeklySeries is the weekly patients chart, oldest week first and with no
// gaps: zero-count weeks are present.
type WeeklySeries struct {
	Weeks       []WeekPoint `json:"weeks"`
	WeekCount   int         `json:"weekCount"`
	GeneratedAt time.Time   `json:"generatedAt"`
}

// MedicationRank is one row of the top-medications ranking.
type MedicationRank struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RankedList is the top-medications response. TotalConsidered counts every
// fact in the window, including those truncated out of Medications.
type RankedList struct {
	Medications     []MedicationRank `json:"medications"`
	TotalConsidered int              `json:"totalConsidered"`
	PeriodLabel     string           `json:"periodLabel"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}

// Comparison is the month-over-month revenue comparison. PercentageDelta is
// null exactly when the previous month had zero revenue, and the trend is
// no-baseline in the same case.
type Comparison struct {
	CurrentTotal    decimal.Decimal `json:"currentTotal"`
	PreviousTotal   decimal.Decimal `json:"previousTotal"`
	AbsoluteDelta   decimal.Decimal `json:"absoluteDelta"`
	PercentageDelta *float64        `json:"percentageDelta"`
	Trend           string          `json:"trend"`
	CurrentLabel    string          `json:"currentLabel"`
	PreviousLabel   string          `json:"previousLabel"`
	CurrentCount    int             `json:"currentCount"`
	PreviousCount   int             `json:"previousCount"`
	CurrentAverage  decimal.Decimal `json:"currentAverage"`
	PreviousAverage decimal.Decimal `json:"previousAverage"`
	GeneratedAt     time.Time       `json:"generatedAt"`
}
