package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/duardo10/EndoData-backend-sub000/internal/platform/cache"
	"github.com/duardo10/EndoData-backend-sub000/internal/platform/timewindow"
)

// ErrInvalidParam marks out-of-range dashboard parameters, which reject the
// request before any aggregation runs.
var ErrInvalidParam = errors.New("invalid parameter")

// Cache operation names. The owner id is appended by cache.Key, keeping
// every principal's entries disjoint.
const (
	opSummary    = "dashboard:summary"
	opMetrics    = "dashboard:metrics"
	opWeekly     = "dashboard:weekly-patients"
	opTopMeds    = "dashboard:top-medications"
	opComparison = "dashboard:monthly-revenue-comparison"
)

// Service computes the dashboard aggregations. The clock is captured once
// per computation so every window in a response agrees on the same "now".
type Service struct {
	stats StatsRepository
	cache cache.Store
	now   func() time.Time
}

// NewService creates the analytics service. A nil store disables caching;
// every call recomputes.
func NewService(stats StatsRepository, store cache.Store) *Service {
	return &Service{stats: stats, cache: store, now: time.Now}
}

// SetNow overrides the service clock. Tests only.
func (s *Service) SetNow(now func() time.Time) { s.now = now }

// cached reads a previously computed value. Unresolved owners never touch
// the cache.
func (s *Service) cached(owner uuid.UUID, key string) (interface{}, bool) {
	if s.cache == nil || owner == uuid.Nil {
		return nil, false
	}
	return s.cache.Get(key)
}

// store writes a computed value. Cancelled requests write nothing, so an
// abandoned computation cannot poison the cache.
func (s *Service) store(ctx context.Context, owner uuid.UUID, key string, v interface{}) {
	if s.cache == nil || owner == uuid.Nil || ctx.Err() != nil {
		return
	}
	s.cache.Put(key, v)
}

// Summary returns the owner's patient headline counts: total, created
// today, and created this week. The three counts run concurrently and all
// must complete before the summary is returned.
func (s *Service) Summary(ctx context.Context, ownerID uuid.UUID) (*Summary, error) {
	key := cache.Key(opSummary, ownerID.String())
	if v, ok := s.cached(ownerID, key); ok {
		if sum, ok := v.(*Summary); ok {
			return sum, nil
		}
	}

	now := s.now()
	dayStart, dayEnd := timewindow.DayBounds(now)
	weekStart, weekEnd := timewindow.WeekBounds(now)

	sum := &Summary{GeneratedAt: now.UTC()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.stats.CountPatients(gctx, ownerID)
		if err != nil {
			return err
		}
		sum.TotalCount = n
		return nil
	})
	g.Go(func() error {
		n, err := s.stats.CountPatientsBetween(gctx, ownerID, dayStart, dayEnd)
		if err != nil {
			return err
		}
		sum.CountToday = n
		return nil
	})
	g.Go(func() error {
		n, err := s.stats.CountPatientsBetween(gctx, ownerID, weekStart, weekEnd)
		if err != nil {
			return err
		}
		sum.CountThisWeek = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.store(ctx, ownerID, key, sum)
	return sum, nil
}

// AdvancedMetrics returns the summary counts plus the current month's
// revenue, receipt count, average receipt value, and the global active
// prescription count. The average is zero when the month has no receipts.
func (s *Service) AdvancedMetrics(ctx context.Context, ownerID uuid.UUID) (*AdvancedMetrics, error) {
	key := cache.Key(opMetrics, ownerID.String())
	if v, ok := s.cached(ownerID, key); ok {
		if m, ok := v.(*AdvancedMetrics); ok {
			return m, nil
		}
	}

	now := s.now()
	dayStart, dayEnd := timewindow.DayBounds(now)
	weekStart, weekEnd := timewindow.WeekBounds(now)
	monthStart, monthEnd := timewindow.MonthBoundsAt(now)

	m := &AdvancedMetrics{GeneratedAt: now.UTC()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.stats.CountPatients(gctx, ownerID)
		if err != nil {
			return err
		}
		m.TotalCount = n
		return nil
	})
	g.Go(func() error {
		n, err := s.stats.CountPatientsBetween(gctx, ownerID, dayStart, dayEnd)
		if err != nil {
			return err
		}
		m.CountToday = n
		return nil
	})
	g.Go(func() error {
		n, err := s.stats.CountPatientsBetween(gctx, ownerID, weekStart, weekEnd)
		if err != nil {
			return err
		}
		m.CountThisWeek = n
		return nil
	})
	g.Go(func() error {
		sum, err := s.stats.SumReceiptsBetween(gctx, ownerID, monthStart, monthEnd)
		if err != nil {
			return err
		}
		m.MonthlyRevenue = sum
		return nil
	})
	g.Go(func() error {
		n, err := s.stats.CountReceiptsBetween(gctx, ownerID, monthStart, monthEnd)
		if err != nil {
			return err
		}
		m.MonthlyReceiptCount = n
		return nil
	})
	g.Go(func() error {
		n, err := s.stats.CountActivePrescriptions(gctx, ownerID)
		if err != nil {
			return err
		}
		m.ActivePrescriptionCount = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if m.MonthlyReceiptCount > 0 {
		m.AverageReceiptValue = m.MonthlyRevenue.Div(decimal.NewFromInt(int64(m.MonthlyReceiptCount))).Round(2)
	}

	s.store(ctx, ownerID, key, m)
	return m, nil
}

// WeeklyPatients returns one point per week for the trailing weeks weeks,
// oldest first. Zero-count weeks are present, so the series never has gaps.
func (s *Service) WeeklyPatients(ctx context.Context, ownerID uuid.UUID, weeks int) (*WeeklySeries, error) {
	if weeks < 1 || weeks > 52 {
		return nil, fmt.Errorf("%w: weeks must be between 1 and 52, got %d", ErrInvalidParam, weeks)
	}

	key := cache.Key(opWeekly, ownerID.String(), strconv.Itoa(weeks))
	if v, ok := s.cached(ownerID, key); ok {
		if series, ok := v.(*WeeklySeries); ok {
			return series, nil
		}
	}

	now := s.now()
	points := make([]WeekPoint, weeks)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < weeks; i++ {
		// Index 0 is the oldest week; each goroutine owns one slot.
		g.Go(func() error {
			start, end := timewindow.WeekBoundsOffset(now, weeks-1-i)
			n, err := s.stats.CountPatientsBetween(gctx, ownerID, start, end)
			if err != nil {
				return err
			}
			points[i] = WeekPoint{
				WeekStart: start.Format("2006-01-02"),
				WeekEnd:   end.Format("2006-01-02"),
				Count:     n,
				Label:     start.Format("02/01") + " - " + end.Format("02/01"),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	series := &WeeklySeries{Weeks: points, WeekCount: weeks, GeneratedAt: now.UTC()}
	s.store(ctx, ownerID, key, series)
	return series, nil
}

// TopMedications ranks the owner's most prescribed medications over the
// trailing periodMonths months: count descending, name ascending on ties,
// truncated to limit. Percentages are over the full untruncated total and
// all zero when the window is empty.
func (s *Service) TopMedications(ctx context.Context, ownerID uuid.UUID, limit, periodMonths int) (*RankedList, error) {
	if limit < 1 || limit > 50 {
		return nil, fmt.Errorf("%w: limit must be between 1 and 50, got %d", ErrInvalidParam, limit)
	}
	if periodMonths < 1 || periodMonths > 24 {
		return nil, fmt.Errorf("%w: period must be between 1 and 24 months, got %d", ErrInvalidParam, periodMonths)
	}

	key := cache.Key(opTopMeds, ownerID.String(), strconv.Itoa(limit), strconv.Itoa(periodMonths))
	if v, ok := s.cached(ownerID, key); ok {
		if list, ok := v.(*RankedList); ok {
			return list, nil
		}
	}

	now := s.now()
	usages, err := s.stats.MedicationCountsBetween(ctx, ownerID, now.AddDate(0, -periodMonths, 0), now)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, u := range usages {
		total += u.Count
	}

	sort.Slice(usages, func(i, j int) bool {
		if usages[i].Count != usages[j].Count {
			return usages[i].Count > usages[j].Count
		}
		return usages[i].Name < usages[j].Name
	})
	if len(usages) > limit {
		usages = usages[:limit]
	}

	ranks := make([]MedicationRank, 0, len(usages))
	for _, u := range usages {
		var pct float64
		if total > 0 {
			pct = math.Round(1000*float64(u.Count)/float64(total)) / 10
		}
		ranks = append(ranks, MedicationRank{Name: u.Name, Count: u.Count, Percentage: pct})
	}

	list := &RankedList{
		Medications:     ranks,
		TotalConsidered: total,
		PeriodLabel:     periodLabel(periodMonths),
		GeneratedAt:     now.UTC(),
	}
	s.store(ctx, ownerID, key, list)
	return list, nil
}

func periodLabel(months int) string {
	switch months {
	case 1:
		return "last month"
	case 12:
		return "last year"
	default:
		return fmt.Sprintf("last %d months", months)
	}
}

// MonthlyComparison compares the current calendar month's receipt totals
// against the previous month's. PercentageDelta is nil when the previous
// month had zero revenue; the trend is no-baseline in exactly that case.
func (s *Service) MonthlyComparison(ctx context.Context, ownerID uuid.UUID) (*Comparison, error) {
	key := cache.Key(opComparison, ownerID.String())
	if v, ok := s.cached(ownerID, key); ok {
		if cmp, ok := v.(*Comparison); ok {
			return cmp, nil
		}
	}

	now := s.now()
	curStart, curEnd := timewindow.MonthBoundsAt(now)
	prevYear, prevMonth := timewindow.PreviousMonth(now.Year(), int(now.Month()))
	prevStart, prevEnd, err := timewindow.MonthBounds(prevYear, prevMonth, now.Location())
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{
		CurrentLabel:  curStart.Format("January 2006"),
		PreviousLabel: prevStart.Format("January 2006"),
		GeneratedAt:   now.UTC(),
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := s.stats.SumReceiptsBetween(gctx, ownerID, curStart, curEnd)
		if err != nil {
			return err
		}
		cmp.CurrentTotal = sum
		return nil
	})
	g.Go(func() error {
		sum, err := s.stats.SumReceiptsBetween(gctx, ownerID, prevStart, prevEnd)
		if err != nil {
			return err
		}
		cmp.PreviousTotal = sum
		return nil
	})
	g.Go(func() error {
		n, err := s.stats.CountReceiptsBetween(gctx, ownerID, curStart, curEnd)
		if err != nil {
			return err
		}
		cmp.CurrentCount = n
		return nil
	})
	g.Go(func() error {
		n, err := s.stats.CountReceiptsBetween(gctx, ownerID, prevStart, prevEnd)
		if err != nil {
			return err
		}
		cmp.PreviousCount = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cmp.AbsoluteDelta = cmp.CurrentTotal.Sub(cmp.PreviousTotal)
	if cmp.CurrentCount > 0 {
		cmp.CurrentAverage = cmp.CurrentTotal.Div(decimal.NewFromInt(int64(cmp.CurrentCount))).Round(2)
	}
	if cmp.PreviousCount > 0 {
		cmp.PreviousAverage = cmp.PreviousTotal.Div(decimal.NewFromInt(int64(cmp.PreviousCount))).Round(2)
	}

	if cmp.PreviousTotal.IsZero() {
		cmp.Trend = TrendNoBaseline
	} else {
		pct, _ := cmp.AbsoluteDelta.Div(cmp.PreviousTotal).Mul(decimal.NewFromInt(100)).Round(1).Float64()
		cmp.PercentageDelta = &pct
		switch {
		case cmp.AbsoluteDelta.IsZero():
			cmp.Trend = TrendStable
		case cmp.AbsoluteDelta.IsPositive():
			cmp.Trend = TrendGrowth
		default:
			cmp.Trend = TrendDecline
		}
	}

	s.store(ctx, ownerID, key, cmp)
	return cmp, nil
}
