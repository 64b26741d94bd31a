package metrics

import (
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/stayreport/internal/models"
	"github.com/AngelCh415/stayreport/internal/store"
	"github.com/AngelCh415/stayreport/internal/telemetry"
)

// Service picks the scope of a report from caller parameters and runs the
// aggregation over it. It keeps no state between calls.
type Service struct {
	log *slog.Logger
	obs *telemetry.Metrics
}

func NewService(log *slog.Logger, obs *telemetry.Metrics) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{log: log, obs: obs}
}

// Periods lists the periods and months found across the datasets.
func (s *Service) Periods(sets ...*store.Dataset) ([]string, []int) {
	periods := map[string]struct{}{}
	months := map[int]struct{}{}
	for _, ds := range sets {
		for _, p := range ds.Periods() {
			periods[p] = struct{}{}
		}
		for _, m := range ds.Months() {
			months[int(m)] = struct{}{}
		}
	}
	ps := make([]string, 0, len(periods))
	for p := range periods {
		ps = append(ps, p)
	}
	sort.Strings(ps)
	ms := make([]int, 0, len(months))
	for m := range months {
		ms = append(ms, m)
	}
	sort.Ints(ms)
	return ps, ms
}

// Monthly summarizes one period (YYYY-MM) of a dataset.
func (s *Service) Monthly(ds *store.Dataset, period string) (models.MonthlyReport, error) {
	y, m, err := ParsePeriod(period)
	if err != nil {
		return models.MonthlyReport{}, err
	}
	days := DaysIn(y, m)
	sums, err := Aggregate(ds.ByPeriod(FormatPeriod(y, m)), days)
	if err != nil {
		return models.MonthlyReport{}, err
	}
	s.obs.ReportGenerated("monthly")
	s.log.Debug("monthly report", slog.String("source", ds.Name()), slog.String("period", period), slog.Int("properties", len(sums)))
	return models.MonthlyReport{Period: FormatPeriod(y, m), DaysInMonth: days, Summaries: sums}, nil
}

// CompareMonth compares the same calendar month across two datasets. Each
// side's year is the earliest check-in year among its rows for that month;
// the occupancy denominator for both sides is the length of the month in
// b's year.
func (s *Service) CompareMonth(a, b *store.Dataset, month time.Month, opts CompareOptions) (models.Comparison, error) {
	if month < time.January || month > time.December {
		return models.Comparison{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	recA, recB := a.ByMonth(month), b.ByMonth(month)
	if len(recA) == 0 {
		return models.Comparison{}, fmt.Errorf("%w: %s has no check-ins in month %d", ErrNoRecords, a.Name(), month)
	}
	if len(recB) == 0 {
		return models.Comparison{}, fmt.Errorf("%w: %s has no check-ins in month %d", ErrNoRecords, b.Name(), month)
	}
	yearA, yearB := minYear(recA), minYear(recB)
	days := DaysIn(yearB, month)

	sumA, err := Aggregate(recA, days)
	if err != nil {
		return models.Comparison{}, err
	}
	sumB, err := Aggregate(recB, days)
	if err != nil {
		return models.Comparison{}, err
	}
	cmp := Compare(sumA, yearA, sumB, yearB, opts)
	cmp.Month = int(month)
	cmp.DaysInMonth = days
	s.obs.ReportGenerated("compare")
	s.log.Debug("comparison report", slog.Int("year_a", yearA), slog.Int("year_b", yearB),
		slog.Int("month", int(month)), slog.Int("rows", len(cmp.Rows)))
	return cmp, nil
}

// Trend builds per-property series of one metric over every period of ds.
func (s *Service) Trend(ds *store.Dataset, metric Metric, properties []string) (models.Trend, error) {
	t, err := BuildTrend(ds.All(), metric, properties)
	if err != nil {
		return models.Trend{}, err
	}
	s.obs.ReportGenerated("trend")
	return t, nil
}

func minYear(recs []models.NormalizedRecord) int {
	y := recs[0].CheckIn.Year()
	for _, r := range recs[1:] {
		if r.CheckIn.Year() < y {
			y = r.CheckIn.Year()
		}
	}
	return y
}

// ListOptions controls ordering and paging of report rows.
type ListOptions struct {
	Sort   string
	Desc   bool
	Limit  int
	Offset int
}

func ParseListOptions(v url.Values) ListOptions {
	return ListOptions{
		Sort:   norm(v.Get("sort")),
		Desc:   v.Get("desc") == "1" || norm(v.Get("desc")) == "true",
		Limit:  atoiDef(v.Get("limit"), 0),
		Offset: atoiDef(v.Get("offset"), 0),
	}
}

var summaryKeys = map[string]func(models.PropertySummary) models.NullFloat{
	"sales":        func(p models.PropertySummary) models.NullFloat { return models.Float(p.TotalSales) },
	"nightly_rate": func(p models.PropertySummary) models.NullFloat { return p.AvgNightlyRate },
	"lead_time":    func(p models.PropertySummary) models.NullFloat { return models.Float(p.AvgLeadTimeDays) },
	"nights":       func(p models.PropertySummary) models.NullFloat { return models.Float(float64(p.TotalNights)) },
	"occupancy":    func(p models.PropertySummary) models.NullFloat { return models.Float(p.OccupancyRate) },
}

var comparisonKeys = map[string]func(models.ComparisonRow) models.NullFloat{
	"sales_a":            func(r models.ComparisonRow) models.NullFloat { return r.A.TotalSales },
	"sales_b":            func(r models.ComparisonRow) models.NullFloat { return r.B.TotalSales },
	"sales_delta":        func(r models.ComparisonRow) models.NullFloat { return r.SalesDelta },
	"nightly_rate_delta": func(r models.ComparisonRow) models.NullFloat { return r.NightlyRateDelta },
	"lead_time_delta":    func(r models.ComparisonRow) models.NullFloat { return r.LeadTimeDelta },
	"occupancy_b":        func(r models.ComparisonRow) models.NullFloat { return r.B.OccupancyRate },
}

// ValidSort reports whether key can order summaries (comparison=false) or comparison rows.
func ValidSort(key string, comparison bool) bool {
	if key == "" || key == "property" {
		return true
	}
	if comparison {
		_, ok := comparisonKeys[key]
		return ok
	}
	_, ok := summaryKeys[key]
	return ok
}

// ListSummaries sorts and pages summaries. Unknown sort keys fall back to
// property name. Undefined values sort last in either direction.
func ListSummaries(rows []models.PropertySummary, o ListOptions) []models.PropertySummary {
	out := append([]models.PropertySummary(nil), rows...)
	key := summaryKeys[o.Sort]
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i].PropertyName, out[j].PropertyName, key, out[i], out[j], o.Desc)
	})
	limit, offset := clampLimitOffset(o.Limit, o.Offset, len(out))
	return paginate(out, limit, offset)
}

func ListComparison(rows []models.ComparisonRow, o ListOptions) []models.ComparisonRow {
	out := append([]models.ComparisonRow(nil), rows...)
	key := comparisonKeys[o.Sort]
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i].PropertyName, out[j].PropertyName, key, out[i], out[j], o.Desc)
	})
	limit, offset := clampLimitOffset(o.Limit, o.Offset, len(out))
	return paginate(out, limit, offset)
}

func less[T any](nameI, nameJ string, key func(T) models.NullFloat, a, b T, desc bool) bool {
	if key != nil {
		va, vb := key(a), key(b)
		switch {
		case va.Valid && !vb.Valid:
			return true
		case !va.Valid && vb.Valid:
			return false
		case va.Valid && vb.Valid && va.Float64 != vb.Float64:
			if desc {
				return va.Float64 > vb.Float64
			}
			return va.Float64 < vb.Float64
		}
		return nameI < nameJ
	}
	if desc {
		return nameI > nameJ
	}
	return nameI < nameJ
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	} // hard cap
	if offset > n {
		offset = n
	}
	return limit, offset
}
