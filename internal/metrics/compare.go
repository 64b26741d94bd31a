package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AngelCh415/stayreport/internal/models"
)

// MissingSide decides what a property absent from one period reports for it.
type MissingSide string

const (
	// MissingZero fills the absent side with zeros, so averages read as 0.
	MissingZero MissingSide = "zero"
	// MissingUndefined leaves the absent side undefined, along with its deltas.
	MissingUndefined MissingSide = "undefined"
)

func ParseMissingSide(s string) (MissingSide, error) {
	switch MissingSide(strings.ToLower(strings.TrimSpace(s))) {
	case "", MissingZero:
		return MissingZero, nil
	case MissingUndefined:
		return MissingUndefined, nil
	}
	return "", fmt.Errorf("invalid missing side policy %q", s)
}

type CompareOptions struct {
	MissingSide MissingSide
}

// Compare outer-joins two summaries on property name. a is the earlier
// period. Every property of either side gets exactly one row; deltas are
// b - a. If a name repeats within one side, its first entry is used.
func Compare(a []models.PropertySummary, yearA int, b []models.PropertySummary, yearB int, opts CompareOptions) models.Comparison {
	if opts.MissingSide == "" {
		opts.MissingSide = MissingZero
	}
	byA := index(a)
	byB := index(b)

	names := make([]string, 0, len(byA)+len(byB))
	for n := range byA {
		names = append(names, n)
	}
	for n := range byB {
		if _, ok := byA[n]; !ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	rows := make([]models.ComparisonRow, 0, len(names))
	for _, n := range names {
		sa := side(byA[n], opts.MissingSide)
		sb := side(byB[n], opts.MissingSide)
		rows = append(rows, models.ComparisonRow{
			PropertyName:     n,
			A:                sa,
			B:                sb,
			SalesDelta:       sb.TotalSales.Sub(sa.TotalSales),
			NightlyRateDelta: sb.AvgNightlyRate.Sub(sa.AvgNightlyRate),
			LeadTimeDelta:    sb.AvgLeadTimeDays.Sub(sa.AvgLeadTimeDays),
		})
	}
	return models.Comparison{
		YearA:       yearA,
		YearB:       yearB,
		MissingSide: string(opts.MissingSide),
		Rows:        rows,
	}
}

func index(s []models.PropertySummary) map[string]*models.PropertySummary {
	m := make(map[string]*models.PropertySummary, len(s))
	for i := range s {
		if _, ok := m[s[i].PropertyName]; !ok {
			m[s[i].PropertyName] = &s[i]
		}
	}
	return m
}

func side(s *models.PropertySummary, missing MissingSide) models.PeriodMetrics {
	if s == nil {
		if missing == MissingUndefined {
			return models.PeriodMetrics{}
		}
		zero := models.Float(0)
		return models.PeriodMetrics{
			TotalSales:      zero,
			AvgNightlyRate:  zero,
			AvgLeadTimeDays: zero,
			TotalNights:     zero,
			OccupancyRate:   zero,
		}
	}
	return models.PeriodMetrics{
		Present:         true,
		TotalSales:      models.Float(s.TotalSales),
		AvgNightlyRate:  s.AvgNightlyRate,
		AvgLeadTimeDays: models.Float(s.AvgLeadTimeDays),
		TotalNights:     models.Float(float64(s.TotalNights)),
		OccupancyRate:   models.Float(s.OccupancyRate),
	}
}
