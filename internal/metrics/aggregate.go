package metrics

import (
	"math"
	"sort"

	"github.com/AngelCh415/stayreport/internal/models"
)

type propertyAgg struct {
	bookings int
	sales    float64
	rateSum  float64
	rateN    int
	leadSum  int
	nights   int
}

func (a *propertyAgg) add(r models.NormalizedRecord) {
	a.bookings++
	a.sales += r.SalesAmount
	a.leadSum += r.LeadTimeDays
	a.nights += r.TotalNights
	// undefined rates are left out of the mean
	if r.NightlyRate.Valid {
		a.rateSum += r.NightlyRate.Float64
		a.rateN++
	}
}

func (a *propertyAgg) summary(name string, daysInMonth int) models.PropertySummary {
	s := models.PropertySummary{
		PropertyName:    name,
		Bookings:        a.bookings,
		TotalSales:      a.sales,
		AvgLeadTimeDays: float64(a.leadSum) / float64(a.bookings),
		TotalNights:     a.nights,
		OccupancyRate:   math.Min(float64(a.nights)/float64(daysInMonth), 1.0),
	}
	if a.rateN > 0 {
		s.AvgNightlyRate = models.Float(a.rateSum / float64(a.rateN))
	}
	return s
}

// Aggregate groups records by property and summarizes each group against a
// reference month of daysInMonth days. Occupancy is capped at 1. Records must
// already be filtered to the scope of interest; an empty slice yields an
// empty result. Output is sorted by property name.
func Aggregate(records []models.NormalizedRecord, daysInMonth int) ([]models.PropertySummary, error) {
	if daysInMonth <= 0 {
		return nil, ErrInvalidMonthLength
	}
	groups := make(map[string]*propertyAgg)
	for _, r := range records {
		a, ok := groups[r.PropertyName]
		if !ok {
			a = &propertyAgg{}
			groups[r.PropertyName] = a
		}
		a.add(r)
	}

	out := make([]models.PropertySummary, 0, len(groups))
	for name, a := range groups {
		out = append(out, a.summary(name, daysInMonth))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PropertyName < out[j].PropertyName })
	return out, nil
}
