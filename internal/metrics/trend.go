package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AngelCh415/stayreport/internal/models"
)

type Metric string

const (
	MetricTotalSales     Metric = "total_sales"
	MetricAvgNightlyRate Metric = "avg_nightly_rate"
	MetricAvgLeadTime    Metric = "avg_lead_time_days"
	MetricTotalNights    Metric = "total_nights"
	MetricOccupancyRate  Metric = "occupancy_rate"
)

var metricAliases = map[string]Metric{
	"total_sales":        MetricTotalSales,
	"sales":              MetricTotalSales,
	"avg_nightly_rate":   MetricAvgNightlyRate,
	"nightly_rate":       MetricAvgNightlyRate,
	"avg_lead_time_days": MetricAvgLeadTime,
	"lead_time":          MetricAvgLeadTime,
	"total_nights":       MetricTotalNights,
	"nights":             MetricTotalNights,
	"occupancy_rate":     MetricOccupancyRate,
	"occupancy":          MetricOccupancyRate,
}

func ParseMetric(s string) (Metric, error) {
	m, ok := metricAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
	return m, nil
}

// Value extracts the metric from a summary.
func (m Metric) Value(s models.PropertySummary) models.NullFloat {
	switch m {
	case MetricTotalSales:
		return models.Float(s.TotalSales)
	case MetricAvgNightlyRate:
		return s.AvgNightlyRate
	case MetricAvgLeadTime:
		return models.Float(s.AvgLeadTimeDays)
	case MetricTotalNights:
		return models.Float(float64(s.TotalNights))
	case MetricOccupancyRate:
		return models.Float(s.OccupancyRate)
	}
	return models.Undefined
}

// BuildTrend aggregates every period present in records separately, each
// against its own month length, and returns one series per property. With
// no properties given, all properties are included. A period where a
// property has no rows is skipped in its series.
func BuildTrend(records []models.NormalizedRecord, metric Metric, properties []string) (models.Trend, error) {
	metric, err := ParseMetric(string(metric))
	if err != nil {
		return models.Trend{}, err
	}

	byPeriod := map[string][]models.NormalizedRecord{}
	names := map[string]struct{}{}
	for _, r := range records {
		byPeriod[r.Period] = append(byPeriod[r.Period], r)
		names[r.PropertyName] = struct{}{}
	}
	periods := make([]string, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	if len(properties) == 0 {
		properties = make([]string, 0, len(names))
		for n := range names {
			properties = append(properties, n)
		}
		sort.Strings(properties)
	} else {
		properties = dedupe(properties)
	}

	series := make([]models.TrendSeries, len(properties))
	pos := make(map[string]int, len(properties))
	for i, p := range properties {
		series[i] = models.TrendSeries{PropertyName: p, Points: []models.TrendPoint{}}
		pos[p] = i
	}

	for _, p := range periods {
		y, m, err := ParsePeriod(p)
		if err != nil {
			return models.Trend{}, err
		}
		sums, err := Aggregate(byPeriod[p], DaysIn(y, m))
		if err != nil {
			return models.Trend{}, err
		}
		for _, s := range sums {
			i, ok := pos[s.PropertyName]
			if !ok {
				continue
			}
			series[i].Points = append(series[i].Points, models.TrendPoint{Period: p, Value: metric.Value(s)})
		}
	}

	return models.Trend{Metric: string(metric), Periods: periods, Series: series}, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
