package store

import (
	"sort"
	"time"

	"github.com/AngelCh415/stayreport/internal/models"
)

// Dataset holds the normalized records of one upload. It is built once per
// request and never mutated; accessors return copies.
type Dataset struct {
	name    string
	records []models.NormalizedRecord
}

func NewDataset(name string, records []models.NormalizedRecord) *Dataset {
	cp := make([]models.NormalizedRecord, len(records))
	copy(cp, records)
	return &Dataset{name: name, records: cp}
}

func (d *Dataset) Name() string { return d.name }
func (d *Dataset) Len() int     { return len(d.records) }

func (d *Dataset) All() []models.NormalizedRecord {
	return d.Filter(nil)
}

// Filter returns the records accepted by f, all of them when f is nil.
func (d *Dataset) Filter(f func(models.NormalizedRecord) bool) []models.NormalizedRecord {
	out := make([]models.NormalizedRecord, 0, len(d.records))
	for _, r := range d.records {
		if f == nil || f(r) {
			out = append(out, r)
		}
	}
	return out
}

// ByPeriod returns the records whose check-in falls in period (YYYY-MM).
func (d *Dataset) ByPeriod(period string) []models.NormalizedRecord {
	return d.Filter(func(r models.NormalizedRecord) bool { return r.Period == period })
}

// ByMonth returns the records whose check-in month is m, whatever the year.
func (d *Dataset) ByMonth(m time.Month) []models.NormalizedRecord {
	return d.Filter(func(r models.NormalizedRecord) bool { return r.CheckIn.Month() == m })
}

// Periods lists the distinct periods, oldest first.
func (d *Dataset) Periods() []string {
	seen := map[string]struct{}{}
	for _, r := range d.records {
		seen[r.Period] = struct{}{}
	}
	return sortedKeys(seen)
}

// Months lists the distinct check-in months, January first.
func (d *Dataset) Months() []time.Month {
	seen := map[time.Month]struct{}{}
	for _, r := range d.records {
		seen[r.CheckIn.Month()] = struct{}{}
	}
	out := make([]time.Month, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (d *Dataset) Properties() []string {
	seen := map[string]struct{}{}
	for _, r := range d.records {
		seen[r.PropertyName] = struct{}{}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
