// Package report shapes engine output into tables. Display tables are for
// people (percentages, "n/a"); export tables keep raw numbers so files stay
// machine-readable.
package report

import (
	"fmt"
	"strconv"

	"github.com/AngelCh415/stayreport/internal/models"
)

type Mode int

const (
	Display Mode = iota
	Export
)

type Lang string

const (
	LangEN Lang = "en"
	LangJA Lang = "ja"
)

func ParseLang(s string) (Lang, error) {
	switch Lang(s) {
	case "", LangEN:
		return LangEN, nil
	case LangJA:
		return LangJA, nil
	}
	return "", fmt.Errorf("unknown header language %q", s)
}

// Table is a header row plus string cells. Numeric marks the columns that
// hold numbers, for writers that keep cell types.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Numeric []bool     `json:"-"`
}

type column struct {
	en, ja string
}

var (
	colProperty  = column{"property_name", "物件名"}
	colSales     = column{"total_sales", "販売"}
	colRate      = column{"avg_nightly_rate", "平均宿泊単価"}
	colLead      = column{"avg_lead_time_days", "リードタイム（日）"}
	colNights    = column{"total_nights", "合計日数"}
	colOccupancy = column{"occupancy_rate", "稼働率"}
	colBookings  = column{"bookings", "予約件数"}

	colSalesDelta = column{"sales_delta", "販売_差分"}
	colRateDelta  = column{"nightly_rate_delta", "平均宿泊単価_差分"}
	colLeadDelta  = column{"lead_time_delta", "リードタイム_差分"}
)

func (c column) name(l Lang) string {
	if l == LangJA {
		return c.ja
	}
	return c.en
}

// SummaryTable renders one period's property summaries.
func SummaryTable(sums []models.PropertySummary, mode Mode, lang Lang) Table {
	cols := []column{colProperty, colSales, colRate, colLead, colNights, colOccupancy, colBookings}
	t := Table{Headers: names(cols, lang, ""), Numeric: numericAfterFirst(len(cols))}
	t.Rows = make([][]string, 0, len(sums))
	for _, s := range sums {
		t.Rows = append(t.Rows, []string{
			s.PropertyName,
			num(s.TotalSales),
			nullNum(s.AvgNightlyRate, mode),
			num(s.AvgLeadTimeDays),
			strconv.Itoa(s.TotalNights),
			pct(models.Float(s.OccupancyRate), mode),
			strconv.Itoa(s.Bookings),
		})
	}
	return t
}

// ComparisonTable renders a two-period comparison. Metric columns are
// suffixed with each side's year; equal years get _1 and _2 appended.
func ComparisonTable(c models.Comparison, mode Mode, lang Lang) Table {
	sufA, sufB := fmt.Sprintf("_%d", c.YearA), fmt.Sprintf("_%d", c.YearB)
	if c.YearA == c.YearB {
		sufA, sufB = sufA+"_1", sufB+"_2"
	}
	metricCols := []column{colSales, colRate, colLead, colNights, colOccupancy}

	headers := []string{colProperty.name(lang)}
	headers = append(headers, names(metricCols, lang, sufA)...)
	headers = append(headers, names(metricCols, lang, sufB)...)
	headers = append(headers, names([]column{colSalesDelta, colRateDelta, colLeadDelta}, lang, "")...)
	headers = append(headers, presenceHeader(lang, sufA), presenceHeader(lang, sufB))

	numeric := numericAfterFirst(len(headers))
	numeric[len(numeric)-1], numeric[len(numeric)-2] = false, false
	t := Table{Headers: headers, Numeric: numeric}
	t.Rows = make([][]string, 0, len(c.Rows))
	for _, r := range c.Rows {
		row := []string{r.PropertyName}
		row = append(row, sideCells(r.A, mode)...)
		row = append(row, sideCells(r.B, mode)...)
		row = append(row,
			nullNum(r.SalesDelta, mode),
			nullNum(r.NightlyRateDelta, mode),
			nullNum(r.LeadTimeDelta, mode),
			strconv.FormatBool(r.A.Present),
			strconv.FormatBool(r.B.Present),
		)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// TrendTable renders one row per property and one column per period.
func TrendTable(tr models.Trend, mode Mode, lang Lang) Table {
	headers := append([]string{colProperty.name(lang)}, tr.Periods...)
	t := Table{Headers: headers, Numeric: numericAfterFirst(len(headers))}
	isPct := tr.Metric == "occupancy_rate"
	for _, s := range tr.Series {
		row := make([]string, len(headers))
		row[0] = s.PropertyName
		byPeriod := make(map[string]models.NullFloat, len(s.Points))
		for _, p := range s.Points {
			byPeriod[p.Period] = p.Value
		}
		for i, p := range tr.Periods {
			v, ok := byPeriod[p]
			switch {
			case !ok:
				row[i+1] = missing(mode)
			case isPct:
				row[i+1] = pct(v, mode)
			default:
				row[i+1] = nullNum(v, mode)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func sideCells(p models.PeriodMetrics, mode Mode) []string {
	return []string{
		nullNum(p.TotalSales, mode),
		nullNum(p.AvgNightlyRate, mode),
		nullNum(p.AvgLeadTimeDays, mode),
		nullNum(p.TotalNights, mode),
		pct(p.OccupancyRate, mode),
	}
}

func presenceHeader(l Lang, suffix string) string {
	if l == LangJA {
		return "データ有無" + suffix
	}
	return "present" + suffix
}

func names(cols []column, l Lang, suffix string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name(l) + suffix
	}
	return out
}

func numericAfterFirst(n int) []bool {
	out := make([]bool, n)
	for i := 1; i < n; i++ {
		out[i] = true
	}
	return out
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func missing(mode Mode) string {
	if mode == Display {
		return "n/a"
	}
	return ""
}

func nullNum(v models.NullFloat, mode Mode) string {
	if !v.Valid {
		return missing(mode)
	}
	return v.String()
}

// pct shows a fraction as a one-decimal percentage in display mode.
func pct(v models.NullFloat, mode Mode) string {
	if !v.Valid {
		return missing(mode)
	}
	if mode == Export {
		return num(v.Float64)
	}
	return strconv.FormatFloat(v.Float64*100, 'f', 1, 64) + "%"
}
