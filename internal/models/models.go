package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// RawRecord is one uploaded row as text cells, before any parsing.
type RawRecord struct {
	// Row is the line in the source, the header being line 1.
	Row          int
	CheckIn      string `validate:"required"`
	BookingDate  string `validate:"required"`
	PropertyName string `validate:"required"`
	SalesAmount  string `validate:"required"`
	TotalNights  string `validate:"required"`
}

// NullFloat is a float that may be undefined (e.g. a nightly rate over zero nights).
type NullFloat struct {
	Float64 float64
	Valid   bool
}

func Float(v float64) NullFloat { return NullFloat{Float64: v, Valid: true} }

// Undefined is the explicit "not a number" marker.
var Undefined = NullFloat{}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// Sub returns n - o, undefined if either side is.
func (n NullFloat) Sub(o NullFloat) NullFloat {
	if !n.Valid || !o.Valid {
		return Undefined
	}
	return Float(n.Float64 - o.Float64)
}

func (n NullFloat) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

type NormalizedRecord struct {
	Source       string    `json:"source,omitempty"`
	Row          int       `json:"row"`
	CheckIn      time.Time `json:"check_in"`
	BookingDate  time.Time `json:"booking_date"`
	PropertyName string    `json:"property_name" validate:"required"`
	SalesAmount  float64   `json:"sales_amount" validate:"gte=0"`
	TotalNights  int       `json:"total_nights" validate:"gte=0"`
	Period       string    `json:"period"` // YYYY-MM of CheckIn
	LeadTimeDays int       `json:"lead_time_days"`
	NightlyRate  NullFloat `json:"nightly_rate"`
}

type PropertySummary struct {
	PropertyName    string    `json:"property_name"`
	Bookings        int       `json:"bookings"`
	TotalSales      float64   `json:"total_sales"`
	AvgNightlyRate  NullFloat `json:"avg_nightly_rate"`
	AvgLeadTimeDays float64   `json:"avg_lead_time_days"`
	TotalNights     int       `json:"total_nights"`
	OccupancyRate   float64   `json:"occupancy_rate"`
}

type MonthlyReport struct {
	Period      string            `json:"period"`
	DaysInMonth int               `json:"days_in_month"`
	Summaries   []PropertySummary `json:"summaries"`
}

// PeriodMetrics is one side of a comparison row.
type PeriodMetrics struct {
	Present         bool      `json:"present"`
	TotalSales      NullFloat `json:"total_sales"`
	AvgNightlyRate  NullFloat `json:"avg_nightly_rate"`
	AvgLeadTimeDays NullFloat `json:"avg_lead_time_days"`
	TotalNights     NullFloat `json:"total_nights"`
	OccupancyRate   NullFloat `json:"occupancy_rate"`
}

type ComparisonRow struct {
	PropertyName     string        `json:"property_name"`
	A                PeriodMetrics `json:"a"`
	B                PeriodMetrics `json:"b"`
	SalesDelta       NullFloat     `json:"sales_delta"`
	NightlyRateDelta NullFloat     `json:"nightly_rate_delta"`
	LeadTimeDelta    NullFloat     `json:"lead_time_delta"`
}

type Comparison struct {
	Month       int             `json:"month"`
	YearA       int             `json:"year_a"`
	YearB       int             `json:"year_b"`
	DaysInMonth int             `json:"days_in_month"`
	MissingSide string          `json:"missing_side"`
	Rows        []ComparisonRow `json:"rows"`
}

type TrendPoint struct {
	Period string    `json:"period"`
	Value  NullFloat `json:"value"`
}

type TrendSeries struct {
	PropertyName string       `json:"property_name"`
	Points       []TrendPoint `json:"points"`
}

type Trend struct {
	Metric  string        `json:"metric"`
	Periods []string      `json:"periods"`
	Series  []TrendSeries `json:"series"`
}
