package ingest

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AngelCh415/stayreport/internal/models"
)

var validate = validator.New()

// fieldColumn maps struct fields to the canonical column they came from.
var fieldColumn = map[string]string{
	"CheckIn":      ColCheckIn,
	"BookingDate":  ColBookingDate,
	"PropertyName": ColPropertyName,
	"SalesAmount":  ColSalesAmount,
	"TotalNights":  ColTotalNights,
}

var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"2006-1-2 15:04:05",
	"2006/1/2 15:04:05",
	"2006-1-2 15:04",
	"2006/1/2 15:04",
	"2006-1-2T15:04:05",
	time.RFC3339,
	"2006年1月2日",
}

// Normalize parses every raw row into a typed record with its derived fields.
// The first bad row aborts the batch; no row is ever dropped.
func Normalize(raw []models.RawRecord) ([]models.NormalizedRecord, error) {
	out := make([]models.NormalizedRecord, 0, len(raw))
	for _, r := range raw {
		rec, err := NormalizeRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func NormalizeRecord(r models.RawRecord) (models.NormalizedRecord, error) {
	if err := validate.Struct(r); err != nil {
		return models.NormalizedRecord{}, validationErr(r.Row, err)
	}
	checkIn, err := ParseDate(r.CheckIn)
	if err != nil {
		return models.NormalizedRecord{}, parseErr(r.Row, ColCheckIn, r.CheckIn, ErrInvalidDate)
	}
	booked, err := ParseDate(r.BookingDate)
	if err != nil {
		return models.NormalizedRecord{}, parseErr(r.Row, ColBookingDate, r.BookingDate, ErrInvalidDate)
	}
	sales, err := parseAmount(r.SalesAmount)
	if err != nil {
		return models.NormalizedRecord{}, parseErr(r.Row, ColSalesAmount, r.SalesAmount, ErrInvalidNumber)
	}
	nights, err := parseNights(r.TotalNights)
	if err != nil {
		return models.NormalizedRecord{}, parseErr(r.Row, ColTotalNights, r.TotalNights, ErrInvalidNumber)
	}

	rec := models.NormalizedRecord{
		Row:          r.Row,
		CheckIn:      checkIn,
		BookingDate:  booked,
		PropertyName: strings.TrimSpace(r.PropertyName),
		SalesAmount:  sales,
		TotalNights:  nights,
		Period:       checkIn.Format("2006-01"),
		LeadTimeDays: leadTimeDays(checkIn, booked),
	}
	if err := validate.Struct(rec); err != nil {
		return models.NormalizedRecord{}, validationErr(r.Row, err)
	}
	// zero nights leaves the rate undefined
	if nights > 0 {
		rec.NightlyRate = models.Float(sales / float64(nights))
	}
	return rec, nil
}

// ParseDate accepts ISO-like dates with '-', '/' or '.' separators, an
// optional time of day, and RFC 3339.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// leadTimeDays floors the gap to whole days; it is negative when the
// booking date is after check-in.
func leadTimeDays(checkIn, booked time.Time) int {
	return int(math.Floor(checkIn.Sub(booked).Hours() / 24))
}

var amountCleaner = strings.NewReplacer(",", "", " ", "", "¥", "", "￥", "")

func parseAmount(s string) (float64, error) {
	f, err := strconv.ParseFloat(amountCleaner.Replace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidNumber
	}
	return f, nil
}

func parseNights(s string) (int, error) {
	f, err := parseAmount(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, ErrInvalidNumber
	}
	return int(f), nil
}

func validationErr(row int, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return parseErr(row, "", "", err)
	}
	fe := ve[0]
	cause := ErrMissingValue
	if fe.Tag() == "gte" {
		cause = ErrNegativeValue
	}
	val := ""
	if fe.Value() != nil {
		val = strings.TrimSpace(toString(fe.Value()))
	}
	return parseErr(row, fieldColumn[fe.StructField()], val, cause)
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}
