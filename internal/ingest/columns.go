package ingest

import (
	"strings"

	"github.com/AngelCh415/stayreport/internal/models"
)

const (
	ColCheckIn      = "check_in_date"
	ColBookingDate  = "booking_date"
	ColPropertyName = "property_name"
	ColSalesAmount  = "sales_amount"
	ColTotalNights  = "total_nights"
)

var requiredColumns = []string{ColCheckIn, ColBookingDate, ColPropertyName, ColSalesAmount, ColTotalNights}

// headerAliases maps a normalized header cell to its canonical column.
var headerAliases = map[string]string{
	"チェックイン":        ColCheckIn,
	"チェックイン日":       ColCheckIn,
	"check_in_date": ColCheckIn,
	"check_in":      ColCheckIn,
	"checkin":       ColCheckIn,
	"checkin_date":  ColCheckIn,
	"予約日":           ColBookingDate,
	"booking_date":  ColBookingDate,
	"booked_at":     ColBookingDate,
	"booking":       ColBookingDate,
	"物件名":           ColPropertyName,
	"施設名":           ColPropertyName,
	"property_name": ColPropertyName,
	"property":      ColPropertyName,
	"販売":            ColSalesAmount,
	"売上":            ColSalesAmount,
	"sales_amount":  ColSalesAmount,
	"sales":         ColSalesAmount,
	"amount":        ColSalesAmount,
	"合計日数":          ColTotalNights,
	"total_nights":  ColTotalNights,
	"nights":        ColTotalNights,
	"nights_sold":   ColTotalNights,
}

func normHeader(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	s = strings.ToLower(s)
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}

// columnIndex holds the position of each canonical column in a header row.
type columnIndex map[string]int

func resolveColumns(header []string) (columnIndex, error) {
	idx := columnIndex{}
	for i, h := range header {
		col, ok := headerAliases[normHeader(h)]
		if !ok {
			continue
		}
		if _, dup := idx[col]; !dup {
			idx[col] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, parseErr(1, col, "", ErrMissingColumn)
		}
	}
	return idx, nil
}

func (ci columnIndex) cell(row []string, col string) string {
	i := ci[col]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// record builds a RawRecord from a data row; line is its 1-based position in the file.
func (ci columnIndex) record(row []string, line int) models.RawRecord {
	return models.RawRecord{
		Row:          line,
		CheckIn:      ci.cell(row, ColCheckIn),
		BookingDate:  ci.cell(row, ColBookingDate),
		PropertyName: ci.cell(row, ColPropertyName),
		SalesAmount:  ci.cell(row, ColSalesAmount),
		TotalNights:  ci.cell(row, ColTotalNights),
	}
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
