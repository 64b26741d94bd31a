package metrics

import (
	"time"

	"github.com/AngelCh415/stayreport/internal/models"
)

// booking builds a normalized record checking in on the given date.
func booking(name, checkIn string, sales float64, nights, lead int) models.NormalizedRecord {
	ci, err := time.Parse("2006-01-02", checkIn)
	if err != nil {
		panic(err)
	}
	r := models.NormalizedRecord{
		CheckIn:      ci,
		BookingDate:  ci.AddDate(0, 0, -lead),
		PropertyName: name,
		SalesAmount:  sales,
		TotalNights:  nights,
		Period:       ci.Format("2006-01"),
		LeadTimeDays: lead,
	}
	if nights > 0 {
		r.NightlyRate = models.Float(sales / float64(nights))
	}
	return r
}
