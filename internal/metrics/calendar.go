package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidPeriod      = errors.New("invalid period, want YYYY-MM")
	ErrInvalidMonth       = errors.New("invalid month, want 1-12")
	ErrInvalidMonthLength = errors.New("reference month length must be positive")
	ErrNoRecords          = errors.New("no records in scope")
	ErrUnknownMetric      = errors.New("unknown metric")
)

// DaysIn returns the number of calendar days of month m in year.
func DaysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func ParsePeriod(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return t.Year(), t.Month(), nil
}

func FormatPeriod(year int, m time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(m))
}

func ParseMonth(s string) (time.Month, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 12 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return time.Month(n), nil
}
