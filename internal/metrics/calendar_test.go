package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysIn(t *testing.T) {
	cases := []struct {
		year int
		m    time.Month
		want int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2024, time.June, 30},
		{2024, time.December, 31},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DaysIn(c.year, c.m), "%d-%02d", c.year, c.m)
	}
}

func TestParsePeriod(t *testing.T) {
	y, m, err := ParsePeriod(" 2024-06 ")
	require.NoError(t, err)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.June, m)
	assert.Equal(t, "2024-06", FormatPeriod(y, m))

	for _, bad := range []string{"", "2024-13", "2024/06", "June"} {
		_, _, err := ParsePeriod(bad)
		assert.ErrorIs(t, err, ErrInvalidPeriod, bad)
	}
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2")
	require.NoError(t, err)
	assert.Equal(t, time.February, m)
	for _, bad := range []string{"0", "13", "feb", ""} {
		_, err := ParseMonth(bad)
		assert.ErrorIs(t, err, ErrInvalidMonth, bad)
	}
}
