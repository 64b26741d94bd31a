package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/stayreport/internal/models"
)

func TestAggregate_SakuraVilla(t *testing.T) {
	recs := []models.NormalizedRecord{
		booking("Sakura Villa", "2024-06-05", 10000, 2, 10),
		booking("Sakura Villa", "2024-06-20", 20000, 3, 30),
	}
	got, err := Aggregate(recs, 30)
	require.NoError(t, err)
	require.Len(t, got, 1)

	s := got[0]
	assert.Equal(t, "Sakura Villa", s.PropertyName)
	assert.Equal(t, 30000.0, s.TotalSales)
	assert.Equal(t, 5, s.TotalNights)
	assert.Equal(t, 2, s.Bookings)
	assert.InDelta(t, 5.0/30.0, s.OccupancyRate, 1e-9)
	assert.InDelta(t, (5000.0+20000.0/3)/2, s.AvgNightlyRate.Float64, 1e-9)
	assert.Equal(t, 20.0, s.AvgLeadTimeDays)
}

func TestAggregate_OccupancyCapped(t *testing.T) {
	got, err := Aggregate([]models.NormalizedRecord{booking("X", "2024-06-01", 1, 40, 0)}, 30)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got[0].OccupancyRate)
}

func TestAggregate_OccupancyAlwaysInRange(t *testing.T) {
	for _, nights := range []int{0, 1, 15, 30, 31, 100, 10000} {
		got, err := Aggregate([]models.NormalizedRecord{booking("X", "2024-06-01", 1, nights, 0)}, 30)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got[0].OccupancyRate, 0.0)
		assert.LessOrEqual(t, got[0].OccupancyRate, 1.0)
	}
}

func TestAggregate_Empty(t *testing.T) {
	got, err := Aggregate(nil, 31)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregate_InvalidMonthLength(t *testing.T) {
	_, err := Aggregate(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidMonthLength)
}

// Zero-night rows have an undefined rate and are skipped by the mean.
func TestAggregate_ZeroNightsSkippedFromMean(t *testing.T) {
	recs := []models.NormalizedRecord{
		booking("A", "2024-06-01", 9000, 3, 0),
		booking("A", "2024-06-02", 500, 0, 0),
	}
	got, err := Aggregate(recs, 30)
	require.NoError(t, err)
	assert.Equal(t, models.Float(3000), got[0].AvgNightlyRate)
	assert.Equal(t, 9500.0, got[0].TotalSales)

	got, err = Aggregate([]models.NormalizedRecord{booking("B", "2024-06-01", 500, 0, 0)}, 30)
	require.NoError(t, err)
	assert.False(t, got[0].AvgNightlyRate.Valid)
	assert.Equal(t, 0.0, got[0].OccupancyRate)
}

func TestAggregate_ConservesSalesAndIsIdempotent(t *testing.T) {
	recs := []models.NormalizedRecord{
		booking("A", "2024-06-01", 1200, 2, 3),
		booking("B", "2024-06-02", 800.5, 1, 10),
		booking("A", "2024-06-03", 0, 0, -1),
		booking("C", "2024-06-04", 15000, 5, 60),
		booking("B", "2024-06-05", 99.5, 1, 1),
	}
	first, err := Aggregate(recs, 30)
	require.NoError(t, err)
	second, err := Aggregate(recs, 30)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var in, out float64
	for _, r := range recs {
		in += r.SalesAmount
	}
	for _, s := range first {
		out += s.TotalSales
	}
	assert.InDelta(t, in, out, 1e-9)
	assert.Equal(t, []string{"A", "B", "C"}, []string{first[0].PropertyName, first[1].PropertyName, first[2].PropertyName})
}

func TestAggregate_NegativeLeadTimeAveraged(t *testing.T) {
	recs := []models.NormalizedRecord{
		booking("A", "2024-06-01", 1, 1, -3),
		booking("A", "2024-06-02", 1, 1, 2),
	}
	got, err := Aggregate(recs, 30)
	require.NoError(t, err)
	assert.Equal(t, -0.5, got[0].AvgLeadTimeDays)
}
