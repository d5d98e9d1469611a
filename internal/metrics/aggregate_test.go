package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strideapp/stride/internal/model"
)

func entry(delta float64, loggedAt time.Time) *model.LedgerEntry {
	return &model.LedgerEntry{
		ID:          "entry-" + loggedAt.Format(time.RFC3339),
		ObjectiveID: "obj-1",
		UserID:      "user-1",
		Delta:       delta,
		LoggedAt:    loggedAt,
	}
}

// Friday +0, Saturday +20, Sunday +30, reference Sunday noon.
func weekendEntries() ([]*model.LedgerEntry, time.Time) {
	entries := []*model.LedgerEntry{
		entry(0, time.Date(2024, time.May, 10, 8, 0, 0, 0, time.UTC)),
		entry(20, time.Date(2024, time.May, 11, 10, 0, 0, 0, time.UTC)),
		entry(30, time.Date(2024, time.May, 12, 9, 0, 0, 0, time.UTC)),
	}
	ref := time.Date(2024, time.May, 12, 12, 0, 0, 0, time.UTC)
	return entries, ref
}

func fixedObjective(end float64) *model.Objective {
	return &model.Objective{
		ID:       "obj-1",
		UserID:   "user-1",
		GoalType: model.GoalTypeFixed,
		EndValue: &end,
	}
}

func TestWindowedSum(t *testing.T) {
	entries, ref := weekendEntries()

	assert.Equal(t, 50.0, WindowedSum(entries, PeriodAllTime, ref))
	assert.Equal(t, 30.0, WindowedSum(entries, PeriodDay, ref))
	assert.Equal(t, 50.0, WindowedSum(entries, PeriodWeek, ref))
	assert.Equal(t, 50.0, WindowedSum(entries, PeriodMonth, ref))

	t.Run("unrecognized period", func(t *testing.T) {
		assert.Equal(t, 0.0, WindowedSum(entries, "fortnight", ref))
	})

	t.Run("no entries", func(t *testing.T) {
		assert.Equal(t, 0.0, WindowedSum(nil, PeriodAllTime, ref))
	})

	t.Run("monotonic over widening windows", func(t *testing.T) {
		day := WindowedSum(entries, PeriodDay, ref)
		week := WindowedSum(entries, PeriodWeek, ref)
		month := WindowedSum(entries, PeriodMonth, ref)
		year := WindowedSum(entries, PeriodYear, ref)
		all := WindowedSum(entries, PeriodAllTime, ref)
		assert.LessOrEqual(t, day, week)
		assert.LessOrEqual(t, week, month)
		assert.LessOrEqual(t, month, year)
		assert.LessOrEqual(t, year, all)
	})

	t.Run("negative deltas are not clamped", func(t *testing.T) {
		mixed := append(entries, entry(-60, ref.Add(-time.Hour)))
		assert.Equal(t, -10.0, WindowedSum(mixed, PeriodAllTime, ref))
	})
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, 50.0, PercentOf(50, fixedObjective(100)))
	assert.Equal(t, 12.5, PercentOf(25, fixedObjective(200)))

	t.Run("ongoing objective", func(t *testing.T) {
		end := 100.0
		ongoing := &model.Objective{GoalType: model.GoalTypeOngoing, EndValue: &end}
		assert.Equal(t, 0.0, PercentOf(50, ongoing))
	})

	t.Run("missing end value", func(t *testing.T) {
		assert.Equal(t, 0.0, PercentOf(50, &model.Objective{GoalType: model.GoalTypeFixed}))
	})
}

func TestRound(t *testing.T) {
	assert.Equal(t, 33.0, Round(33.333, 0))
	assert.Equal(t, 33.3, Round(33.333, 1))
	assert.Equal(t, 33.33, Round(33.333, 2))

	t.Run("half away from zero", func(t *testing.T) {
		assert.Equal(t, 3.0, Round(2.5, 0))
		assert.Equal(t, -3.0, Round(-2.5, 0))
		assert.Equal(t, 0.13, Round(0.125, 2))
	})

	t.Run("precision clamped to 0..2", func(t *testing.T) {
		assert.Equal(t, 33.33, Round(33.3333, 5))
		assert.Equal(t, 33.0, Round(33.3333, -1))
	})
}

func TestCumulativeSeries(t *testing.T) {
	entries, ref := weekendEntries()

	t.Run("week lookback daily buckets", func(t *testing.T) {
		series := CumulativeSeries(entries, PeriodWeek, IntervalDay, ref)
		require.Len(t, series, 3)
		assert.Equal(t, SeriesPoint{Bucket: "2024-05-10", Value: 0}, series[0])
		assert.Equal(t, SeriesPoint{Bucket: "2024-05-11", Value: 20}, series[1])
		assert.Equal(t, SeriesPoint{Bucket: "2024-05-12", Value: 50}, series[2])
	})

	t.Run("first in-window bucket starts from its own sum", func(t *testing.T) {
		// An old entry outside the window must not seed the running total.
		old := append([]*model.LedgerEntry{
			entry(1000, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)),
		}, entries...)
		series := CumulativeSeries(old, PeriodWeek, IntervalDay, ref)
		require.Len(t, series, 3)
		assert.Equal(t, 0.0, series[0].Value)
		assert.Equal(t, 50.0, series[2].Value)
	})

	t.Run("last bucket equals windowed sum", func(t *testing.T) {
		series := CumulativeSeries(entries, PeriodWeek, IntervalDay, ref)
		require.NotEmpty(t, series)
		assert.Equal(t, WindowedSum(entries, PeriodWeek, ref), series[len(series)-1].Value)
	})

	t.Run("empty buckets are not synthesized", func(t *testing.T) {
		sparse := []*model.LedgerEntry{
			entry(5, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)),
			entry(7, time.Date(2024, time.May, 9, 0, 0, 0, 0, time.UTC)),
		}
		series := CumulativeSeries(sparse, PeriodMonth, IntervalDay, ref)
		require.Len(t, series, 2)
		assert.Equal(t, 5.0, series[0].Value)
		assert.Equal(t, 12.0, series[1].Value)
	})

	t.Run("week interval uses ISO week keys", func(t *testing.T) {
		series := CumulativeSeries(entries, PeriodAllTime, IntervalWeek, ref)
		require.Len(t, series, 1)
		assert.Equal(t, "2024-W19", series[0].Bucket)
		assert.Equal(t, 50.0, series[0].Value)
	})

	t.Run("all time includes everything", func(t *testing.T) {
		series := CumulativeSeries(entries, PeriodAllTime, IntervalMonth, ref)
		require.Len(t, series, 1)
		assert.Equal(t, SeriesPoint{Bucket: "2024-05", Value: 50}, series[0])
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, CumulativeSeries(nil, PeriodWeek, IntervalDay, ref))
	})

	t.Run("unrecognized lookback or interval", func(t *testing.T) {
		assert.Nil(t, CumulativeSeries(entries, "fortnight", IntervalDay, ref))
		assert.Nil(t, CumulativeSeries(entries, PeriodWeek, "hour", ref))
	})
}

func TestCalendarHeatmap(t *testing.T) {
	entries, _ := weekendEntries()

	may := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	hm := CalendarHeatmap(entries, may)

	assert.Equal(t, HeatmapColumns, hm.Columns)
	require.Len(t, hm.Points, 31)

	for i, p := range hm.Points {
		switch i {
		case 9:
			assert.Equal(t, 0.0, p, "May 10")
		case 10:
			assert.Equal(t, 20.0, p, "May 11")
		case 11:
			assert.Equal(t, 30.0, p, "May 12")
		default:
			assert.Equal(t, 0.0, p, "May %d", i+1)
		}
	}

	t.Run("point sum matches the month's entries", func(t *testing.T) {
		var sum float64
		for _, p := range hm.Points {
			sum += p
		}
		assert.Equal(t, 50.0, sum)
	})

	t.Run("other months are excluded", func(t *testing.T) {
		june := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
		hm := CalendarHeatmap(entries, june)
		require.Len(t, hm.Points, 30)
		for _, p := range hm.Points {
			assert.Equal(t, 0.0, p)
		}
	})

	t.Run("february length follows the calendar", func(t *testing.T) {
		leap := CalendarHeatmap(nil, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
		assert.Len(t, leap.Points, 29)
		plain := CalendarHeatmap(nil, time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC))
		assert.Len(t, plain.Points, 28)
	})

	t.Run("multiple entries on one day accumulate", func(t *testing.T) {
		day := time.Date(2024, time.May, 11, 0, 0, 0, 0, time.UTC)
		doubled := append(entries, entry(5, day.Add(20*time.Hour)))
		hm := CalendarHeatmap(doubled, may)
		assert.Equal(t, 25.0, hm.Points[10])
	})
}
