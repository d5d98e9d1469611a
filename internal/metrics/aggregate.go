// Package metrics is the aggregation engine: pure functions that turn the
// ledger entries of one objective into windowed scalars, cumulative
// time-bucketed series, and calendar-month heatmaps. Nothing here touches
// storage or clamps values; entries carry arbitrary signed deltas.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/strideapp/stride/internal/model"
)

// HeatmapColumns is a display hint for the calendar layout. It never reorders
// or pads the point list.
const HeatmapColumns = 7

type SeriesPoint struct {
	Bucket string  `json:"bucket"`
	Value  float64 `json:"value"`
}

type Heatmap struct {
	Columns int       `json:"columns"`
	Points  []float64 `json:"points"`
}

// WindowedSum sums the deltas logged within the look-back window ending at
// ref. PeriodAllTime sums every entry. An unrecognized period yields 0.
func WindowedSum(entries []*model.LedgerEntry, period string, ref time.Time) float64 {
	cutoff, all, ok := windowCutoff(period, ref)
	if !ok {
		return 0
	}

	var sum float64
	for _, e := range entries {
		if all || !e.LoggedAt.Before(cutoff) {
			sum += e.Delta
		}
	}
	return sum
}

// PercentOf converts a windowed sum into percent-of-goal. Only fixed
// objectives with an end value have a meaningful percentage; everything else
// is 0.
func PercentOf(sum float64, objective *model.Objective) float64 {
	if objective.GoalType != model.GoalTypeFixed || objective.EndValue == nil || *objective.EndValue == 0 {
		return 0
	}
	return sum / *objective.EndValue * 100
}

// Round rounds half away from zero at the given decimal precision (0-2).
func Round(v float64, precision int) float64 {
	if precision < 0 {
		precision = 0
	}
	if precision > 2 {
		precision = 2
	}
	factor := math.Pow(10, float64(precision))
	return math.Round(v*factor) / factor
}

// CumulativeSeries filters entries to the look-back window, buckets them at
// the given interval, and accumulates bucket sums forward in chronological
// order. The running total covers only the in-window set: the first bucket
// equals its own sum, not the all-time total. Buckets without entries are not
// synthesized. An unrecognized period or interval yields an empty series.
func CumulativeSeries(entries []*model.LedgerEntry, period, interval string, ref time.Time) []SeriesPoint {
	cutoff, all, ok := windowCutoff(period, ref)
	if !ok {
		return nil
	}

	sums := map[string]float64{}
	earliest := map[string]time.Time{}
	for _, e := range entries {
		if !all && e.LoggedAt.Before(cutoff) {
			continue
		}
		key, ok := bucketKey(e.LoggedAt, interval)
		if !ok {
			return nil
		}
		sums[key] += e.Delta
		first, seen := earliest[key]
		if !seen || e.LoggedAt.Before(first) {
			earliest[key] = e.LoggedAt
		}
	}

	keys := make([]string, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return earliest[keys[i]].Before(earliest[keys[j]])
	})

	series := make([]SeriesPoint, 0, len(keys))
	var running float64
	for _, key := range keys {
		running += sums[key]
		series = append(series, SeriesPoint{Bucket: key, Value: running})
	}
	return series
}

// CalendarHeatmap produces one non-cumulative point per calendar day of the
// target month, in day-of-month order (index 0 = day 1). Days without entries
// are 0.
func CalendarHeatmap(entries []*model.LedgerEntry, month time.Time) Heatmap {
	days := daysInMonth(month)
	points := make([]float64, days)

	for _, e := range entries {
		if e.LoggedAt.Year() != month.Year() || e.LoggedAt.Month() != month.Month() {
			continue
		}
		points[e.LoggedAt.Day()-1] += e.Delta
	}

	return Heatmap{Columns: HeatmapColumns, Points: points}
}

func daysInMonth(month time.Time) int {
	return time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, month.Location()).Day()
}
