package metrics

import (
	"fmt"
	"time"
)

// Look-back periods and bucket intervals. A period filters entries relative to
// a reference instant; an interval is the granularity a filtered series is
// bucketed at before cumulative summation.
const (
	PeriodDay     = "day"
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodYear    = "year"
	PeriodAllTime = "all"
)

const (
	IntervalDay   = "day"
	IntervalWeek  = "week"
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// windowCutoff returns the inclusive lower bound for a look-back period.
// all reports an all-time window (no cutoff); ok is false for an
// unrecognized period.
func windowCutoff(period string, ref time.Time) (cutoff time.Time, all bool, ok bool) {
	switch period {
	case PeriodAllTime:
		return time.Time{}, true, true
	case PeriodDay:
		return ref.AddDate(0, 0, -1), false, true
	case PeriodWeek:
		return ref.AddDate(0, 0, -7), false, true
	case PeriodMonth:
		return ref.AddDate(0, -1, 0), false, true
	case PeriodYear:
		return ref.AddDate(-1, 0, 0), false, true
	}
	return time.Time{}, false, false
}

// bucketKey truncates an instant to the bucket interval. Keys are stable and
// human-readable: calendar date, ISO week, year-month, or year.
func bucketKey(t time.Time, interval string) (string, bool) {
	switch interval {
	case IntervalDay:
		return t.Format("2006-01-02"), true
	case IntervalWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week), true
	case IntervalMonth:
		return t.Format("2006-01"), true
	case IntervalYear:
		return t.Format("2006"), true
	}
	return "", false
}
