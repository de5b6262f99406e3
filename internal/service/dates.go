package service

import (
	"math"
	"time"
)

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// inclusiveDays counts the days in [start, end], both ends included.
// Inputs must already be date-only; a one-day suspension has duration 1.
func inclusiveDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// rangesOverlap reports whether the inclusive ranges [aStart, aEnd] and
// [bStart, bEnd] intersect. Covers containment, partial overlap and exact
// match; symmetric in its arguments.
func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
