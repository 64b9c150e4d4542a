package calendar

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"calmora/models"
)

// ErrInvalidSchedule flags a malformed therapist schedule (bad timezone,
// inverted or overlapping rules). Not user-recoverable; handlers surface it
// as an internal error.
var ErrInvalidSchedule = errors.New("invalid therapist schedule")

const minutesPerDay = 24 * 60

// Interval is a half-open [StartUTC, EndUTC) availability window.
type Interval struct {
	StartUTC time.Time `json:"startUtc"`
	EndUTC   time.Time `json:"endUtc"`
}

// Contains reports whether [start, end) fits fully inside the interval.
func (iv Interval) Contains(start, end time.Time) bool {
	return !start.Before(iv.StartUTC) && !end.After(iv.EndUTC)
}

// IntervalsForWeek expands the therapist's recurring weekly rules into
// concrete UTC intervals for the 7 days starting at weekStart (a date in the
// therapist's local calendar). Wall-clock rule times are anchored in the
// therapist's location, so daylight-saving shifts move the UTC offset, not
// the local hour. The result is chronologically ordered and non-overlapping.
func IntervalsForWeek(rules []models.WeeklyRule, tz string, weekStart time.Time) ([]Interval, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidSchedule, tz)
	}

	for _, r := range rules {
		if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
			return nil, fmt.Errorf("%w: weekday %d out of range", ErrInvalidSchedule, r.Weekday)
		}
		if r.Start < 0 || r.End > minutesPerDay || r.Start >= r.End {
			return nil, fmt.Errorf("%w: rule window [%d, %d) is malformed", ErrInvalidSchedule, r.Start, r.End)
		}
	}

	anchor := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, loc)

	var intervals []Interval
	for offset := 0; offset < 7; offset++ {
		day := anchor.AddDate(0, 0, offset)
		for _, r := range rules {
			if r.Weekday != day.Weekday() {
				continue
			}
			start := time.Date(day.Year(), day.Month(), day.Day(), r.Start/60, r.Start%60, 0, 0, loc)
			end := time.Date(day.Year(), day.Month(), day.Day(), r.End/60, r.End%60, 0, 0, loc)
			if !end.After(start) {
				// A DST jump can swallow the whole window; nothing bookable that day.
				continue
			}
			intervals = append(intervals, Interval{StartUTC: start.UTC(), EndUTC: end.UTC()})
		}
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].StartUTC.Before(intervals[j].StartUTC)
	})

	for i := 1; i < len(intervals); i++ {
		if intervals[i].StartUTC.Before(intervals[i-1].EndUTC) {
			return nil, fmt.Errorf("%w: rules overlap around %s", ErrInvalidSchedule, intervals[i].StartUTC.Format(time.RFC3339))
		}
	}

	return intervals, nil
}
