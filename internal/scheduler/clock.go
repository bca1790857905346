package scheduler

import "time"

// atHour returns t's calendar date at hour:00:00 in t's location.
func atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

// nextDayAt returns the following calendar date at hour:00:00.
func nextDayAt(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, hour, 0, 0, 0, t.Location())
}

// hourOf returns the fractional hour of day, e.g. 13.5 for 13:30.
func hourOf(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DayKey identifies the calendar date of t in its own location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekStart returns Monday 00:00 of the week containing t.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
}

func minDuration(ds ...time.Duration) time.Duration {
	m := ds[0]
	for _, d := range ds[1:] {
		if d < m {
			m = d
		}
	}
	return m
}
