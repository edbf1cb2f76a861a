package utils

import "time"

// DateCodeLayout renders dates as ddmmyyyy
const DateCodeLayout = "02012006"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// BusinessDate returns the calendar day a moment belongs to for billing.
// Before cutoffHour local time the moment still counts toward the previous day.
func BusinessDate(t time.Time, cutoffHour int, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	day := BeginningOfDay(t)
	if t.Hour() < cutoffHour {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

func DateCode(day time.Time) string {
	return day.Format(DateCodeLayout)
}

func ParseDateCode(code string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateCodeLayout, code, loc)
}

// BusinessDayWindow is the [start, end) interval of one business day
func BusinessDayWindow(day time.Time, cutoffHour int) (time.Time, time.Time) {
	start := BeginningOfDay(day).Add(time.Duration(cutoffHour) * time.Hour)
	return start, start.AddDate(0, 0, 1)
}
