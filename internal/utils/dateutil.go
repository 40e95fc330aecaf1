package utils

import "time"

// TimeBuckets are the denormalized calendar fields stamped on an invoice at
// creation time so reports can filter without date arithmetic.
type TimeBuckets struct {
	Day     int
	Week    int
	Month   int
	Year    int
	WeekDay string
	Hour    int
	AmOrPm  string
}

func BucketsFor(t time.Time) TimeBuckets {
	_, week := t.ISOWeek()
	amOrPm := "am"
	if t.Hour() >= 12 {
		amOrPm = "pm"
	}
	return TimeBuckets{
		Day:     t.Day(),
		Week:    week,
		Month:   int(t.Month()),
		Year:    t.Year(),
		WeekDay: t.Weekday().String(),
		Hour:    t.Hour(),
		AmOrPm:  amOrPm,
	}
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
