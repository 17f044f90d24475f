package utils

import "time"

// GameDay truncates a timestamp to day granularity in UTC, the identity
// under which daily games are stored and looked up.
func GameDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayWindow returns the inclusive [day-days, day+days] range around a
// game day, used for the repeat-avoidance query.
func DayWindow(day time.Time, days int) (time.Time, time.Time) {
	day = GameDay(day)
	return day.AddDate(0, 0, -days), day.AddDate(0, 0, days)
}

// SameDay reports whether two timestamps fall on the same UTC day.
func SameDay(a, b time.Time) bool {
	return GameDay(a).Equal(GameDay(b))
}
