package trend

import "time"

// DayStart truncates a timestamp to the start of its UTC day.
func DayStart(ts time.Time) time.Time {
	ts = ts.UTC()
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart calculates the Monday that starts the week containing the
// given date. The week runs Monday through Sunday (ISO 8601).
func WeekStart(date time.Time) time.Time {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday is 7
	}
	return DayStart(date.AddDate(0, 0, -weekday+1))
}

// DayKey formats a timestamp as its ISO day label.
func DayKey(ts time.Time) string {
	return DayStart(ts).Format("2006-01-02")
}

// WeekKey formats a timestamp as the ISO day label of its week's Monday.
func WeekKey(ts time.Time) string {
	return WeekStart(ts).Format("2006-01-02")
}
