package scheduler

import "time"

// EveryMinutes fires at wall-clock minute marks divisible by n (e.g. n=15
// fires at :00, :15, :30, :45).
func EveryMinutes(n int) func(time.Time) time.Time {
	return func(after time.Time) time.Time {
		t := after.Truncate(time.Minute).Add(time.Minute)
		for t.Minute()%n != 0 {
			t = t.Add(time.Minute)
		}
		return t
	}
}

// HourlyAt fires at the given minute of every hour.
func HourlyAt(minute int) func(time.Time) time.Time {
	return func(after time.Time) time.Time {
		t := time.Date(after.Year(), after.Month(), after.Day(), after.Hour(), minute, 0, 0, after.Location())
		if !t.After(after) {
			t = t.Add(time.Hour)
		}
		return t
	}
}

// DailyAt fires once a day at the given time.
func DailyAt(hour, minute int) func(time.Time) time.Time {
	return func(after time.Time) time.Time {
		t := time.Date(after.Year(), after.Month(), after.Day(), hour, minute, 0, 0, after.Location())
		if !t.After(after) {
			t = t.AddDate(0, 0, 1)
		}
		return t
	}
}

// WeeklyAt fires once a week on the given weekday at the given time.
func WeeklyAt(day time.Weekday, hour, minute int) func(time.Time) time.Time {
	return func(after time.Time) time.Time {
		t := time.Date(after.Year(), after.Month(), after.Day(), hour, minute, 0, 0, after.Location())
		for t.Weekday() != day || !t.After(after) {
			t = t.AddDate(0, 0, 1)
		}
		return t
	}
}

// MonthlyAt fires once a month on the given day at the given time. Days beyond
// the end of a month roll into the next one, matching time.Date semantics.
func MonthlyAt(day, hour, minute int) func(time.Time) time.Time {
	return func(after time.Time) time.Time {
		t := time.Date(after.Year(), after.Month(), day, hour, minute, 0, 0, after.Location())
		if !t.After(after) {
			t = time.Date(after.Year(), after.Month()+1, day, hour, minute, 0, 0, after.Location())
		}
		return t
	}
}
