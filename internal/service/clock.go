package service

import "time"

// Clock supplies mutation timestamps.
type Clock func() time.Time

// SystemClock returns the current UTC time at millisecond precision, which both
// SQLite and MySQL datetime(3) columns store losslessly.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// nextStamp returns now, nudged past prev so an updated_at always advances.
func nextStamp(now Clock, prev time.Time) time.Time {
	t := now()
	if !t.After(prev) {
		t = prev.Add(time.Millisecond)
	}
	return t
}
