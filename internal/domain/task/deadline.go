package task

import "time"

// unixEpochOrdinal is the day ordinal of 1970-01-01, counting 0001-01-01 as day 1.
const unixEpochOrdinal = 719163

const secondsPerDay = 24 * 60 * 60

// Ordinal returns the proleptic Gregorian day ordinal of the calendar date of t
// in t's location.
func Ordinal(t time.Time) int {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
	return int(midnight/secondsPerDay) + unixEpochOrdinal
}

// FromOrdinal returns midnight UTC of the day with the given ordinal.
func FromOrdinal(ordinal int) time.Time {
	return time.Unix(int64(ordinal-unixEpochOrdinal)*secondsPerDay, 0).UTC()
}

// DaysLeft returns the number of days from the date of now until the deadline.
func (n *Node) DaysLeft(now time.Time) int {
	return n.Deadline - Ordinal(now)
}
