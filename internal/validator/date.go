package validator

import (
	"fmt"
	"regexp"
	"time"
)

var datePattern = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)

// Date is a calendar date parsed from a YYYY-MM-DD string.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate finds the first YYYY-MM-DD date in s and range-checks it.
func ParseDate(s string) (Date, error) {
	m := datePattern.FindString(s)
	if m == "" {
		return Date{}, &DateError{Input: s, Err: ErrMalformedDate}
	}
	t, err := time.Parse(time.DateOnly, m)
	if err != nil {
		return Date{}, &DateError{Input: s, Err: fmt.Errorf("%w: %v", ErrMalformedDate, err)}
	}
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// IsStale reports whether a ban issued on ban is old enough to be
// overturned automatically on today.
//
// A ban is stale when it is more than a year old, when it was issued last
// year (except a December ban that has not yet reached the same day in
// January), or when at least one full month has passed this year.
func IsStale(ban, today string) (bool, error) {
	b, err := ParseDate(ban)
	if err != nil {
		return false, err
	}
	t, err := ParseDate(today)
	if err != nil {
		return false, err
	}
	return staleDates(b, t), nil
}

func staleDates(ban, today Date) bool {
	switch {
	case ban.Year < today.Year-1:
		return true
	case ban.Year == today.Year-1:
		decemberToJanuary := ban.Month == 12 && today.Month == 1
		return !(decemberToJanuary && ban.Day > today.Day)
	case ban.Year == today.Year:
		if ban.Month < today.Month-1 {
			return true
		}
		return ban.Month == today.Month-1 && ban.Day <= today.Day
	default:
		return false
	}
}
