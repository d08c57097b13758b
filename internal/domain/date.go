package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrDateFormat indicates a date token that is not three "/"-separated integers.
var ErrDateFormat = errors.New("date must be M/D/YYYY")

// Date is a calendar date without a time-of-day component.
//
// A Date may hold an impossible value (e.g. 2/30/2024); callers check IsValid
// before trusting it.
type Date struct {
	Month int
	Day   int
	Year  int
}

// ParseDate parses a "M/D/Y" token. It only checks the shape of the token;
// calendar validity is reported by IsValid.
func ParseDate(token string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(token), "/")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrDateFormat, token)
	}
	var fields [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrDateFormat, token)
		}
		fields[i] = n
	}
	return Date{Month: fields[0], Day: fields[1], Year: fields[2]}, nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Month: int(m), Day: d, Year: y}
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	if year%4 != 0 {
		return false
	}
	if year%100 != 0 {
		return true
	}
	return year%400 == 0
}

// DaysInMonth returns the number of days in month of year, or 0 for a month outside 1..12.
func DaysInMonth(month, year int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

func (d Date) IsValid() bool {
	if d.Year <= 0 || d.Month < 1 || d.Month > 12 {
		return false
	}
	return d.Day >= 1 && d.Day <= DaysInMonth(d.Month, d.Year)
}

// Compare orders dates by year, then month, then day.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(d.Month, o.Month)
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Equal(o Date) bool { return d == o }

func (d Date) IsBefore(o Date) bool { return d.Compare(o) < 0 }

// IsBeforeToday reports whether d is strictly earlier than the calendar date of now.
func (d Date) IsBeforeToday(now time.Time) bool {
	return d.IsBefore(DateOf(now))
}

// Time returns midnight UTC on d. Only meaningful for a valid date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%d/%d/%d", d.Month, d.Day, d.Year)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
