package core

import (
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 day format used everywhere dates are
// rendered or persisted. Zero-padding matters: stored dates are
// compared lexicographically, which is only correct for this layout.
const DateFormat = "2006-01-02"

// Date is a calendar date with day granularity. The zero value is not
// a valid date.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date for the given year, month and day.
// Out-of-range components roll over the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Today returns the current date in local time.
func Today() Date {
	return NewDate(time.Now().Date())
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want format %q: %w", s, DateFormat, err)
	}
	return NewDate(t.Date()), nil
}

// MustParseDate is like ParseDate but panics on error. Test helper.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

func (d Date) time() time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC)
}

// String formats the date in ISO form.
func (d Date) String() string { return d.time().Format(DateFormat) }

// Year returns the year.
func (d Date) Year() int { return d.y }

// Month returns the month.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

// AddDays returns the date shifted by the given number of days.
func (d Date) AddDays(days int) Date { return NewDate(d.y, d.m, d.d+days) }

// Before reports whether d is strictly before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is strictly after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// MonthKey returns the YYYY-MM grouping key for the date.
func (d Date) MonthKey() string { return d.String()[:7] }

// MarshalText implements encoding.TextMarshaler, so dates encode as
// plain ISO strings in JSON payloads.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
