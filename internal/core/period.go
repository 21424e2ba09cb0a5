package core

import "time"

// Reporting period tags accepted by ResolveRange.
const (
	PeriodCustom     = "custom"
	PeriodLast7Days  = "last_7_days"
	PeriodLast30Days = "last_30_days"
	PeriodThisMonth  = "this_month"
	PeriodLastMonth  = "last_month"
	PeriodThisYear   = "this_year"
	PeriodLastYear   = "last_year"
)

// DateRange is an inclusive calendar date range.
type DateRange struct {
	From Date
	To   Date
}

// Contains reports whether d falls within the range, bounds included.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// ResolveRange maps a symbolic period tag to concrete inclusive
// bounds, relative to today. For the "custom" tag the explicit bounds
// are used when both are non-zero; otherwise, and for unrecognized
// tags, the default window is the last 30 days.
func ResolveRange(tag string, from, to Date) DateRange {
	return ResolveRangeAt(tag, from, to, Today())
}

// ResolveRangeAt is ResolveRange with an explicit reference day.
func ResolveRangeAt(tag string, from, to Date, today Date) DateRange {
	switch tag {
	case PeriodCustom:
		if !from.IsZero() && !to.IsZero() {
			return DateRange{From: from, To: to}
		}
	case PeriodLast7Days:
		return DateRange{From: today.AddDays(-7), To: today}
	case PeriodLast30Days:
		return DateRange{From: today.AddDays(-30), To: today}
	case PeriodThisMonth:
		return DateRange{From: NewDate(today.Year(), today.Month(), 1), To: today}
	case PeriodLastMonth:
		firstOfThis := NewDate(today.Year(), today.Month(), 1)
		return DateRange{
			From: NewDate(firstOfThis.Year(), firstOfThis.Month()-1, 1),
			To:   firstOfThis.AddDays(-1),
		}
	case PeriodThisYear:
		return DateRange{From: NewDate(today.Year(), time.January, 1), To: today}
	case PeriodLastYear:
		return DateRange{
			From: NewDate(today.Year()-1, time.January, 1),
			To:   NewDate(today.Year()-1, time.December, 31),
		}
	}
	return DateRange{From: today.AddDays(-30), To: today}
}
