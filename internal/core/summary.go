package core

import "github.com/shopspring/decimal"

// DaySummary aggregates one calendar date of the ledger. Income and
// Expense are positive magnitudes; Difference is income minus expense.
// Opening and Closing are the replayed global balance at the edges of
// the day.
type DaySummary struct {
	Date       Date
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Difference decimal.Decimal
	Opening    decimal.Decimal
	Closing    decimal.Decimal
}

// MonthSummary aggregates the day rows of one YYYY-MM month.
type MonthSummary struct {
	Month      string // YYYY-MM
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Difference decimal.Decimal
	Opening    decimal.Decimal
	Closing    decimal.Decimal
}

// Totals are the column-wise grand totals of a summary.
type Totals struct {
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Difference decimal.Decimal
}

// DailySummary replays the full transaction log, ordered by date then
// sequence id, into per-day rows and grand totals.
//
// The carry balance is seeded from the first transaction's stored
// global opening balance, never from the live account table, so the
// report stays stable even if account balances are later hand-edited.
// Days without transactions produce no row.
func DailySummary(txs []Transaction) ([]DaySummary, Totals) {
	var (
		days    []DaySummary
		carry   decimal.Decimal
		seeded  bool
		current Date
	)

	for _, t := range txs {
		if t.Date.IsZero() {
			continue
		}
		if !seeded {
			carry = t.GlobalOpening
			seeded = true
		}
		if t.Date != current {
			if len(days) > 0 {
				days[len(days)-1].Closing = carry
			}
			current = t.Date
			days = append(days, DaySummary{Date: t.Date, Opening: carry})
		}
		row := &days[len(days)-1]
		if t.Kind == Expense {
			row.Expense = row.Expense.Add(t.Amount.Abs())
			carry = carry.Sub(t.Amount.Abs())
		} else {
			row.Income = row.Income.Add(t.Amount.Abs())
			carry = carry.Add(t.Amount.Abs())
		}
	}

	var totals Totals
	if len(days) > 0 {
		days[len(days)-1].Closing = carry
	}
	for i := range days {
		days[i].Difference = days[i].Income.Sub(days[i].Expense)
		totals.Income = totals.Income.Add(days[i].Income)
		totals.Expense = totals.Expense.Add(days[i].Expense)
		totals.Difference = totals.Difference.Add(days[i].Difference)
	}
	return days, totals
}

// MonthlySummary groups the daily rows by YYYY-MM. A month opens with
// its first day's opening balance and closes with its last day's
// closing balance; months without transactions produce no row.
func MonthlySummary(txs []Transaction) ([]MonthSummary, Totals) {
	days, _ := DailySummary(txs)

	var months []MonthSummary
	index := make(map[string]int)
	for _, day := range days {
		key := day.Date.MonthKey()
		i, ok := index[key]
		if !ok {
			i = len(months)
			index[key] = i
			months = append(months, MonthSummary{
				Month:   key,
				Opening: day.Opening,
			})
		}
		months[i].Income = months[i].Income.Add(day.Income)
		months[i].Expense = months[i].Expense.Add(day.Expense)
		months[i].Closing = day.Closing
	}

	var totals Totals
	for i := range months {
		months[i].Difference = months[i].Income.Sub(months[i].Expense)
		totals.Income = totals.Income.Add(months[i].Income)
		totals.Expense = totals.Expense.Add(months[i].Expense)
		totals.Difference = totals.Difference.Add(months[i].Difference)
	}
	return months, totals
}
