package core

import "github.com/shopspring/decimal"

// KindAll selects both kinds in a filter.
const KindAll = "all"

// FilteredTransaction pairs a matching transaction with its display
// amount: positive for income, negative for expense, regardless of
// the sign the amount was stored with.
type FilteredTransaction struct {
	Transaction
	DisplayAmount decimal.Decimal
}

// FilterSummary totals a filtered transaction set. Income and Expense
// are positive magnitudes; Difference is income minus expense.
type FilterSummary struct {
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Difference decimal.Decimal
	Count      int
}

// FilterAndSummarize applies kind, inclusive date range and category
// filters to a transaction set and totals the matches. kindFilter is
// "income", "expense" or "all". An empty allowlist matches every
// category. Matches are returned in their original order.
func FilterAndSummarize(txs []Transaction, kindFilter string, bounds DateRange, categories []string) ([]FilteredTransaction, FilterSummary) {
	allowed := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		allowed[c] = struct{}{}
	}

	var (
		matches []FilteredTransaction
		summary FilterSummary
	)
	for _, t := range txs {
		if kindFilter != KindAll && string(t.Kind) != kindFilter {
			continue
		}
		if !bounds.Contains(t.Date) {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[t.Category]; !ok {
				continue
			}
		}

		display := t.Amount.Abs()
		if t.Kind == Expense {
			display = display.Neg()
			summary.Expense = summary.Expense.Add(t.Amount.Abs())
		}
		// Income counts whenever the stored amount is positive; legacy
		// rows may carry an unnormalized sign.
		if t.Amount.Sign() > 0 {
			summary.Income = summary.Income.Add(t.Amount)
		}
		matches = append(matches, FilteredTransaction{Transaction: t, DisplayAmount: display})
		summary.Count++
	}
	summary.Difference = summary.Income.Sub(summary.Expense)
	return matches, summary
}
