package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// tx builds a log entry with the replay-relevant fields populated.
func tx(seq int64, date string, kind Kind, magnitude, globalOpening string) Transaction {
	return Transaction{
		SequenceID:    seq,
		Date:          MustParseDate(date),
		Kind:          kind,
		Amount:        kind.Signed(dec(magnitude)),
		GlobalOpening: dec(globalOpening),
	}
}

func TestDailySummaryTwoDays(t *testing.T) {
	// +200/-300 on day one, +50 on day two, starting from 1000.
	log := []Transaction{
		tx(1, "2024-01-01", Income, "200", "1000"),
		tx(2, "2024-01-01", Expense, "300", "1200"),
		tx(3, "2024-01-02", Income, "50", "900"),
	}

	days, totals := DailySummary(log)
	if len(days) != 2 {
		t.Fatalf("got %d day rows, want 2", len(days))
	}

	d1, d2 := days[0], days[1]
	if !d1.Difference.Equal(dec("-100")) || !d2.Difference.Equal(dec("50")) {
		t.Fatalf("differences = %s, %s; want -100, 50", d1.Difference, d2.Difference)
	}
	if !d1.Opening.Equal(dec("1000")) || !d1.Closing.Equal(dec("900")) {
		t.Errorf("day 1 balances = %s..%s, want 1000..900", d1.Opening, d1.Closing)
	}
	if !d2.Opening.Equal(dec("900")) || !d2.Closing.Equal(dec("950")) {
		t.Errorf("day 2 balances = %s..%s, want 900..950", d2.Opening, d2.Closing)
	}
	if !totals.Difference.Equal(dec("-50")) {
		t.Errorf("grand difference = %s, want -50", totals.Difference)
	}
}

func TestDailySummaryEmptyLog(t *testing.T) {
	days, totals := DailySummary(nil)
	if len(days) != 0 {
		t.Fatalf("expected no rows, got %d", len(days))
	}
	if !totals.Income.IsZero() || !totals.Expense.IsZero() || !totals.Difference.IsZero() {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

func TestDailySummaryCarrySeededFromFirstTransaction(t *testing.T) {
	// The stored opening of the first transaction is authoritative,
	// whatever the live account table says.
	log := []Transaction{
		tx(1, "2024-05-01", Income, "10", "777"),
	}
	days, _ := DailySummary(log)
	if !days[0].Opening.Equal(dec("777")) || !days[0].Closing.Equal(dec("787")) {
		t.Fatalf("balances = %s..%s, want 777..787", days[0].Opening, days[0].Closing)
	}
}

func TestDailySummaryTotalsAreColumnSums(t *testing.T) {
	log := []Transaction{
		tx(1, "2024-01-01", Income, "100", "0"),
		tx(2, "2024-01-03", Expense, "40", "100"),
		tx(3, "2024-01-03", Income, "15", "60"),
		tx(4, "2024-02-01", Expense, "5", "75"),
	}
	days, totals := DailySummary(log)

	var income, expense, diff decimal.Decimal
	for _, d := range days {
		income = income.Add(d.Income)
		expense = expense.Add(d.Expense)
		diff = diff.Add(d.Difference)
	}
	if !totals.Income.Equal(income) || !totals.Expense.Equal(expense) || !totals.Difference.Equal(diff) {
		t.Fatalf("totals %+v do not match column sums (%s, %s, %s)", totals, income, expense, diff)
	}
	if !income.Sub(expense).Equal(diff) {
		t.Fatalf("sum(income) - sum(expense) = %s, want %s", income.Sub(expense), diff)
	}
}

func TestDailySummarySparseDays(t *testing.T) {
	log := []Transaction{
		tx(1, "2024-01-01", Income, "5", "0"),
		tx(2, "2024-01-31", Income, "5", "5"),
	}
	days, _ := DailySummary(log)
	if len(days) != 2 {
		t.Fatalf("calendar gaps must not produce rows; got %d rows", len(days))
	}
}

func TestMonthlySummary(t *testing.T) {
	log := []Transaction{
		tx(1, "2024-01-05", Income, "100", "1000"),
		tx(2, "2024-01-20", Expense, "30", "1100"),
		tx(3, "2024-02-02", Expense, "70", "1070"),
	}

	months, totals := MonthlySummary(log)
	if len(months) != 2 {
		t.Fatalf("got %d month rows, want 2", len(months))
	}

	jan := months[0]
	if jan.Month != "2024-01" {
		t.Fatalf("first month = %q, want 2024-01", jan.Month)
	}
	if !jan.Income.Equal(dec("100")) || !jan.Expense.Equal(dec("30")) || !jan.Difference.Equal(dec("70")) {
		t.Errorf("january = %+v", jan)
	}
	if !jan.Opening.Equal(dec("1000")) || !jan.Closing.Equal(dec("1070")) {
		t.Errorf("january balances = %s..%s, want 1000..1070", jan.Opening, jan.Closing)
	}

	feb := months[1]
	if !feb.Opening.Equal(dec("1070")) || !feb.Closing.Equal(dec("1000")) {
		t.Errorf("february balances = %s..%s, want 1070..1000", feb.Opening, feb.Closing)
	}
	if !totals.Difference.Equal(dec("0")) {
		t.Errorf("grand difference = %s, want 0", totals.Difference)
	}
}
