package core

import (
	"strings"
	"testing"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
	}{
		{"expense", Expense},
		{"EXPENSE", Expense},
		{" expense ", Expense},
		{"income", Income},
		{"", Income},
		{"gasto", Income}, // unknown kinds fall back to income
	}
	for _, tc := range cases {
		if got := ParseKind(tc.in); got != tc.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKindSigned(t *testing.T) {
	if got := Expense.Signed(dec("300")); !got.Equal(dec("-300")) {
		t.Errorf("expense sign = %s, want -300", got)
	}
	if got := Expense.Signed(dec("-300")); !got.Equal(dec("-300")) {
		t.Errorf("expense sign of negative input = %s, want -300", got)
	}
	if got := Income.Signed(dec("-200")); !got.Equal(dec("200")) {
		t.Errorf("income sign = %s, want 200", got)
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Date:        MustParseDate("2024-01-01"),
		Kind:        Income,
		AccountName: "Cash",
		Amount:      dec("10"),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
	}{
		{"zero date", func(tr *Transaction) { tr.Date = Date{} }},
		{"bad kind", func(tr *Transaction) { tr.Kind = "transfer" }},
		{"missing account", func(tr *Transaction) { tr.AccountName = "  " }},
		{"long description", func(tr *Transaction) { tr.Description = strings.Repeat("x", 201) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := valid
			tc.mutate(&tr)
			if err := tr.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCatalogContains(t *testing.T) {
	c := DefaultCatalog()
	if !c.Contains("Sueldo Deiner") || !c.Contains("Transporte y movilidad") {
		t.Fatal("default catalog missing known categories")
	}
	if c.Contains("sueldo deiner") {
		t.Fatal("catalog membership must be exact, not case-folded")
	}
	if len(c.ForKind(Expense)) == 0 || len(c.ForKind(Income)) == 0 {
		t.Fatal("catalog lists must be non-empty")
	}
}
