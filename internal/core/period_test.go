package core

import "testing"

func TestResolveRangeAt(t *testing.T) {
	today := MustParseDate("2024-03-15")

	cases := []struct {
		name     string
		tag      string
		from, to string
		wantFrom string
		wantTo   string
	}{
		{"custom with bounds", PeriodCustom, "2024-01-01", "2024-01-31", "2024-01-01", "2024-01-31"},
		{"custom without bounds", PeriodCustom, "", "", "2024-02-14", "2024-03-15"},
		{"last 7 days", PeriodLast7Days, "", "", "2024-03-08", "2024-03-15"},
		{"last 30 days", PeriodLast30Days, "", "", "2024-02-14", "2024-03-15"},
		{"this month", PeriodThisMonth, "", "", "2024-03-01", "2024-03-15"},
		{"last month", PeriodLastMonth, "", "", "2024-02-01", "2024-02-29"},
		{"this year", PeriodThisYear, "", "", "2024-01-01", "2024-03-15"},
		{"last year", PeriodLastYear, "", "", "2023-01-01", "2023-12-31"},
		{"unknown tag", "quarterly", "", "", "2024-02-14", "2024-03-15"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var from, to Date
			if tc.from != "" {
				from = MustParseDate(tc.from)
			}
			if tc.to != "" {
				to = MustParseDate(tc.to)
			}
			got := ResolveRangeAt(tc.tag, from, to, today)
			if got.From.String() != tc.wantFrom || got.To.String() != tc.wantTo {
				t.Fatalf("ResolveRangeAt(%q) = [%s, %s], want [%s, %s]",
					tc.tag, got.From, got.To, tc.wantFrom, tc.wantTo)
			}
		})
	}
}

func TestResolveRangeAtLastMonthAcrossYear(t *testing.T) {
	got := ResolveRangeAt(PeriodLastMonth, Date{}, Date{}, MustParseDate("2024-01-10"))
	if got.From.String() != "2023-12-01" || got.To.String() != "2023-12-31" {
		t.Fatalf("got [%s, %s], want [2023-12-01, 2023-12-31]", got.From, got.To)
	}
}

func TestResolveRangeAtIdempotent(t *testing.T) {
	today := MustParseDate("2024-03-15")
	a := ResolveRangeAt(PeriodThisMonth, Date{}, Date{}, today)
	b := ResolveRangeAt(PeriodThisMonth, Date{}, Date{}, today)
	if a != b {
		t.Fatalf("resolving the same tag twice on the same day diverged: %v vs %v", a, b)
	}
}
