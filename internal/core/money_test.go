package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"200", "200"},
		{"12.34", "12.34"},
		{"12,34", "12.34"},
		{" 2.50 ", "2.5"},
		{"-300", "300"}, // magnitude only, sign comes from the kind
		{"0", "0"},
		{"", "0"},
		{"abc", "0"}, // lenient: bad input coerces to zero
		{"1.2.3", "0"},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got.String() != tc.out {
			t.Errorf("ParseAmount(%q) = %s, want %s", tc.in, got, tc.out)
		}
	}
}

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"$1.234.567,89", "1234567.89"},
		{"1.234.567", "1234567"},
		{"$ 1.500", "1500"},
		{"1500", "1500"},
		{"2500,5", "2500.5"},
		{"-1.000", "-1000"},
		{" $250 ", "250"},
		{"", "0"},
		{"n/a", "0"},
	}
	for _, tc := range cases {
		if got := ParseCurrency(tc.in); got.String() != tc.out {
			t.Errorf("ParseCurrency(%q) = %s, want %s", tc.in, got, tc.out)
		}
	}
}
