package view

import "testing"

func TestFormatCurrencyIndianGrouping(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "₹0"},
		{49, "₹49"},
		{999, "₹999"},
		{1000, "₹1,000"},
		{150000, "₹1,50,000"},
		{12345678, "₹1,23,45,678"},
		{49.50, "₹49.50"},
		{49.999, "₹50"},
		{999.995, "₹1,000"},
		{0.05, "₹0.05"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.amount); got != tc.want {
			t.Fatalf("FormatCurrency(%v) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("expected untouched string, got %q", got)
	}
	if got := Truncate("a longer title than fits", 10); got != "a longer …" {
		t.Fatalf("unexpected truncation: %q", got)
	}
}

func TestInitials(t *testing.T) {
	cases := []struct{ name, want string }{
		{"Asha Rao", "AR"},
		{"asha", "A"},
		{"Asha Kumari Rao", "AK"},
		{"", "?"},
	}
	for _, tc := range cases {
		if got := Initials(tc.name); got != tc.want {
			t.Fatalf("Initials(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCatalogBounds(t *testing.T) {
	if !ValidDepartment("Computer Science") {
		t.Fatalf("expected Computer Science to be valid")
	}
	if ValidDepartment("Astrology") {
		t.Fatalf("expected unknown department to be invalid")
	}
	if !ValidSemester(1) || !ValidSemester(8) {
		t.Fatalf("expected semesters 1..8 to be valid")
	}
	if ValidSemester(0) || ValidSemester(9) {
		t.Fatalf("expected out-of-range semesters to be invalid")
	}
}
