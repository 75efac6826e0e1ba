package dateutil

import "testing"

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		date string
		want string
	}{
		{"sunday belongs to previous monday", "2024-06-09", "2024-06-03"},
		{"monday is its own start", "2024-06-10", "2024-06-10"},
		{"midweek", "2024-06-05", "2024-06-03"},
		{"across month boundary", "2024-08-01", "2024-07-29"},
		{"across year boundary", "2025-01-02", "2024-12-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WeekStart(tt.date)
			if err != nil {
				t.Fatalf("WeekStart(%q) returned error: %v", tt.date, err)
			}
			if got != tt.want {
				t.Errorf("WeekStart(%q) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestWeekStart_InvalidDate(t *testing.T) {
	if _, err := WeekStart("2024-13-01"); err == nil {
		t.Error("expected error for invalid month")
	}
	if _, err := WeekStart("June 3"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestFormatDateRange(t *testing.T) {
	tests := []struct {
		start, end string
		want       string
	}{
		{"2024-06-03", "2024-06-09", "Jun 3–9, 2024"},
		{"2024-06-24", "2024-06-30", "Jun 24–30, 2024"},
		{"2024-07-29", "2024-08-04", "Jul 29 – Aug 4, 2024"},
		{"2024-12-30", "2025-01-05", "Dec 30 – Jan 5, 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			got, err := FormatDateRange(tt.start, tt.end)
			if err != nil {
				t.Fatalf("FormatDateRange returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("FormatDateRange(%q, %q) = %q, want %q", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestEndDate(t *testing.T) {
	got, err := EndDate("2024-02-26")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2024-03-03" {
		t.Errorf("EndDate(2024-02-26) = %q, want 2024-03-03 (leap year)", got)
	}
}

func TestDayName(t *testing.T) {
	got, err := DayName("2024-06-09")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Sunday" {
		t.Errorf("DayName(2024-06-09) = %q, want Sunday", got)
	}
}

func TestDayOffset(t *testing.T) {
	if off, ok := DayOffset("monday"); !ok || off != 0 {
		t.Errorf("DayOffset(monday) = %d, %v", off, ok)
	}
	if off, ok := DayOffset(" Sunday "); !ok || off != 6 {
		t.Errorf("DayOffset(Sunday) = %d, %v", off, ok)
	}
	if _, ok := DayOffset("Funday"); ok {
		t.Error("DayOffset(Funday) should not be ok")
	}
}
