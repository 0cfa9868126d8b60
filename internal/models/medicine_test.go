package models

import "testing"

func TestParseTimeOfDay(t *testing.T) {
	valid := map[string][2]int{
		"08:00": {8, 0},
		"23:59": {23, 59},
		"00:00": {0, 0},
		"12:30": {12, 30},
	}
	for input, want := range valid {
		s := MedicineSchedule{TimeOfDay: input}
		hour, minute, err := s.ParseTimeOfDay()
		if err != nil {
			t.Errorf("%q: unexpected error %v", input, err)
			continue
		}
		if hour != want[0] || minute != want[1] {
			t.Errorf("%q parsed as %d:%d, want %d:%d", input, hour, minute, want[0], want[1])
		}
	}

	for _, input := range []string{"24:00", "12:60", "noon", "", "1200"} {
		s := MedicineSchedule{TimeOfDay: input}
		if _, _, err := s.ParseTimeOfDay(); err == nil {
			t.Errorf("%q: expected a parse error", input)
		}
	}
}

func TestWeekdayListValidate(t *testing.T) {
	if err := (WeekdayList{1, 3, 5}).Validate(); err != nil {
		t.Errorf("valid set rejected: %v", err)
	}
	if err := (WeekdayList{}).Validate(); err == nil {
		t.Error("empty set accepted")
	}
	if err := (WeekdayList{0}).Validate(); err == nil {
		t.Error("weekday 0 accepted")
	}
	if err := (WeekdayList{8}).Validate(); err == nil {
		t.Error("weekday 8 accepted")
	}
}

func TestWeekdayListContains(t *testing.T) {
	days := WeekdayList{1, 3, 5}
	for _, d := range []int{1, 3, 5} {
		if !days.Contains(d) {
			t.Errorf("expected set to contain %d", d)
		}
	}
	for _, d := range []int{2, 4, 6, 7} {
		if days.Contains(d) {
			t.Errorf("expected set not to contain %d", d)
		}
	}
}

func TestWeekdayListScan(t *testing.T) {
	var days WeekdayList
	if err := days.Scan([]byte(`[1,3,5]`)); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(days) != 3 || !days.Contains(3) {
		t.Fatalf("scanned set = %v", days)
	}

	var empty WeekdayList
	if err := empty.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) returned error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("Scan(nil) produced %v", empty)
	}
}

func TestNeedsRefill(t *testing.T) {
	cases := []struct {
		remaining, threshold int
		want                 bool
	}{
		{10, 5, false},
		{5, 5, true},
		{3, 5, true},
		{0, 5, true},
		{0, 0, false}, // no threshold configured
	}
	for _, tc := range cases {
		m := Medicine{RemainingCount: tc.remaining, RefillThreshold: tc.threshold}
		if got := m.NeedsRefill(); got != tc.want {
			t.Errorf("remaining=%d threshold=%d: NeedsRefill() = %v, want %v",
				tc.remaining, tc.threshold, got, tc.want)
		}
	}
}
