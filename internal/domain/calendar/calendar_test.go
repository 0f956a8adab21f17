package calendar

import (
	"testing"
	"time"

	"github.com/praxis-legal/docketcalc/pkg/errors"
	"github.com/praxis-legal/docketcalc/pkg/types/common"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := common.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

// ---------------------------------------------------------------------------
// Holiday pattern resolution
// ---------------------------------------------------------------------------

func TestResolve_FixedHoliday(t *testing.T) {
	r := HolidayRule{Name: "Independence Day", Kind: PatternFixed, Month: time.July, Day: 4, Observe: true}

	got, err := r.Resolve(2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if common.FormatDate(got) != "2024-07-04" {
		t.Errorf("expected 2024-07-04, got %s", common.FormatDate(got))
	}
}

func TestResolve_ObservedShift(t *testing.T) {
	cases := []struct {
		name string
		rule HolidayRule
		year int
		want string
	}{
		// Veterans Day 2023 falls on Saturday -> observed Friday Nov 10.
		{"saturday to friday", HolidayRule{Name: "Veterans Day", Kind: PatternFixed, Month: time.November, Day: 11, Observe: true}, 2023, "2023-11-10"},
		// Christmas 2022 falls on Sunday -> observed Monday Dec 26.
		{"sunday to monday", HolidayRule{Name: "Christmas Day", Kind: PatternFixed, Month: time.December, Day: 25, Observe: true}, 2022, "2022-12-26"},
		// Christmas 2024 is a Wednesday -> no shift.
		{"weekday unchanged", HolidayRule{Name: "Christmas Day", Kind: PatternFixed, Month: time.December, Day: 25, Observe: true}, 2024, "2024-12-25"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.rule.Resolve(tc.year)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if common.FormatDate(got) != tc.want {
				t.Errorf("expected %s, got %s", tc.want, common.FormatDate(got))
			}
		})
	}
}

func TestResolve_NthAndLastWeekday(t *testing.T) {
	thanksgiving := HolidayRule{Name: "Thanksgiving Day", Kind: PatternNthWeekday, Month: time.November, Weekday: time.Thursday, Nth: 4}
	got, err := thanksgiving.Resolve(2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if common.FormatDate(got) != "2024-11-28" {
		t.Errorf("Thanksgiving 2024: expected 2024-11-28, got %s", common.FormatDate(got))
	}

	memorial := HolidayRule{Name: "Memorial Day", Kind: PatternLastWeekday, Month: time.May, Weekday: time.Monday}
	got, err = memorial.Resolve(2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if common.FormatDate(got) != "2024-05-27" {
		t.Errorf("Memorial Day 2024: expected 2024-05-27, got %s", common.FormatDate(got))
	}
}

func TestResolve_GoodFridayViaComputus(t *testing.T) {
	gf := HolidayRule{Name: "Good Friday", Kind: PatternEasterOffset, EasterDays: -2}

	cases := []struct {
		year int
		want string
	}{
		{2024, "2024-03-29"}, // Easter 2024-03-31
		{2025, "2025-04-18"}, // Easter 2025-04-20
		{2021, "2021-04-02"}, // Easter 2021-04-04
	}
	for _, tc := range cases {
		got, err := gf.Resolve(tc.year)
		if err != nil {
			t.Fatalf("year %d: unexpected error: %v", tc.year, err)
		}
		if common.FormatDate(got) != tc.want {
			t.Errorf("Good Friday %d: expected %s, got %s", tc.year, tc.want, common.FormatDate(got))
		}
	}
}

func TestResolve_PostOffset(t *testing.T) {
	dayAfter := HolidayRule{Name: "Day After Thanksgiving", Kind: PatternNthWeekday, Month: time.November, Weekday: time.Thursday, Nth: 4, PostOffset: 1}
	got, err := dayAfter.Resolve(2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if common.FormatDate(got) != "2024-11-29" {
		t.Errorf("expected 2024-11-29, got %s", common.FormatDate(got))
	}
}

func TestResolve_PreGregorianYearRejected(t *testing.T) {
	r := HolidayRule{Name: "New Year's Day", Kind: PatternFixed, Month: time.January, Day: 1}
	_, err := r.Resolve(1500)
	if !errors.IsCode(err, errors.CodeCalendarRange) {
		t.Fatalf("expected CodeCalendarRange, got %v", err)
	}
}

func TestValidate_RejectsMalformedRules(t *testing.T) {
	cases := []HolidayRule{
		{Kind: PatternFixed, Month: time.July, Day: 4},                                 // no name
		{Name: "bad month", Kind: PatternFixed, Month: 13, Day: 1},                     // month out of range
		{Name: "bad day", Kind: PatternFixed, Month: time.July, Day: 40},               // day out of range
		{Name: "bad nth", Kind: PatternNthWeekday, Month: time.May, Nth: 9},            // nth out of range
		{Name: "bad kind", Kind: PatternKind("lunar"), Month: time.January, Day: 1},    // unknown kind
	}
	for _, r := range cases {
		if err := r.Validate(); err == nil {
			t.Errorf("expected validation error for %+v", r)
		}
	}
}

// ---------------------------------------------------------------------------
// Business-day queries
// ---------------------------------------------------------------------------

func TestIsBusinessDay(t *testing.T) {
	cal := NewStateCalendar()

	cases := []struct {
		date string
		want bool
		why  string
	}{
		{"2024-01-02", true, "ordinary Tuesday"},
		{"2024-01-06", false, "Saturday"},
		{"2024-01-07", false, "Sunday"},
		{"2024-01-01", false, "New Year's Day"},
		{"2024-01-15", false, "MLK Day"},
		{"2024-03-29", false, "Good Friday (state)"},
		{"2024-11-29", false, "Day After Thanksgiving (state)"},
		{"2024-06-19", false, "Juneteenth"},
	}
	for _, tc := range cases {
		got, err := cal.IsBusinessDay(date(t, tc.date))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.date, err)
		}
		if got != tc.want {
			t.Errorf("IsBusinessDay(%s) = %v, want %v (%s)", tc.date, got, tc.want, tc.why)
		}
	}
}

func TestIsBusinessDay_StateExtrasNotInFederal(t *testing.T) {
	fed := NewFederalCalendar()

	// Good Friday is a state holiday only.
	got, err := fed.IsBusinessDay(date(t, "2024-03-29"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error("Good Friday should be a business day in federal court")
	}
}

func TestNextBusinessDay(t *testing.T) {
	cal := NewStateCalendar()

	cases := []struct {
		from, want, why string
	}{
		{"2024-01-21", "2024-01-22", "Sunday rolls to Monday"},
		{"2024-01-27", "2024-01-29", "Saturday rolls over the weekend"},
		{"2024-01-13", "2024-01-16", "Saturday before MLK Monday rolls to Tuesday"},
		{"2024-01-22", "2024-01-22", "business day is returned unchanged"},
	}
	for _, tc := range cases {
		got, err := cal.NextBusinessDay(date(t, tc.from))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.from, err)
		}
		if common.FormatDate(got) != tc.want {
			t.Errorf("NextBusinessDay(%s) = %s, want %s (%s)", tc.from, common.FormatDate(got), tc.want, tc.why)
		}
	}
}

func TestPreviousBusinessDay(t *testing.T) {
	cal := NewStateCalendar()

	// Sunday 2024-01-21 rolls back to Friday 2024-01-19.
	got, err := cal.PreviousBusinessDay(date(t, "2024-01-21"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if common.FormatDate(got) != "2024-01-19" {
		t.Errorf("expected 2024-01-19, got %s", common.FormatDate(got))
	}
}

func TestScanCap_MisconfiguredCalendar(t *testing.T) {
	// A calendar where every day of July is a holiday cannot produce a
	// business day within the cap.
	rules := make([]HolidayRule, 0, 31)
	for day := 1; day <= 31; day++ {
		rules = append(rules, HolidayRule{Name: "Perpetual Closure", Kind: PatternFixed, Month: time.July, Day: day})
	}
	cal, err := NewCalendar("broken", "Broken", rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = cal.NextBusinessDay(date(t, "2024-07-01"))
	if !errors.IsCode(err, errors.CodeCalendarScan) {
		t.Fatalf("expected CodeCalendarScan, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Court-day stepping and counting
// ---------------------------------------------------------------------------

func TestAddCourtDays_SkipsWeekendsAndHolidays(t *testing.T) {
	cal := NewStateCalendar()

	// From Friday 2024-01-12: +1 skips the weekend and MLK Monday,
	// landing on Tuesday 2024-01-16.
	got, err := cal.AddCourtDays(date(t, "2024-01-12"), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if common.FormatDate(got) != "2024-01-16" {
		t.Errorf("expected 2024-01-16, got %s", common.FormatDate(got))
	}

	// +5 court days from Monday 2024-01-08 is Tuesday 2024-01-16
	// (five business days: 9th, 10th, 11th, 12th, 16th).
	got, err = cal.AddCourtDays(date(t, "2024-01-08"), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if common.FormatDate(got) != "2024-01-16" {
		t.Errorf("expected 2024-01-16, got %s", common.FormatDate(got))
	}
}

func TestSubtractCourtDays(t *testing.T) {
	cal := NewStateCalendar()

	// From Tuesday 2024-01-16: -1 lands on Friday 2024-01-12 (skipping
	// MLK Monday and the weekend).
	got, err := cal.SubtractCourtDays(date(t, "2024-01-16"), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if common.FormatDate(got) != "2024-01-12" {
		t.Errorf("expected 2024-01-12, got %s", common.FormatDate(got))
	}
}

func TestAddCourtDays_NegativeRejected(t *testing.T) {
	cal := NewStateCalendar()
	if _, err := cal.AddCourtDays(date(t, "2024-01-08"), -3); err == nil {
		t.Fatal("expected validation error for negative count")
	}
}

func TestCountCourtDaysBetween(t *testing.T) {
	cal := NewStateCalendar()

	// Mon 2024-01-08 to Fri 2024-01-12: four business days
	// (exclusive of start, inclusive of end).
	n, err := cal.CountCourtDaysBetween(date(t, "2024-01-08"), date(t, "2024-01-12"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4, got %d", n)
	}

	// Same day counts zero.
	n, _ = cal.CountCourtDaysBetween(date(t, "2024-01-08"), date(t, "2024-01-08"))
	if n != 0 {
		t.Errorf("expected 0, got %d", n)
	}

	// Reversed order is negative.
	n, _ = cal.CountCourtDaysBetween(date(t, "2024-01-12"), date(t, "2024-01-08"))
	if n != -4 {
		t.Errorf("expected -4, got %d", n)
	}
}

// Court-day exactness: CountCourtDaysBetween(d, AddCourtDays(d, n)) == n.
func TestCourtDayExactness(t *testing.T) {
	cal := NewStateCalendar()
	starts := []string{"2024-01-01", "2024-03-27", "2024-11-25", "2024-12-20"}
	for _, s := range starts {
		d := date(t, s)
		for n := 0; n <= 30; n += 5 {
			end, err := cal.AddCourtDays(d, n)
			if err != nil {
				t.Fatalf("AddCourtDays(%s, %d): %v", s, n, err)
			}
			count, err := cal.CountCourtDaysBetween(d, end)
			if err != nil {
				t.Fatalf("CountCourtDaysBetween(%s, %s): %v", s, common.FormatDate(end), err)
			}
			if count != n {
				t.Errorf("exactness violated: start=%s n=%d count=%d", s, n, count)
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Holiday sets, cache, and registry
// ---------------------------------------------------------------------------

func TestHolidays_SortedAndIdempotent(t *testing.T) {
	cal := NewStateCalendar()

	first, err := cal.Holidays(2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cal.Holidays(2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("cache changed the holiday count: %d vs %d", len(first), len(second))
	}
	for i := 1; i < len(first); i++ {
		if first[i].Date.Before(first[i-1].Date) {
			t.Errorf("holidays not sorted at index %d", i)
		}
	}
	// State 2024: 11 federal + Good Friday + Day After Thanksgiving.
	if len(first) != 13 {
		t.Errorf("expected 13 state holidays in 2024, got %d", len(first))
	}
}

func TestHolidaySet_OverlappingEntriesUnion(t *testing.T) {
	// Two rules resolving to the same date must union, not duplicate,
	// and the first-registered name wins attribution.
	rules := []HolidayRule{
		{Name: "Independence Day", Kind: PatternFixed, Month: time.July, Day: 4},
		{Name: "Duplicate Fourth", Kind: PatternFixed, Month: time.July, Day: 4},
	}
	cal, err := NewCalendar("overlap", "Overlap", rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hs, err := cal.Holidays(2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hs) != 1 {
		t.Fatalf("expected 1 holiday after union, got %d", len(hs))
	}
	if hs[0].Name != "Independence Day" {
		t.Errorf("first-registered name must win, got %q", hs[0].Name)
	}
}

func TestHolidayName(t *testing.T) {
	cal := NewStateCalendar()

	name, ok, err := cal.HolidayName(date(t, "2024-11-28"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || name != "Thanksgiving Day" {
		t.Errorf("expected Thanksgiving Day, got %q (ok=%v)", name, ok)
	}

	_, ok, err = cal.HolidayName(date(t, "2024-11-27"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("2024-11-27 is not a holiday")
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	if _, err := reg.Get(JurisdictionFederal); err != nil {
		t.Errorf("federal calendar should be built in: %v", err)
	}
	if _, err := reg.Get(JurisdictionState); err != nil {
		t.Errorf("state calendar should be built in: %v", err)
	}

	_, err := reg.Get("bankruptcy")
	if !errors.IsCode(err, errors.CodeJurisdictionNotFound) {
		t.Fatalf("expected CodeJurisdictionNotFound, got %v", err)
	}

	custom, err := NewCalendar("bankruptcy", "Bankruptcy Courts", federalRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reg.Register(custom); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := reg.Get("bankruptcy"); err != nil {
		t.Errorf("registered calendar not found: %v", err)
	}
	if len(reg.Codes()) != 3 {
		t.Errorf("expected 3 codes, got %d", len(reg.Codes()))
	}
}

func TestHolidaySet_ConcurrentReaders(t *testing.T) {
	cal := NewStateCalendar()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for year := 2020; year <= 2030; year++ {
				if _, err := cal.Holidays(year); err != nil {
					t.Errorf("concurrent Holidays(%d): %v", year, err)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
