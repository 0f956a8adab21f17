package calendar

import "time"

// Built-in jurisdiction codes.
const (
	JurisdictionFederal = "federal"
	JurisdictionState   = "state"
)

// federalRules lists the federal court holidays (5 U.S.C. §6103), each
// subject to the Saturday→Friday / Sunday→Monday observation rule where
// date-anchored.
func federalRules() []HolidayRule {
	return []HolidayRule{
		{Name: "New Year's Day", Kind: PatternFixed, Month: time.January, Day: 1, Observe: true},
		{Name: "Martin Luther King Jr. Day", Kind: PatternNthWeekday, Month: time.January, Weekday: time.Monday, Nth: 3},
		{Name: "Washington's Birthday", Kind: PatternNthWeekday, Month: time.February, Weekday: time.Monday, Nth: 3},
		{Name: "Memorial Day", Kind: PatternLastWeekday, Month: time.May, Weekday: time.Monday},
		{Name: "Juneteenth National Independence Day", Kind: PatternFixed, Month: time.June, Day: 19, Observe: true},
		{Name: "Independence Day", Kind: PatternFixed, Month: time.July, Day: 4, Observe: true},
		{Name: "Labor Day", Kind: PatternNthWeekday, Month: time.September, Weekday: time.Monday, Nth: 1},
		{Name: "Columbus Day", Kind: PatternNthWeekday, Month: time.October, Weekday: time.Monday, Nth: 2},
		{Name: "Veterans Day", Kind: PatternFixed, Month: time.November, Day: 11, Observe: true},
		{Name: "Thanksgiving Day", Kind: PatternNthWeekday, Month: time.November, Weekday: time.Thursday, Nth: 4},
		{Name: "Christmas Day", Kind: PatternFixed, Month: time.December, Day: 25, Observe: true},
	}
}

// stateRules unions state-specific court holidays onto the federal set.
func stateRules() []HolidayRule {
	rules := federalRules()
	rules = append(rules,
		HolidayRule{Name: "Good Friday", Kind: PatternEasterOffset, EasterDays: -2},
		HolidayRule{Name: "Day After Thanksgiving", Kind: PatternNthWeekday, Month: time.November, Weekday: time.Thursday, Nth: 4, PostOffset: 1},
	)
	return rules
}

// NewFederalCalendar returns the built-in federal court calendar.
func NewFederalCalendar() *JurisdictionCalendar {
	c, err := NewCalendar(JurisdictionFederal, "Federal Courts", federalRules())
	if err != nil {
		// Built-in tables are validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return c
}

// NewStateCalendar returns the built-in state court calendar.
func NewStateCalendar() *JurisdictionCalendar {
	c, err := NewCalendar(JurisdictionState, "State Courts", stateRules())
	if err != nil {
		panic(err)
	}
	return c
}
