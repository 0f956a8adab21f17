// Package calendar implements court business-day arithmetic: holiday
// pattern resolution (fixed, floating, and Easter-relative), federal
// observed-date shifting, and calendar-day vs court-day counting for one
// or more jurisdictions.
package calendar

import (
	"time"

	"github.com/praxis-legal/docketcalc/pkg/errors"
	"github.com/praxis-legal/docketcalc/pkg/types/common"
)

// MinYear is the computus validity floor.  The Gregorian Easter algorithm
// (and the fixed holiday tables) are undefined before 1583; queries for
// earlier years are programming errors and rejected with CodeCalendarRange.
const MinYear = 1583

// PatternKind identifies how a holiday's date is derived for a given year.
type PatternKind string

const (
	// PatternFixed is a month/day holiday (e.g. July 4).
	PatternFixed PatternKind = "fixed"

	// PatternNthWeekday is an "nth weekday of month" holiday
	// (e.g. 4th Thursday of November).
	PatternNthWeekday PatternKind = "nth_weekday"

	// PatternLastWeekday is a "last weekday of month" holiday
	// (e.g. last Monday of May).
	PatternLastWeekday PatternKind = "last_weekday"

	// PatternEasterOffset is an Easter-relative holiday expressed as a
	// signed day offset from Easter Sunday (e.g. Good Friday = -2).
	PatternEasterOffset PatternKind = "easter_offset"
)

// HolidayRule defines one recurring court holiday.  A rule is pure data;
// Resolve derives the concrete date for a year.
type HolidayRule struct {
	// Name is the holiday's display name, carried into roll-adjustment
	// attribution and audit text.
	Name string `yaml:"name"`

	// Kind selects the derivation strategy.
	Kind PatternKind `yaml:"kind"`

	// Month applies to fixed, nth_weekday, and last_weekday kinds.
	Month time.Month `yaml:"month,omitempty"`

	// Day applies to the fixed kind.
	Day int `yaml:"day,omitempty"`

	// Weekday applies to nth_weekday and last_weekday kinds.
	Weekday time.Weekday `yaml:"weekday,omitempty"`

	// Nth applies to the nth_weekday kind (1-based).
	Nth int `yaml:"nth,omitempty"`

	// EasterDays applies to the easter_offset kind: signed days from
	// Easter Sunday.
	EasterDays int `yaml:"easter_days,omitempty"`

	// PostOffset shifts the derived date by a signed number of days after
	// pattern resolution (e.g. the day after Thanksgiving is the 4th
	// Thursday of November with PostOffset 1).
	PostOffset int `yaml:"post_offset,omitempty"`

	// Observe applies the federal observation rule to the derived date:
	// Saturday holidays are observed the preceding Friday, Sunday holidays
	// the following Monday.  Weekday-anchored patterns leave this false.
	Observe bool `yaml:"observe,omitempty"`
}

// Validate checks the rule's internal consistency.
func (r HolidayRule) Validate() error {
	if r.Name == "" {
		return errors.New(errors.CodeHolidayPattern, "holiday rule has no name")
	}
	switch r.Kind {
	case PatternFixed:
		if r.Month < time.January || r.Month > time.December {
			return errors.Newf(errors.CodeHolidayPattern, "holiday %q: month %d out of range", r.Name, r.Month)
		}
		if r.Day < 1 || r.Day > 31 {
			return errors.Newf(errors.CodeHolidayPattern, "holiday %q: day %d out of range", r.Name, r.Day)
		}
	case PatternNthWeekday:
		if r.Month < time.January || r.Month > time.December {
			return errors.Newf(errors.CodeHolidayPattern, "holiday %q: month %d out of range", r.Name, r.Month)
		}
		if r.Nth < 1 || r.Nth > 5 {
			return errors.Newf(errors.CodeHolidayPattern, "holiday %q: nth %d out of range", r.Name, r.Nth)
		}
	case PatternLastWeekday:
		if r.Month < time.January || r.Month > time.December {
			return errors.Newf(errors.CodeHolidayPattern, "holiday %q: month %d out of range", r.Name, r.Month)
		}
	case PatternEasterOffset:
		// Any signed offset is legal.
	default:
		return errors.Newf(errors.CodeHolidayPattern, "holiday %q: unknown pattern kind %q", r.Name, r.Kind)
	}
	return nil
}

// Resolve derives the observed date of the holiday for a year, as a
// midnight-UTC value.
func (r HolidayRule) Resolve(year int) (time.Time, error) {
	if year < MinYear {
		return time.Time{}, errors.Newf(errors.CodeCalendarRange,
			"year %d predates the Gregorian calendar floor (%d)", year, MinYear)
	}

	var d time.Time
	switch r.Kind {
	case PatternFixed:
		d = time.Date(year, r.Month, r.Day, 0, 0, 0, 0, time.UTC)
	case PatternNthWeekday:
		d = nthWeekday(year, r.Month, r.Weekday, r.Nth)
	case PatternLastWeekday:
		d = lastWeekday(year, r.Month, r.Weekday)
	case PatternEasterOffset:
		d = easterSunday(year).AddDate(0, 0, r.EasterDays)
	default:
		return time.Time{}, errors.Newf(errors.CodeHolidayPattern,
			"holiday %q: unknown pattern kind %q", r.Name, r.Kind)
	}

	if r.PostOffset != 0 {
		d = d.AddDate(0, 0, r.PostOffset)
	}
	if r.Observe {
		d = observedDate(d)
	}
	return common.Date(d), nil
}

// nthWeekday returns the nth occurrence of the weekday in the month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, nth int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+(nth-1)*7)
}

// lastWeekday returns the final occurrence of the weekday in the month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	last := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	offset := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -offset)
}

// easterSunday computes Easter Sunday for a year using the Gregorian
// Computus (Meeus/Jones/Butcher algorithm).
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451

	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// observedDate applies the federal observation rule: Saturday holidays are
// observed the preceding Friday, Sunday holidays the following Monday.
func observedDate(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	default:
		return d
	}
}
