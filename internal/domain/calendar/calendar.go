package calendar

import (
	"sort"
	"sync"
	"time"

	"github.com/praxis-legal/docketcalc/pkg/errors"
	"github.com/praxis-legal/docketcalc/pkg/types/common"
)

// nextBusinessDayCap bounds the forward/backward scan for a business day.
// A court calendar with more than this many consecutive closed days is
// misconfigured, not a real jurisdiction.
const nextBusinessDayCap = 14

// Holiday is one resolved holiday occurrence within a year.
type Holiday struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

// JurisdictionCalendar is an immutable court calendar for one jurisdiction:
// a named bundle of holiday rules plus a read-through cache of resolved
// per-year holiday sets.  The cache stores immutable entries, so a single
// calendar value is safe for concurrent readers without locking beyond the
// cache's own map access.
type JurisdictionCalendar struct {
	code  string
	name  string
	rules []HolidayRule

	// years caches resolved holiday sets keyed by year.  Entries are
	// written once and never mutated afterwards.
	years sync.Map // int -> map[time.Time]string
}

// NewCalendar builds a calendar from holiday rules.  Rules are validated
// up front so malformed patterns surface at construction, not during a
// deadline computation.
func NewCalendar(code, name string, rules []HolidayRule) (*JurisdictionCalendar, error) {
	if code == "" {
		return nil, errors.Validation("calendar code is required").WithField("code")
	}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	cloned := make([]HolidayRule, len(rules))
	copy(cloned, rules)
	return &JurisdictionCalendar{code: code, name: name, rules: cloned}, nil
}

// Code returns the jurisdiction code (e.g. "state", "federal").
func (c *JurisdictionCalendar) Code() string { return c.code }

// Name returns the display name.
func (c *JurisdictionCalendar) Name() string { return c.name }

// holidaySet returns the resolved date→name set for a year, building and
// caching it on first use.  Overlapping rules resolving to the same date
// union idempotently; the first-registered rule's name wins attribution.
func (c *JurisdictionCalendar) holidaySet(year int) (map[time.Time]string, error) {
	if year < MinYear {
		return nil, errors.Newf(errors.CodeCalendarRange,
			"year %d predates the Gregorian calendar floor (%d)", year, MinYear)
	}
	if cached, ok := c.years.Load(year); ok {
		return cached.(map[time.Time]string), nil
	}

	set := make(map[time.Time]string, len(c.rules))
	for _, r := range c.rules {
		d, err := r.Resolve(year)
		if err != nil {
			return nil, err
		}
		if _, exists := set[d]; !exists {
			set[d] = r.Name
		}
	}

	// Concurrent first computations may race; LoadOrStore keeps whichever
	// entry landed first, and both are identical by determinism.
	actual, _ := c.years.LoadOrStore(year, set)
	return actual.(map[time.Time]string), nil
}

// Holidays returns the year's resolved holidays sorted by date.
func (c *JurisdictionCalendar) Holidays(year int) ([]Holiday, error) {
	set, err := c.holidaySet(year)
	if err != nil {
		return nil, err
	}
	out := make([]Holiday, 0, len(set))
	for d, name := range set {
		out = append(out, Holiday{Date: d, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// HolidayName returns the holiday name for a date, if the date is a
// holiday in this jurisdiction.
func (c *JurisdictionCalendar) HolidayName(d time.Time) (string, bool, error) {
	set, err := c.holidaySet(d.Year())
	if err != nil {
		return "", false, err
	}
	name, ok := set[common.Date(d)]
	return name, ok, nil
}

// IsBusinessDay reports whether d is a court business day: not a weekend
// and not a holiday in this jurisdiction.
func (c *JurisdictionCalendar) IsBusinessDay(d time.Time) (bool, error) {
	day := common.Date(d)
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return false, nil
	}
	set, err := c.holidaySet(day.Year())
	if err != nil {
		return false, err
	}
	_, holiday := set[day]
	return !holiday, nil
}

// NextBusinessDay returns d when it already falls on a business day,
// otherwise the first business day after it.  This is the forward roll
// primitive: a date already on a business day needs no adjustment.
func (c *JurisdictionCalendar) NextBusinessDay(d time.Time) (time.Time, error) {
	return c.scanBusinessDay(common.Date(d), 1)
}

// PreviousBusinessDay mirrors NextBusinessDay in the negative direction,
// for deadlines computed before a trigger.
func (c *JurisdictionCalendar) PreviousBusinessDay(d time.Time) (time.Time, error) {
	return c.scanBusinessDay(common.Date(d), -1)
}

func (c *JurisdictionCalendar) scanBusinessDay(d time.Time, step int) (time.Time, error) {
	for i := 0; i <= nextBusinessDayCap; i++ {
		ok, err := c.IsBusinessDay(d)
		if err != nil {
			return time.Time{}, err
		}
		if ok {
			return d, nil
		}
		d = d.AddDate(0, 0, step)
	}
	return time.Time{}, errors.Newf(errors.CodeCalendarScan,
		"no business day within %d days of %s in jurisdiction %q",
		nextBusinessDayCap, common.FormatDate(d), c.code)
}

// AddCourtDays advances from start by n business days, skipping weekends
// and holidays.  n must be non-negative; the start day itself is never
// counted.
func (c *JurisdictionCalendar) AddCourtDays(start time.Time, n int) (time.Time, error) {
	if n < 0 {
		return time.Time{}, errors.Validation("court-day count must be non-negative; use SubtractCourtDays").
			WithField("n")
	}
	return c.stepCourtDays(common.Date(start), n, 1)
}

// SubtractCourtDays steps backwards from start by n business days.
func (c *JurisdictionCalendar) SubtractCourtDays(start time.Time, n int) (time.Time, error) {
	if n < 0 {
		return time.Time{}, errors.Validation("court-day count must be non-negative; use AddCourtDays").
			WithField("n")
	}
	return c.stepCourtDays(common.Date(start), n, -1)
}

func (c *JurisdictionCalendar) stepCourtDays(d time.Time, n, step int) (time.Time, error) {
	remaining := n
	for remaining > 0 {
		d = d.AddDate(0, 0, step)
		ok, err := c.IsBusinessDay(d)
		if err != nil {
			return time.Time{}, err
		}
		if ok {
			remaining--
		}
	}
	return d, nil
}

// CountCourtDaysBetween counts business days from a to b, exclusive of a
// and inclusive of b.  When b precedes a the count is negative with the
// same convention mirrored.
func (c *JurisdictionCalendar) CountCourtDaysBetween(a, b time.Time) (int, error) {
	start, end := common.Date(a), common.Date(b)
	if start.Equal(end) {
		return 0, nil
	}
	step, sign := 1, 1
	if end.Before(start) {
		step, sign = -1, -1
	}
	count := 0
	for d := start.AddDate(0, 0, step); ; d = d.AddDate(0, 0, step) {
		ok, err := c.IsBusinessDay(d)
		if err != nil {
			return 0, err
		}
		if ok {
			count++
		}
		if d.Equal(end) {
			break
		}
	}
	return sign * count, nil
}
