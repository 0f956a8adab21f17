// Package common defines shared scalar types used across the docketcalc
// engine layers.  No business logic lives here — only plain data types.
package common

import (
	"time"

	"github.com/google/uuid"
)

// ID is a string alias for UUID v4.
type ID string

// NewID returns a freshly generated ID.
func NewID() ID {
	return ID(uuid.NewString())
}

// DateLayout is the canonical civil-date format used in audit strings,
// rule files, and CLI input.  Deadline math is date-level; times of day
// never participate.
const DateLayout = "2006-01-02"

// Date truncates t to midnight UTC.  All engine date arithmetic operates
// on midnight-UTC values so that DST transitions in wall-clock zones can
// never shift a computed deadline.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses s in DateLayout into a midnight-UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Date(t), nil
}

// FormatDate renders d in DateLayout.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// Metadata is an open-ended key-value bag attached to trigger events and
// deadline instances.
type Metadata map[string]string

// DateRange defines a civil-date interval, inclusive on both ends.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether d falls within the range.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}
