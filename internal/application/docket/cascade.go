package docket

import (
	"time"

	"github.com/praxis-legal/docketcalc/internal/domain/calendar"
	"github.com/praxis-legal/docketcalc/pkg/errors"
	"github.com/praxis-legal/docketcalc/pkg/types/common"
)

// ---------------------------------------------------------------------------
// Cascade DTOs
// ---------------------------------------------------------------------------

// CascadeChange describes one dependent deadline whose date the cascade
// proposes to move.
type CascadeChange struct {
	InstanceID common.ID `json:"instance_id"`
	OldDate    time.Time `json:"old_date"`
	NewDate    time.Time `json:"new_date"`

	// Rolled is set when the shifted date landed on a non-business day and
	// moved to the next court day.
	Rolled *RollAdjustment `json:"rolled,omitempty"`
}

// Skip reasons for cascade-protected instances.
const (
	SkipManuallyOverridden      = "manually_overridden"
	SkipAutoRecalculateDisabled = "auto_recalculate_disabled"
)

// CascadeSkip records a dependent the cascade refused to touch, and why.
type CascadeSkip struct {
	InstanceID common.ID `json:"instance_id"`
	Date       time.Time `json:"date"`
	Reason     string    `json:"reason"`
}

// CascadeReport is a pure preview of a parent-date change's downstream
// effect.  Nothing is persisted or mutated; the caller applies (or
// discards) the proposed changes.
type CascadeReport struct {
	ParentOldDate   time.Time       `json:"parent_old_date"`
	ParentNewDate   time.Time       `json:"parent_new_date"`
	DaysShift       int             `json:"days_shift"`
	Jurisdiction    string          `json:"jurisdiction"`
	TotalDependents int             `json:"total_dependents"`
	Affected        []CascadeChange `json:"affected,omitempty"`
	Skipped         []CascadeSkip   `json:"skipped,omitempty"`
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Cascade previews how a parent deadline's date change propagates to its
// dependents.
type Cascade interface {
	// Propagate shifts each unprotected dependent by the parent's calendar
	// delta and rolls the result to a business day.  Protected dependents
	// (manual override or recalculation disabled) are reported, never moved.
	Propagate(jurisdiction string, oldDate, newDate time.Time, dependents []DeadlineInstance) (*CascadeReport, error)
}

type cascadeImpl struct {
	calendars *calendar.Registry
	logger    Logger
}

// NewCascade constructs a Cascade over a calendar registry.
func NewCascade(calendars *calendar.Registry, logger Logger) Cascade {
	if calendars == nil {
		calendars = calendar.NewRegistry()
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &cascadeImpl{calendars: calendars, logger: logger}
}

func (c *cascadeImpl) Propagate(jurisdiction string, oldDate, newDate time.Time, dependents []DeadlineInstance) (*CascadeReport, error) {
	if oldDate.IsZero() || newDate.IsZero() {
		return nil, errors.Validation("old and new parent dates are required")
	}
	cal, err := c.calendars.Get(jurisdiction)
	if err != nil {
		return nil, err
	}

	from := common.Date(oldDate)
	to := common.Date(newDate)
	shift := int(to.Sub(from).Hours() / 24)

	report := &CascadeReport{
		ParentOldDate:   from,
		ParentNewDate:   to,
		DaysShift:       shift,
		Jurisdiction:    jurisdiction,
		TotalDependents: len(dependents),
	}

	for _, dep := range dependents {
		if dep.IsManuallyOverridden {
			report.Skipped = append(report.Skipped, CascadeSkip{
				InstanceID: dep.ID,
				Date:       common.Date(dep.Date),
				Reason:     SkipManuallyOverridden,
			})
			continue
		}
		if !dep.AutoRecalculate {
			report.Skipped = append(report.Skipped, CascadeSkip{
				InstanceID: dep.ID,
				Date:       common.Date(dep.Date),
				Reason:     SkipAutoRecalculateDisabled,
			})
			continue
		}

		old := common.Date(dep.Date)
		shifted := old.AddDate(0, 0, shift)
		change := CascadeChange{InstanceID: dep.ID, OldDate: old, NewDate: shifted}

		ok, err := cal.IsBusinessDay(shifted)
		if err != nil {
			return nil, err
		}
		if !ok {
			rolled, err := cal.NextBusinessDay(shifted)
			if err != nil {
				return nil, err
			}
			reason := RollWeekend
			name, holiday, err := cal.HolidayName(shifted)
			if err != nil {
				return nil, err
			}
			weekend := shifted.Weekday() == time.Saturday || shifted.Weekday() == time.Sunday
			switch {
			case weekend && holiday:
				reason = RollWeekendAndHoliday
			case holiday:
				reason = RollHoliday
			}
			change.Rolled = &RollAdjustment{
				OriginalDate: shifted,
				AdjustedDate: rolled,
				Reason:       reason,
				HolidayName:  name,
			}
			change.NewDate = rolled
		}

		report.Affected = append(report.Affected, change)
	}

	c.logger.Info("cascade previewed",
		"jurisdiction", jurisdiction,
		"days_shift", shift,
		"affected", len(report.Affected),
		"skipped", len(report.Skipped),
	)
	return report, nil
}
