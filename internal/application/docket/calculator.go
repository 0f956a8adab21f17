package docket

import (
	"fmt"
	"strings"
	"time"

	"github.com/praxis-legal/docketcalc/internal/domain/calendar"
	"github.com/praxis-legal/docketcalc/internal/domain/rules"
	"github.com/praxis-legal/docketcalc/pkg/errors"
	"github.com/praxis-legal/docketcalc/pkg/types/common"
)

// ---------------------------------------------------------------------------
// Calculation DTOs
// ---------------------------------------------------------------------------

// RollReason attributes why a computed date was moved off its raw landing.
type RollReason string

const (
	RollWeekend           RollReason = "weekend"
	RollHoliday           RollReason = "holiday"
	RollWeekendAndHoliday RollReason = "weekend_and_holiday"
)

// RollAdjustment records a single roll from a non-business landing date to
// the nearest valid court day.
type RollAdjustment struct {
	OriginalDate time.Time  `json:"original_date"`
	AdjustedDate time.Time  `json:"adjusted_date"`
	Reason       RollReason `json:"reason"`
	HolidayName  string     `json:"holiday_name,omitempty"`
	Citation     string     `json:"citation,omitempty"`
}

// CalculationRequest carries the inputs for one deadline computation.
type CalculationRequest struct {
	// TriggerDate anchors the computation (a service date, an order date,
	// or an upstream deadline's computed date).
	TriggerDate time.Time `json:"trigger_date"`

	// BaseDays is the non-negative base period; Direction orients it.
	BaseDays int `json:"base_days"`

	// Direction defaults to after.
	Direction rules.OffsetDirection `json:"direction,omitempty"`

	// Mode defaults to calendar_days.
	Mode rules.CalculationMode `json:"mode,omitempty"`

	// ServiceMethod is how the triggering document was served.
	ServiceMethod string `json:"service_method,omitempty"`

	// Jurisdiction selects the calendar and extension table.
	Jurisdiction string `json:"jurisdiction"`

	// AddServiceExtension applies the jurisdiction's service extension on
	// top of the base period.
	AddServiceExtension bool `json:"add_service_extension,omitempty"`

	// Citation is the rule governing the base period.
	Citation string `json:"citation,omitempty"`
}

// DeadlineCalculation is the immutable, fully self-describing result of
// one deadline computation.  CalculationBasis is regenerable byte-for-byte
// from the same inputs; the calling system stores it verbatim as the legal
// audit record.
type DeadlineCalculation struct {
	FinalDate            time.Time             `json:"final_date"`
	TriggerDate          time.Time             `json:"trigger_date"`
	BaseDays             int                   `json:"base_days"`
	Direction            rules.OffsetDirection `json:"direction"`
	Mode                 rules.CalculationMode `json:"calculation_mode"`
	Jurisdiction         string                `json:"jurisdiction"`
	ServiceMethod        string                `json:"service_method,omitempty"`
	ServiceExtensionDays int                   `json:"service_extension_days"`
	UnknownServiceMethod bool                  `json:"unknown_service_method,omitempty"`
	Roll                 *RollAdjustment       `json:"roll_adjustment,omitempty"`
	CalculationBasis     string                `json:"calculation_basis"`
	ShortBasis           string                `json:"short_basis"`
	RuleCitations        []string              `json:"rule_citations,omitempty"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

// Calculator computes deadline dates with their audit trails.
type Calculator interface {
	// Calculate produces the final date plus a complete derivation for the
	// request.  The result's FinalDate is always a business day in
	// calendar-day mode.
	Calculate(req CalculationRequest) (*DeadlineCalculation, error)
}

type calculatorImpl struct {
	calendars     *calendar.Registry
	extensions    ExtensionTable
	rollCitations RollCitations
	logger        Logger
}

// NewCalculator constructs a Calculator.  Nil extensions or roll citations
// fall back to the built-in tables; a nil logger discards output.
func NewCalculator(calendars *calendar.Registry, extensions ExtensionTable, rollCitations RollCitations, logger Logger) Calculator {
	if calendars == nil {
		calendars = calendar.NewRegistry()
	}
	if extensions == nil {
		extensions = DefaultExtensionTable()
	}
	if rollCitations == nil {
		rollCitations = DefaultRollCitations()
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &calculatorImpl{
		calendars:     calendars,
		extensions:    extensions,
		rollCitations: rollCitations,
		logger:        logger,
	}
}

// Calculate produces the final date plus a complete derivation.
func (c *calculatorImpl) Calculate(req CalculationRequest) (*DeadlineCalculation, error) {
	if req.TriggerDate.IsZero() {
		return nil, errors.Validation("trigger date is required").WithField("trigger_date")
	}
	if req.BaseDays < 0 {
		return nil, errors.Validation("base days must be non-negative; use direction: before").
			WithField("base_days")
	}
	direction := req.Direction
	if direction == "" {
		direction = rules.DirectionAfter
	}
	switch direction {
	case rules.DirectionAfter, rules.DirectionBefore:
	default:
		return nil, errors.Validation(fmt.Sprintf("unknown direction %q", direction)).WithField("direction")
	}
	mode := req.Mode
	if mode == "" {
		mode = rules.ModeCalendarDays
	}
	switch mode {
	case rules.ModeCalendarDays, rules.ModeCourtDays:
	default:
		return nil, errors.Validation(fmt.Sprintf("unknown calculation mode %q", mode)).WithField("mode")
	}

	cal, err := c.calendars.Get(req.Jurisdiction)
	if err != nil {
		return nil, err
	}

	trigger := common.Date(req.TriggerDate)

	// Service extension lookup.  Unknown methods degrade to zero days and
	// flag the result; a missed deadline is worse than a conservative one,
	// provided the degradation is visible in the trail.
	var ext ServiceExtension
	extKnown := true
	if req.AddServiceExtension && req.ServiceMethod != "" {
		ext, extKnown = c.extensions.Lookup(req.Jurisdiction, req.ServiceMethod)
		if !extKnown {
			c.logger.Warn("unknown service method; applying zero extension",
				"service_method", req.ServiceMethod,
				"jurisdiction", req.Jurisdiction,
			)
		}
	}

	b := newBasisBuilder(req.Jurisdiction, mode)
	b.stepf("Trigger date: %s (%s).", trigger.Format("Monday, January 2, 2006"), common.FormatDate(trigger))

	var final time.Time
	var roll *RollAdjustment
	switch mode {
	case rules.ModeCalendarDays:
		final, roll, err = c.calendarDays(cal, b, trigger, req.BaseDays, direction, req, ext, extKnown)
	case rules.ModeCourtDays:
		final, err = c.courtDays(cal, b, trigger, req.BaseDays, direction, req, ext, extKnown)
	}
	if err != nil {
		return nil, err
	}

	b.stepf("Final deadline: %s (%s).", final.Format("Monday, January 2, 2006"), common.FormatDate(final))

	result := &DeadlineCalculation{
		FinalDate:            final,
		TriggerDate:          trigger,
		BaseDays:             req.BaseDays,
		Direction:            direction,
		Mode:                 mode,
		Jurisdiction:         req.Jurisdiction,
		ServiceMethod:        req.ServiceMethod,
		ServiceExtensionDays: appliedExtensionDays(req, ext, extKnown),
		UnknownServiceMethod: req.AddServiceExtension && req.ServiceMethod != "" && !extKnown,
		Roll:                 roll,
		CalculationBasis:     b.String(),
		ShortBasis:           c.shortBasis(req, direction, mode, ext, extKnown, final, roll),
		RuleCitations:        c.citations(req, ext, extKnown, roll),
	}

	c.logger.Debug("deadline calculated",
		"jurisdiction", req.Jurisdiction,
		"mode", string(mode),
		"base_days", req.BaseDays,
		"final_date", common.FormatDate(final),
	)
	return result, nil
}

func appliedExtensionDays(req CalculationRequest, ext ServiceExtension, known bool) int {
	if !req.AddServiceExtension || !known {
		return 0
	}
	return ext.Days
}

// ---------------------------------------------------------------------------
// Calendar-day mode
// ---------------------------------------------------------------------------

// calendarDays applies the base period as calendar days, rolls to a
// business day, then applies the service extension as calendar days and
// rolls again.  The extension is applied to the already-rolled base
// landing, not fused with the base period: a base landing on a weekend
// consumes the roll before extension days start counting.
func (c *calculatorImpl) calendarDays(
	cal *calendar.JurisdictionCalendar,
	b *basisBuilder,
	trigger time.Time,
	baseDays int,
	direction rules.OffsetDirection,
	req CalculationRequest,
	ext ServiceExtension,
	extKnown bool,
) (time.Time, *RollAdjustment, error) {
	sign := 1
	word := "after"
	if direction == rules.DirectionBefore {
		sign = -1
		word = "before"
	}

	intermediate := trigger.AddDate(0, 0, sign*baseDays)
	b.stepf("Base period: %d calendar days %s trigger date = %s%s.",
		baseDays, word, common.FormatDate(intermediate), citeSuffix(req.Citation))

	// Zero-day deadlines resolve forward even in the before direction:
	// same day if it is a business day, else the next business day.
	rollBack := direction == rules.DirectionBefore && baseDays > 0

	rolled, adj, err := c.roll(cal, b, intermediate, rollBack)
	if err != nil {
		return time.Time{}, nil, err
	}
	final := rolled
	finalAdj := adj

	switch {
	case !req.AddServiceExtension || req.ServiceMethod == "":
		b.stepf("Service extension: not applicable.")
	case !extKnown:
		b.stepf("Service extension: service method %q is not recognized in jurisdiction %q; +0 days applied (unknown-service-method warning).",
			req.ServiceMethod, req.Jurisdiction)
	case ext.Days == 0:
		b.stepf("Service extension: +0 days for service by %s%s.", req.ServiceMethod, citeSuffix(ext.Citation))
	default:
		extended := rolled.AddDate(0, 0, sign*ext.Days)
		b.stepf("Service extension: +%d calendar days for service by %s = %s%s.",
			ext.Days, req.ServiceMethod, common.FormatDate(extended), citeSuffix(ext.Citation))
		var extAdj *RollAdjustment
		final, extAdj, err = c.roll(cal, b, extended, rollBack)
		if err != nil {
			return time.Time{}, nil, err
		}
		// The base-stage roll stays on record when the extension landing
		// needs none; the last roll that actually happened wins.
		if extAdj != nil {
			finalAdj = extAdj
		}
	}

	return final, finalAdj, nil
}

// roll moves a landing date to the nearest business day in the given
// direction, narrating the step and returning the adjustment when one was
// needed.
func (c *calculatorImpl) roll(
	cal *calendar.JurisdictionCalendar,
	b *basisBuilder,
	d time.Time,
	backward bool,
) (time.Time, *RollAdjustment, error) {
	ok, err := cal.IsBusinessDay(d)
	if err != nil {
		return time.Time{}, nil, err
	}
	if ok {
		b.stepf("Roll adjustment: not needed; %s is a court day.", common.FormatDate(d))
		return d, nil, nil
	}

	var adjusted time.Time
	if backward {
		adjusted, err = cal.PreviousBusinessDay(d)
	} else {
		adjusted, err = cal.NextBusinessDay(d)
	}
	if err != nil {
		return time.Time{}, nil, err
	}

	reason, holidayName, err := c.rollReason(cal, d)
	if err != nil {
		return time.Time{}, nil, err
	}
	citation := c.rollCitations[cal.Code()]

	dirWord := "forward"
	if backward {
		dirWord = "backward"
	}
	b.stepf("Roll adjustment: %s is not a court day (%s); rolled %s to %s%s.",
		common.FormatDate(d), describeReason(reason, holidayName), dirWord,
		common.FormatDate(adjusted), citeSuffix(citation))

	return adjusted, &RollAdjustment{
		OriginalDate: d,
		AdjustedDate: adjusted,
		Reason:       reason,
		HolidayName:  holidayName,
		Citation:     citation,
	}, nil
}

// rollReason attributes the cause of a roll: weekend, a named holiday, or
// both at once.
func (c *calculatorImpl) rollReason(cal *calendar.JurisdictionCalendar, d time.Time) (RollReason, string, error) {
	weekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
	name, holiday, err := cal.HolidayName(d)
	if err != nil {
		return "", "", err
	}
	switch {
	case weekend && holiday:
		return RollWeekendAndHoliday, name, nil
	case holiday:
		return RollHoliday, name, nil
	default:
		return RollWeekend, "", nil
	}
}

func describeReason(reason RollReason, holidayName string) string {
	switch reason {
	case RollHoliday:
		return "holiday: " + holidayName
	case RollWeekendAndHoliday:
		return "weekend and holiday: " + holidayName
	default:
		return "weekend"
	}
}

// ---------------------------------------------------------------------------
// Court-day mode
// ---------------------------------------------------------------------------

// courtDays counts the base period and the service extension in business
// days.  Court-day stepping can only land on business days, so no roll
// adjustment is ever produced in this mode.
func (c *calculatorImpl) courtDays(
	cal *calendar.JurisdictionCalendar,
	b *basisBuilder,
	trigger time.Time,
	baseDays int,
	direction rules.OffsetDirection,
	req CalculationRequest,
	ext ServiceExtension,
	extKnown bool,
) (time.Time, error) {
	step := cal.AddCourtDays
	word := "after"
	if direction == rules.DirectionBefore && baseDays > 0 {
		step = cal.SubtractCourtDays
		word = "before"
	}

	d, err := step(trigger, baseDays)
	if err != nil {
		return time.Time{}, err
	}
	b.stepf("Base period: %d court days %s trigger date = %s%s.",
		baseDays, word, common.FormatDate(d), citeSuffix(req.Citation))

	switch {
	case !req.AddServiceExtension || req.ServiceMethod == "":
		b.stepf("Service extension: not applicable.")
	case !extKnown:
		b.stepf("Service extension: service method %q is not recognized in jurisdiction %q; +0 days applied (unknown-service-method warning).",
			req.ServiceMethod, req.Jurisdiction)
	case ext.Days == 0:
		b.stepf("Service extension: +0 days for service by %s%s.", req.ServiceMethod, citeSuffix(ext.Citation))
	default:
		d, err = step(d, ext.Days)
		if err != nil {
			return time.Time{}, err
		}
		b.stepf("Service extension: +%d court days for service by %s = %s%s.",
			ext.Days, req.ServiceMethod, common.FormatDate(d), citeSuffix(ext.Citation))
	}

	// Zero-day edge: stepping by zero leaves the trigger date, which may
	// not be a business day.
	if ok, err := cal.IsBusinessDay(d); err != nil {
		return time.Time{}, err
	} else if !ok {
		d, err = cal.NextBusinessDay(d)
		if err != nil {
			return time.Time{}, err
		}
		b.stepf("Roll adjustment: zero-day deadline resolves to the next court day %s.", common.FormatDate(d))
		return d, nil
	}

	b.stepf("Roll adjustment: not needed; court-day counting lands on court days.")
	return d, nil
}

// ---------------------------------------------------------------------------
// Basis rendering
// ---------------------------------------------------------------------------

// basisBuilder accumulates the numbered plain-text derivation.  Output is
// fully determined by the calculation inputs: identical requests always
// yield byte-identical basis strings.
type basisBuilder struct {
	sb   strings.Builder
	step int
}

func newBasisBuilder(jurisdiction string, mode rules.CalculationMode) *basisBuilder {
	b := &basisBuilder{}
	fmt.Fprintf(&b.sb, "Deadline calculation (%s, %s)\n", jurisdiction, strings.ReplaceAll(string(mode), "_", " "))
	return b
}

func (b *basisBuilder) stepf(format string, args ...interface{}) {
	b.step++
	fmt.Fprintf(&b.sb, "%d. ", b.step)
	fmt.Fprintf(&b.sb, format, args...)
	b.sb.WriteByte('\n')
}

func (b *basisBuilder) String() string {
	return b.sb.String()
}

func citeSuffix(citation string) string {
	if citation == "" {
		return ""
	}
	return " [" + citation + "]"
}

// shortBasis renders the single-line compact form for list displays.
func (c *calculatorImpl) shortBasis(
	req CalculationRequest,
	direction rules.OffsetDirection,
	mode rules.CalculationMode,
	ext ServiceExtension,
	extKnown bool,
	final time.Time,
	roll *RollAdjustment,
) string {
	op := "+"
	if direction == rules.DirectionBefore {
		op = "-"
	}
	modeWord := "calendar"
	if mode == rules.ModeCourtDays {
		modeWord = "court"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %d %s days", common.FormatDate(common.Date(req.TriggerDate)), op, req.BaseDays, modeWord)
	if req.AddServiceExtension && req.ServiceMethod != "" {
		if extKnown {
			fmt.Fprintf(&sb, " %s %d service days (%s)", op, ext.Days, req.ServiceMethod)
		} else {
			fmt.Fprintf(&sb, " %s 0 service days (%s, unknown)", op, req.ServiceMethod)
		}
	}
	fmt.Fprintf(&sb, " = %s", common.FormatDate(final))
	if roll != nil {
		fmt.Fprintf(&sb, " (rolled: %s)", roll.Reason)
	}
	return sb.String()
}

// citations collects the governing citations in derivation order, deduped.
func (c *calculatorImpl) citations(req CalculationRequest, ext ServiceExtension, extKnown bool, roll *RollAdjustment) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(cite string) {
		if cite != "" && !seen[cite] {
			seen[cite] = true
			out = append(out, cite)
		}
	}
	add(req.Citation)
	if req.AddServiceExtension && req.ServiceMethod != "" && extKnown {
		add(ext.Citation)
	}
	if roll != nil {
		add(roll.Citation)
	}
	return out
}
