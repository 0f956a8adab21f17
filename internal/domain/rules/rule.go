// Package rules defines the typed rule model for trigger-driven deadline
// generation: rule definitions, deadline spec templates, condition
// predicates, and the dependency graph between specs.  Rule documents are
// declarative data — parsed and validated once at load time, never
// evaluated as code.
package rules

import (
	"fmt"

	"github.com/praxis-legal/docketcalc/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Enumerations
// ─────────────────────────────────────────────────────────────────────────────

// CalculationMode selects how a deadline's offset is counted.
type CalculationMode string

const (
	// ModeCalendarDays counts every day, weekends and holidays included;
	// the landing date rolls forward if it is not a business day.
	ModeCalendarDays CalculationMode = "calendar_days"

	// ModeCourtDays counts business days only; the landing date is always
	// a business day, so no roll occurs.
	ModeCourtDays CalculationMode = "court_days"
)

// OffsetDirection orients a deadline relative to its base date.
type OffsetDirection string

const (
	// DirectionAfter places the deadline OffsetDays after the base date.
	DirectionAfter OffsetDirection = "after"

	// DirectionBefore places the deadline OffsetDays before the base date
	// (e.g. expert disclosures due N days before trial).
	DirectionBefore OffsetDirection = "before"
)

// SpecPriority indicates the consequence severity of missing a deadline.
type SpecPriority string

const (
	// PriorityCritical: missing the deadline results in irreversible loss
	// (default judgment, waived jury, dismissed appeal).
	PriorityCritical SpecPriority = "critical"

	// PriorityHigh: severe but potentially recoverable with relief motions.
	PriorityHigh SpecPriority = "high"

	// PriorityMedium: moderate consequences (fees, continuances).
	PriorityMedium SpecPriority = "medium"

	// PriorityLow: internal or informational deadline.
	PriorityLow SpecPriority = "low"
)

// FieldType classifies a required trigger-context field for validation.
type FieldType string

const (
	// FieldString accepts any non-empty value.
	FieldString FieldType = "string"

	// FieldDate must parse in the canonical 2006-01-02 layout.
	FieldDate FieldType = "date"

	// FieldFutureDate must parse as a date and lie strictly after "now"
	// at evaluation time (e.g. a scheduled hearing date).
	FieldFutureDate FieldType = "future_date"
)

// ─────────────────────────────────────────────────────────────────────────────
// Rule model
// ─────────────────────────────────────────────────────────────────────────────

// FieldSpec declares one required trigger-context field.
type FieldSpec struct {
	Name string    `yaml:"name"`
	Type FieldType `yaml:"type"`
}

// ConditionEffect is the "then" half of a condition: either suppress the
// deadline entirely or override its base offset.
type ConditionEffect struct {
	// Skip suppresses creation of the deadline when the condition matches.
	Skip bool `yaml:"skip,omitempty"`

	// OffsetDays overrides the spec's base offset when set.
	OffsetDays *int `yaml:"offset_days,omitempty"`

	// Citation overrides the spec's citation when the condition applies,
	// so the audit trail cites the special-case rule.
	Citation string `yaml:"citation,omitempty"`
}

// Condition is an if/then predicate over the trigger context.  All If
// key/value pairs must equal the context's values for the effect to apply.
// Conditions are matched in declaration order; the first match wins.
type Condition struct {
	If   map[string]string `yaml:"if"`
	Then ConditionEffect   `yaml:"then"`
}

// Matches reports whether every If pair equals the context value.
func (c Condition) Matches(context map[string]string) bool {
	for k, v := range c.If {
		if context[k] != v {
			return false
		}
	}
	return true
}

// DeadlineSpec is a template for one deadline generated by a rule.
type DeadlineSpec struct {
	// ID identifies the spec within its rule; DependsOn references use it.
	ID string `yaml:"id"`

	// Title is the human-readable deadline name.
	Title string `yaml:"title"`

	// OffsetDays is the base period, always non-negative; OffsetDirection
	// orients it.
	OffsetDays int `yaml:"offset_days"`

	// OffsetDirection defaults to "after" when empty.
	OffsetDirection OffsetDirection `yaml:"offset_direction,omitempty"`

	// CalculationMode defaults to calendar_days when empty.
	CalculationMode CalculationMode `yaml:"calculation_mode,omitempty"`

	// Priority defaults to medium when empty.
	Priority SpecPriority `yaml:"priority,omitempty"`

	// PartyResponsible names who must act (e.g. "defendant").
	PartyResponsible string `yaml:"party_responsible,omitempty"`

	// AddServiceExtension applies the jurisdiction's service-method
	// extension on top of the base period.
	AddServiceExtension bool `yaml:"add_service_extension,omitempty"`

	// Conditions are matched against the trigger context at evaluation.
	Conditions []Condition `yaml:"conditions,omitempty"`

	// DependsOn anchors this spec's base date to another spec's computed
	// date instead of the trigger date.
	DependsOn string `yaml:"depends_on,omitempty"`

	// Citation is the governing rule citation for the base period.
	Citation string `yaml:"citation,omitempty"`
}

// Direction returns the spec's direction with the "after" default applied.
func (s DeadlineSpec) Direction() OffsetDirection {
	if s.OffsetDirection == "" {
		return DirectionAfter
	}
	return s.OffsetDirection
}

// Mode returns the spec's calculation mode with the calendar-days default
// applied.
func (s DeadlineSpec) Mode() CalculationMode {
	if s.CalculationMode == "" {
		return ModeCalendarDays
	}
	return s.CalculationMode
}

// TriggerSchema declares a rule's trigger type and the context fields a
// trigger event must supply.
type TriggerSchema struct {
	Type           string      `yaml:"type"`
	RequiredFields []FieldSpec `yaml:"required_fields,omitempty"`
}

// Metadata carries rule provenance for display and audit.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Version     string `yaml:"version,omitempty"`
	Authority   string `yaml:"authority,omitempty"`
}

// RuleDefinition is one complete trigger-type rule: metadata, trigger
// schema, and deadline spec templates.
type RuleDefinition struct {
	Metadata  Metadata       `yaml:"metadata"`
	Trigger   TriggerSchema  `yaml:"trigger"`
	Deadlines []DeadlineSpec `yaml:"deadlines"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Load-time validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate checks the rule's structural integrity: non-empty identifiers,
// known enum values, unique spec IDs, resolvable DependsOn references, and
// an acyclic dependency graph.  A rule failing Validate is rejected before
// any trigger event ever touches it.
func (r *RuleDefinition) Validate() error {
	if r.Metadata.Name == "" {
		return errors.RuleSchema("rule has no metadata.name").WithField("metadata.name")
	}
	if r.Trigger.Type == "" {
		return errors.RuleSchema("rule has no trigger.type").WithField("trigger.type")
	}
	if len(r.Deadlines) == 0 {
		return errors.RuleSchema("rule defines no deadlines").WithDetail("rule=" + r.Metadata.Name)
	}

	for _, f := range r.Trigger.RequiredFields {
		if f.Name == "" {
			return errors.RuleSchema("required field has no name").WithDetail("rule=" + r.Metadata.Name)
		}
		switch f.Type {
		case FieldString, FieldDate, FieldFutureDate, "":
		default:
			return errors.RuleSchema(fmt.Sprintf("required field %q has unknown type %q", f.Name, f.Type)).
				WithField(f.Name)
		}
	}

	seen := make(map[string]int, len(r.Deadlines))
	for i, s := range r.Deadlines {
		if s.ID == "" {
			return errors.RuleSchema(fmt.Sprintf("deadline at index %d has no id", i)).
				WithDetail("rule=" + r.Metadata.Name)
		}
		if _, dup := seen[s.ID]; dup {
			return errors.RuleSchema(fmt.Sprintf("duplicate deadline id %q", s.ID)).
				WithDetail("rule=" + r.Metadata.Name)
		}
		seen[s.ID] = i

		if s.OffsetDays < 0 {
			return errors.RuleSchema(fmt.Sprintf("deadline %q: offset_days must be non-negative; use offset_direction: before", s.ID)).
				WithField("offset_days")
		}
		switch s.OffsetDirection {
		case "", DirectionAfter, DirectionBefore:
		default:
			return errors.RuleSchema(fmt.Sprintf("deadline %q: unknown offset_direction %q", s.ID, s.OffsetDirection)).
				WithField("offset_direction")
		}
		switch s.CalculationMode {
		case "", ModeCalendarDays, ModeCourtDays:
		default:
			return errors.RuleSchema(fmt.Sprintf("deadline %q: unknown calculation_mode %q", s.ID, s.CalculationMode)).
				WithField("calculation_mode")
		}
		switch s.Priority {
		case "", PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		default:
			return errors.RuleSchema(fmt.Sprintf("deadline %q: unknown priority %q", s.ID, s.Priority)).
				WithField("priority")
		}
	}

	for _, s := range r.Deadlines {
		if s.DependsOn == "" {
			continue
		}
		if s.DependsOn == s.ID {
			return errors.Cycle(fmt.Sprintf("deadline %q depends on itself", s.ID)).
				WithDetail("rule=" + r.Metadata.Name)
		}
		if _, ok := seen[s.DependsOn]; !ok {
			return errors.RuleSchema(fmt.Sprintf("deadline %q depends on unknown spec %q", s.ID, s.DependsOn)).
				WithField("depends_on")
		}
	}

	// Cycle check is part of structural validity: an unorderable rule is
	// rejected whole, before any deadlines are computed.
	if _, err := EvaluationOrder(r.Deadlines); err != nil {
		return err
	}
	return nil
}

// SpecByID returns the deadline spec with the given ID.
func (r *RuleDefinition) SpecByID(id string) (DeadlineSpec, bool) {
	for _, s := range r.Deadlines {
		if s.ID == id {
			return s, true
		}
	}
	return DeadlineSpec{}, false
}
