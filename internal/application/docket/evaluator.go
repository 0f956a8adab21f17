package docket

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/praxis-legal/docketcalc/internal/domain/rules"
	"github.com/praxis-legal/docketcalc/pkg/errors"
	"github.com/praxis-legal/docketcalc/pkg/types/common"
)

// ---------------------------------------------------------------------------
// Evaluation DTOs
// ---------------------------------------------------------------------------

// EvaluatedDeadline is the outcome for one deadline spec in a rule: a
// computed deadline, a condition skip, or a failure that must not block
// its siblings.
type EvaluatedDeadline struct {
	SpecID           string               `json:"spec_id"`
	Title            string               `json:"title"`
	Priority         rules.SpecPriority   `json:"priority"`
	PartyResponsible string               `json:"party_responsible,omitempty"`

	// AnchorSpecID names the parent spec when the deadline is anchored to
	// another deadline's computed date rather than the trigger date.
	AnchorSpecID string    `json:"anchor_spec_id,omitempty"`
	AnchorDate   time.Time `json:"anchor_date,omitempty"`

	// Skipped is true when a matched condition suppressed the deadline.
	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`

	// Failed is true when this deadline could not be computed; Error holds
	// the reason.  A failed parent fails its dependents the same way.
	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`

	// ConditionCitation is set when a matched condition supplied the
	// governing citation used for the calculation.
	ConditionCitation string `json:"condition_citation,omitempty"`

	Calculation *DeadlineCalculation `json:"calculation,omitempty"`
}

// EvaluationReport is the full result of applying one rule to one trigger
// event, deadlines listed in evaluation (dependency) order.
type EvaluationReport struct {
	TriggerType  string              `json:"trigger_type"`
	TriggerDate  time.Time           `json:"trigger_date"`
	Jurisdiction string              `json:"jurisdiction"`
	RuleName     string              `json:"rule_name"`
	Deadlines    []EvaluatedDeadline `json:"deadlines"`

	// Warnings carry non-fatal anomalies: ordering inversions where a
	// dependent deadline lands before its anchor, unknown service methods.
	Warnings []string `json:"warnings,omitempty"`
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Evaluator applies registered rules to trigger events, producing the full
// set of deadlines the event generates.
type Evaluator interface {
	Evaluate(event TriggerEvent) (*EvaluationReport, error)
}

type evaluatorImpl struct {
	registry   *rules.Registry
	calculator Calculator
	logger     Logger

	// now is injectable for deterministic future-date validation in tests.
	now func() time.Time
}

// NewEvaluator constructs an Evaluator over a rule registry and a
// calculator.
func NewEvaluator(registry *rules.Registry, calculator Calculator, logger Logger) Evaluator {
	if logger == nil {
		logger = nopLogger{}
	}
	return &evaluatorImpl{
		registry:   registry,
		calculator: calculator,
		logger:     logger,
		now:        time.Now,
	}
}

// Evaluate validates the trigger event against the rule's schema, then
// computes every deadline spec in dependency order.  A failure in one
// deadline chain never blocks unrelated chains in the same rule.
func (e *evaluatorImpl) Evaluate(event TriggerEvent) (*EvaluationReport, error) {
	if event.Date.IsZero() {
		return nil, errors.Validation("trigger event date is required").WithField("date")
	}
	if event.Type == "" {
		return nil, errors.Validation("trigger event type is required").WithField("type")
	}
	if event.Jurisdiction == "" {
		return nil, errors.Validation("trigger event jurisdiction is required").WithField("jurisdiction")
	}

	rule, err := e.registry.Get(event.Type)
	if err != nil {
		return nil, err
	}

	if err := e.validateContext(rule, event); err != nil {
		return nil, err
	}

	order, err := rules.EvaluationOrder(rule.Deadlines)
	if err != nil {
		// Unreachable for a registered rule; Validate ran at load time.
		return nil, err
	}

	trigger := common.Date(event.Date)
	report := &EvaluationReport{
		TriggerType:  event.Type,
		TriggerDate:  trigger,
		Jurisdiction: event.Jurisdiction,
		RuleName:     rule.Metadata.Name,
		Deadlines:    make([]EvaluatedDeadline, 0, len(rule.Deadlines)),
	}

	// computed holds final dates of successful specs; unavailable records
	// why a spec produced no date, so dependents can explain their failure.
	computed := make(map[string]time.Time, len(rule.Deadlines))
	unavailable := make(map[string]string, len(rule.Deadlines))

	for _, idx := range order {
		spec := rule.Deadlines[idx]
		ed := EvaluatedDeadline{
			SpecID:           spec.ID,
			Title:            spec.Title,
			Priority:         spec.Priority,
			PartyResponsible: spec.PartyResponsible,
		}

		anchor := trigger
		if spec.DependsOn != "" {
			ed.AnchorSpecID = spec.DependsOn
			if reason, blocked := unavailable[spec.DependsOn]; blocked {
				ed.Failed = true
				ed.Error = fmt.Sprintf("anchor deadline %q produced no date: %s", spec.DependsOn, reason)
				unavailable[spec.ID] = ed.Error
				report.Deadlines = append(report.Deadlines, ed)
				continue
			}
			anchor = computed[spec.DependsOn]
		}
		ed.AnchorDate = anchor

		offset := spec.OffsetDays
		citation := spec.Citation
		skip := false
		skipReason := ""
		// First matching condition wins; later matches are ignored.
		for _, cond := range spec.Conditions {
			if !cond.Matches(event.Context) {
				continue
			}
			if cond.Then.Skip {
				skip = true
				skipReason = conditionLabel(cond)
			}
			if cond.Then.OffsetDays != nil {
				offset = *cond.Then.OffsetDays
			}
			if cond.Then.Citation != "" {
				citation = cond.Then.Citation
				ed.ConditionCitation = cond.Then.Citation
			}
			break
		}

		if skip {
			ed.Skipped = true
			ed.SkipReason = skipReason
			unavailable[spec.ID] = "skipped by condition " + skipReason
			report.Deadlines = append(report.Deadlines, ed)
			continue
		}

		calc, err := e.calculator.Calculate(CalculationRequest{
			TriggerDate:         anchor,
			BaseDays:            offset,
			Direction:           spec.Direction(),
			Mode:                spec.Mode(),
			ServiceMethod:       event.ServiceMethod,
			Jurisdiction:        event.Jurisdiction,
			AddServiceExtension: spec.AddServiceExtension,
			Citation:            citation,
		})
		if err != nil {
			e.logger.Error("deadline computation failed",
				"trigger_type", event.Type,
				"spec_id", spec.ID,
				"error", err.Error(),
			)
			ed.Failed = true
			ed.Error = err.Error()
			unavailable[spec.ID] = err.Error()
			report.Deadlines = append(report.Deadlines, ed)
			continue
		}

		ed.Calculation = calc
		computed[spec.ID] = calc.FinalDate

		if calc.UnknownServiceMethod {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"deadline %q: service method %q unknown in jurisdiction %q; no extension applied",
				spec.ID, event.ServiceMethod, event.Jurisdiction))
		}
		// Chains may legitimately invert (a before-direction child), but an
		// inversion usually means a rule authoring mistake, so it is
		// surfaced without failing the evaluation.
		if spec.DependsOn != "" && calc.FinalDate.Before(anchor) && spec.Direction() == rules.DirectionAfter {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"deadline %q (%s) falls before its anchor %q (%s)",
				spec.ID, common.FormatDate(calc.FinalDate),
				spec.DependsOn, common.FormatDate(anchor)))
		}

		report.Deadlines = append(report.Deadlines, ed)
	}

	e.logger.Info("trigger evaluated",
		"trigger_type", event.Type,
		"rule", rule.Metadata.Name,
		"deadlines", len(report.Deadlines),
		"warnings", len(report.Warnings),
	)
	return report, nil
}

// validateContext checks every required field and reports all defects at
// once, so rule authors and intake users see the complete list instead of
// fixing one field per attempt.
func (e *evaluatorImpl) validateContext(rule *rules.RuleDefinition, event TriggerEvent) error {
	today := common.Date(e.now())
	var defects []string
	for _, f := range rule.Trigger.RequiredFields {
		value, ok := event.Context[f.Name]
		if !ok || value == "" {
			defects = append(defects, fmt.Sprintf("field %q is required", f.Name))
			continue
		}
		switch f.Type {
		case rules.FieldDate:
			if _, err := common.ParseDate(value); err != nil {
				defects = append(defects, fmt.Sprintf("field %q: %q is not a valid date (want %s)",
					f.Name, value, common.DateLayout))
			}
		case rules.FieldFutureDate:
			d, err := common.ParseDate(value)
			if err != nil {
				defects = append(defects, fmt.Sprintf("field %q: %q is not a valid date (want %s)",
					f.Name, value, common.DateLayout))
			} else if !d.After(today) {
				defects = append(defects, fmt.Sprintf("field %q: %s is not in the future", f.Name, value))
			}
		}
	}
	if len(defects) == 0 {
		return nil
	}
	return errors.New(errors.CodeTriggerField,
		"trigger event does not satisfy rule schema").
		WithDetail(strings.Join(defects, "; "))
}

func conditionLabel(cond rules.Condition) string {
	if cond.Then.Citation != "" {
		return cond.Then.Citation
	}
	pairs := make([]string, 0, len(cond.If))
	for k, v := range cond.If {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
