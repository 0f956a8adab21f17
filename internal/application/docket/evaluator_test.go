package docket

import (
	"strings"
	"testing"
	"time"

	"github.com/praxis-legal/docketcalc/internal/domain/calendar"
	"github.com/praxis-legal/docketcalc/internal/domain/rules"
	"github.com/praxis-legal/docketcalc/pkg/errors"
	"github.com/praxis-legal/docketcalc/pkg/types/common"
)

func intPtr(n int) *int { return &n }

func complaintRule() *rules.RuleDefinition {
	return &rules.RuleDefinition{
		Metadata: rules.Metadata{Name: "complaint_served", Authority: "Code Civ. Proc."},
		Trigger: rules.TriggerSchema{
			Type: "complaint_served",
			RequiredFields: []rules.FieldSpec{
				{Name: "case_type", Type: rules.FieldString},
			},
		},
		Deadlines: []rules.DeadlineSpec{
			{
				ID: "answer", Title: "Answer Due", OffsetDays: 20,
				AddServiceExtension: true, Citation: "CCP § 412.20",
				Priority: rules.PriorityCritical, PartyResponsible: "defendant",
				Conditions: []rules.Condition{
					{
						If:   map[string]string{"case_type": "unlawful_detainer"},
						Then: rules.ConditionEffect{OffsetDays: intPtr(5), Citation: "CCP § 1167"},
					},
				},
			},
			{
				ID: "case_management", Title: "Case Management Statement", OffsetDays: 30,
				DependsOn: "answer", Citation: "CRC 3.725",
			},
		},
	}
}

func newTestEvaluator(t *testing.T, defs ...*rules.RuleDefinition) Evaluator {
	t.Helper()
	reg := rules.NewRegistry()
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			t.Fatalf("register rule: %v", err)
		}
	}
	return NewEvaluator(reg, newTestCalculator(), nil)
}

// ---------------------------------------------------------------------------
// Full evaluation flow
// ---------------------------------------------------------------------------

func TestEvaluate_GeneratesDeadlineChain(t *testing.T) {
	ev := newTestEvaluator(t, complaintRule())

	report, err := ev.Evaluate(TriggerEvent{
		Date:          date(2024, time.January, 1),
		Type:          "complaint_served",
		Jurisdiction:  "state",
		ServiceMethod: ServiceMail,
		Context:       common.Metadata{"case_type": "contract"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.RuleName != "complaint_served" || len(report.Deadlines) != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}

	answer := report.Deadlines[0]
	if answer.SpecID != "answer" {
		t.Fatalf("evaluation order wrong: %q first", answer.SpecID)
	}
	if answer.Calculation == nil || !answer.Calculation.FinalDate.Equal(date(2024, time.January, 29)) {
		t.Errorf("answer deadline wrong: %+v", answer.Calculation)
	}
	if !answer.AnchorDate.Equal(date(2024, time.January, 1)) || answer.AnchorSpecID != "" {
		t.Errorf("answer must anchor to the trigger date: %+v", answer)
	}

	// case_management anchors to the answer's computed date, not the
	// trigger, and takes no service extension: Jan 29 + 30 = Feb 28, a
	// Wednesday.
	cm := report.Deadlines[1]
	if cm.AnchorSpecID != "answer" || !cm.AnchorDate.Equal(date(2024, time.January, 29)) {
		t.Errorf("case_management anchor wrong: %+v", cm)
	}
	if cm.Calculation == nil || !cm.Calculation.FinalDate.Equal(date(2024, time.February, 28)) {
		t.Errorf("case_management deadline wrong: %+v", cm.Calculation)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", report.Warnings)
	}
}

func TestEvaluate_ConditionOverridesOffsetAndCitation(t *testing.T) {
	ev := newTestEvaluator(t, complaintRule())

	report, err := ev.Evaluate(TriggerEvent{
		Date:          date(2024, time.January, 1),
		Type:          "complaint_served",
		Jurisdiction:  "state",
		ServiceMethod: ServicePersonal,
		Context:       common.Metadata{"case_type": "unlawful_detainer"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	answer := report.Deadlines[0]
	if answer.Calculation == nil {
		t.Fatal("answer not computed")
	}
	// 5-day unlawful detainer override: Jan 1 + 5 = Jan 6 (Saturday),
	// rolls to Monday Jan 8.
	if !answer.Calculation.FinalDate.Equal(date(2024, time.January, 8)) {
		t.Errorf("final date = %s, want 2024-01-08", common.FormatDate(answer.Calculation.FinalDate))
	}
	if answer.ConditionCitation != "CCP § 1167" {
		t.Errorf("condition citation = %q", answer.ConditionCitation)
	}
	if !strings.Contains(answer.Calculation.CalculationBasis, "CCP § 1167") {
		t.Error("overridden citation must appear in the audit trail")
	}
}

func TestEvaluate_SkipConditionSuppressesChainNotSiblings(t *testing.T) {
	rule := &rules.RuleDefinition{
		Metadata: rules.Metadata{Name: "trial_set"},
		Trigger:  rules.TriggerSchema{Type: "trial_set"},
		Deadlines: []rules.DeadlineSpec{
			{
				ID: "expert_disclosure", Title: "Expert Disclosure", OffsetDays: 50,
				OffsetDirection: rules.DirectionBefore,
				Conditions: []rules.Condition{
					{
						If:   map[string]string{"case_type": "small_claims"},
						Then: rules.ConditionEffect{Skip: true, Citation: "CCP § 2034.010"},
					},
				},
			},
			{ID: "supplemental_disclosure", Title: "Supplemental Disclosure", OffsetDays: 20, OffsetDirection: rules.DirectionBefore, DependsOn: "expert_disclosure"},
			{ID: "exhibit_exchange", Title: "Exhibit Exchange", OffsetDays: 10, OffsetDirection: rules.DirectionBefore},
		},
	}
	ev := newTestEvaluator(t, rule)

	report, err := ev.Evaluate(TriggerEvent{
		Date:         date(2024, time.June, 3),
		Type:         "trial_set",
		Jurisdiction: "state",
		Context:      common.Metadata{"case_type": "small_claims"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byID := make(map[string]EvaluatedDeadline, len(report.Deadlines))
	for _, d := range report.Deadlines {
		byID[d.SpecID] = d
	}

	if d := byID["expert_disclosure"]; !d.Skipped || d.SkipReason != "CCP § 2034.010" {
		t.Errorf("expert_disclosure should be skipped with citation, got %+v", d)
	}
	if d := byID["supplemental_disclosure"]; !d.Failed || !strings.Contains(d.Error, "expert_disclosure") {
		t.Errorf("dependent of a skipped spec must fail with the anchor named, got %+v", d)
	}
	if d := byID["exhibit_exchange"]; d.Calculation == nil {
		t.Errorf("independent sibling must still compute, got %+v", d)
	}
}

// ---------------------------------------------------------------------------
// Trigger validation
// ---------------------------------------------------------------------------

func TestEvaluate_CollectsAllFieldDefects(t *testing.T) {
	rule := &rules.RuleDefinition{
		Metadata: rules.Metadata{Name: "hearing_set"},
		Trigger: rules.TriggerSchema{
			Type: "hearing_set",
			RequiredFields: []rules.FieldSpec{
				{Name: "hearing_date", Type: rules.FieldFutureDate},
				{Name: "department", Type: rules.FieldString},
				{Name: "notice_date", Type: rules.FieldDate},
			},
		},
		Deadlines: []rules.DeadlineSpec{{ID: "opposition", OffsetDays: 9, OffsetDirection: rules.DirectionBefore}},
	}
	ev := newTestEvaluator(t, rule).(*evaluatorImpl)
	ev.now = func() time.Time { return date(2024, time.June, 1) }

	_, err := ev.Evaluate(TriggerEvent{
		Date:         date(2024, time.June, 1),
		Type:         "hearing_set",
		Jurisdiction: "state",
		Context: common.Metadata{
			"hearing_date": "2024-05-01", // past
			"notice_date":  "06/01/2024", // wrong layout
		},
	})
	if !errors.IsCode(err, errors.CodeTriggerField) {
		t.Fatalf("expected CodeTriggerField, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"hearing_date", "department", "notice_date"} {
		if !strings.Contains(msg, fragment) {
			t.Errorf("error must name every defective field, missing %q in %q", fragment, msg)
		}
	}
}

func TestEvaluate_FutureDateAcceptsTomorrow(t *testing.T) {
	rule := &rules.RuleDefinition{
		Metadata: rules.Metadata{Name: "hearing_set"},
		Trigger: rules.TriggerSchema{
			Type:           "hearing_set",
			RequiredFields: []rules.FieldSpec{{Name: "hearing_date", Type: rules.FieldFutureDate}},
		},
		Deadlines: []rules.DeadlineSpec{{ID: "opposition", OffsetDays: 9, OffsetDirection: rules.DirectionBefore}},
	}
	ev := newTestEvaluator(t, rule).(*evaluatorImpl)
	ev.now = func() time.Time { return date(2024, time.June, 1) }

	if _, err := ev.Evaluate(TriggerEvent{
		Date:         date(2024, time.June, 1),
		Type:         "hearing_set",
		Jurisdiction: "state",
		Context:      common.Metadata{"hearing_date": "2024-06-02"},
	}); err != nil {
		t.Fatalf("tomorrow is a valid future date: %v", err)
	}
}

func TestEvaluate_UnknownTriggerType(t *testing.T) {
	ev := newTestEvaluator(t, complaintRule())
	_, err := ev.Evaluate(TriggerEvent{
		Date: date(2024, time.June, 1), Type: "asteroid_strike", Jurisdiction: "state",
	})
	if !errors.IsCode(err, errors.CodeRuleNotFound) {
		t.Fatalf("expected CodeRuleNotFound, got %v", err)
	}
}

func TestEvaluate_UnknownServiceMethodWarns(t *testing.T) {
	ev := newTestEvaluator(t, complaintRule())
	report, err := ev.Evaluate(TriggerEvent{
		Date:          date(2024, time.January, 1),
		Type:          "complaint_served",
		Jurisdiction:  "state",
		ServiceMethod: "fax",
		Context:       common.Metadata{"case_type": "contract"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Warnings) != 1 || !strings.Contains(report.Warnings[0], "fax") {
		t.Errorf("expected one unknown-service warning, got %v", report.Warnings)
	}
	if !report.Deadlines[0].Calculation.UnknownServiceMethod {
		t.Error("calculation must carry the unknown-service flag")
	}
}

func TestEvaluate_CalculationFailureIsCapturedPerDeadline(t *testing.T) {
	rule := &rules.RuleDefinition{
		Metadata: rules.Metadata{Name: "order_entered"},
		Trigger:  rules.TriggerSchema{Type: "order_entered"},
		Deadlines: []rules.DeadlineSpec{
			{ID: "appeal", Title: "Notice of Appeal", OffsetDays: 60},
		},
	}
	reg := rules.NewRegistry()
	if err := reg.Register(rule); err != nil {
		t.Fatalf("register rule: %v", err)
	}
	// An unknown jurisdiction fails the calculation; the report must still
	// come back with the failure recorded on the deadline.
	ev := NewEvaluator(reg, NewCalculator(calendar.NewRegistry(), nil, nil, nil), nil)

	report, err := ev.Evaluate(TriggerEvent{
		Date: date(2024, time.June, 3), Type: "order_entered", Jurisdiction: "tribal",
	})
	if err != nil {
		t.Fatalf("per-deadline failures must not fail the evaluation: %v", err)
	}
	if d := report.Deadlines[0]; !d.Failed || d.Error == "" {
		t.Errorf("deadline should carry its failure, got %+v", d)
	}
}

func TestEvaluate_EventRejections(t *testing.T) {
	ev := newTestEvaluator(t, complaintRule())
	cases := []struct {
		name  string
		event TriggerEvent
	}{
		{"zero date", TriggerEvent{Type: "complaint_served", Jurisdiction: "state"}},
		{"empty type", TriggerEvent{Date: date(2024, time.June, 1), Jurisdiction: "state"}},
		{"empty jurisdiction", TriggerEvent{Date: date(2024, time.June, 1), Type: "complaint_served"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ev.Evaluate(tc.event); !errors.IsCode(err, errors.CodeValidation) {
				t.Fatalf("expected CodeValidation, got %v", err)
			}
		})
	}
}
