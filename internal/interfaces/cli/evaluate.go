package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/praxis-legal/docketcalc/internal/application/docket"
	"github.com/praxis-legal/docketcalc/pkg/types/common"
)

// evaluateOptions holds flags for the evaluate subcommand.
type evaluateOptions struct {
	Type         string
	Trigger      string
	Jurisdiction string
	Service      string
	Context      []string
}

func newEvaluateCmd() *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Apply a registered rule to a trigger event, generating its deadline chain",
		Example: `  docketcalc evaluate --type complaint_served --trigger 2024-01-01 \
      --service mail --ctx case_type=contract`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			trigger, err := common.ParseDate(opts.Trigger)
			if err != nil {
				return fmt.Errorf("invalid --trigger: %w", err)
			}
			jurisdiction := opts.Jurisdiction
			if jurisdiction == "" {
				jurisdiction = cliCtx.Config.Engine.DefaultJurisdiction
			}

			eventCtx := common.Metadata{}
			for _, pair := range opts.Context {
				key, value, found := strings.Cut(pair, "=")
				if !found || key == "" {
					return fmt.Errorf("invalid --ctx %q: want key=value", pair)
				}
				eventCtx[key] = value
			}

			report, err := cliCtx.Evaluator.Evaluate(docket.TriggerEvent{
				Date:          trigger,
				Type:          opts.Type,
				Jurisdiction:  jurisdiction,
				ServiceMethod: opts.Service,
				Context:       eventCtx,
			})
			if err != nil {
				return err
			}
			return PrintResult(cmd, reportView{report})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Type, "type", "", "trigger type (selects the rule)")
	f.StringVar(&opts.Trigger, "trigger", "", "trigger date (YYYY-MM-DD)")
	f.StringVarP(&opts.Jurisdiction, "jurisdiction", "j", "", "jurisdiction code (default from config)")
	f.StringVar(&opts.Service, "service", "", "service method (personal, mail, electronic)")
	f.StringArrayVar(&opts.Context, "ctx", nil, "trigger context field as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("trigger")

	return cmd
}

// reportView renders an EvaluationReport for each output format.
type reportView struct {
	*docket.EvaluationReport
}

func (v reportView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rule %s applied to %s trigger on %s (%s)\n",
		v.RuleName, v.TriggerType, common.FormatDate(v.TriggerDate), v.Jurisdiction)
	for _, d := range v.Deadlines {
		switch {
		case d.Skipped:
			fmt.Fprintf(&sb, "\n%s — skipped (%s)\n", d.SpecID, d.SkipReason)
		case d.Failed:
			fmt.Fprintf(&sb, "\n%s — failed: %s\n", d.SpecID, d.Error)
		default:
			fmt.Fprintf(&sb, "\n%s — %s due %s\n%s",
				d.SpecID, d.Title, common.FormatDate(d.Calculation.FinalDate),
				d.Calculation.CalculationBasis)
		}
	}
	for _, w := range v.Warnings {
		fmt.Fprintf(&sb, "\nWarning: %s\n", w)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (v reportView) TableHeaders() []string {
	return []string{"ID", "TITLE", "DUE", "PRIORITY", "STATUS"}
}

func (v reportView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Deadlines))
	for _, d := range v.Deadlines {
		due, status := "", "ok"
		switch {
		case d.Skipped:
			status = "skipped"
		case d.Failed:
			status = "failed"
		default:
			due = common.FormatDate(d.Calculation.FinalDate)
			if d.Calculation.Roll != nil {
				status = "rolled: " + string(d.Calculation.Roll.Reason)
			}
		}
		rows = append(rows, []string{d.SpecID, d.Title, due, string(d.Priority), status})
	}
	return rows
}
