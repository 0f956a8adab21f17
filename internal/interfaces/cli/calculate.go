package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/praxis-legal/docketcalc/internal/application/docket"
	"github.com/praxis-legal/docketcalc/internal/domain/rules"
	"github.com/praxis-legal/docketcalc/pkg/types/common"
)

// calculateOptions holds flags for the calculate subcommand.
type calculateOptions struct {
	Trigger      string
	Days         int
	Direction    string
	Mode         string
	Jurisdiction string
	Service      string
	Extend       bool
	Citation     string
}

func newCalculateCmd() *cobra.Command {
	opts := &calculateOptions{}

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Compute a single deadline with its full audit trail",
		Example: `  docketcalc calculate --trigger 2024-01-01 --days 20 --service mail --extend \
      --jurisdiction state --citation "CCP § 412.20"`,
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

			result, err := cliCtx.Calculator.Calculate(docket.CalculationRequest{
				TriggerDate:         trigger,
				BaseDays:            opts.Days,
				Direction:           rules.OffsetDirection(opts.Direction),
				Mode:                rules.CalculationMode(opts.Mode),
				ServiceMethod:       opts.Service,
				Jurisdiction:        jurisdiction,
				AddServiceExtension: opts.Extend,
				Citation:            opts.Citation,
			})
			if err != nil {
				return err
			}
			return PrintResult(cmd, calculationView{result})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Trigger, "trigger", "", "trigger date (YYYY-MM-DD)")
	f.IntVar(&opts.Days, "days", 0, "base period in days")
	f.StringVar(&opts.Direction, "direction", "", "offset direction (after, before)")
	f.StringVar(&opts.Mode, "mode", "", "counting mode (calendar_days, court_days)")
	f.StringVarP(&opts.Jurisdiction, "jurisdiction", "j", "", "jurisdiction code (default from config)")
	f.StringVar(&opts.Service, "service", "", "service method (personal, mail, electronic)")
	f.BoolVar(&opts.Extend, "extend", false, "apply the jurisdiction's service extension")
	f.StringVar(&opts.Citation, "citation", "", "citation governing the base period")
	_ = cmd.MarkFlagRequired("trigger")

	return cmd
}

// calculationView renders a DeadlineCalculation for each output format.
type calculationView struct {
	*docket.DeadlineCalculation
}

func (v calculationView) String() string {
	return v.CalculationBasis
}

func (v calculationView) TableHeaders() []string {
	return []string{"FINAL DATE", "TRIGGER", "BASE", "MODE", "EXT", "ROLLED", "SUMMARY"}
}

func (v calculationView) TableRows() [][]string {
	rolled := ""
	if v.Roll != nil {
		rolled = string(v.Roll.Reason)
	}
	return [][]string{{
		common.FormatDate(v.FinalDate),
		common.FormatDate(v.TriggerDate),
		fmt.Sprintf("%d", v.BaseDays),
		string(v.Mode),
		fmt.Sprintf("%d", v.ServiceExtensionDays),
		rolled,
		v.ShortBasis,
	}}
}
