package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/praxis-legal/docketcalc/internal/application/docket"
	"github.com/praxis-legal/docketcalc/pkg/types/common"
)

// cascadeOptions holds flags for the cascade subcommand.
type cascadeOptions struct {
	Jurisdiction string
	OldDate      string
	NewDate      string
	Dependents   string
}

// dependentDocument is the YAML form of one dependent deadline instance
// supplied to a cascade preview.
type dependentDocument struct {
	ID                   string `yaml:"id"`
	Date                 string `yaml:"date"`
	IsManuallyOverridden bool   `yaml:"is_manually_overridden"`
	AutoRecalculate      *bool  `yaml:"auto_recalculate"`
}

func newCascadeCmd() *cobra.Command {
	opts := &cascadeOptions{}

	cmd := &cobra.Command{
		Use:   "cascade",
		Short: "Preview how a parent deadline's date change shifts its dependents",
		Long: "cascade reads dependent deadline instances from a YAML file, shifts\n" +
			"each unprotected one by the parent's calendar delta, rolls results to\n" +
			"business days, and reports the proposed changes without persisting\n" +
			"anything.",
		Example: `  docketcalc cascade --old 2024-03-01 --new 2024-03-11 --dependents deps.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			oldDate, err := common.ParseDate(opts.OldDate)
			if err != nil {
				return fmt.Errorf("invalid --old: %w", err)
			}
			newDate, err := common.ParseDate(opts.NewDate)
			if err != nil {
				return fmt.Errorf("invalid --new: %w", err)
			}
			jurisdiction := opts.Jurisdiction
			if jurisdiction == "" {
				jurisdiction = cliCtx.Config.Engine.DefaultJurisdiction
			}

			dependents, err := loadDependents(opts.Dependents)
			if err != nil {
				return err
			}

			report, err := cliCtx.Cascade.Propagate(jurisdiction, oldDate, newDate, dependents)
			if err != nil {
				return err
			}
			return PrintResult(cmd, cascadeView{report})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Jurisdiction, "jurisdiction", "j", "", "jurisdiction code (default from config)")
	f.StringVar(&opts.OldDate, "old", "", "parent's previous date (YYYY-MM-DD)")
	f.StringVar(&opts.NewDate, "new", "", "parent's new date (YYYY-MM-DD)")
	f.StringVar(&opts.Dependents, "dependents", "", "YAML file of dependent instances")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	_ = cmd.MarkFlagRequired("dependents")

	return cmd
}

// loadDependents parses the dependents YAML file into deadline instances.
func loadDependents(path string) ([]docket.DeadlineInstance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dependents file: %w", err)
	}
	var docs []dependentDocument
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing dependents file: %w", err)
	}

	out := make([]docket.DeadlineInstance, 0, len(docs))
	for i, doc := range docs {
		d, err := common.ParseDate(doc.Date)
		if err != nil {
			return nil, fmt.Errorf("dependent %d: invalid date %q: %w", i, doc.Date, err)
		}
		id := common.NewID()
		if doc.ID != "" {
			if _, err := uuid.Parse(doc.ID); err != nil {
				return nil, fmt.Errorf("dependent %d: invalid id %q: %w", i, doc.ID, err)
			}
			id = common.ID(doc.ID)
		}
		auto := true
		if doc.AutoRecalculate != nil {
			auto = *doc.AutoRecalculate
		}
		status := docket.StatusAutoManaged
		if doc.IsManuallyOverridden {
			status = docket.StatusOverridden
		}
		out = append(out, docket.DeadlineInstance{
			ID:                   id,
			Date:                 d,
			IsManuallyOverridden: doc.IsManuallyOverridden,
			AutoRecalculate:      auto,
			Status:               status,
		})
	}
	return out, nil
}

// cascadeView renders a CascadeReport for each output format.
type cascadeView struct {
	*docket.CascadeReport
}

func (v cascadeView) String() string {
	out := fmt.Sprintf("Parent moves %s -> %s (%+d days); %d dependent(s), %d affected, %d skipped\n",
		common.FormatDate(v.ParentOldDate), common.FormatDate(v.ParentNewDate),
		v.DaysShift, v.TotalDependents, len(v.Affected), len(v.Skipped))
	for _, c := range v.Affected {
		line := fmt.Sprintf("  %s: %s -> %s", c.InstanceID, common.FormatDate(c.OldDate), common.FormatDate(c.NewDate))
		if c.Rolled != nil {
			line += fmt.Sprintf(" (rolled from %s: %s)", common.FormatDate(c.Rolled.OriginalDate), c.Rolled.Reason)
		}
		out += line + "\n"
	}
	for _, s := range v.Skipped {
		out += fmt.Sprintf("  %s: unchanged at %s (%s)\n", s.InstanceID, common.FormatDate(s.Date), s.Reason)
	}
	return out[:len(out)-1]
}

func (v cascadeView) TableHeaders() []string {
	return []string{"INSTANCE", "OLD DATE", "NEW DATE", "NOTE"}
}

func (v cascadeView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Affected)+len(v.Skipped))
	for _, c := range v.Affected {
		note := ""
		if c.Rolled != nil {
			note = "rolled: " + string(c.Rolled.Reason)
		}
		rows = append(rows, []string{string(c.InstanceID), common.FormatDate(c.OldDate), common.FormatDate(c.NewDate), note})
	}
	for _, s := range v.Skipped {
		rows = append(rows, []string{string(s.InstanceID), common.FormatDate(s.Date), common.FormatDate(s.Date), s.Reason})
	}
	return rows
}
