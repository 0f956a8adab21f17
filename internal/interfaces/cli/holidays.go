package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/praxis-legal/docketcalc/internal/domain/calendar"
	"github.com/praxis-legal/docketcalc/pkg/types/common"
)

// holidaysOptions holds flags for the holidays subcommand.
type holidaysOptions struct {
	Jurisdiction string
	Year         int
}

func newHolidaysCmd() *cobra.Command {
	opts := &holidaysOptions{}

	cmd := &cobra.Command{
		Use:     "holidays",
		Short:   "List a jurisdiction's observed court holidays for a year",
		Example: `  docketcalc holidays --jurisdiction federal --year 2024`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			jurisdiction := opts.Jurisdiction
			if jurisdiction == "" {
				jurisdiction = cliCtx.Config.Engine.DefaultJurisdiction
			}
			year := opts.Year
			if year == 0 {
				year = time.Now().Year()
			}

			cal, err := cliCtx.Calendars.Get(jurisdiction)
			if err != nil {
				return err
			}
			holidays, err := cal.Holidays(year)
			if err != nil {
				return err
			}
			return PrintResult(cmd, holidaysView{
				Jurisdiction: jurisdiction,
				Name:         cal.Name(),
				Year:         year,
				Holidays:     holidays,
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Jurisdiction, "jurisdiction", "j", "", "jurisdiction code (default from config)")
	f.IntVar(&opts.Year, "year", 0, "calendar year (default: current year)")

	return cmd
}

// holidaysView renders a year's holiday set for each output format.
type holidaysView struct {
	Jurisdiction string             `json:"jurisdiction"`
	Name         string             `json:"name"`
	Year         int                `json:"year"`
	Holidays     []calendar.Holiday `json:"holidays"`
}

func (v holidaysView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s) observes %d holidays in %d:\n", v.Name, v.Jurisdiction, len(v.Holidays), v.Year)
	for _, h := range v.Holidays {
		fmt.Fprintf(&sb, "  %s  %-9s  %s\n", common.FormatDate(h.Date), h.Date.Weekday(), h.Name)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (v holidaysView) TableHeaders() []string {
	return []string{"DATE", "WEEKDAY", "HOLIDAY"}
}

func (v holidaysView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Holidays))
	for _, h := range v.Holidays {
		rows = append(rows, []string{common.FormatDate(h.Date), h.Date.Weekday().String(), h.Name})
	}
	return rows
}
