package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/skillquest/internal/engine"
	"github.com/abhisek/skillquest/internal/report"
	"github.com/abhisek/skillquest/internal/store"
	"github.com/abhisek/skillquest/internal/weekly"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a student's skills and weekly plan to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := identityFrom(cmd)
		if err != nil {
			return err
		}
		week, err := dateFlag(cmd, "week")
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = id.Student + ".xlsx"
		}

		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		in, err := svc.engine.Insights(cmd.Context(), id, "")
		if err != nil {
			return err
		}
		rin := report.Input{Student: id.Student, Skills: in.Skills}
		if cmd.Flags().Changed("week") {
			plan, err := storedWeek(cmd, svc.engine, id, week)
			if err != nil {
				return err
			}
			rin.Plan = plan
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		if err := report.Write(f, rin); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", out, err)
		}
		fmt.Printf("Wrote %s\n", out)
		return nil
	},
}

// storedWeek loads the weekly plan that starts on week, or today when week
// is zero.
func storedWeek(cmd *cobra.Command, eng *engine.Engine, id engine.Identity, week time.Time) (*weekly.Plan, error) {
	rec, err := eng.StoredPlan(cmd.Context(), id, store.ModeWeekly, week)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errors.New("no weekly plan stored for that week; create one with `skillquest week`")
	}
	if err != nil {
		return nil, err
	}
	if rec.Weekly == nil {
		return nil, fmt.Errorf("plan %s has no weekly content", rec.ID)
	}
	return rec.Weekly, nil
}

func init() {
	studentFlags(exportCmd)
	exportCmd.Flags().String("week", "", "Include the weekly plan starting on this day (YYYY-MM-DD)")
	exportCmd.Flags().String("out", "", "Output file (default <student>.xlsx)")
}
