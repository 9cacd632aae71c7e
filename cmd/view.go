package cmd

import (
	"github.com/abhisek/skillquest/internal/planview"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse a stored weekly plan and skill summary in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := identityFrom(cmd)
		if err != nil {
			return err
		}
		week, err := dateFlag(cmd, "week")
		if err != nil {
			return err
		}

		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		plan, err := storedWeek(cmd, svc.engine, id, week)
		if err != nil {
			return err
		}
		in, err := svc.engine.Insights(cmd.Context(), id, "")
		if err != nil {
			return err
		}
		return planview.Run(planview.New(id.Student, *plan, in.Skills))
	},
}

func init() {
	studentFlags(viewCmd)
	viewCmd.Flags().String("week", "", "First day of the stored week (YYYY-MM-DD, default today)")
}
