package cmd

import (
	"fmt"

	"github.com/abhisek/skillquest/internal/careers"
	"github.com/spf13/cobra"
)

var careersCmd = &cobra.Command{
	Use:   "careers",
	Short: "List the careers a student has unlocked",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := identityFrom(cmd)
		if err != nil {
			return err
		}
		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		unlocks, err := svc.engine.UnlockedCareers(cmd.Context(), id)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(unlocks)
		}
		if len(unlocks) == 0 {
			fmt.Println("No careers unlocked yet.")
			return nil
		}

		fmt.Printf("%-24s  %-9s  %-10s  %s\n", "Career", "Confidence", "Unlocked", "Reason")
		rule(100)
		for _, u := range unlocks {
			fmt.Printf("%-24s  %-9s  %-10s  %s\n",
				u.Title, u.Confidence, u.UnlockedAt.Format("2006-01-02"), truncate(u.Reason, 50))
		}
		fmt.Printf("\n%d careers\n", len(unlocks))
		return nil
	},
}

var careersCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List every career and what unlocks it",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := careers.Catalog()
		if jsonOutput(cmd) {
			return printJSON(catalog)
		}

		fmt.Printf("%-22s  %-24s  %-44s  %5s  %5s\n", "ID", "Title", "Requires", "Acc%", "Score")
		rule(108)
		for _, c := range catalog {
			fmt.Printf("%-22s  %-24s  %-44s  %5d  %5d\n",
				c.ID, truncate(c.Title, 24), truncate(skillList(c.Required), 44), c.MinAccuracy, c.MinScore)
		}
		fmt.Printf("\n%d careers\n", len(catalog))
		return nil
	},
}

func init() {
	studentFlags(careersCmd)
	careersCmd.AddCommand(careersCatalogCmd)
}
