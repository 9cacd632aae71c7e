package cmd

import (
	"fmt"

	"github.com/abhisek/skillquest/internal/engine"
	"github.com/abhisek/skillquest/internal/ui/theme"
	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show skill maturity, gated talent signals and the parent narrative",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := identityFrom(cmd)
		if err != nil {
			return err
		}
		goal, _ := cmd.Flags().GetString("goal")

		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		in, err := svc.engine.Insights(cmd.Context(), id, goal)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(in)
		}
		printInsights(in)
		return nil
	},
}

func printInsights(in engine.Insights) {
	heading(fmt.Sprintf("%s · grade %d", in.Identity.Student, in.Identity.Grade))

	if len(in.Skills) == 0 {
		fmt.Println("No activity recorded yet.")
	} else {
		fmt.Printf("%-24s  %6s  %-14s  %-14s  %-22s  %s\n",
			"Skill", "Score", "Band", "Expected", "Compared to grade", "Trend")
		rule(100)
		for _, sv := range in.Skills {
			expected := "-"
			if sv.Guide.Expected != "" {
				expected = sv.Guide.Expected.DisplayName()
			}
			fmt.Printf("%-24s  %6.1f  %-14s  %-14s  %-22s  %s\n",
				sv.Skill.DisplayName(), sv.Score, sv.Guide.Band.DisplayName(), expected,
				sv.Guide.Comparison.Label(), theme.Trend(sv.Trend))
		}
	}

	a := in.Assessment
	fmt.Printf("\n%d activities across %d types and %d skill branches\n",
		a.Coverage.Total, a.Coverage.ActivityTypes, a.Coverage.SkillBranches)
	if !a.Gate.GlobalMet {
		fmt.Println("Not enough evidence yet to describe talents.")
	}
	for _, s := range a.Gate.Unlocked {
		fmt.Printf("  %-28s %-9s %d observations in %d contexts\n", s.Name, s.Confidence, s.Observed, s.Contexts)
	}

	if in.Readiness != nil {
		fmt.Printf("\nReadiness for %s: %.1f\n", in.Readiness.Goal, in.Readiness.Value)
	}

	if n := in.Narrative; n != nil && len(n.Observations) > 0 {
		fmt.Println()
		heading("For parents")
		for _, o := range n.Observations {
			fmt.Println("  " + o)
		}
		if n.Progress != "" {
			fmt.Println("\n  " + n.Progress)
		}
		for _, s := range n.SupportIdeas {
			fmt.Println("  • " + s)
		}
	}
}

func init() {
	studentFlags(insightsCmd)
	insightsCmd.Flags().String("goal", "", "Include readiness for this career goal")
}
