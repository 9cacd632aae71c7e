package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abhisek/skillquest/internal/contentgen"
	"github.com/abhisek/skillquest/internal/engine"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score an attempt without recording it",
	Long: "Reads an attempt as JSON ({\"quest\": ..., \"answers\": [...], \"timeSpentSeconds\": n,\n" +
		"\"hintsUsed\": n}) from --file or stdin and prints its score and the careers it would unlock.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := readAttempt(cmd)
		if err != nil {
			return err
		}
		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		res, err := svc.engine.ScoreActivity(a)
		if err != nil {
			return err
		}
		unlocks := svc.engine.Careers(a.Quest, res, nil)
		if jsonOutput(cmd) {
			return printJSON(map[string]any{"result": res, "unlocks": unlocks})
		}
		printResult(res)
		for _, u := range unlocks {
			fmt.Printf("Career: %s (%s) %s\n", u.Title, u.Confidence, u.Reason)
		}
		return nil
	},
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Score an attempt and record it in the student's history",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := identityFrom(cmd)
		if err != nil {
			return err
		}
		a, err := readAttempt(cmd)
		if err != nil {
			return err
		}
		if goal, _ := cmd.Flags().GetString("goal"); goal != "" {
			a.Goal = goal
		}

		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		rec, err := svc.engine.Record(cmd.Context(), id, a)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(rec)
		}

		printResult(rec.Result)
		fmt.Println()
		fmt.Printf("%-24s  %6s  %s\n", "Skill", "Score", "Level")
		rule(44)
		for _, s := range rec.Scores {
			fmt.Printf("%-24s  %6.1f  %s\n", s.Skill.DisplayName(), s.Score, s.Level.DisplayName())
		}
		for _, u := range rec.Unlocks {
			fmt.Printf("\nUnlocked career: %s (%s)\n  %s\n", u.Title, u.Confidence, u.Reason)
		}
		if rec.Readiness != nil {
			fmt.Printf("\nReadiness for %s: %.1f\n", rec.Readiness.Goal, rec.Readiness.Value)
		}
		return nil
	},
}

func printResult(r contentgen.Result) {
	fmt.Printf("%-18s %d/%d (%d%%)\n", "Correct", r.Correct, r.Total, r.Accuracy)
	fmt.Printf("%-18s %d\n", "Score", r.NormalizedScore)
	fmt.Printf("%-18s %ds\n", "Avg time", r.AvgTimePerActivity)
	if len(r.Strengths) > 0 {
		fmt.Printf("%-18s %s\n", "Strengths", strings.Join(r.Strengths, "; "))
	}
	if len(r.GrowthAreas) > 0 {
		fmt.Printf("%-18s %s\n", "Growth areas", strings.Join(r.GrowthAreas, "; "))
	}
}

// readAttempt decodes an attempt from --file, or stdin when the flag is
// empty or "-".
func readAttempt(cmd *cobra.Command) (engine.Attempt, error) {
	var r io.Reader = cmd.InOrStdin()
	if path, _ := cmd.Flags().GetString("file"); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return engine.Attempt{}, fmt.Errorf("open attempt: %w", err)
		}
		defer f.Close()
		r = f
	}
	var a engine.Attempt
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return engine.Attempt{}, fmt.Errorf("decode attempt: %w", err)
	}
	return a, nil
}

func init() {
	scoreCmd.Flags().String("file", "", "Attempt JSON file (default stdin)")

	studentFlags(recordCmd)
	recordCmd.Flags().String("file", "", "Attempt JSON file (default stdin)")
	recordCmd.Flags().String("goal", "", "Recompute readiness for this career goal")
}
