package cmd

import (
	"fmt"
	"time"

	"github.com/abhisek/skillquest/internal/engine"
	"github.com/abhisek/skillquest/internal/goals"
	"github.com/abhisek/skillquest/internal/weekly"
	"github.com/spf13/cobra"
)

var questsCmd = &cobra.Command{
	Use:   "quests",
	Short: "Show a student's daily quests, creating them on first request",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := identityFrom(cmd)
		if err != nil {
			return err
		}
		date, err := dateFlag(cmd, "date")
		if err != nil {
			return err
		}
		teacher, _ := cmd.Flags().GetString("teacher")
		count, _ := cmd.Flags().GetInt("count")

		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		rec, err := svc.engine.DailyQuests(cmd.Context(), id, engine.DailyInput{Date: date, Teacher: teacher, Count: count})
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(rec)
		}

		heading(fmt.Sprintf("Quests for %s on %s (grade %d)", id.Student, rec.Key.Date, rec.Grade))
		printQuestHeader()
		for i, q := range rec.Quests {
			printQuestRow(i+1, q)
		}
		fmt.Printf("\nplan %s\n", rec.ID)
		return nil
	},
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Build or show a goal-aligned weekly plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := identityFrom(cmd)
		if err != nil {
			return err
		}
		start, err := dateFlag(cmd, "start")
		if err != nil {
			return err
		}
		goal, _ := cmd.Flags().GetString("goal")
		minutes, _ := cmd.Flags().GetInt("minutes")
		if minutes < 0 {
			return fmt.Errorf("--minutes must not be negative")
		}

		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		rec, err := svc.engine.WeeklyPlan(cmd.Context(), id, engine.WeeklyInput{
			WeekStart:     start,
			Goal:          goal,
			WeeklyMinutes: minutes,
		})
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(rec)
		}
		printWeek(*rec.Weekly)
		return nil
	},
}

func printWeek(p weekly.Plan) {
	heading(fmt.Sprintf("%s · week of %s (grade %d)", p.Goal, p.WeekStart, p.Grade))
	if p.GoalMatch == goals.MatchDefault {
		fmt.Println("No goal matched; using the general plan.")
	}
	fmt.Printf("Focus: %s\n", skillList(p.FocusSkills()))
	fmt.Printf("%d quests per day, %d minutes in total\n\n", p.PerDay, p.TotalMinutes())

	for _, d := range p.Days {
		fmt.Println(d.Date)
		if len(d.Quests) == 0 {
			fmt.Println("  rest day")
			continue
		}
		for i, q := range d.Quests {
			fmt.Printf("  %d. %-16s  %s\n", i+1, q.Type().DisplayName(), q.Title)
		}
	}
}

// dateFlag parses a YYYY-MM-DD flag. Empty means today.
func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(weekly.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", name, v)
	}
	return t, nil
}

func init() {
	studentFlags(questsCmd)
	questsCmd.Flags().String("date", "", "Plan day as YYYY-MM-DD (default today)")
	questsCmd.Flags().String("teacher", "", "Apply this teacher's active class focus")
	questsCmd.Flags().Int("count", 0, "Number of quests (default from config)")

	studentFlags(weekCmd)
	weekCmd.Flags().String("start", "", "First day of the week as YYYY-MM-DD (default today)")
	weekCmd.Flags().String("goal", "", "Career goal, e.g. \"software engineer\"")
	weekCmd.Flags().Int("minutes", 0, "Weekly time budget in minutes")
}
