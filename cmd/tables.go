package cmd

import (
	"fmt"
	"sort"

	"github.com/abhisek/skillquest/internal/skills"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Inspect the grade expectation and goal tables",
}

var tablesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and validate the tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		t, err := loadTables(cfg.TablesDir)
		if err != nil {
			return err
		}
		source := cfg.TablesDir
		if source == "" {
			source = "built-in"
		}
		fmt.Printf("expectations %s (%s)\n", t.expectations.Version(), source)
		fmt.Printf("goals        %s (%s), %d goals\n", t.goals.Version(), source, len(t.goals.Goals()))
		return nil
	},
}

var tablesGradeCmd = &cobra.Command{
	Use:   "grade <grade>",
	Short: "Show the expected band and emphasis of every skill at a grade",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, err := skills.ParseGrade(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		t, err := loadTables(cfg.TablesDir)
		if err != nil {
			return err
		}
		row := t.expectations.Row(grade)
		if jsonOutput(cmd) {
			return printJSON(row)
		}

		fmt.Printf("%-24s  %-14s  %8s  %s\n", "Skill", "Expected", "Emphasis", "Guide note")
		rule(110)
		for _, e := range row {
			fmt.Printf("%-24s  %-14s  %8.2f  %s\n",
				e.Skill.DisplayName(), e.Band.DisplayName(), e.Emphasis, truncate(e.GuideNarrative, 58))
		}
		return nil
	},
}

var tablesGoalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "List career goals and their skill weights",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		t, err := loadTables(cfg.TablesDir)
		if err != nil {
			return err
		}
		all := append(t.goals.Goals(), t.goals.Fallback())
		if jsonOutput(cmd) {
			return printJSON(all)
		}

		fmt.Printf("%-24s  %s\n", "Goal", "Top skills")
		rule(90)
		for _, g := range all {
			top := g.Skills()
			sort.SliceStable(top, func(i, j int) bool { return g.Weight(top[i]) > g.Weight(top[j]) })
			if len(top) > 3 {
				top = top[:3]
			}
			fmt.Printf("%-24s  %s\n", g.Title, skillList(top))
		}
		return nil
	},
}

func init() {
	tablesCmd.AddCommand(tablesCheckCmd)
	tablesCmd.AddCommand(tablesGradeCmd)
	tablesCmd.AddCommand(tablesGoalsCmd)
}
