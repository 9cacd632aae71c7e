package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/skillquest/internal/classfocus"
	"github.com/abhisek/skillquest/internal/skills"
	"github.com/spf13/cobra"
)

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Manage a teacher's class focus",
}

var focusSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save a class focus profile",
	Example: "  skillquest focus set --teacher t-1 --grade 7 --boost CREATIVITY=0.2 --boost LANGUAGE=0.1 \\\n" +
		"    --from 2026-03-02 --to 2026-03-15",
	RunE: func(cmd *cobra.Command, args []string) error {
		tenant, _ := cmd.Flags().GetString("tenant")
		teacher, _ := cmd.Flags().GetString("teacher")
		raw, _ := cmd.Flags().GetStringArray("boost")
		inactive, _ := cmd.Flags().GetBool("inactive")

		p := classfocus.Profile{Tenant: tenant, Teacher: teacher, Active: !inactive}
		var err error
		if p.Boosts, err = parseBoosts(raw); err != nil {
			return err
		}
		if g, _ := cmd.Flags().GetString("grade"); g != "" {
			grade, err := skills.ParseGrade(g)
			if err != nil {
				return err
			}
			p.Grade = &grade
		}
		from, err := dateFlag(cmd, "from")
		if err != nil {
			return err
		}
		if !from.IsZero() {
			p.WindowStart = &from
		}
		to, err := dateFlag(cmd, "to")
		if err != nil {
			return err
		}
		if !to.IsZero() {
			end := to.AddDate(0, 0, 1).Add(-1)
			p.WindowEnd = &end
		}

		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		saved, err := svc.engine.SaveFocusProfile(cmd.Context(), p)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(saved)
		}
		fmt.Printf("Saved focus profile %s\n", saved.ID)
		printBoosts(saved.Boosts)
		return nil
	},
}

var focusShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the focus profile in effect for a grade",
	RunE: func(cmd *cobra.Command, args []string) error {
		tenant, _ := cmd.Flags().GetString("tenant")
		teacher, _ := cmd.Flags().GetString("teacher")
		grade := skills.DefaultGrade
		if g, _ := cmd.Flags().GetString("grade"); g != "" {
			parsed, err := skills.ParseGrade(g)
			if err != nil {
				return err
			}
			grade = parsed
		}

		svc, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		p, ok, err := svc.engine.ActiveFocus(cmd.Context(), tenant, teacher, grade)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("No focus profile in effect for grade %d.\n", grade)
			return nil
		}
		if jsonOutput(cmd) {
			return printJSON(p)
		}
		fmt.Printf("Profile %s, updated %s\n", p.ID, p.UpdatedAt.Format("2006-01-02 15:04"))
		if p.WindowEnd != nil {
			fmt.Printf("Ends %s\n", p.WindowEnd.Format("2006-01-02"))
		}
		printBoosts(p.Boosts)
		return nil
	},
}

// parseBoosts reads SKILL=fraction pairs. Range checks are left to the
// profile's own validation.
func parseBoosts(raw []string) (classfocus.Boosts, error) {
	boosts := make(classfocus.Boosts, len(raw))
	for _, r := range raw {
		name, value, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("--boost %q: expected SKILL=fraction", r)
		}
		s, err := skills.ParseSkill(name)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("--boost %q: %w", r, err)
		}
		boosts[s] = f
	}
	return boosts, nil
}

func printBoosts(b classfocus.Boosts) {
	ss := make([]skills.Skill, 0, len(b))
	for s := range b {
		ss = append(ss, s)
	}
	skills.Sort(ss)

	fmt.Printf("%-24s  %s\n", "Skill", "Boost")
	rule(34)
	for _, s := range ss {
		fmt.Printf("%-24s  +%.0f%%\n", s.DisplayName(), b[s]*100)
	}
}

func init() {
	for _, c := range []*cobra.Command{focusSetCmd, focusShowCmd} {
		c.Flags().String("teacher", "", "Teacher id (required)")
		c.Flags().String("grade", "", "Grade the profile applies to (default: every grade for set, 8 for show)")
		_ = c.MarkFlagRequired("teacher")
	}
	focusSetCmd.Flags().StringArray("boost", nil, fmt.Sprintf("Skill boost as SKILL=fraction, up to %.2f; repeatable", classfocus.MaxBoost))
	focusSetCmd.Flags().String("from", "", "First day the profile applies (YYYY-MM-DD)")
	focusSetCmd.Flags().String("to", "", "Last day the profile applies (YYYY-MM-DD)")
	focusSetCmd.Flags().Bool("inactive", false, "Save the profile switched off")

	focusCmd.AddCommand(focusSetCmd)
	focusCmd.AddCommand(focusShowCmd)
}
