package cmd

import (
	"github.com/abhisek/skillquest/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skillquest",
	Short: "Adaptive quests and skill progression for students",
	Long: "SkillQuest generates grade-aware daily quests and goal-aligned weekly plans,\n" +
		"scores completed activities and tracks skill maturity against grade expectations.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides SKILLQUEST_DB env var)")
	pf.String("tables", "", "Directory with expectations.yaml and goals.yaml (overrides SKILLQUEST_TABLES)")
	pf.String("log", "", "Log mode: dev or prod (overrides SKILLQUEST_LOG)")
	pf.String("tenant", "default", "Tenant (school) id")
	pf.Bool("json", false, "Print JSON instead of a table")

	rootCmd.AddCommand(questsCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(careersCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then SKILLQUEST_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, fromEnv string) (string, error) {
	p, _ := cmd.Flags().GetString("db")
	if p == "" {
		p = fromEnv
	}
	if p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
