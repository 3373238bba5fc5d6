package cmd

import (
	"github.com/spf13/cobra"

	"github.com/verso-cli/verso/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "verso",
	Short: "AI translation practice in the terminal",
	Long:  "Verso — an AI-native terminal app for practicing translation between languages, with graded feedback and mini-lessons.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides VERSO_DB env var)")

	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then VERSO_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
