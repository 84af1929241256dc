package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/hgb/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var repoDir string

	rootCmd := &cobra.Command{
		Use:     "hgb",
		Short:   "Double-entry bookkeeping after HGB (Soll/Haben, SKR, Bilanz)",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&repoDir, "repo", ".", "books directory")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAccountCommand(&repoDir))
	rootCmd.AddCommand(newPostCommand(&repoDir))
	rootCmd.AddCommand(newBilanzCommand(&repoDir))
	rootCmd.AddCommand(newChartCommand(&repoDir))
	rootCmd.AddCommand(newServeCommand(&repoDir))

	return rootCmd
}
