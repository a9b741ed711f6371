// Package cli is the birdlearner command line: the web server plus a few
// maintenance commands that work on the same dataset and progress store.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/birdlearner/internal/entrypoint"
)

// NewRootCommand returns the birdlearner command. Running it without a
// subcommand starts the web server.
func NewRootCommand(version string, factory AppFactory) *cobra.Command {
	ctx := newCommandContext(factory)

	serve := func(cmd *cobra.Command, args []string) error {
		app, err := ctx.ensureApp()
		if err != nil {
			return err
		}
		return entrypoint.Run(cmd.Context(), app, version)
	}

	rootCmd := &cobra.Command{
		Use:           "birdlearner",
		Short:         "Learn bird names with flashcards and quizzes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.close()
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE:  serve,
	})
	rootCmd.AddCommand(newBirdsCommand(ctx))
	rootCmd.AddCommand(newProgressCommand(ctx))
	rootCmd.AddCommand(newBackupCommand(ctx))

	return rootCmd
}
