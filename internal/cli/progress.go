package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrlokans/birdlearner/internal/progress"
)

func newProgressCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Inspect and manage per-user progress",
	}
	cmd.AddCommand(newProgressListCommand(ctx))
	cmd.AddCommand(newProgressShowCommand(ctx))
	cmd.AddCommand(newProgressExportCommand(ctx))
	cmd.AddCommand(newProgressResetCommand(ctx))
	return cmd
}

func newProgressListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users with saved progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			names, err := app.Store.Usernames(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "No saved progress")
				return nil
			}

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				table, err := app.Store.Snapshot(cmd.Context(), name)
				if err != nil {
					rows = append(rows, []string{name, "-", "-", "error: " + err.Error()})
					continue
				}
				rows = append(rows, []string{
					name,
					fmt.Sprint(table.FamiliarCount()),
					fmt.Sprint(table.Len()),
					fmt.Sprintf("%.0f%%", table.Fraction()*100),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"User", "Familiar", "Birds", "Done"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight}))
			return nil
		},
	}
}

func newProgressShowCommand(ctx *commandContext) *cobra.Command {
	var familiarOnly bool

	cmd := &cobra.Command{
		Use:   "show <username>",
		Short: "Show a user's familiar flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			table, err := snapshot(cmd, app.Store, args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, 0, table.Len())
			for i, b := range table.Birds {
				if familiarOnly && !b.Familiar {
					continue
				}
				mark := ""
				if b.Familiar {
					mark = "yes"
				}
				rows = append(rows, []string{fmt.Sprint(i + 1), b.English, b.Afrikaans, mark})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"#", "English", "Afrikaans", "Familiar"}, rows, []columnAlignment{alignRight}))
			fmt.Fprintf(out, "%s knows %d of %d birds (%.0f%%)\n",
				args[0], table.FamiliarCount(), table.Len(), table.Fraction()*100)
			return nil
		},
	}
	cmd.Flags().BoolVar(&familiarOnly, "familiar", false, "Only list familiar birds")
	return cmd
}

func newProgressExportCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <username>",
		Short: "Write a user's progress as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			table, err := snapshot(cmd, app.Store, args[0])
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
					return err
				}
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := table.WriteCSV(w); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			if outPath != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d birds to %s\n", table.Len(), outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newProgressResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <username>",
		Short: "Mark every bird unfamiliar again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			master, err := app.Loader.Load()
			if err != nil {
				return err
			}
			table, err := app.Store.Reset(cmd.Context(), args[0], master)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset progress for %s (%d birds)\n", args[0], table.Len())
			return nil
		},
	}
}

func snapshot(cmd *cobra.Command, store *progress.Store, username string) (*progress.Table, error) {
	table, err := store.Snapshot(cmd.Context(), username)
	if errors.Is(err, progress.ErrNotFound) {
		return nil, fmt.Errorf("no saved progress for %s", username)
	}
	return table, err
}
