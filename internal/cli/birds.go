package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrlokans/birdlearner/internal/entities"
)

func newBirdsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "birds",
		Short: "Inspect the bird dataset",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every bird in the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			master, err := app.Loader.Load()
			if err != nil {
				return err
			}

			headers := append([]string{"#"}, master.Columns...)
			rows := make([][]string, 0, master.Len())
			for i, b := range master.Birds {
				rows = append(rows, birdRow(i+1, master.Columns, b))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight}))
			fmt.Fprintf(out, "%d birds\n", master.Len())
			return nil
		},
	})
	return cmd
}

func birdRow(n int, columns []string, b entities.Bird) []string {
	row := make([]string, 0, len(columns)+1)
	row = append(row, strconv.Itoa(n))
	for _, c := range columns {
		row = append(row, b.Value(c))
	}
	return row
}
