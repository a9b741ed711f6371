package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/birdlearner/internal/scheduler"
)

func newBackupCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up progress tables",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Copy every user's progress into BACKUP_DIR now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			backups := scheduler.NewBackupScheduler(app.Store, app.Config.Backup, app.Logger.Named("backup"))
			dir, err := backups.RunNow(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", dir)
			return nil
		},
	})
	return cmd
}
