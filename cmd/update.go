package cmd

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"everysearch/internal/domain"
	"everysearch/internal/updater"
)

// NewCmdUpdate refreshes the file-name index
func NewCmdUpdate(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "update-db",
		Aliases: []string{"updatedb"},
		Short:   "Refresh the file index",
		Long: heredoc.Doc(`
			Run the configured update command (pkexec updatedb by default)
			and report how it ended. A graphical authentication prompt is
			shown by pkexec; dismissing it reports the update as cancelled.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u := updater.New(a.bus, a.cfg.UpdateCommand, a.cfg.UpdateTimeout())
			fmt.Fprintf(cmd.ErrOrStderr(), "Running %s...\n", strings.Join(a.cfg.UpdateCommand, " "))

			out, err := u.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%.1fs)\n", out.Status(), out.Elapsed.Seconds())
			if out.Result != domain.UpdateSucceeded {
				return fmt.Errorf("update %s", out.Result)
			}
			return nil
		},
	}
}
