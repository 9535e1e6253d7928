package cli

import (
	"fmt"
	"os"

	"github.com/cmlabs-hris/ponto-backend-go/internal/app"
	"github.com/spf13/cobra"
)

var importICSCmd = &cobra.Command{
	Use:   "import-ics <file>",
	Short: "Import the all-day events of an iCalendar file as holidays",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportICS,
}

func runImportICS(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	return withApp(cmd.Context(), func(a *app.App) error {
		resp, err := a.Calendar.ImportICS(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}
		if resp.Warning != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", *resp.Warning)
		}
		return printJSON(cmd.OutOrStdout(), resp)
	})
}
