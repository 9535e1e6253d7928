package cli

import (
	"errors"

	"github.com/cmlabs-hris/ponto-backend-go/internal/app"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/spf13/cobra"
)

var (
	recalculateDate string
	recalculateAll  bool
	retryLimit      int
)

var recalculateCmd = &cobra.Command{
	Use:   "recalculate",
	Short: "Recompute the records of one date or of every punch date",
	Args:  cobra.NoArgs,
	RunE:  runRecalculate,
}

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Recompute the keys left pending by failed refreshes",
	Args:  cobra.NoArgs,
	RunE:  runRetry,
}

func init() {
	recalculateCmd.Flags().StringVar(&recalculateDate, "date", "", "Work date, YYYY-MM-DD")
	recalculateCmd.Flags().BoolVar(&recalculateAll, "all", false, "Recompute every date that has punches")
	recalculateCmd.MarkFlagsMutuallyExclusive("date", "all")
	recalculateCmd.MarkFlagsOneRequired("date", "all")

	retryCmd.Flags().IntVar(&retryLimit, "limit", 200, "Maximum keys to retry")
}

func runRecalculate(cmd *cobra.Command, args []string) error {
	req := attendance.RecalculateRequest{All: recalculateAll}
	if recalculateDate != "" {
		req.Date = &recalculateDate
	}

	return withApp(cmd.Context(), func(a *app.App) error {
		resp, err := a.Attendance.Recalculate(cmd.Context(), req)
		return reportRecalculation(cmd, resp, err)
	})
}

func runRetry(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app.App) error {
		resp, err := a.Attendance.RetryPending(cmd.Context(), retryLimit)
		return reportRecalculation(cmd, resp, err)
	})
}

// reportRecalculation prints the result even when some keys failed, then
// returns the batch error so the exit status is non-zero.
func reportRecalculation(cmd *cobra.Command, resp attendance.RecalculationResponse, err error) error {
	var batchErr *attendance.BatchError
	if err != nil && !errors.As(err, &batchErr) {
		return err
	}
	if printErr := printJSON(cmd.OutOrStdout(), resp); printErr != nil {
		return printErr
	}
	return err
}
