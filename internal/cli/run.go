package cli

import (
	"time"

	"github.com/spf13/cobra"

	"ticker-drift-alerts/internal/app"
)

var (
	runSymbol    string
	runThreshold float64
	runWindow    time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitoring loop until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.RunOptions{
			Symbol: runSymbol,
			Window: runWindow,
		}
		if cmd.Flags().Changed("threshold") {
			opts.ThresholdPct = &runThreshold
		}
		return getApp().Run(cmd.Context(), opts)
	},
}

func init() {
	runCmd.Flags().StringVar(&runSymbol, "symbol", "", "Ticker pair to monitor (defaults to monitor.symbol)")
	runCmd.Flags().Float64Var(&runThreshold, "threshold", 0, "Alert threshold in percent (defaults to monitor.threshold_pct)")
	runCmd.Flags().DurationVar(&runWindow, "window", 0, "Comparison window length (defaults to monitor.window)")
}
