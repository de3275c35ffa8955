package cli

import (
	"github.com/spf13/cobra"

	"ticker-drift-alerts/internal/app"
)

var (
	showSymbol string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Fetch and display one ticker snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Show(cmd.Context(), app.ShowOptions{Symbol: showSymbol})
	},
}

func init() {
	showCmd.Flags().StringVar(&showSymbol, "symbol", "", "Ticker pair to fetch (defaults to monitor.symbol)")
}
