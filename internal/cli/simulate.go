package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"ticker-drift-alerts/internal/app"
)

var (
	simulateReference float64
	simulateCurrent   float64
	simulateThreshold float64
	simulateSymbol    string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "模拟一次窗口结束时的价格比较并输出告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateReference <= 0 || simulateCurrent <= 0 {
			return errors.New("--reference 与 --current 必须大于 0")
		}

		opts := app.SimulateOptions{
			Symbol:    simulateSymbol,
			Reference: decimal.NewFromFloat(simulateReference),
			Current:   decimal.NewFromFloat(simulateCurrent),
		}
		if cmd.Flags().Changed("threshold") {
			opts.ThresholdPct = &simulateThreshold
		}

		_, err := getApp().SimulateAlert(cmd.Context(), opts)
		return err
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulateReference, "reference", 0, "窗口起点价格")
	simulateCmd.Flags().Float64Var(&simulateCurrent, "current", 0, "窗口终点价格")
	simulateCmd.Flags().Float64Var(&simulateThreshold, "threshold", 0, "Alert threshold in percent (defaults to monitor.threshold_pct)")
	simulateCmd.Flags().StringVar(&simulateSymbol, "symbol", "", "Ticker pair label")
}
