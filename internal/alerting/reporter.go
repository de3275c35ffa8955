package alerting

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"ticker-drift-alerts/internal/drift"
	"ticker-drift-alerts/internal/market"
)

// Reporter 定义样本与告警的文本输出接口。输出是 fire-and-forget，失败不影响监控循环。
type Reporter interface {
	ReportSample(sample market.Sample)
	ReportAlert(verdict drift.Verdict, current market.Sample)
	ReportStopped()
}

const separator = "********************"

// ConsoleReporter writes plain text blocks to an io.Writer, normally stdout.
type ConsoleReporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleReporter 构造控制台输出器。
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// ReportSample prints the price block emitted on every tick.
func (r *ConsoleReporter) ReportSample(sample market.Sample) {
	r.write(renderSample(sample))
}

// ReportAlert prints the drift message for a triggered verdict, then the
// current price. The price line is printed for silent verdicts too.
func (r *ConsoleReporter) ReportAlert(verdict drift.Verdict, current market.Sample) {
	r.write(renderAlert(verdict, current))
}

// ReportStopped prints the shutdown notice.
func (r *ConsoleReporter) ReportStopped() {
	r.write("\nMonitoring stopped by user.\n")
}

func (r *ConsoleReporter) write(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.out, text)
}

func renderSample(sample market.Sample) string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Current price: %s\n", formatFixed(sample.Price)))
	builder.WriteString(fmt.Sprintf("Change percentage: %s%%\n", formatFixed(sample.PriceChangePercent)))
	builder.WriteString(fmt.Sprintf("Price change: %s\n", formatFixed(sample.PriceChange)))
	builder.WriteString(separator + "\n")
	return builder.String()
}

func renderAlert(verdict drift.Verdict, current market.Sample) string {
	builder := strings.Builder{}
	if verdict.Triggered {
		builder.WriteString(AlertMessage(verdict) + "\n")
	}
	builder.WriteString(fmt.Sprintf("Current price: %s\n\n", formatFixed(current.Price)))
	return builder.String()
}

// AlertMessage renders the one-line drift notice for a triggered verdict.
func AlertMessage(verdict drift.Verdict) string {
	return fmt.Sprintf("\nPrice has %s by %s%% over the period.", verdict.Direction, formatFixed(verdict.AbsPercent))
}

// LogReporter emits the same events as structured zerolog entries.
type LogReporter struct {
	logger zerolog.Logger
}

// NewLogReporter 构造结构化日志输出器。
func NewLogReporter(logger zerolog.Logger) *LogReporter {
	return &LogReporter{logger: logger.With().Str("component", "reporter").Logger()}
}

func (r *LogReporter) ReportSample(sample market.Sample) {
	r.logger.Info().
		Str("symbol", sample.Symbol).
		Str("price", formatFixed(sample.Price)).
		Str("change_pct", formatFixed(sample.PriceChangePercent)).
		Str("change", formatFixed(sample.PriceChange)).
		Msg("sample")
}

func (r *LogReporter) ReportAlert(verdict drift.Verdict, current market.Sample) {
	if !verdict.Triggered {
		r.logger.Info().
			Str("symbol", current.Symbol).
			Str("price", formatFixed(current.Price)).
			Str("drift_pct", formatFixed(verdict.PercentChange)).
			Msg("window closed without alert")
		return
	}
	r.logger.Warn().
		Str("symbol", current.Symbol).
		Str("direction", verdict.Direction).
		Str("drift_pct", formatFixed(verdict.AbsPercent)).
		Str("threshold_pct", formatFixed(verdict.ThresholdPct)).
		Str("reference_price", formatFixed(verdict.Reference.Price)).
		Str("price", formatFixed(current.Price)).
		Msg(strings.TrimSpace(AlertMessage(verdict)))
}

func (r *LogReporter) ReportStopped() {
	r.logger.Info().Msg("Monitoring stopped by user.")
}

// formatFixed rounds the exact binary value half to even, like %.2f.
func formatFixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var (
	_ Reporter = (*ConsoleReporter)(nil)
	_ Reporter = (*LogReporter)(nil)
)
