package app

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"
)

// Show fetches one ticker snapshot and prints it.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	symbol := a.resolveSymbol(opts.Symbol)
	tk := a.newFetcher(symbol, nil)

	sample, err := tk.FetchTicker(ctx)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tSymbol\tLast\tChange\tChange%")
	fmt.Fprintf(
		writer,
		"%s\t%s\t%s\t%s\t%s\n",
		sample.Timestamp.UTC().Format(time.RFC3339),
		sample.Symbol,
		formatFloat(sample.Price, 2),
		formatFloat(sample.PriceChange, 2),
		formatFloat(sample.PriceChangePercent, 2),
	)
	return writer.Flush()
}
