package market

import "time"

// Sample is one ticker observation. Samples are values and are never mutated
// after the fetcher produces them.
type Sample struct {
	Symbol             string
	Price              float64
	PriceChange        float64
	PriceChangePercent float64
	Timestamp          time.Time
}
