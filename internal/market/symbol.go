package market

import (
	"net/url"
	"strings"
)

const (
	// DefaultSymbol is monitored when no valid symbol is configured.
	DefaultSymbol = "ETHUSDT"
	// DefaultBaseURL points at the Binance USDⓈ-M futures REST API.
	DefaultBaseURL = "https://fapi.binance.com"

	tickerPath = "/fapi/v1/ticker/24hr"
)

// DefaultSymbols is the allow-list used when none is configured.
var DefaultSymbols = []string{"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT", "XRPUSDT", "DOGEUSDT"}

// NormalizeSymbol upper-cases and trims a ticker pair.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidSymbol reports whether symbol is a non-empty uppercase alphanumeric pair.
func ValidSymbol(symbol string) bool {
	if symbol == "" {
		return false
	}
	for _, r := range symbol {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// ResolveSymbol normalises the requested symbol and checks it against the
// allow-list. It returns DefaultSymbol and false when the request is unusable.
func ResolveSymbol(requested string, allowed []string) (string, bool) {
	symbol := NormalizeSymbol(requested)
	if !ValidSymbol(symbol) {
		return DefaultSymbol, false
	}
	if len(allowed) == 0 {
		allowed = DefaultSymbols
	}
	for _, candidate := range allowed {
		if NormalizeSymbol(candidate) == symbol {
			return symbol, true
		}
	}
	return DefaultSymbol, false
}

// TickerURL builds the 24h ticker endpoint for symbol.
func TickerURL(baseURL, symbol string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	q := url.Values{}
	q.Set("symbol", NormalizeSymbol(symbol))
	return base + tickerPath + "?" + q.Encode()
}
