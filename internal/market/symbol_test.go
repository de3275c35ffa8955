package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSymbol(t *testing.T) {
	cases := []struct {
		name      string
		requested string
		allowed   []string
		want      string
		ok        bool
	}{
		{name: "allowed lower case", requested: " btcusdt ", want: "BTCUSDT", ok: true},
		{name: "not in list", requested: "PEPEUSDT", want: DefaultSymbol, ok: false},
		{name: "empty", requested: "", want: DefaultSymbol, ok: false},
		{name: "bad characters", requested: "ETH-USDT", want: DefaultSymbol, ok: false},
		{name: "custom list", requested: "adausdt", allowed: []string{"ADAUSDT"}, want: "ADAUSDT", ok: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ResolveSymbol(tc.requested, tc.allowed)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestTickerURL(t *testing.T) {
	assert.Equal(t,
		"https://fapi.binance.com/fapi/v1/ticker/24hr?symbol=ETHUSDT",
		TickerURL("", "ethusdt"),
	)
	assert.Equal(t,
		"http://127.0.0.1:8080/fapi/v1/ticker/24hr?symbol=BTCUSDT",
		TickerURL("http://127.0.0.1:8080/", "BTCUSDT"),
	)
}
