package domain

import "strings"

// Instrument is a tradable symbol offered for selection.
type Instrument struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	OTC    bool   `json:"otc"`
}

// Instruments is the static registry, in display order.
var Instruments = []Instrument{
	// Major pairs
	{Symbol: "EUR/USD", Name: "Euro / US Dollar"},
	{Symbol: "GBP/USD", Name: "British Pound / US Dollar"},
	{Symbol: "USD/JPY", Name: "US Dollar / Japanese Yen"},
	{Symbol: "AUD/USD", Name: "Australian Dollar / US Dollar"},
	{Symbol: "USD/CAD", Name: "US Dollar / Canadian Dollar"},
	{Symbol: "EUR/JPY", Name: "Euro / Japanese Yen"},

	// OTC pairs
	{Symbol: "EUR/USD (OTC)", Name: "EUR/USD OTC", OTC: true},
	{Symbol: "GBP/USD (OTC)", Name: "GBP/USD OTC", OTC: true},
	{Symbol: "USD/JPY (OTC)", Name: "USD/JPY OTC", OTC: true},
	{Symbol: "AUD/CAD (OTC)", Name: "AUD/CAD OTC", OTC: true},
	{Symbol: "EUR/GBP (OTC)", Name: "EUR/GBP OTC", OTC: true},
	{Symbol: "USD/CHF (OTC)", Name: "USD/CHF OTC", OTC: true},
	{Symbol: "USD/INR (OTC)", Name: "USD/INR OTC", OTC: true},
	{Symbol: "USD/BRL (OTC)", Name: "USD/BRL OTC", OTC: true},
	{Symbol: "USD/PKR (OTC)", Name: "USD/PKR OTC", OTC: true},
	{Symbol: "USD/TRY (OTC)", Name: "USD/TRY OTC", OTC: true},
	{Symbol: "USD/IDR (OTC)", Name: "USD/IDR OTC", OTC: true},
	{Symbol: "NZD/USD (OTC)", Name: "NZD/USD OTC", OTC: true},

	// Crypto
	{Symbol: "Bitcoin", Name: "BTC/USD"},
	{Symbol: "Ethereum", Name: "ETH/USD"},
	{Symbol: "Solana", Name: "SOL/USD"},
	{Symbol: "Litecoin", Name: "LTC/USD"},

	// Commodities
	{Symbol: "Gold (XAU/USD)", Name: "Gold"},
	{Symbol: "Silver (XAG/USD)", Name: "Silver"},
	{Symbol: "UKO USD", Name: "Brent Oil"},
	{Symbol: "USO USD", Name: "Crude Oil"},

	// Indices
	{Symbol: "S&P 500", Name: "US 500"},
	{Symbol: "Dow Jones", Name: "US 30"},
	{Symbol: "Nasdaq 100", Name: "USTEC"},
}

var instrumentIndex = func() map[string]int {
	idx := make(map[string]int, len(Instruments))
	for i, inst := range Instruments {
		idx[inst.Symbol] = i
	}
	return idx
}()

// LookupInstrument returns the registry entry for symbol.
func LookupInstrument(symbol string) (Instrument, bool) {
	i, ok := instrumentIndex[symbol]
	if !ok {
		return Instrument{}, false
	}
	return Instruments[i], true
}

// FindInstrument matches symbol against the registry ignoring case and surrounding space.
func FindInstrument(symbol string) (Instrument, bool) {
	symbol = strings.TrimSpace(symbol)
	if inst, ok := LookupInstrument(symbol); ok {
		return inst, true
	}
	for _, inst := range Instruments {
		if strings.EqualFold(inst.Symbol, symbol) {
			return inst, true
		}
	}
	return Instrument{}, false
}

// InstrumentPosition returns the registry index of symbol, or -1.
func InstrumentPosition(symbol string) int {
	if i, ok := instrumentIndex[symbol]; ok {
		return i
	}
	return -1
}

// InstrumentSymbols returns every registry symbol in display order.
func InstrumentSymbols() []string {
	out := make([]string, len(Instruments))
	for i, inst := range Instruments {
		out[i] = inst.Symbol
	}
	return out
}
