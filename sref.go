package folio

import (
	"fmt"
	"slices"
	"strings"
)

// ClosedMarket is the sentinel market of delisted stocks.
const ClosedMarket = "CLOSED"

// Markets lists the known market identifiers.
var Markets = []string{
	"NASDAQ", "NYSE", "AMEX", "OTC", "TSX", "LSE", "XETRA", "FRA", "EURONEXT",
	"OMXH", "OMXS", "OMXC", "OMXI", "OSE", "SIX", "BME", "BIT", "ASX", "TSE", "HKEX",
	ClosedMarket,
}

// SRef is the canonical "Market$Symbol" key of a stock.
type SRef string

// NewSRef builds the reference of symbol on market. It is not validated.
func NewSRef(market, symbol string) SRef { return SRef(market + "$" + symbol) }

// ParseSRef parses and validates a stock reference.
func ParseSRef(s string) (SRef, error) {
	market, symbol, ok := strings.Cut(s, "$")
	if !ok {
		return "", fmt.Errorf("%q is not in the Market$Symbol form", s)
	}
	if !slices.Contains(Markets, market) {
		return "", fmt.Errorf("unknown market %q", market)
	}
	if symbol == "" || len(symbol) > 20 {
		return "", fmt.Errorf("symbol must be 1 to 20 characters")
	}
	for _, r := range symbol {
		if !isSymbolRune(r) {
			return "", fmt.Errorf("symbol %q contains invalid character %q", symbol, r)
		}
	}
	return SRef(s), nil
}

func isSymbolRune(r rune) bool {
	return r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '.' || r == '-' || r == '_'
}

// Market returns the market part of the reference.
func (s SRef) Market() string {
	market, _, _ := strings.Cut(string(s), "$")
	return market
}

// Symbol returns the symbol part of the reference.
func (s SRef) Symbol() string {
	_, symbol, _ := strings.Cut(string(s), "$")
	return symbol
}

// IsClosed reports whether the reference is one of a delisted stock.
func (s SRef) IsClosed() bool { return s.Market() == ClosedMarket }

// Closed returns the reference the stock gets once closed.
func (s SRef) Closed() SRef { return NewSRef(ClosedMarket, s.Symbol()) }

func (s SRef) String() string { return string(s) }
