package quote

import (
	"errors"
	"fmt"
	"os"
	"sort"
)

// Provider is a known quote source. In URL "{symbol}", "{market}" and
// "{token}" are replaced when a stock is fetched.
type Provider struct {
	URL   string
	Paths Paths
	// TokenEnv is the environment variable holding the API token, if any.
	TokenEnv string
}

// Providers are the built-in quote sources, by name.
var Providers = map[string]Provider{
	// eodhd.com real time endpoint, the symbol is the eodhd ticker and the
	// market the eodhd exchange code.
	"eodhd": {
		URL: "https://eodhd.com/api/real-time/{symbol}.{market}?fmt=json&api_token={token}",
		Paths: Paths{
			Close:     "$.close",
			Low:       "$.low",
			High:      "$.high",
			PrevClose: "$.previousClose",
		},
		TokenEnv: "EODHD_API_KEY",
	},
	// tradegate.de quotes in EUR, the symbol is the ISIN. "close" is the
	// previous day close and numbers use a decimal comma.
	"tradegate": {
		URL: "https://www.tradegate.de/refresh.php?isin={symbol}",
		Paths: Paths{
			Close:     "$.last",
			Low:       "$.low",
			High:      "$.high",
			PrevClose: "$.close",
		},
	},
}

// ErrNoToken is returned when the API token of a provider is not set.
var ErrNoToken = errors.New("missing API token")

// LookupProvider returns the provider name and its token, read from its
// environment variable.
func LookupProvider(name string) (p Provider, token string, err error) {
	p, ok := Providers[name]
	if !ok {
		names := make([]string, 0, len(Providers))
		for n := range Providers {
			names = append(names, n)
		}
		sort.Strings(names)
		return p, "", fmt.Errorf("unknown quote provider %q, known providers are %v", name, names)
	}
	if p.TokenEnv != "" {
		token = os.Getenv(p.TokenEnv)
		if token == "" {
			return p, "", fmt.Errorf("quote provider %q: %w, set %s", name, ErrNoToken, p.TokenEnv)
		}
	}
	return p, token, nil
}
