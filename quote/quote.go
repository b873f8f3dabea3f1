// Package quote reads end of day quotes out of arbitrary JSON documents.
//
// Quote providers all have their own layout, each quote field is located in
// the document by a JSONPath expression.
package quote

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// Paths locates the quote fields in a JSON document. An empty path means the
// provider does not report the field.
type Paths struct {
	Date      string `toml:"date"`
	Close     string `toml:"close"`
	Low       string `toml:"low"`
	High      string `toml:"high"`
	PrevClose string `toml:"prev_close"`
}

// DefaultPaths reads a flat {"date", "close", "low", "high", "previousClose"} object.
var DefaultPaths = Paths{
	Date:      "$.date",
	Close:     "$.close",
	Low:       "$.low",
	High:      "$.high",
	PrevClose: "$.previousClose",
}

// Decode reads a JSON document, numbers are kept as json.Number to stay exact.
func Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot decode quote document: %w", err)
	}
	return doc, nil
}

// Extract builds the quote of sref from doc. The close is required, the other
// fields are zero when their path is empty or matches nothing. The quote is
// dated on when the document has no date.
func Extract(sref folio.SRef, on date.Date, doc any, p Paths) (folio.Quote, error) {
	q := folio.Quote{SRef: sref, Date: on}

	if v, ok := lookup(doc, p.Date); ok {
		s, _ := v.(string)
		d, err := date.Parse(s)
		if err != nil {
			return q, fmt.Errorf("%s: %w", p.Date, err)
		}
		q.Date = d
	}
	if q.Date.IsZero() {
		return q, fmt.Errorf("quote of %s has no date", sref)
	}

	v, ok := lookup(doc, p.Close)
	if !ok {
		return q, fmt.Errorf("quote of %s has no close at %q", sref, p.Close)
	}
	var err error
	if q.Close, err = decimalOf(v); err != nil {
		return q, fmt.Errorf("%s: %w", p.Close, err)
	}

	for _, f := range []struct {
		path string
		dst  *decimal.Decimal
	}{
		{p.Low, &q.Low},
		{p.High, &q.High},
		{p.PrevClose, &q.PrevClose},
	} {
		v, ok := lookup(doc, f.path)
		if !ok {
			continue
		}
		if *f.dst, err = decimalOf(v); err != nil {
			return q, fmt.Errorf("%s: %w", f.path, err)
		}
	}
	return q, nil
}

// lookup evaluates path on doc.
func lookup(doc any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, false
	}
	// a filter returns a list of matches, keep the first one.
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil, false
		}
		v = list[0]
	}
	return v, v != nil
}

// decimalOf converts a JSON value to a decimal. Some providers report numbers
// as strings, sometimes with a decimal comma.
func decimalOf(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case json.Number:
		return decimal.NewFromString(x.String())
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), " ", "")
		s = strings.ReplaceAll(s, ",", ".")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid number %q", x)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("%v is not a number", v)
	}
}
