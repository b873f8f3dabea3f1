package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/config"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/quote"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type quoteCmd struct {
	sref      string
	date      string
	close     string
	low       string
	high      string
	prevClose string
	json      bool
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "evaluate end of day quotes" }
func (*quoteCmd) Usage() string {
	return `folio quote [-s <sref>] [-d <date>] [-close <price> [-low <price>] [-high <price>] [-prev <price>]] [-json]

  Evaluates the quote of a stock: alarms are checked, orders are filled or
  expired, and positions are compared to their cost.

  Without -close the quote is fetched from the configured provider. Without
  -s every open stock of the ledger is fetched and evaluated.

Usage Examples:
$ folio quote -s 'NYSE$KO' -close 61.2 -low 60.5 -high 62 -prev 60.9
$ folio quote -json
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sref, "s", "", "stock reference MARKET$SYMBOL, all open stocks by default")
	f.StringVar(&c.date, "d", date.Today().String(), "quote date")
	f.StringVar(&c.close, "close", "", "close price, fetched when empty")
	f.StringVar(&c.low, "low", "", "day low price")
	f.StringVar(&c.high, "high", "", "day high price")
	f.StringVar(&c.prevClose, "prev", "", "previous close price")
	f.BoolVar(&c.json, "json", false, "print the events as JSON lines")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.close != "" && c.sref == "" {
		fmt.Fprintln(os.Stderr, "Error: -close needs a stock, use -s")
		return subcommands.ExitUsageError
	}

	return run(ctx, func(a *app) subcommands.ExitStatus {
		status := subcommands.ExitSuccess
		quotes, err := c.quotes(ctx, a, on)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if len(quotes) == 0 {
				return subcommands.ExitFailure
			}
			status = subcommands.ExitFailure
		}

		events, err := evaluate(a, quotes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			status = subcommands.ExitFailure
		}
		if c.json {
			enc := json.NewEncoder(os.Stdout)
			for _, e := range events {
				enc.Encode(e)
			}
		} else {
			printMarkdown(renderer.EventsMarkdown(events))
		}

		if err := a.save(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return status
	})
}

// quotes returns the quotes to evaluate, built from the flags or fetched.
func (c *quoteCmd) quotes(ctx context.Context, a *app, on date.Date) ([]folio.Quote, error) {
	if c.close != "" {
		q, err := c.flagQuote(on)
		if err != nil {
			return nil, err
		}
		return []folio.Quote{q}, nil
	}

	var srefs []folio.SRef
	if c.sref != "" {
		sref, err := folio.ParseSRef(c.sref)
		if err != nil {
			return nil, err
		}
		srefs = append(srefs, sref)
	} else {
		for _, s := range a.ledger.Stocks() {
			if !s.SRef.IsClosed() {
				srefs = append(srefs, s.SRef)
			}
		}
	}
	return fetchQuotes(ctx, a, a.cfg.Quote, srefs, on)
}

func (c *quoteCmd) flagQuote(on date.Date) (folio.Quote, error) {
	sref, err := folio.ParseSRef(c.sref)
	if err != nil {
		return folio.Quote{}, err
	}
	q := folio.Quote{SRef: sref, Date: on}
	for _, v := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"close", c.close, &q.Close},
		{"low", c.low, &q.Low},
		{"high", c.high, &q.High},
		{"prev", c.prevClose, &q.PrevClose},
	} {
		if v.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(v.raw)
		if err != nil {
			return q, fmt.Errorf("invalid -%s %q: %w", v.name, v.raw, err)
		}
		*v.dst = d
	}
	return q, nil
}

// fetchQuotes fetches the quotes of srefs from the configured provider. A
// stock that cannot be fetched is logged and skipped.
func fetchQuotes(ctx context.Context, a *app, cfg config.QuoteConfig, srefs []folio.SRef, on date.Date) ([]folio.Quote, error) {
	if cfg.URL == "" {
		return nil, errors.New("no quote provider configured, set quote.url or give -close")
	}
	client := quote.Daily(cfg.CacheDir)
	var quotes []folio.Quote
	var errs []error
	for _, sref := range srefs {
		doc, err := quote.Fetch(ctx, client, cfg.URLFor(sref))
		if err == nil {
			var q folio.Quote
			if q, err = quote.Extract(sref, on, doc, cfg.Paths); err == nil {
				quotes = append(quotes, q)
				continue
			}
		}
		a.logger.Warn().Err(err).Str("sref", sref.String()).Msg("cannot fetch quote")
		errs = append(errs, fmt.Errorf("%s: %w", sref, err))
	}
	return quotes, errors.Join(errs...)
}

// evaluate runs the evaluation sweep of each quote. Every quote is evaluated
// even when a previous one fails.
func evaluate(a *app, quotes []folio.Quote) ([]folio.Event, error) {
	opts := a.cfg.Sweep.Options()
	var events []folio.Event
	var errs []error
	for _, q := range quotes {
		evs, err := a.ledger.Evaluate(q, opts)
		a.metrics.ObserveQuote(q, evs)
		events = append(events, evs...)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", q.SRef, err))
		}
	}
	return events, errors.Join(errs...)
}
