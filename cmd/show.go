package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type showCmd struct {
	portfolio string
	stocks    bool
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display portfolios and stocks" }
func (*showCmd) Usage() string {
	return `folio show [-p <portfolio>] [-stocks]

  Displays the holdings, orders and trades of a portfolio, every portfolio by
  default. With -stocks, displays the stocks with their sectors and alarms.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "portfolio to display, all by default")
	f.BoolVar(&c.stocks, "stocks", false, "display the stocks instead of the portfolios")
}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) subcommands.ExitStatus {
		if c.stocks {
			printMarkdown(renderer.StocksMarkdown(a.ledger))
			return subcommands.ExitSuccess
		}

		var names []string
		if c.portfolio != "" {
			names = append(names, c.portfolio)
		} else {
			for _, p := range a.ledger.Portfolios() {
				names = append(names, p.Name)
			}
		}
		if len(names) == 0 {
			fmt.Fprintln(os.Stderr, "No portfolio, add one with: folio exec 'Add-Portfolio PfName=[<name>]'")
			return subcommands.ExitSuccess
		}

		var b strings.Builder
		for _, name := range names {
			md, err := renderer.PortfolioMarkdown(a.ledger, name)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitFailure
			}
			b.WriteString(md)
			b.WriteString("\n")
		}
		printMarkdown(b.String())
		return subcommands.ExitSuccess
	})
}
