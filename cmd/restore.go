package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/google/subcommands"
)

type restoreCmd struct {
	input string
}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "restore the ledger from a backup" }
func (*restoreCmd) Usage() string {
	return `folio restore [-i <file>]

  Restores a backup made by "folio backup". A full backup replaces the
  ledger, a partial backup replaces the stocks it contains. The stored ledger
  is only changed when the whole backup is valid.
`
}

func (c *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "-", "backup file, \"-\" for stdin")
}

func (c *restoreCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	data, err := readInput(c.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading backup: %v\n", err)
		return subcommands.ExitFailure
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		if err := restore(a.ledger, data); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := a.save(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Restored %d portfolio(s) and %d stock(s).\n", len(a.ledger.Portfolios()), len(a.ledger.Stocks()))
		return subcommands.ExitSuccess
	})
}

// restore restores data into l. A failed full restore resets the ledger, so
// data is restored on a copy first and l is left untouched on failure.
func restore(l *folio.Ledger, data []byte) error {
	if err := l.Clone().RestoreBackup(data); err != nil {
		return err
	}
	return l.RestoreBackup(data)
}
