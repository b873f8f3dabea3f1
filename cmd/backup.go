package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/folio"
	"github.com/google/subcommands"
)

type backupCmd struct {
	symbols string
	output  string
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "export the ledger as a backup" }
func (*backupCmd) Usage() string {
	return `folio backup [-s <symbols>] [-o <file>]

  Writes a backup of the ledger, in JSON Lines. With -s only the given
  symbols, comma separated, are exported: a partial backup.

Usage Examples:
$ folio backup -o folio.jsonl
$ folio backup -s KO,PEP
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "s", "", "symbols to export, the whole ledger by default")
	f.StringVar(&c.output, "o", "-", "output file, \"-\" for stdout")
}

func (c *backupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) subcommands.ExitStatus {
		data, err := createBackup(a.ledger, c.symbols)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating backup: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := writeOutput(c.output, data); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing backup: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	})
}

// createBackup returns the full backup of l, or a partial one when symbols is
// not empty.
func createBackup(l *folio.Ledger, symbols string) ([]byte, error) {
	if list := folio.ParseSymbols(symbols); len(list) > 0 {
		return l.CreatePartialBackup(list...)
	}
	return l.CreateBackup()
}

func writeOutput(name string, data []byte) error {
	if name == "-" || name == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(name, data, 0o644)
}

func readInput(name string) ([]byte, error) {
	if name == "-" || name == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}
