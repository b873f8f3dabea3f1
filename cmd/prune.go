package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// pruner is a store keeping the saved versions of a ledger.
type pruner interface {
	Versions(ctx context.Context, key string) (int, error)
	Prune(ctx context.Context, key string, keep int) error
}

type pruneCmd struct {
	keep int
}

func (*pruneCmd) Name() string     { return "prune" }
func (*pruneCmd) Synopsis() string { return "drop old versions of the ledger" }
func (*pruneCmd) Usage() string {
	return `folio prune [-keep <n>]

  Drops the oldest saved versions of the ledger, for stores that keep them
  (sqlite).
`
}

func (c *pruneCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.keep, "keep", 10, "number of versions to keep")
}

func (c *pruneCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.keep < 1 {
		fmt.Fprintln(os.Stderr, "Error: -keep must be at least 1")
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) subcommands.ExitStatus {
		p, ok := a.store.(pruner)
		if !ok {
			fmt.Fprintf(os.Stderr, "Store %q does not keep versions.\n", a.cfg.Store.URL)
			return subcommands.ExitSuccess
		}
		key := a.cfg.Store.Ledger
		before, err := p.Versions(ctx, key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := p.Prune(ctx, key, c.keep); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		after, _ := p.Versions(ctx, key)
		a.logger.Info().Str("ledger", key).Int("before", before).Int("after", after).Msg("ledger pruned")
		fmt.Fprintf(os.Stderr, "Dropped %d version(s) of %q.\n", before-after, key)
		return subcommands.ExitSuccess
	})
}
