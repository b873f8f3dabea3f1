package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type execCmd struct {
	file string
	dry  bool
	partial bool
}

func (*execCmd) Name() string     { return "exec" }
func (*execCmd) Synopsis() string { return "execute ledger commands" }
func (*execCmd) Usage() string {
	return `folio exec [-f <file>] [-dry] [-partial] [<command>]

  Executes ledger commands. The command is given as arguments, or read one
  per line from a file ("-" for the standard input).

  The batch is first run on a copy of the ledger. It is committed to the
  ledger and saved only when every command succeeds. With -partial the
  successful commands are committed even if others failed.

Usage Examples:
$ folio exec 'Add-Portfolio PfName=[Main]'
$ folio exec -f orders.txt -partial
`
}

func (c *execCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "file of commands, one per line, \"-\" for stdin")
	f.BoolVar(&c.dry, "dry", false, "only report what would be executed")
	f.BoolVar(&c.partial, "partial", false, "commit the successful commands even when others fail")
}

func (c *execCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var lines []string
	switch {
	case c.file != "" && f.NArg() > 0:
		fmt.Fprintln(os.Stderr, "Error: give either a file or a command")
		return subcommands.ExitUsageError
	case c.file == "-":
		lines = readLines(os.Stdin)
	case c.file != "":
		file, err := os.Open(c.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening commands: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		lines = readLines(file)
	case f.NArg() > 0:
		lines = []string{strings.Join(f.Args(), " ")}
	default:
		fmt.Fprintln(os.Stderr, "Error: no command to execute")
		return subcommands.ExitUsageError
	}

	return run(ctx, func(a *app) subcommands.ExitStatus {
		d, committed, err := execute(a.ledger, lines, c.dry, c.partial)
		a.metrics.ObserveResults(d.Results)
		printMarkdown(renderer.ResultsMarkdown(d.Results))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if !committed {
			fmt.Fprintln(os.Stderr, "Nothing committed.")
		}
		if err := a.save(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if !d.OK() {
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	})
}

// execute dry runs the lines on l, then commits them when they all succeeded.
// With partial the successful commands are committed anyway. Nothing is
// committed when dry is set.
func execute(l *folio.Ledger, lines []string, dry, partial bool) (d *folio.DryRun, committed bool, err error) {
	d = l.DryRun(lines)
	if dry || (!partial && !d.OK()) || len(d.Actions()) == 0 {
		return d, false, nil
	}
	if err := d.Commit(); err != nil {
		return d, false, err
	}
	return d, true, nil
}

// readLines returns the lines of r. Reading stops at the first error.
func readLines(r io.Reader) []string {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}
