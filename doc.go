// Package folio is the core of a personal stock portfolio ledger. It tracks
// holdings, closed trades, pending orders, price alarms, dividends and sector
// tags in memory, and is designed to be single owner and auditable.
//
// The core functionalities include:
//   - Command protocol: the only way to change a [Ledger] is a textual command
//     "Operation-Element Key1=[Value1] Key2=[Value2]", see [Ledger.Execute].
//     Commands are validated against a declared parameter template before
//     being applied as a whole, or not at all.
//   - Evaluation sweep: a new end of day [Quote] fills or expires orders and
//     triggers alarms, see [Ledger.Evaluate].
//   - Dry run: a batch of commands is applied to a copy of the ledger, and
//     replayed on the live one once accepted, see [Ledger.DryRun].
//   - Backup: the ledger, or a subset of its stocks, is exported to and
//     restored from a human readable JSONL format, see [Ledger.CreateBackup].
//
// This package performs no I/O. Persistence, quote fetching and rendering
// belong to the callers, like the `folio` command-line tool.
package folio
