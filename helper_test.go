package folio

import (
	"io"
	"strconv"
	"testing"

	"github.com/etnz/folio/date"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
)

// cmpOpts compares ledger values: decimals by value, dates by day, nil and
// empty slices as equal.
var cmpOpts = cmp.Options{
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b date.Date) bool { return a == b }),
	cmpopts.EquateEmpty(),
}

// dec is a helper for test to create decimals from const.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// day is a helper for test to create dates from const.
func day(s string) date.Date { return date.MustParse(s) }

// quietLogger discards everything.
var quietLogger = &log.Logger{Level: log.InfoLevel, Writer: &log.IOWriter{Writer: io.Discard}}

// newTestLedger returns a ledger with a portfolio "P" and the stocks NYSE$X and
// NASDAQ$Y.
func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l := NewLedger("EUR")
	l.SetLogger(quietLogger)
	mustExec(t, l,
		"Add-Stock SRef=[NYSE$X] Name=[X Corp] Currency=[USD]",
		"Add-Stock SRef=[NASDAQ$Y] Name=[Y Inc] Currency=[USD]",
		"Add-Portfolio PfName=[P]",
	)
	return l
}

// mustExec executes the lines on l and fails the test on the first failure.
func mustExec(t *testing.T, l *Ledger, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if r := l.Execute(line); !r.OK() {
			t.Fatalf("Execute(%q) error = %v", line, r.Err)
		}
	}
}

// sequentialIDs makes generated identifiers predictable for the test duration.
func sequentialIDs(t *testing.T) {
	t.Helper()
	old := newID
	n := 0
	newID = func(prefix string) string {
		n++
		return prefix + strconv.Itoa(n)
	}
	t.Cleanup(func() { newID = old })
}

// mustPortfolio returns the portfolio or fails the test.
func mustPortfolio(t *testing.T, l *Ledger, name string) Portfolio {
	t.Helper()
	p, ok := l.Portfolio(name)
	if !ok {
		t.Fatalf("Portfolio(%q) not found", name)
	}
	return p
}

// diffLedger returns the differences between the content of two ledgers.
func diffLedger(want, got *Ledger) string {
	return cmp.Diff(want.HomeCurrency(), got.HomeCurrency()) +
		cmp.Diff(want.Sectors(), got.Sectors()) +
		cmp.Diff(want.Stocks(), got.Stocks(), cmpOpts) +
		cmp.Diff(want.Portfolios(), got.Portfolios(), cmpOpts)
}
