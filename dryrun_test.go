package folio

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDryRun(t *testing.T) {
	l := newTestLedger(t)
	before := l.Clone()

	d := l.DryRun([]string{
		"# buy some X",
		"Add-Holding PfName=[P] SRef=[NYSE$X] PurhaceId=[] Date=[2024-01-10] Units=[10] Price=[50]",
		"",
		"Delete-Portfolio PfName=[Nope]",
		"Add-Order PfName=[P] SRef=[NASDAQ$Y] Type=[Buy] Units=[5] Price=[20] LastDate=[2024-03-01]",
	})

	if d.OK() {
		t.Fatalf("DryRun().OK() = true, want a failure")
	}
	if got := len(d.Results); got != 3 {
		t.Fatalf("got %d results, want 3", got)
	}
	failed := d.Failed()
	if len(failed) != 1 || !errors.Is(failed[0].Err, ErrNotFound) {
		t.Errorf("Failed() = %v, want one %v", failed, ErrNotFound)
	}
	if diff := diffLedger(before, l); diff != "" {
		t.Errorf("live ledger changed by a dry run:\n%s", diff)
	}

	actions := d.Actions()
	if len(actions) != 2 {
		t.Fatalf("Actions() = %q, want 2 actions", actions)
	}
	// the generated purchase id is part of the action.
	h := mustPortfolio(t, d.Ledger(), "P").Holdings[0]
	want := "Add-Holding PfName=[P] SRef=[NYSE$X] PurhaceId=[" + h.PurhaceId + "] Date=[2024-01-10] Units=[10] Price=[50]"
	if actions[0] != want {
		t.Errorf("Actions()[0] = %q, want %q", actions[0], want)
	}

	l.Track()
	if err := d.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if diff := diffLedger(d.Ledger(), l); diff != "" {
		t.Errorf("committed ledger mismatch (-dry +live):\n%s", diff)
	}
	if diff := cmp.Diff(actions, l.Actions()); diff != "" {
		t.Errorf("live actions mismatch (-want +got):\n%s", diff)
	}
	if !l.Unsaved() {
		t.Errorf("Unsaved() = false after a commit")
	}
}

func TestReplayIsAtomic(t *testing.T) {
	l := newTestLedger(t)
	before := l.Clone()
	calls := 0
	l.OnChange(func() { calls++ })

	err := l.Replay([]string{
		"Add-Portfolio PfName=[Q]",
		"Add-Portfolio PfName=[Q]",
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("Replay() error = %v, want %v", err, ErrDuplicate)
	}
	if diff := diffLedger(before, l); diff != "" {
		t.Errorf("ledger changed by a failed replay:\n%s", diff)
	}
	if calls != 0 {
		t.Errorf("change listener called %d times, want 0", calls)
	}

	if err := l.Replay([]string{"Add-Portfolio PfName=[Q]", "Top-Portfolio PfName=[Q]"}); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if got := l.Portfolios()[0].Name; got != "Q" {
		t.Errorf("first portfolio = %q, want Q", got)
	}
	if calls != 1 {
		t.Errorf("change listener called %d times, want 1", calls)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	l := newTestLedger(t)
	mustExec(t, l,
		"Add-Holding PfName=[P] SRef=[NYSE$X] PurhaceId=[B1] Date=[2024-01-10] Units=[10] Price=[50]",
		"Add-Divident PfName=[P] PurhaceId=[B1] PaymentPerUnit=[1] ExDivDate=[2024-02-01] PaymentDate=[2024-02-10] Currency=[USD]",
		"Add-Alarm SRef=[NYSE$X] AlarmType=[Under] Level=[40]",
	)
	before := l.Clone()
	c := l.Clone()
	mustExec(t, c,
		"Delete-Divident PfName=[P] PurhaceId=[B1] ExDivDate=[2024-02-01]",
		"Edit-Alarm SRef=[NYSE$X] AlarmType=[Under] Level=[40] NewLevel=[30]",
		"Edit-Holding PfName=[P] PurhaceId=[B1] Price=[51]",
	)
	if diff := diffLedger(before, l); diff != "" {
		t.Errorf("ledger changed through its clone:\n%s", diff)
	}
}
