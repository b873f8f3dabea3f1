package folio

import (
	"fmt"
	"slices"
)

// Clone returns an independent copy of the ledger. The copy has no change
// listener and does not track its actions.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{
		st:          l.st.clone(),
		defaultHome: l.defaultHome,
		unsaved:     l.unsaved,
		logger:      l.logger,
	}
}

// Track turns on the action log: every successful command is recorded in its
// resolved form.
func (l *Ledger) Track() {
	l.tracking = true
	l.actions = nil
}

// Actions returns the commands recorded since Track.
func (l *Ledger) Actions() []string { return slices.Clone(l.actions) }

// Replay applies the actions as a whole. If any action fails the ledger is left
// unchanged and the error of the failing action is returned.
func (l *Ledger) Replay(actions []string) error {
	work := l.Clone()
	for i, line := range actions {
		if r := work.Execute(line); r.Err != nil {
			return fmt.Errorf("action %d %q: %w", i+1, line, r.Err)
		}
	}
	if len(actions) == 0 {
		return nil
	}
	l.st = work.st
	if l.tracking {
		l.actions = append(l.actions, actions...)
	}
	l.changed()
	return nil
}

// DryRun is the result of applying a batch of commands to a copy of a ledger.
type DryRun struct {
	Results []Result

	live *Ledger
	copy *Ledger
}

// DryRun applies the lines to a copy of the ledger and reports the outcome of
// each one. Blank lines and lines starting with '#' are skipped. The ledger is
// only changed by Commit.
func (l *Ledger) DryRun(lines []string) *DryRun {
	d := &DryRun{live: l, copy: l.Clone()}
	d.copy.Track()
	d.Results, _ = d.copy.ExecuteAll(lines, false)
	return d
}

// OK reports whether every command succeeded.
func (d *DryRun) OK() bool { return len(d.Failed()) == 0 }

// Failed returns the failed results.
func (d *DryRun) Failed() []Result {
	var failed []Result
	for _, r := range d.Results {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Actions returns the successful commands in their resolved form.
func (d *DryRun) Actions() []string { return d.copy.Actions() }

// Ledger returns the copy the batch has been applied to.
func (d *DryRun) Ledger() *Ledger { return d.copy }

// Commit replays the successful commands against the live ledger.
func (d *DryRun) Commit() error {
	return d.live.Replay(d.copy.Actions())
}
