package folio

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// Command is a parsed, not yet validated, command line.
type Command struct {
	Verb   Verb
	Params map[string]string
}

// NewCommand builds a command from alternating parameter names and values.
func NewCommand(v Verb, nameValues ...string) Command {
	c := Command{Verb: v, Params: make(map[string]string, len(nameValues)/2)}
	for i := 0; i+1 < len(nameValues); i += 2 {
		c.Params[nameValues[i]] = nameValues[i+1]
	}
	return c
}

// ParseCommand parses a "Operation-Element Key1=[Value1] Key2=[Value2]" line.
func ParseCommand(line string) (Command, error) {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return Command{}, fmt.Errorf("%w: empty command", ErrSyntax)
	}
	v, err := ParseVerb(tokens[0])
	if err != nil {
		return Command{}, err
	}
	c := Command{Verb: v, Params: make(map[string]string, len(tokens)-1)}
	for _, tok := range tokens[1:] {
		name, value, ok := splitToken(tok)
		if !ok || name == "" {
			return Command{}, fmt.Errorf("%w: %q is not a Name=[Value] pair", ErrSyntax, tok)
		}
		if _, exists := c.Params[name]; exists {
			return Command{}, fmt.Errorf("%w: parameter %s given twice", ErrSyntax, name)
		}
		c.Params[name] = value
	}
	return c, nil
}

// String returns the command line, parameters in their declaration order.
func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.Verb.String())
	for _, p := range c.Verb.Params() {
		if v, ok := c.Params[p.Name]; ok {
			writeParam(&b, p.Name, v)
		}
	}
	return b.String()
}

func writeParam(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString("=[")
	b.WriteString(value)
	b.WriteByte(']')
}

// canonical renders the validated args of a verb: generated values are filled
// in and absent optional values are left out, so that replaying it is
// deterministic.
func canonical(v Verb, args Args) string {
	var b strings.Builder
	b.WriteString(v.String())
	for _, p := range v.Params() {
		if val, ok := args.values[p.Name]; ok {
			writeParam(&b, p.Name, format(val))
		}
	}
	return b.String()
}

// Result is the outcome of a command execution.
type Result struct {
	Verb    Verb
	Command string // the resolved command, or the submitted line on failure.
	Err     error
}

// OK reports whether the command succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Message returns a human readable description of the result.
func (r Result) Message() string {
	if r.Err == nil {
		return r.Verb.String() + ": ok"
	}
	return r.Err.Error()
}

// Execute parses, validates and applies one command line.
func (l *Ledger) Execute(line string) Result {
	c, err := ParseCommand(line)
	if err != nil {
		return Result{Command: line, Err: err}
	}
	return l.Run(c)
}

// Run validates and applies a command. Either the whole command is applied or
// the ledger is left unchanged.
func (l *Ledger) Run(c Command) (r Result) {
	if c.Verb < 0 || c.Verb >= numVerbs {
		return Result{Verb: c.Verb, Err: fmt.Errorf("%w: unknown verb %d", ErrSyntax, int(c.Verb))}
	}
	r = Result{Verb: c.Verb, Command: c.String()}
	args, err := validate(c.Verb.Params(), c.Params)
	if err != nil {
		r.Err = fmt.Errorf("%v: %w", c.Verb, err)
		return r
	}

	defer func() {
		if p := recover(); p != nil {
			l.logger.Warn().Str("command", r.Command).Str("panic", fmt.Sprint(p)).Str("stack", string(debug.Stack())).Msg("command failed")
			r.Err = fmt.Errorf("%w: %v: %v", ErrInternal, c.Verb, p)
		}
	}()
	if err := l.st.apply(c.Verb, args); err != nil {
		r.Err = fmt.Errorf("%v: %w", c.Verb, err)
		return r
	}
	r.Command = canonical(c.Verb, args)
	if l.tracking {
		l.actions = append(l.actions, r.Command)
	}
	l.changed()
	return r
}

// apply runs the handler of the verb.
func (s *state) apply(v Verb, a Args) error {
	switch v {
	case AddPortfolio:
		return s.addPortfolio(a)
	case EditPortfolio:
		return s.editPortfolio(a)
	case DeletePortfolio:
		return s.deletePortfolio(a)
	case TopPortfolio:
		return s.topPortfolio(a)
	case FollowPortfolio:
		return s.followPortfolio(a)
	case UnfollowPortfolio:
		return s.unfollowPortfolio(a)

	case AddStock:
		return s.addStock(a)
	case EditStock:
		return s.editStock(a)
	case DeleteStock:
		return s.deleteStock(a)
	case NoteStock:
		return s.noteStock(a)
	case CloseStock:
		return s.closeStock(a)
	case SplitStock:
		return s.splitStock(a)

	case AddHolding:
		return s.addHolding(a)
	case EditHolding:
		return s.editHolding(a)
	case DeleteHolding:
		return s.deleteHolding(a)
	case NoteHolding:
		return s.noteHolding(a)
	case MoveHolding:
		return s.moveHolding(a)
	case RoundHolding:
		return s.roundHolding(a)

	case AddTrade:
		return s.addTrade(a)
	case EditTrade:
		return s.editTrade(a)
	case DeleteTrade:
		return s.deleteTrade(a)
	case NoteTrade:
		return s.noteTrade(a)

	case AddOrder:
		return s.addOrder(a)
	case EditOrder:
		return s.editOrder(a)
	case SetOrder:
		return s.setOrder(a)
	case DeleteOrder:
		return s.deleteOrder(a)
	case DeleteAllOrder:
		return s.deleteAllOrders(a)

	case AddAlarm:
		return s.addAlarm(a)
	case EditAlarm:
		return s.editAlarm(a)
	case DeleteAlarm:
		return s.deleteAlarm(a)
	case DeleteAllAlarm:
		return s.deleteAllAlarms(a)

	case AddDivident:
		return s.addDividend(a)
	case DeleteDivident:
		return s.deleteDividend(a)
	case DeleteAllDivident:
		return s.deleteAllDividends(a)

	case SetSector:
		return s.setSector(a)
	case EditSector:
		return s.editSector(a)
	case DeleteSector:
		return s.deleteSector(a)
	case FollowSector:
		return s.followSector(a)
	case UnfollowSector:
		return s.unfollowSector(a)
	}
	panic(fmt.Sprintf("unhandled verb %v", v))
}

// ExecuteAll executes the lines in order and returns their results. It stops at
// the first failure when stopOnError is set.
func (l *Ledger) ExecuteAll(lines []string, stopOnError bool) ([]Result, error) {
	results := make([]Result, 0, len(lines))
	var errs []error
	for _, line := range lines {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		r := l.Execute(line)
		results = append(results, r)
		if r.Err != nil {
			errs = append(errs, r.Err)
			if stopOnError {
				break
			}
		}
	}
	return results, errors.Join(errs...)
}
