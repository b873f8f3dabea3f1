package folio

import (
	"errors"
	"fmt"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// Quote is the end of day quote of one stock.
//
// Low and High are zero when the provider did not report the intraday range,
// PrevClose is zero when the previous close is unknown.
type Quote struct {
	SRef      SRef
	Date      date.Date
	Close     decimal.Decimal
	Low       decimal.Decimal
	High      decimal.Decimal
	PrevClose decimal.Decimal
}

// SafeLow returns the day low, or the close when the low is unknown.
func (q Quote) SafeLow() decimal.Decimal {
	if q.Low.IsZero() {
		return q.Close
	}
	return q.Low
}

// SafeHigh returns the day high, or the close when the high is unknown.
func (q Quote) SafeHigh() decimal.Decimal {
	if q.High.IsZero() {
		return q.Close
	}
	return q.High
}

// SweepOptions controls the evaluation of a new quote.
type SweepOptions struct {
	// TrailingAlarms enables the evaluation of TrailingSellP alarms.
	TrailingAlarms bool
	// LookbackMin and LookbackMax bound the age in days of the holdings whose
	// position trend is evaluated. The holding pass is off when LookbackMax is 0.
	LookbackMin, LookbackMax int
}

// EventKind is the kind of an evaluation event.
type EventKind int

const (
	AlarmTriggered EventKind = iota
	OrderFilled
	OrderExpired
	PositionWinning
	PositionLosing
)

var eventKindNames = [...]string{
	AlarmTriggered:  "AlarmTriggered",
	OrderFilled:     "OrderFilled",
	OrderExpired:    "OrderExpired",
	PositionWinning: "PositionWinning",
	PositionLosing:  "PositionLosing",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventKindNames[k]
}

// MarshalJSON encodes the kind by name.
func (k EventKind) MarshalJSON() ([]byte, error) { return []byte(`"` + k.String() + `"`), nil }

// Event is emitted by the evaluation of a quote.
type Event struct {
	Kind   EventKind
	Date   date.Date
	SRef   SRef
	PfName string // empty for alarms.
	Type   string // alarm or order type.
	// Level is the alarm level, the order price or the average cost of a position.
	Level decimal.Decimal
	Units decimal.Decimal
	Close decimal.Decimal
	Note  string
}

// MarshalJSON encodes the event as a flat object, empty fields omitted.
func (e Event) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", e.Kind).
		Append("date", e.Date).
		Append("sref", e.SRef).
		Optional("portfolio", e.PfName).
		Optional("type", e.Type).
		Append("level", e.Level).
		Optional("units", e.Units).
		Append("close", e.Close).
		Optional("note", e.Note)
	return w.MarshalJSON()
}

func (e Event) String() string {
	switch e.Kind {
	case AlarmTriggered:
		return fmt.Sprintf("%s %s: %s alarm at %s triggered, close %s", e.Date, e.SRef, e.Type, e.Level, e.Close)
	case OrderFilled:
		return fmt.Sprintf("%s %s: %s %s %s at %s filled in %q", e.Date, e.SRef, e.Type, e.Units, e.SRef.Symbol(), e.Level, e.PfName)
	case OrderExpired:
		return fmt.Sprintf("%s %s: %s order at %s expired in %q", e.Date, e.SRef, e.Type, e.Level, e.PfName)
	case PositionWinning, PositionLosing:
		return fmt.Sprintf("%s %s: position of %s units in %q is %s, cost %s close %s", e.Date, e.SRef, e.Units, e.PfName, e.Type, e.Level, e.Close)
	}
	return e.Kind.String()
}

// Evaluate runs the evaluation sweep of a new quote.
//
// The alarm, order and holding passes are independent: a failing pass is
// logged and reported in the returned error, the other passes still run. Order
// fills and expiries are applied to the ledger as Set-Order and Delete-Order
// commands.
func (l *Ledger) Evaluate(q Quote, opts SweepOptions) ([]Event, error) {
	if l.st.stock(q.SRef) < 0 {
		return nil, fmt.Errorf("%w: stock %s", ErrNotFound, q.SRef)
	}
	if q.Date.IsZero() {
		return nil, paramErr("Date", "is required")
	}
	if !q.Close.IsPositive() {
		return nil, paramErr("Close", "must be positive")
	}
	passes := []struct {
		name string
		run  func(Quote, SweepOptions) ([]Event, error)
	}{
		{"alarms", l.sweepAlarms},
		{"orders", l.sweepOrders},
		{"holdings", l.sweepHoldings},
	}
	var events []Event
	var errs []error
	for _, pass := range passes {
		evs, err := l.runPass(pass.name, pass.run, q, opts)
		events = append(events, evs...)
		if err != nil {
			l.logger.Warn().Str("sref", q.SRef.String()).Str("pass", pass.name).Err(err).Msg("evaluation pass failed")
			errs = append(errs, err)
		}
	}
	return events, errors.Join(errs...)
}

func (l *Ledger) runPass(name string, run func(Quote, SweepOptions) ([]Event, error), q Quote, opts SweepOptions) (evs []Event, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %s pass: %v", ErrInternal, name, p)
		}
	}()
	return run(q, opts)
}

func (l *Ledger) sweepAlarms(q Quote, opts SweepOptions) ([]Event, error) {
	st := l.st.stocks[l.st.stock(q.SRef)]
	var events []Event
	for _, a := range st.Alarms {
		if a.Type == AlarmTrailingSellP && !opts.TrailingAlarms {
			continue
		}
		if !a.Triggered(q) {
			continue
		}
		events = append(events, Event{
			Kind:  AlarmTriggered,
			Date:  q.Date,
			SRef:  q.SRef,
			Type:  a.Type.String(),
			Level: a.Level,
			Close: q.Close,
			Note:  a.Note,
		})
	}
	return events, nil
}

func (l *Ledger) sweepOrders(q Quote, _ SweepOptions) ([]Event, error) {
	type pending struct {
		pf string
		o  Order
	}
	// Commands below mutate the orders, walk a copy.
	var orders []pending
	for _, p := range l.st.portfolios {
		for _, o := range p.Orders {
			if o.SRef == q.SRef {
				orders = append(orders, pending{p.Name, o})
			}
		}
	}

	var events []Event
	var errs []error
	for _, po := range orders {
		o := po.o
		ev := Event{
			Date:   q.Date,
			SRef:   q.SRef,
			PfName: po.pf,
			Type:   o.Type.String(),
			Level:  o.PricePerUnit,
			Units:  o.Units,
			Close:  q.Close,
			Note:   o.Note,
		}
		key := []string{"PfName", po.pf, "SRef", o.SRef.String(), "Price", o.PricePerUnit.String()}
		if !o.Filled() && o.fills(q) {
			ev.Kind = OrderFilled
			events = append(events, ev)
			if r := l.Run(NewCommand(SetOrder, append(key, "FillDate", q.Date.String())...)); r.Err != nil {
				errs = append(errs, r.Err)
			}
		}
		if o.expires(q.Date) {
			ev.Kind = OrderExpired
			events = append(events, ev)
			if r := l.Run(NewCommand(DeleteOrder, key...)); r.Err != nil {
				errs = append(errs, r.Err)
			}
		}
	}
	return events, errors.Join(errs...)
}

// sweepHoldings reports the positions whose average cost has been crossed by
// the price since the previous close.
func (l *Ledger) sweepHoldings(q Quote, opts SweepOptions) ([]Event, error) {
	if opts.LookbackMax <= 0 || q.PrevClose.IsZero() {
		return nil, nil
	}
	if opts.LookbackMin > opts.LookbackMax {
		return nil, fmt.Errorf("lookback min %d is after max %d", opts.LookbackMin, opts.LookbackMax)
	}
	window := date.Lookback(q.Date, opts.LookbackMin, opts.LookbackMax)
	var events []Event
	for _, p := range l.st.portfolios {
		units, cost := decimal.Zero, decimal.Zero
		for _, h := range p.Holdings {
			if h.SRef != q.SRef || !window.Contains(h.PurhaceDate) {
				continue
			}
			units = units.Add(h.Units)
			cost = cost.Add(h.Cost())
		}
		if units.IsZero() {
			continue
		}
		avg := cost.Div(units)
		was, is := q.PrevClose.GreaterThan(avg), q.Close.GreaterThan(avg)
		if was == is {
			continue
		}
		ev := Event{Kind: PositionLosing, Date: q.Date, SRef: q.SRef, PfName: p.Name, Type: "losing", Level: avg, Units: units, Close: q.Close}
		if is {
			ev.Kind, ev.Type = PositionWinning, "winning"
		}
		events = append(events, ev)
	}
	return events, nil
}
