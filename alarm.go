package folio

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AlarmType is the variant of an alarm.
type AlarmType int

const (
	// AlarmUnder triggers when the price goes down to Level.
	AlarmUnder AlarmType = iota
	// AlarmOver triggers when the price goes up to Level.
	AlarmOver
	// AlarmTrailingSellP triggers when the price drops Params percent below Level.
	// Its evaluation is behind SweepOptions.TrailingAlarms.
	AlarmTrailingSellP
)

var alarmTypeNames = [...]string{AlarmUnder: "Under", AlarmOver: "Over", AlarmTrailingSellP: "TrailingSellP"}

func (t AlarmType) String() string {
	if t < 0 || int(t) >= len(alarmTypeNames) {
		return fmt.Sprintf("AlarmType(%d)", int(t))
	}
	return alarmTypeNames[t]
}

// ParseAlarmType parses an alarm type name.
func ParseAlarmType(s string) (AlarmType, error) {
	for i, name := range alarmTypeNames {
		if name == s {
			return AlarmType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown alarm type %q", s)
}

// Alarm is a price alarm on a stock. Within a stock (Type, Level) is unique.
type Alarm struct {
	Type   AlarmType
	Level  decimal.Decimal
	Note   string
	Params string // type specific, the drop percentage of a TrailingSellP.
}

var hundred = decimal.NewFromInt(100)

// threshold returns the price that triggers the alarm.
func (a Alarm) threshold() decimal.Decimal {
	if a.Type != AlarmTrailingSellP {
		return a.Level
	}
	p, err := decimal.NewFromString(a.Params)
	if err != nil {
		p = decimal.Zero
	}
	return a.Level.Mul(hundred.Sub(p)).Div(hundred)
}

// Distance returns how far, in percent of close, the price is from the alarm
// line. It is negative while the line is not reached, positive once crossed.
func (a Alarm) Distance(close decimal.Decimal) decimal.Decimal {
	if close.IsZero() {
		return decimal.Zero
	}
	switch a.Type {
	case AlarmUnder, AlarmTrailingSellP:
		return a.threshold().Sub(close).Div(close).Mul(hundred)
	case AlarmOver:
		return close.Sub(a.threshold()).Div(close).Mul(hundred)
	}
	panic(fmt.Sprintf("unhandled alarm type %v", a.Type))
}

// Triggered reports whether the day range of q crosses the alarm line.
//
// When the previous close is known, an alarm that was already past its line
// does not trigger again, so that one crossing produces one trigger.
func (a Alarm) Triggered(q Quote) bool {
	line := a.threshold()
	prev := q.PrevClose
	switch a.Type {
	case AlarmUnder, AlarmTrailingSellP:
		if !prev.IsZero() && prev.LessThanOrEqual(line) {
			return false
		}
		return q.SafeLow().LessThanOrEqual(line)
	case AlarmOver:
		if !prev.IsZero() && prev.GreaterThanOrEqual(line) {
			return false
		}
		return q.SafeHigh().GreaterThanOrEqual(line)
	}
	panic(fmt.Sprintf("unhandled alarm type %v", a.Type))
}
