package date

// Range represents a range of dates.
type Range struct{ From, To Date }

// Lookback returns the range of days that are between min and max days old on d.
func Lookback(d Date, min, max int) Range {
	return Range{From: d.Add(-max), To: d.Add(-min)}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

func (r Range) String() string { return r.From.String() + ".." + r.To.String() }
