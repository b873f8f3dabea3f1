package folio

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// mustOrder returns the portfolio and the index of its order on SRef at Price.
func (s *state) mustOrder(a Args) (*Portfolio, int, error) {
	p, err := s.mustPortfolio(a.Str("PfName"))
	if err != nil {
		return nil, 0, err
	}
	sref, price := a.SRef("SRef"), a.Dec("Price")
	i := p.order(sref, price)
	if i < 0 {
		return nil, 0, fmt.Errorf("%w: order on %s at %s in %q", ErrNotFound, sref, price, p.Name)
	}
	return p, i, nil
}

func (s *state) addOrder(a Args) error {
	p, err := s.mustPortfolio(a.Str("PfName"))
	if err != nil {
		return err
	}
	sref, typ, price := a.SRef("SRef"), a.OrderType("Type"), a.Dec("Price")
	if _, err := s.openStock(sref); err != nil {
		return err
	}
	if p.order(sref, price) >= 0 {
		return fmt.Errorf("%w: order on %s at %s in %q", ErrDuplicate, sref, price, p.Name)
	}
	for _, q := range s.portfolios {
		if slices.ContainsFunc(q.Orders, func(o Order) bool {
			return o.SRef == sref && o.Type == typ && o.PricePerUnit.Equal(price)
		}) {
			return fmt.Errorf("%w: %v order on %s at %s in %q", ErrDuplicate, typ, sref, price, q.Name)
		}
	}
	p.Orders = append(p.Orders, Order{
		Type:         typ,
		SRef:         sref,
		Units:        a.Dec("Units"),
		PricePerUnit: price,
		LastDate:     a.Date("LastDate"),
		Note:         a.Str("Note"),
	})
	p.follow(sref)
	return nil
}

func (s *state) editOrder(a Args) error {
	p, i, err := s.mustOrder(a)
	if err != nil {
		return err
	}
	o := &p.Orders[i]
	if a.Has("Units") {
		o.Units = a.Dec("Units")
	}
	if a.Has("LastDate") {
		o.LastDate = a.Date("LastDate")
	}
	if a.Has("Note") {
		o.Note = a.Str("Note")
	}
	return nil
}

// setOrder marks the order as filled. The fill date is set once.
func (s *state) setOrder(a Args) error {
	p, i, err := s.mustOrder(a)
	if err != nil {
		return err
	}
	o := &p.Orders[i]
	if o.Filled() {
		return fmt.Errorf("%w: order on %s at %s already filled on %s", ErrRefused, o.SRef, o.PricePerUnit, o.FillDate)
	}
	o.FillDate = a.Date("FillDate")
	return nil
}

func (s *state) deleteOrder(a Args) error {
	p, i, err := s.mustOrder(a)
	if err != nil {
		return err
	}
	p.Orders = slices.Delete(p.Orders, i, i+1)
	return nil
}

func (s *state) deleteAllOrders(a Args) error {
	p, err := s.mustPortfolio(a.Str("PfName"))
	if err != nil {
		return err
	}
	if !a.Has("SRef") {
		p.Orders = nil
		return nil
	}
	sref := a.SRef("SRef")
	p.Orders = slices.DeleteFunc(p.Orders, func(o Order) bool { return o.SRef == sref })
	return nil
}

// mustAlarm returns the stock and the index of its alarm.
func (s *state) mustAlarm(a Args) (*Stock, int, error) {
	st, err := s.mustStock(a.SRef("SRef"))
	if err != nil {
		return nil, 0, err
	}
	t, lvl := a.AlarmType("AlarmType"), a.Dec("Level")
	i := st.alarm(t, lvl)
	if i < 0 {
		return nil, 0, fmt.Errorf("%w: %v alarm at %s on %s", ErrNotFound, t, lvl, st.SRef)
	}
	return st, i, nil
}

func (s *state) addAlarm(a Args) error {
	st, err := s.openStock(a.SRef("SRef"))
	if err != nil {
		return err
	}
	t, lvl := a.AlarmType("AlarmType"), a.Dec("Level")
	if t == AlarmTrailingSellP {
		p, err := decimal.NewFromString(a.Str("Params"))
		if err != nil || !p.IsPositive() || !p.LessThan(hundred) {
			return paramErr("Params", "%v wants a drop percentage in ]0,100[", t)
		}
	}
	if st.alarm(t, lvl) >= 0 {
		return fmt.Errorf("%w: %v alarm at %s on %s", ErrDuplicate, t, lvl, st.SRef)
	}
	st.Alarms = append(st.Alarms, Alarm{Type: t, Level: lvl, Note: a.Str("Note"), Params: a.Str("Params")})
	return nil
}

func (s *state) editAlarm(a Args) error {
	st, i, err := s.mustAlarm(a)
	if err != nil {
		return err
	}
	al := &st.Alarms[i]
	if a.Has("NewLevel") {
		lvl := a.Dec("NewLevel")
		if j := st.alarm(al.Type, lvl); j >= 0 && j != i {
			return fmt.Errorf("%w: %v alarm at %s on %s", ErrDuplicate, al.Type, lvl, st.SRef)
		}
		al.Level = lvl
	}
	if a.Has("Note") {
		al.Note = a.Str("Note")
	}
	return nil
}

func (s *state) deleteAlarm(a Args) error {
	st, i, err := s.mustAlarm(a)
	if err != nil {
		return err
	}
	st.Alarms = slices.Delete(st.Alarms, i, i+1)
	return nil
}

func (s *state) deleteAllAlarms(a Args) error {
	st, err := s.mustStock(a.SRef("SRef"))
	if err != nil {
		return err
	}
	st.Alarms = nil
	return nil
}

func (s *state) setSector(a Args) error {
	s.sectors[a.Int("SectorId")].Name = a.Str("Name")
	return nil
}

// editSector names a field of a sector. An empty name removes the field, the
// stocks classified in it become unassigned.
func (s *state) editSector(a Args) error {
	id, field, name := a.Int("SectorId"), a.Int("FieldId"), a.Str("Name")
	sec := &s.sectors[id]
	if !sec.IsDefined() {
		return fmt.Errorf("%w: sector %d is not defined", ErrNotFound, id)
	}
	sec.Fields[field] = name
	if name == "" {
		for i := range s.stocks {
			if s.stocks[i].Fields[id] == field {
				s.stocks[i].Fields[id] = Unassigned
			}
		}
	}
	return nil
}

func (s *state) deleteSector(a Args) error {
	id := a.Int("SectorId")
	s.sectors[id] = Sector{}
	for i := range s.stocks {
		s.stocks[i].Fields[id] = Unassigned
	}
	return nil
}

func (s *state) followSector(a Args) error {
	st, err := s.mustStock(a.SRef("SRef"))
	if err != nil {
		return err
	}
	id, field := a.Int("SectorId"), a.Int("FieldId")
	if s.sectors[id].Fields[field] == "" {
		return fmt.Errorf("%w: field %d of sector %d is not defined", ErrNotFound, field, id)
	}
	st.Fields[id] = field
	return nil
}

func (s *state) unfollowSector(a Args) error {
	st, err := s.mustStock(a.SRef("SRef"))
	if err != nil {
		return err
	}
	st.Fields[a.Int("SectorId")] = Unassigned
	return nil
}
