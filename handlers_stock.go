package folio

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

func (s *state) addStock(a Args) error {
	sref := a.SRef("SRef")
	if sref.IsClosed() {
		return fmt.Errorf("%w: cannot add the closed stock %s", ErrRefused, sref)
	}
	if s.stock(sref) >= 0 {
		return fmt.Errorf("%w: stock %s", ErrDuplicate, sref)
	}
	s.insertStock(NewStock(sref, a.Str("Name"), a.Str("Currency")))
	return nil
}

func (s *state) editStock(a Args) error {
	st, err := s.mustStock(a.SRef("SRef"))
	if err != nil {
		return err
	}
	if a.Has("Name") {
		st.Name = a.Str("Name")
	}
	if a.Has("Currency") {
		st.Currency = a.Str("Currency")
	}
	return nil
}

func (s *state) deleteStock(a Args) error {
	sref := a.SRef("SRef")
	i := s.stock(sref)
	if i < 0 {
		return fmt.Errorf("%w: stock %s", ErrNotFound, sref)
	}
	for _, p := range s.portfolios {
		if p.Follows(sref) || p.Uses(sref) {
			return fmt.Errorf("%w: stock %s is used by portfolio %q", ErrRefused, sref, p.Name)
		}
	}
	s.stocks = slices.Delete(s.stocks, i, i+1)
	return nil
}

func (s *state) noteStock(a Args) error {
	st, err := s.mustStock(a.SRef("SRef"))
	if err != nil {
		return err
	}
	st.Note = a.Str("Note")
	return nil
}

// closeStock turns every open holding of the stock into a trade sold at its
// purchase price, drops its orders and alarms, and moves the stock to the
// closed market.
func (s *state) closeStock(a Args) error {
	sref := a.SRef("SRef")
	closed := sref.Closed()
	if sref.IsClosed() {
		_, err := s.mustStock(sref)
		return err
	}
	i := s.stock(sref)
	if i < 0 {
		if s.stock(closed) >= 0 {
			return nil // already closed
		}
		return fmt.Errorf("%w: stock %s", ErrNotFound, sref)
	}
	if s.stock(closed) >= 0 {
		return fmt.Errorf("%w: stock %s", ErrDuplicate, closed)
	}
	on, tradeId := a.Date("Date"), a.Str("TradeId")
	for _, p := range s.portfolios {
		for _, h := range p.Holdings {
			if h.SRef != sref {
				continue
			}
			if on.Before(h.PurhaceDate) {
				return paramErr("Date", "%s is before the purchase %q of %s", on, h.PurhaceId, h.PurhaceDate)
			}
			if p.trade(h.PurhaceId, tradeId) >= 0 {
				return fmt.Errorf("%w: trade (%q, %q) in %q", ErrDuplicate, h.PurhaceId, tradeId, p.Name)
			}
		}
	}

	for pi := range s.portfolios {
		p := &s.portfolios[pi]
		var open []Holding
		for _, h := range p.Holdings {
			if h.SRef != sref {
				open = append(open, h)
				continue
			}
			h.SRef = closed
			p.Trades = append(p.Trades, Trade{
				Holding: h,
				Sold: Sale{
					TradeId:      tradeId,
					SaleDate:     on,
					PricePerUnit: h.PricePerUnit,
					FeePerUnit:   decimal.Zero,
					CurrencyRate: h.CurrencyRate,
					Note:         a.Str("Note"),
				},
			})
		}
		p.Holdings = open
		for ti := range p.Trades {
			if p.Trades[ti].SRef == sref {
				p.Trades[ti].SRef = closed
			}
		}
		p.Orders = slices.DeleteFunc(p.Orders, func(o Order) bool { return o.SRef == sref })
		for k, f := range p.SRefs {
			if f == sref {
				p.SRefs[k] = closed
			}
		}
	}
	st := &s.stocks[i]
	st.SRef = closed
	st.Alarms = nil
	s.sortStocks()
	return nil
}

// splitStock applies a split of ratio new units for one old unit.
//
// Open batches, including the trades already closed from them, are scaled so
// that the units conservation still holds. Orders and alarm levels follow.
func (s *state) splitStock(a Args) error {
	sref := a.SRef("SRef")
	st, err := s.openStock(sref)
	if err != nil {
		return err
	}
	r := a.Dec("Ratio")
	perUnit := func(d decimal.Decimal) decimal.Decimal { return d.Div(r) }

	for pi := range s.portfolios {
		p := &s.portfolios[pi]
		open := make(map[string]bool)
		for hi := range p.Holdings {
			h := &p.Holdings[hi]
			if h.SRef != sref {
				continue
			}
			open[h.PurhaceId] = true
			splitHolding(h, r)
		}
		for ti := range p.Trades {
			t := &p.Trades[ti]
			if t.SRef != sref || !open[t.PurhaceId] {
				continue
			}
			splitHolding(&t.Holding, r)
			t.Sold.PricePerUnit = perUnit(t.Sold.PricePerUnit)
			t.Sold.FeePerUnit = perUnit(t.Sold.FeePerUnit)
		}
		for oi := range p.Orders {
			o := &p.Orders[oi]
			if o.SRef == sref {
				o.Units = o.Units.Mul(r)
				o.PricePerUnit = perUnit(o.PricePerUnit)
			}
		}
	}
	for ai := range st.Alarms {
		st.Alarms[ai].Level = perUnit(st.Alarms[ai].Level)
	}
	return nil
}

func splitHolding(h *Holding, r decimal.Decimal) {
	h.Units = h.Units.Mul(r)
	h.OriginalUnits = h.OriginalUnits.Mul(r)
	h.PricePerUnit = h.PricePerUnit.Div(r)
	h.FeePerUnit = h.FeePerUnit.Div(r)
	for i := range h.Dividends {
		h.Dividends[i].PaymentPerUnit = h.Dividends[i].PaymentPerUnit.Div(r)
	}
}
