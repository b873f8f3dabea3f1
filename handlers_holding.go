package folio

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// mustHolding returns the portfolio and the index of its open holding.
func (s *state) mustHolding(a Args) (*Portfolio, int, error) {
	p, err := s.mustPortfolio(a.Str("PfName"))
	if err != nil {
		return nil, 0, err
	}
	id := a.Str("PurhaceId")
	i := p.holding(id)
	if i < 0 {
		return nil, 0, fmt.Errorf("%w: holding %q in %q", ErrNotFound, id, p.Name)
	}
	return p, i, nil
}

// mustTrade returns the portfolio and the index of its trade.
func (s *state) mustTrade(a Args) (*Portfolio, int, error) {
	p, err := s.mustPortfolio(a.Str("PfName"))
	if err != nil {
		return nil, 0, err
	}
	pid, tid := a.Str("PurhaceId"), a.Str("TradeId")
	i := p.trade(pid, tid)
	if i < 0 {
		return nil, 0, fmt.Errorf("%w: trade (%q, %q) in %q", ErrNotFound, pid, tid, p.Name)
	}
	return p, i, nil
}

func (s *state) addHolding(a Args) error {
	p, err := s.mustPortfolio(a.Str("PfName"))
	if err != nil {
		return err
	}
	sref := a.SRef("SRef")
	if _, err := s.openStock(sref); err != nil {
		return err
	}
	id := a.Str("PurhaceId")
	if p.hasPurhace(id) {
		return fmt.Errorf("%w: purchase %q in %q", ErrDuplicate, id, p.Name)
	}
	units := a.Dec("Units")
	p.Holdings = append(p.Holdings, Holding{
		SRef:          sref,
		PurhaceId:     id,
		Units:         units,
		OriginalUnits: units,
		PricePerUnit:  a.Dec("Price"),
		FeePerUnit:    a.Dec("Fee"),
		PurhaceDate:   a.Date("Date"),
		CurrencyRate:  a.DecOr("CurrencyRate", one),
		Note:          a.Str("Note"),
	})
	p.follow(sref)
	return nil
}

// editHolding changes the purchase side of a batch. The trades already closed
// from the batch follow, except for the units that can only change while
// nothing has been sold.
func (s *state) editHolding(a Args) error {
	p, i, err := s.mustHolding(a)
	if err != nil {
		return err
	}
	h := &p.Holdings[i]
	sold := slices.ContainsFunc(p.Trades, func(t Trade) bool { return t.PurhaceId == h.PurhaceId })
	if a.Has("Units") && (sold || h.Sold()) {
		return fmt.Errorf("%w: units of %q cannot change once partly sold", ErrUnitMismatch, h.PurhaceId)
	}
	if a.Has("Date") {
		for _, t := range p.Trades {
			if t.PurhaceId == h.PurhaceId && t.Sold.SaleDate.Before(a.Date("Date")) {
				return paramErr("Date", "is after the sale %q of %s", t.Sold.TradeId, t.Sold.SaleDate)
			}
		}
	}

	update := func(h *Holding) {
		if a.Has("Date") {
			h.PurhaceDate = a.Date("Date")
		}
		if a.Has("Price") {
			h.PricePerUnit = a.Dec("Price")
		}
		if a.Has("Fee") {
			h.FeePerUnit = a.Dec("Fee")
		}
		if a.Has("CurrencyRate") {
			h.CurrencyRate = a.Dec("CurrencyRate")
		}
	}
	if a.Has("Units") {
		h.Units = a.Dec("Units")
		h.OriginalUnits = h.Units
	}
	update(h)
	for ti := range p.Trades {
		if p.Trades[ti].PurhaceId == h.PurhaceId {
			update(&p.Trades[ti].Holding)
		}
	}
	return nil
}

func (s *state) deleteHolding(a Args) error {
	p, i, err := s.mustHolding(a)
	if err != nil {
		return err
	}
	p.Holdings = slices.Delete(p.Holdings, i, i+1)
	return nil
}

func (s *state) noteHolding(a Args) error {
	p, i, err := s.mustHolding(a)
	if err != nil {
		return err
	}
	p.Holdings[i].Note = a.Str("Note")
	return nil
}

func (s *state) moveHolding(a Args) error {
	p, i, err := s.mustHolding(a)
	if err != nil {
		return err
	}
	to, err := s.mustPortfolio(a.Str("ToPfName"))
	if err != nil {
		return err
	}
	h := p.Holdings[i]
	if to.Name == p.Name {
		return paramErr("ToPfName", "is the source portfolio")
	}
	if slices.ContainsFunc(p.Trades, func(t Trade) bool { return t.PurhaceId == h.PurhaceId }) {
		return fmt.Errorf("%w: purchase %q has trades in %q", ErrRefused, h.PurhaceId, p.Name)
	}
	if to.hasPurhace(h.PurhaceId) {
		return fmt.Errorf("%w: purchase %q in %q", ErrDuplicate, h.PurhaceId, to.Name)
	}
	p.Holdings = slices.Delete(p.Holdings, i, i+1)
	to.Holdings = append(to.Holdings, h)
	to.follow(h.SRef)
	return nil
}

// roundHolding sells Units of a batch. The sold units become a trade, the
// remainder stays open.
func (s *state) roundHolding(a Args) error {
	p, i, err := s.mustHolding(a)
	if err != nil {
		return err
	}
	h := &p.Holdings[i]
	units, on, tid := a.Dec("Units"), a.Date("Date"), a.Str("TradeId")
	if units.GreaterThan(h.Units) {
		return fmt.Errorf("%w: selling %s of %q that has %s units", ErrUnitMismatch, units, h.PurhaceId, h.Units)
	}
	if on.Before(h.PurhaceDate) {
		return paramErr("Date", "%s is before the purchase date %s", on, h.PurhaceDate)
	}
	if p.trade(h.PurhaceId, tid) >= 0 {
		return fmt.Errorf("%w: trade (%q, %q) in %q", ErrDuplicate, h.PurhaceId, tid, p.Name)
	}

	t := Trade{
		Holding: h.clone(),
		Sold: Sale{
			TradeId:      tid,
			SaleDate:     on,
			PricePerUnit: a.Dec("Price"),
			FeePerUnit:   a.Dec("Fee"),
			CurrencyRate: a.DecOr("CurrencyRate", one),
			Note:         a.Str("Note"),
		},
	}
	t.Units = units
	h.Units = h.Units.Sub(units)
	if h.Units.IsZero() {
		p.Holdings = slices.Delete(p.Holdings, i, i+1)
	}
	p.Trades = append(p.Trades, t)
	return nil
}

// addTrade records a historical trade. A batch already known to the portfolio
// provides the original units, otherwise they default to the sold units.
func (s *state) addTrade(a Args) error {
	p, err := s.mustPortfolio(a.Str("PfName"))
	if err != nil {
		return err
	}
	sref := a.SRef("SRef")
	if _, err := s.mustStock(sref); err != nil {
		return err
	}
	pid, tid, units := a.Str("PurhaceId"), a.Str("TradeId"), a.Dec("Units")
	if p.trade(pid, tid) >= 0 {
		return fmt.Errorf("%w: trade (%q, %q) in %q", ErrDuplicate, pid, tid, p.Name)
	}
	if a.Date("SaleDate").Before(a.Date("PurhaceDate")) {
		return paramErr("SaleDate", "is before the purchase date %s", a.Date("PurhaceDate"))
	}

	original, used := a.DecOr("OriginalUnits", units), decimal.Zero
	if batch, ok := p.batch(pid); ok {
		if batch.SRef != sref {
			return paramErr("SRef", "purchase %q is on %s", pid, batch.SRef)
		}
		if a.Has("OriginalUnits") && !a.Dec("OriginalUnits").Equal(batch.OriginalUnits) {
			return fmt.Errorf("%w: purchase %q has %s original units", ErrUnitMismatch, pid, batch.OriginalUnits)
		}
		original = batch.OriginalUnits
		used = p.soldUnits(pid)
		if i := p.holding(pid); i >= 0 {
			used = used.Add(p.Holdings[i].Units)
		}
	}
	if used.Add(units).GreaterThan(original) {
		return fmt.Errorf("%w: purchase %q has %s units left", ErrUnitMismatch, pid, original.Sub(used))
	}

	p.Trades = append(p.Trades, Trade{
		Holding: Holding{
			SRef:          sref,
			PurhaceId:     pid,
			Units:         units,
			OriginalUnits: original,
			PricePerUnit:  a.Dec("PurhacePrice"),
			FeePerUnit:    a.Dec("PurhaceFee"),
			PurhaceDate:   a.Date("PurhaceDate"),
			CurrencyRate:  a.DecOr("PurhaceRate", one),
		},
		Sold: Sale{
			TradeId:      tid,
			SaleDate:     a.Date("SaleDate"),
			PricePerUnit: a.Dec("SalePrice"),
			FeePerUnit:   a.Dec("SaleFee"),
			CurrencyRate: a.DecOr("SaleRate", one),
			Note:         a.Str("Note"),
		},
	})
	return nil
}

// batch returns the purchase side of a batch, from its holding or one of its
// trades.
func (p *Portfolio) batch(pid string) (Holding, bool) {
	if i := p.holding(pid); i >= 0 {
		return p.Holdings[i], true
	}
	for _, t := range p.Trades {
		if t.PurhaceId == pid {
			return t.Holding, true
		}
	}
	return Holding{}, false
}

func (s *state) editTrade(a Args) error {
	p, i, err := s.mustTrade(a)
	if err != nil {
		return err
	}
	t := &p.Trades[i]
	if a.Has("SaleDate") && a.Date("SaleDate").Before(t.PurhaceDate) {
		return paramErr("SaleDate", "is before the purchase date %s", t.PurhaceDate)
	}
	if a.Has("SaleDate") {
		t.Sold.SaleDate = a.Date("SaleDate")
	}
	if a.Has("SalePrice") {
		t.Sold.PricePerUnit = a.Dec("SalePrice")
	}
	if a.Has("SaleFee") {
		t.Sold.FeePerUnit = a.Dec("SaleFee")
	}
	if a.Has("SaleRate") {
		t.Sold.CurrencyRate = a.Dec("SaleRate")
	}
	return nil
}

func (s *state) deleteTrade(a Args) error {
	p, i, err := s.mustTrade(a)
	if err != nil {
		return err
	}
	p.Trades = slices.Delete(p.Trades, i, i+1)
	return nil
}

func (s *state) noteTrade(a Args) error {
	p, i, err := s.mustTrade(a)
	if err != nil {
		return err
	}
	p.Trades[i].Sold.Note = a.Str("Note")
	return nil
}

func (s *state) addDividend(a Args) error {
	p, i, err := s.mustHolding(a)
	if err != nil {
		return err
	}
	h := &p.Holdings[i]
	exDiv := a.Date("ExDivDate")
	if h.dividend(exDiv) >= 0 {
		return fmt.Errorf("%w: dividend of %s on %q", ErrDuplicate, exDiv, h.PurhaceId)
	}
	if a.Date("PaymentDate").Before(exDiv) {
		return paramErr("PaymentDate", "is before the ex-dividend date %s", exDiv)
	}
	h.addDividend(Dividend{
		PaymentPerUnit: a.Dec("PaymentPerUnit"),
		ExDivDate:      exDiv,
		PaymentDate:    a.Date("PaymentDate"),
		CurrencyRate:   a.DecOr("CurrencyRate", one),
		Currency:       a.Str("Currency"),
	})
	return nil
}

func (s *state) deleteDividend(a Args) error {
	p, i, err := s.mustHolding(a)
	if err != nil {
		return err
	}
	h := &p.Holdings[i]
	j := h.dividend(a.Date("ExDivDate"))
	if j < 0 {
		return fmt.Errorf("%w: dividend of %s on %q", ErrNotFound, a.Date("ExDivDate"), h.PurhaceId)
	}
	h.Dividends = slices.Delete(h.Dividends, j, j+1)
	return nil
}

func (s *state) deleteAllDividends(a Args) error {
	p, i, err := s.mustHolding(a)
	if err != nil {
		return err
	}
	p.Holdings[i].Dividends = nil
	return nil
}
