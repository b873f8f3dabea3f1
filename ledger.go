package folio

import (
	"fmt"
	"slices"
	"strings"

	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
)

// Ledger is the in-memory store of portfolios, stocks and sectors.
//
// Commands are the only way to mutate a Ledger, see Execute. The read accessors
// return copies, changing them has no effect on the ledger.
//
// A Ledger is not safe for concurrent use: it is owned by one logical thread of
// execution.
type Ledger struct {
	st state

	defaultHome string
	unsaved     bool
	onChange    func()

	tracking bool
	actions  []string

	logger *log.Logger
}

// state is the whole ledger content. It is made of values only, so that a copy
// of it is a cheap and independent snapshot.
type state struct {
	home       string
	portfolios []Portfolio
	stocks     []Stock // sorted by SRef
	sectors    [MaxSectors]Sector
}

func (s state) clone() state {
	s.portfolios = slices.Clone(s.portfolios)
	for i := range s.portfolios {
		s.portfolios[i] = s.portfolios[i].clone()
	}
	s.stocks = slices.Clone(s.stocks)
	for i := range s.stocks {
		s.stocks[i] = s.stocks[i].clone()
	}
	return s
}

// NewLedger creates an empty ledger whose home currency is home.
func NewLedger(home string) *Ledger {
	return &Ledger{
		st:          state{home: home},
		defaultHome: home,
		logger:      &log.DefaultLogger,
	}
}

// SetLogger sets the logger used to report warnings.
func (l *Ledger) SetLogger(logger *log.Logger) { l.logger = logger }

// OnChange registers f to be called after every successful mutation. It
// notifies the owner that the ledger content is not saved.
func (l *Ledger) OnChange(f func()) { l.onChange = f }

// Unsaved reports whether the ledger changed since it was last saved or loaded.
func (l *Ledger) Unsaved() bool { return l.unsaved }

func (l *Ledger) changed() {
	l.unsaved = true
	if l.onChange != nil {
		l.onChange()
	}
}

// OnDataInit resets the ledger to an empty state.
func (l *Ledger) OnDataInit() {
	l.st = state{home: l.defaultHome}
	l.unsaved = false
}

// OnDataSaveStorage returns the content to flush to storage and marks the
// ledger as saved.
func (l *Ledger) OnDataSaveStorage() ([]byte, error) {
	data, err := l.CreateBackup()
	if err != nil {
		return nil, err
	}
	l.unsaved = false
	return data, nil
}

// OnDataLoadStorage replaces the ledger with content previously returned by
// OnDataSaveStorage. Empty content initializes an empty ledger.
func (l *Ledger) OnDataLoadStorage(data []byte) error {
	defer func() { l.unsaved = false }()
	if len(strings.TrimSpace(string(data))) == 0 {
		l.OnDataInit()
		return nil
	}
	return l.RestoreBackup(data)
}

// HomeCurrency returns the ledger home currency.
func (l *Ledger) HomeCurrency() string { return l.st.home }

// Portfolios returns all portfolios, in their display order.
func (l *Ledger) Portfolios() []Portfolio {
	return l.st.clone().portfolios
}

// Portfolio returns the portfolio named name.
func (l *Ledger) Portfolio(name string) (Portfolio, bool) {
	i := l.st.portfolio(name)
	if i < 0 {
		return Portfolio{}, false
	}
	return l.st.portfolios[i].clone(), true
}

// Stocks returns all stocks, sorted by reference.
func (l *Ledger) Stocks() []Stock {
	return l.st.clone().stocks
}

// Stock returns the stock of reference sref.
func (l *Ledger) Stock(sref SRef) (Stock, bool) {
	i := l.st.stock(sref)
	if i < 0 {
		return Stock{}, false
	}
	return l.st.stocks[i].clone(), true
}

// Sectors returns the sector grid.
func (l *Ledger) Sectors() [MaxSectors]Sector { return l.st.sectors }

// Check verifies the ledger invariants. A ledger only mutated by commands
// always passes.
func (l *Ledger) Check() error { return l.st.check() }

func (s *state) portfolio(name string) int {
	return slices.IndexFunc(s.portfolios, func(p Portfolio) bool { return p.Name == name })
}

func (s *state) stock(sref SRef) int {
	i, found := slices.BinarySearchFunc(s.stocks, sref, func(st Stock, ref SRef) int { return strings.Compare(string(st.SRef), string(ref)) })
	if !found {
		return -1
	}
	return i
}

func (s *state) insertStock(st Stock) {
	i, _ := slices.BinarySearchFunc(s.stocks, st.SRef, func(e Stock, ref SRef) int { return strings.Compare(string(e.SRef), string(ref)) })
	s.stocks = slices.Insert(s.stocks, i, st)
}

func (s *state) sortStocks() {
	slices.SortFunc(s.stocks, func(a, b Stock) int { return strings.Compare(string(a.SRef), string(b.SRef)) })
}

// mustPortfolio returns the portfolio named name or ErrNotFound.
func (s *state) mustPortfolio(name string) (*Portfolio, error) {
	i := s.portfolio(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: portfolio %q", ErrNotFound, name)
	}
	return &s.portfolios[i], nil
}

// mustStock returns the stock or ErrNotFound.
func (s *state) mustStock(sref SRef) (*Stock, error) {
	i := s.stock(sref)
	if i < 0 {
		return nil, fmt.Errorf("%w: stock %s", ErrNotFound, sref)
	}
	return &s.stocks[i], nil
}

// openStock returns the stock, refusing closed ones.
func (s *state) openStock(sref SRef) (*Stock, error) {
	st, err := s.mustStock(sref)
	if err != nil {
		return nil, err
	}
	if sref.IsClosed() {
		return nil, fmt.Errorf("%w: stock %s is closed", ErrRefused, sref)
	}
	return st, nil
}

// check verifies all the ledger invariants.
func (s *state) check() error {
	names := make(map[string]bool)
	for _, p := range s.portfolios {
		if names[p.Name] {
			return fmt.Errorf("%w: portfolio %q", ErrDuplicate, p.Name)
		}
		names[p.Name] = true
		if err := s.checkPortfolio(p); err != nil {
			return fmt.Errorf("portfolio %q: %w", p.Name, err)
		}
	}
	for i, st := range s.stocks {
		if i > 0 && s.stocks[i-1].SRef >= st.SRef {
			return fmt.Errorf("%w: stock %s", ErrDuplicate, st.SRef)
		}
		for j, a := range st.Alarms {
			if slices.ContainsFunc(st.Alarms[:j], func(b Alarm) bool { return a.Type == b.Type && a.Level.Equal(b.Level) }) {
				return fmt.Errorf("%w: alarm %v %s on %s", ErrDuplicate, a.Type, a.Level, st.SRef)
			}
		}
		for k, f := range st.Fields {
			if f == Unassigned {
				continue
			}
			if f < 0 || f >= MaxFields || s.sectors[k].Fields[f] == "" {
				return fmt.Errorf("%w: field %d of sector %d for %s", ErrNotFound, f, k, st.SRef)
			}
		}
	}
	// orders are unique per stock on (type, price) across all portfolios.
	type orderKey struct {
		sref  SRef
		typ   OrderType
		price string
	}
	orders := make(map[orderKey]bool)
	for _, p := range s.portfolios {
		for _, o := range p.Orders {
			k := orderKey{o.SRef, o.Type, o.PricePerUnit.String()}
			if orders[k] {
				return fmt.Errorf("%w: %v order at %s on %s", ErrDuplicate, o.Type, o.PricePerUnit, o.SRef)
			}
			orders[k] = true
		}
	}
	return nil
}

func (s *state) checkPortfolio(p Portfolio) error {
	for _, sref := range p.SRefs {
		if s.stock(sref) < 0 {
			return fmt.Errorf("%w: followed stock %s", ErrNotFound, sref)
		}
	}
	batches := make(map[string]decimal.Decimal) // PurhaceId -> original units
	used := make(map[string]decimal.Decimal)    // PurhaceId -> units in holdings and trades
	for i, h := range p.Holdings {
		if p.holding(h.PurhaceId) != i {
			return fmt.Errorf("%w: holding %q", ErrDuplicate, h.PurhaceId)
		}
		if s.stock(h.SRef) < 0 {
			return fmt.Errorf("%w: stock %s of holding %q", ErrNotFound, h.SRef, h.PurhaceId)
		}
		if !h.Units.IsPositive() {
			return fmt.Errorf("%w: holding %q has no units", ErrUnitMismatch, h.PurhaceId)
		}
		batches[h.PurhaceId] = h.OriginalUnits
		used[h.PurhaceId] = h.Units
	}
	for i, t := range p.Trades {
		if p.trade(t.PurhaceId, t.Sold.TradeId) != i {
			return fmt.Errorf("%w: trade (%q, %q)", ErrDuplicate, t.PurhaceId, t.Sold.TradeId)
		}
		if s.stock(t.SRef) < 0 {
			return fmt.Errorf("%w: stock %s of trade %q", ErrNotFound, t.SRef, t.Sold.TradeId)
		}
		if org, ok := batches[t.PurhaceId]; ok && !org.Equal(t.OriginalUnits) {
			return fmt.Errorf("%w: batch %q has inconsistent original units", ErrUnitMismatch, t.PurhaceId)
		}
		batches[t.PurhaceId] = t.OriginalUnits
		used[t.PurhaceId] = used[t.PurhaceId].Add(t.Units)
	}
	for id, units := range used {
		if units.GreaterThan(batches[id]) {
			return fmt.Errorf("%w: batch %q uses %s of %s units", ErrUnitMismatch, id, units, batches[id])
		}
	}
	for i, o := range p.Orders {
		if p.order(o.SRef, o.PricePerUnit) != i {
			return fmt.Errorf("%w: order at %s on %s", ErrDuplicate, o.PricePerUnit, o.SRef)
		}
		if s.stock(o.SRef) < 0 {
			return fmt.Errorf("%w: stock %s of order", ErrNotFound, o.SRef)
		}
	}
	return nil
}
