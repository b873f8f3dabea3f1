package folio

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Sector grid dimensions.
const (
	MaxSectors = 3
	MaxFields  = 18
)

// Unassigned is the field index of a stock not classified in a sector.
const Unassigned = -1

// Sector is a user named classification axis with up to MaxFields named fields.
type Sector struct {
	Name   string
	Fields [MaxFields]string
}

// IsDefined reports whether the sector has been named.
func (s Sector) IsDefined() bool { return s.Name != "" }

// Stock is the ledger wide metadata of a stock, shared by all portfolios.
type Stock struct {
	SRef     SRef
	Name     string
	Currency string
	Note     string
	Fields   [MaxSectors]int // per sector, index of the field or Unassigned.
	Alarms   []Alarm
}

// NewStock returns an unclassified stock.
func NewStock(sref SRef, name, currency string) Stock {
	s := Stock{SRef: sref, Name: name, Currency: currency}
	for i := range s.Fields {
		s.Fields[i] = Unassigned
	}
	return s
}

func (s Stock) clone() Stock {
	s.Alarms = slices.Clone(s.Alarms)
	return s
}

func (s *Stock) alarm(t AlarmType, level decimal.Decimal) int {
	return slices.IndexFunc(s.Alarms, func(a Alarm) bool { return a.Type == t && a.Level.Equal(level) })
}

// Portfolio is a named container of followed stocks, orders, open holdings and
// closed trades.
type Portfolio struct {
	Name     string
	SRefs    []SRef
	Orders   []Order
	Holdings []Holding
	Trades   []Trade
}

// IsEmpty reports whether the portfolio owns no holding, trade nor order.
func (p Portfolio) IsEmpty() bool {
	return len(p.Holdings) == 0 && len(p.Trades) == 0 && len(p.Orders) == 0
}

// Follows reports whether the portfolio follows the stock.
func (p Portfolio) Follows(sref SRef) bool { return slices.Contains(p.SRefs, sref) }

// Uses reports whether any holding, trade or order of the portfolio is on the stock.
func (p Portfolio) Uses(sref SRef) bool {
	return slices.ContainsFunc(p.Holdings, func(h Holding) bool { return h.SRef == sref }) ||
		slices.ContainsFunc(p.Trades, func(t Trade) bool { return t.SRef == sref }) ||
		slices.ContainsFunc(p.Orders, func(o Order) bool { return o.SRef == sref })
}

func (p Portfolio) clone() Portfolio {
	p.SRefs = slices.Clone(p.SRefs)
	p.Orders = slices.Clone(p.Orders)
	p.Holdings = slices.Clone(p.Holdings)
	for i := range p.Holdings {
		p.Holdings[i] = p.Holdings[i].clone()
	}
	p.Trades = slices.Clone(p.Trades)
	for i := range p.Trades {
		p.Trades[i] = p.Trades[i].clone()
	}
	return p
}

func (p *Portfolio) follow(sref SRef) {
	if !p.Follows(sref) {
		p.SRefs = append(p.SRefs, sref)
	}
}

func (p *Portfolio) holding(id string) int {
	return slices.IndexFunc(p.Holdings, func(h Holding) bool { return h.PurhaceId == id })
}

func (p *Portfolio) trade(purhaceId, tradeId string) int {
	return slices.IndexFunc(p.Trades, func(t Trade) bool {
		return t.PurhaceId == purhaceId && t.Sold.TradeId == tradeId
	})
}

// hasPurhace reports whether the purchase batch is used by a holding or a trade.
func (p *Portfolio) hasPurhace(id string) bool {
	return p.holding(id) >= 0 || slices.ContainsFunc(p.Trades, func(t Trade) bool { return t.PurhaceId == id })
}

// soldUnits returns the units of the batch already closed by trades.
func (p *Portfolio) soldUnits(purhaceId string) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range p.Trades {
		if t.PurhaceId == purhaceId {
			sum = sum.Add(t.Units)
		}
	}
	return sum
}

func (p *Portfolio) order(sref SRef, price decimal.Decimal) int {
	return slices.IndexFunc(p.Orders, func(o Order) bool { return o.SRef == sref && o.PricePerUnit.Equal(price) })
}
