package renderer

import (
	"fmt"

	"github.com/etnz/folio"
	"github.com/shopspring/decimal"
)

// Portfolio is the markdown view of a portfolio.
type Portfolio struct {
	Name       string
	Follows    []string
	Holdings   []HoldingLine
	Orders     []OrderLine
	Trades     []TradeLine
	Cost       []string // total cost of the holdings, per currency.
	Dividends  []string // dividends received by the holdings, per currency.
	Profit     []string // realized profit of the trades, per currency.
	OpenOrders int
}

// HoldingLine is a row of the holdings table.
type HoldingLine struct {
	SRef      string
	Name      string
	PurhaceId string
	Date      string
	Units     string
	Price     string
	Cost      string
	Dividends string
	Note      string
}

// OrderLine is a row of the orders table.
type OrderLine struct {
	Type     string
	SRef     string
	Units    string
	Price    string
	LastDate string
	Status   string
	Note     string
}

// TradeLine is a row of the trades table.
type TradeLine struct {
	SRef      string
	TradeId   string
	PurhaceId string
	Units     string
	Bought    string
	Sold      string
	BuyPrice  string
	SalePrice string
	Profit    string
	Note      string
}

// NewPortfolio builds the view of the portfolio name.
func NewPortfolio(l *folio.Ledger, name string) (*Portfolio, error) {
	p, ok := l.Portfolio(name)
	if !ok {
		return nil, fmt.Errorf("portfolio %q: %w", name, folio.ErrNotFound)
	}
	currency := func(sref folio.SRef) string {
		if s, ok := l.Stock(sref); ok {
			return s.Currency
		}
		return l.HomeCurrency()
	}

	v := &Portfolio{Name: p.Name}
	for _, sref := range p.SRefs {
		v.Follows = append(v.Follows, sref.String())
	}

	cost, dividends := make(totals), make(totals)
	for _, h := range p.Holdings {
		cur := currency(h.SRef)
		var div decimal.Decimal
		for _, d := range h.Dividends {
			div = div.Add(d.PaymentPerUnit.Mul(h.Units))
		}
		line := HoldingLine{
			SRef:      h.SRef.String(),
			PurhaceId: h.PurhaceId,
			Date:      h.PurhaceDate.String(),
			Units:     h.Units.String(),
			Price:     Money(h.PricePerUnit.Add(h.FeePerUnit), cur),
			Cost:      Money(h.Cost(), cur),
			Note:      h.Note,
		}
		if s, ok := l.Stock(h.SRef); ok {
			line.Name = s.Name
		}
		if !div.IsZero() {
			line.Dividends = Money(div, cur)
			dividends.add(cur, div)
		}
		cost.add(cur, h.Cost())
		v.Holdings = append(v.Holdings, line)
	}

	for _, o := range p.Orders {
		status := "open"
		if o.Filled() {
			status = "filled " + o.FillDate.String()
		} else {
			v.OpenOrders++
		}
		v.Orders = append(v.Orders, OrderLine{
			Type:     o.Type.String(),
			SRef:     o.SRef.String(),
			Units:    o.Units.String(),
			Price:    Money(o.PricePerUnit, currency(o.SRef)),
			LastDate: o.LastDate.String(),
			Status:   status,
			Note:     o.Note,
		})
	}

	profit := make(totals)
	for _, t := range p.Trades {
		cur := currency(t.SRef)
		profit.add(cur, t.Profit())
		v.Trades = append(v.Trades, TradeLine{
			SRef:      t.SRef.String(),
			TradeId:   t.Sold.TradeId,
			PurhaceId: t.PurhaceId,
			Units:     t.Units.String(),
			Bought:    t.PurhaceDate.String(),
			Sold:      t.Sold.SaleDate.String(),
			BuyPrice:  Money(t.PricePerUnit, cur),
			SalePrice: Money(t.Sold.PricePerUnit, cur),
			Profit:    Money(t.Profit(), cur),
			Note:      t.Sold.Note,
		})
	}
	v.Cost = cost.Strings()
	v.Dividends = dividends.Strings()
	v.Profit = profit.Strings()
	return v, nil
}

// RenderPortfolio renders the portfolio view.
func RenderPortfolio(p *Portfolio) string {
	partials := map[string]string{
		"portfolio_holdings": "portfolio_holdings.md",
		"portfolio_orders":   "portfolio_orders.md",
		"portfolio_trades":   "portfolio_trades.md",
	}
	return renderTemplate("portfolio", "portfolio.md", partials, p)
}

// PortfolioMarkdown renders the portfolio name of the ledger.
func PortfolioMarkdown(l *folio.Ledger, name string) (string, error) {
	p, err := NewPortfolio(l, name)
	if err != nil {
		return "", err
	}
	return RenderPortfolio(p), nil
}
