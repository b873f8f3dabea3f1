package folio

import (
	"slices"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// Dividend is a dividend payment received for the units of a purchase batch.
type Dividend struct {
	PaymentPerUnit decimal.Decimal
	ExDivDate      date.Date
	PaymentDate    date.Date
	CurrencyRate   decimal.Decimal
	Currency       string
}

// Holding is an open purchase batch of a stock inside a portfolio.
//
// Units is what is still owned, it only goes down when part of the batch is
// sold. OriginalUnits is the size of the batch when bought.
type Holding struct {
	SRef          SRef
	PurhaceId     string
	Units         decimal.Decimal
	OriginalUnits decimal.Decimal
	PricePerUnit  decimal.Decimal
	FeePerUnit    decimal.Decimal
	PurhaceDate   date.Date
	CurrencyRate  decimal.Decimal
	Note          string
	Dividends     []Dividend
}

// Cost returns the purchase cost of the units, fees included.
func (h Holding) Cost() decimal.Decimal {
	return h.Units.Mul(h.PricePerUnit.Add(h.FeePerUnit))
}

// Sold reports whether part of the batch is not owned anymore.
func (h Holding) Sold() bool { return h.Units.LessThan(h.OriginalUnits) }

func (h Holding) clone() Holding {
	h.Dividends = slices.Clone(h.Dividends)
	return h
}

// addDividend inserts the dividend sorted by ex-dividend date.
func (h *Holding) addDividend(d Dividend) {
	i, _ := slices.BinarySearchFunc(h.Dividends, d.ExDivDate, func(e Dividend, on date.Date) int {
		return e.ExDivDate.DaysSince(on)
	})
	h.Dividends = slices.Insert(h.Dividends, i, d)
}

func (h *Holding) dividend(exDiv date.Date) int {
	return slices.IndexFunc(h.Dividends, func(d Dividend) bool { return d.ExDivDate == exDiv })
}

// Sale describes the sale event that closed a trade.
type Sale struct {
	TradeId      string
	SaleDate     date.Date
	PricePerUnit decimal.Decimal
	FeePerUnit   decimal.Decimal
	CurrencyRate decimal.Decimal
	Note         string
}

// Trade is a purchase batch, or the sold part of one, that has been closed.
//
// The embedded Holding keeps the purchase side: Units is the amount sold by
// this trade, OriginalUnits the size of the whole batch.
type Trade struct {
	Holding
	Sold Sale
}

// Profit returns the gain of the trade, fees included, in the stock currency.
func (t Trade) Profit() decimal.Decimal {
	proceeds := t.Units.Mul(t.Sold.PricePerUnit.Sub(t.Sold.FeePerUnit))
	return proceeds.Sub(t.Cost())
}

func (t Trade) clone() Trade {
	t.Holding = t.Holding.clone()
	return t
}
