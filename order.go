package folio

import (
	"fmt"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// OrderType is the side of an order.
type OrderType int

const (
	Buy OrderType = iota
	Sell
)

func (t OrderType) String() string {
	switch t {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return fmt.Sprintf("OrderType(%d)", int(t))
	}
}

// ParseOrderType parses "Buy" or "Sell".
func ParseOrderType(s string) (OrderType, error) {
	switch s {
	case "Buy":
		return Buy, nil
	case "Sell":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown order type %q want Buy or Sell", s)
	}
}

// Order is a pending buy or sell order of a portfolio.
//
// Within a portfolio an order is identified by its stock and PricePerUnit. An
// order stays in the ledger once filled, it is removed on expiry only.
type Order struct {
	Type         OrderType
	SRef         SRef
	Units        decimal.Decimal
	PricePerUnit decimal.Decimal
	LastDate     date.Date
	FillDate     date.Date // zero while not filled.
	Note         string
}

// Filled reports whether the order price condition has been met.
func (o Order) Filled() bool { return !o.FillDate.IsZero() }

// fills reports whether the order is filled by the day range of q.
func (o Order) fills(q Quote) bool {
	switch o.Type {
	case Buy:
		return o.PricePerUnit.GreaterThanOrEqual(q.SafeLow())
	case Sell:
		return o.PricePerUnit.LessThanOrEqual(q.SafeHigh())
	}
	panic(fmt.Sprintf("unhandled order type %v", o.Type))
}

// expires reports whether the order is expired on day.
func (o Order) expires(on date.Date) bool { return !o.LastDate.After(on) }
