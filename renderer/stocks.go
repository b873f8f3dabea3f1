package renderer

import (
	"github.com/etnz/folio"
)

// Stocks is the markdown view of the ledger stocks.
type Stocks struct {
	Sectors []string // names of the defined sectors.
	Stocks  []StockLine
	Alarms  []AlarmLine
}

// StockLine is a row of the stocks table.
type StockLine struct {
	SRef     string
	Name     string
	Currency string
	Fields   []string // per defined sector, the field name or "-".
	Alarms   []AlarmLine
	Note     string
}

// AlarmLine is a row of the alarms table.
type AlarmLine struct {
	SRef   string
	Type   string
	Level  string
	Params string
	Note   string
}

// NewStocks builds the view of the ledger stocks.
func NewStocks(l *folio.Ledger) *Stocks {
	v := &Stocks{}
	sectors := l.Sectors()
	var defined []int
	for i, s := range sectors {
		if s.IsDefined() {
			defined = append(defined, i)
			v.Sectors = append(v.Sectors, s.Name)
		}
	}
	for _, s := range l.Stocks() {
		line := StockLine{SRef: s.SRef.String(), Name: s.Name, Currency: s.Currency, Note: s.Note}
		for _, i := range defined {
			field := "-"
			if f := s.Fields[i]; f != folio.Unassigned {
				field = sectors[i].Fields[f]
			}
			line.Fields = append(line.Fields, field)
		}
		for _, a := range s.Alarms {
			al := AlarmLine{SRef: line.SRef, Type: a.Type.String(), Level: Money(a.Level, s.Currency), Params: a.Params, Note: a.Note}
			line.Alarms = append(line.Alarms, al)
			v.Alarms = append(v.Alarms, al)
		}
		v.Stocks = append(v.Stocks, line)
	}
	return v
}

// RenderStocks renders the stocks view.
func RenderStocks(s *Stocks) string {
	return renderTemplate("stocks", "stocks.md", map[string]string{"stocks_alarms": "stocks_alarms.md"}, s)
}

// StocksMarkdown renders the stocks of the ledger.
func StocksMarkdown(l *folio.Ledger) string { return RenderStocks(NewStocks(l)) }
