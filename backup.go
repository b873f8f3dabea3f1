package folio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// this file contains the backup format.
// It is a JSONL file, one entity per line, each line holding its "type". It
// should remain human readable and easy to diff.

const backupVersion = 1

type jsonMeta struct {
	Version      int    `json:"version"`
	HomeCurrency string `json:"homeCurrency"`
}

type jsonSector struct {
	Id     int      `json:"id"`
	Name   string   `json:"name"`
	Fields []string `json:"fields,omitempty"` // trailing unnamed fields are omitted.
}

type jsonStock struct {
	SRef     SRef   `json:"sref"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Note     string `json:"note,omitempty"`
	Sectors  []int  `json:"sectors"`
}

type jsonAlarm struct {
	SRef      SRef            `json:"sref"`
	AlarmType string          `json:"alarmType"`
	Level     decimal.Decimal `json:"level"`
	Note      string          `json:"note,omitempty"`
	Params    string          `json:"params,omitempty"`
}

type jsonPortfolio struct {
	Name string `json:"name"`
}

type jsonFollow struct {
	Portfolio string `json:"portfolio"`
	SRef      SRef   `json:"sref"`
}

type jsonDividend struct {
	PaymentPerUnit decimal.Decimal `json:"paymentPerUnit"`
	ExDivDate      date.Date       `json:"exDivDate"`
	PaymentDate    date.Date       `json:"paymentDate"`
	Rate           decimal.Decimal `json:"rate"`
	Currency       string          `json:"currency"`
}

type jsonHolding struct {
	Portfolio     string          `json:"portfolio"`
	SRef          SRef            `json:"sref"`
	PurhaceId     string          `json:"purhaceId"`
	Units         decimal.Decimal `json:"units"`
	OriginalUnits decimal.Decimal `json:"originalUnits"`
	Price         decimal.Decimal `json:"price"`
	Fee           decimal.Decimal `json:"fee"`
	Date          date.Date       `json:"date"`
	Rate          decimal.Decimal `json:"rate"`
	Note          string          `json:"note,omitempty"`
	Dividends     []jsonDividend  `json:"dividends,omitempty"`
}

// jsonSale is written with the "sale" prefix in trade lines.
type jsonSale struct {
	Date  date.Date       `json:"date"`
	Price decimal.Decimal `json:"price"`
	Fee   decimal.Decimal `json:"fee"`
	Rate  decimal.Decimal `json:"rate"`
	Note  string          `json:"note,omitempty"`
}

type jsonTrade struct {
	jsonHolding
	TradeId   string          `json:"tradeId"`
	SaleDate  date.Date       `json:"saleDate"`
	SalePrice decimal.Decimal `json:"salePrice"`
	SaleFee   decimal.Decimal `json:"saleFee"`
	SaleRate  decimal.Decimal `json:"saleRate"`
	SaleNote  string          `json:"saleNote"`
}

type jsonOrder struct {
	Portfolio string          `json:"portfolio"`
	Type      string          `json:"orderType"` // "type" is the line type.
	SRef      SRef            `json:"sref"`
	Units     decimal.Decimal `json:"units"`
	Price     decimal.Decimal `json:"price"`
	LastDate  date.Date       `json:"lastDate"`
	FillDate  date.Date       `json:"fillDate"`
	Note      string          `json:"note,omitempty"`
}

// CreateBackup exports the whole ledger.
func (l *Ledger) CreateBackup() ([]byte, error) {
	var buf bytes.Buffer
	if err := l.writeBackup(&buf, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CreatePartialBackup exports the stocks matching symbols, by reference or by
// symbol, with everything the portfolios own on them. Restoring it replaces
// these stocks only.
func (l *Ledger) CreatePartialBackup(symbols ...string) ([]byte, error) {
	match := func(s SRef) bool {
		return slices.Contains(symbols, string(s)) || slices.Contains(symbols, s.Symbol())
	}
	var buf bytes.Buffer
	if err := l.writeBackup(&buf, match); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBackup writes the ledger lines. A nil match writes the full backup.
func (l *Ledger) writeBackup(w io.Writer, match func(SRef) bool) error {
	full := match == nil
	if full {
		match = func(SRef) bool { return true }
	}
	write := func(typ string, v any) error {
		var line jsonObjectWriter
		line.Append("type", typ).EmbedFrom(v)
		return writeLine(w, &line)
	}

	if full {
		if err := write("meta", jsonMeta{Version: backupVersion, HomeCurrency: l.st.home}); err != nil {
			return err
		}
		for i, sec := range l.st.sectors {
			if !sec.IsDefined() {
				continue
			}
			fields := sec.Fields[:]
			for len(fields) > 0 && fields[len(fields)-1] == "" {
				fields = fields[:len(fields)-1]
			}
			if err := write("sector", jsonSector{Id: i, Name: sec.Name, Fields: fields}); err != nil {
				return err
			}
		}
	}

	for _, st := range l.st.stocks {
		if !match(st.SRef) {
			continue
		}
		if err := write("stock", jsonStock{SRef: st.SRef, Name: st.Name, Currency: st.Currency, Note: st.Note, Sectors: st.Fields[:]}); err != nil {
			return err
		}
		for _, a := range st.Alarms {
			if err := write("alarm", jsonAlarm{SRef: st.SRef, AlarmType: a.Type.String(), Level: a.Level, Note: a.Note, Params: a.Params}); err != nil {
				return err
			}
		}
	}

	for _, p := range l.st.portfolios {
		if !full && !slices.ContainsFunc(p.SRefs, match) && !p.usesAny(match) {
			continue
		}
		if err := write("portfolio", jsonPortfolio{Name: p.Name}); err != nil {
			return err
		}
		for _, sref := range p.SRefs {
			if match(sref) {
				if err := write("follow", jsonFollow{Portfolio: p.Name, SRef: sref}); err != nil {
					return err
				}
			}
		}
		for _, h := range p.Holdings {
			if match(h.SRef) {
				if err := write("holding", holdingToJSON(p.Name, h)); err != nil {
					return err
				}
			}
		}
		for _, t := range p.Trades {
			if !match(t.SRef) {
				continue
			}
			var line jsonObjectWriter
			line.Append("type", "trade").
				EmbedFrom(holdingToJSON(p.Name, t.Holding)).
				Append("tradeId", t.Sold.TradeId).
				PrefixFrom("sale", jsonSale{Date: t.Sold.SaleDate, Price: t.Sold.PricePerUnit, Fee: t.Sold.FeePerUnit, Rate: t.Sold.CurrencyRate, Note: t.Sold.Note})
			if err := writeLine(w, &line); err != nil {
				return err
			}
		}
		for _, o := range p.Orders {
			if !match(o.SRef) {
				continue
			}
			jo := jsonOrder{Portfolio: p.Name, Type: o.Type.String(), SRef: o.SRef, Units: o.Units, Price: o.PricePerUnit, LastDate: o.LastDate, FillDate: o.FillDate, Note: o.Note}
			if err := write("order", jo); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p Portfolio) usesAny(match func(SRef) bool) bool {
	return slices.ContainsFunc(p.Holdings, func(h Holding) bool { return match(h.SRef) }) ||
		slices.ContainsFunc(p.Trades, func(t Trade) bool { return match(t.SRef) }) ||
		slices.ContainsFunc(p.Orders, func(o Order) bool { return match(o.SRef) })
}

func writeLine(w io.Writer, line *jsonObjectWriter) error {
	data, err := line.MarshalJSON()
	if err != nil {
		return fmt.Errorf("cannot marshal backup line: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("cannot write backup: %w", err)
	}
	return nil
}

func holdingToJSON(pf string, h Holding) jsonHolding {
	jh := jsonHolding{
		Portfolio:     pf,
		SRef:          h.SRef,
		PurhaceId:     h.PurhaceId,
		Units:         h.Units,
		OriginalUnits: h.OriginalUnits,
		Price:         h.PricePerUnit,
		Fee:           h.FeePerUnit,
		Date:          h.PurhaceDate,
		Rate:          h.CurrencyRate,
		Note:          h.Note,
	}
	for _, d := range h.Dividends {
		jh.Dividends = append(jh.Dividends, jsonDividend{
			PaymentPerUnit: d.PaymentPerUnit,
			ExDivDate:      d.ExDivDate,
			PaymentDate:    d.PaymentDate,
			Rate:           d.CurrencyRate,
			Currency:       d.Currency,
		})
	}
	return jh
}

func (jh jsonHolding) holding() Holding {
	h := Holding{
		SRef:          jh.SRef,
		PurhaceId:     jh.PurhaceId,
		Units:         jh.Units,
		OriginalUnits: jh.OriginalUnits,
		PricePerUnit:  jh.Price,
		FeePerUnit:    jh.Fee,
		PurhaceDate:   jh.Date,
		CurrencyRate:  jh.Rate,
		Note:          jh.Note,
	}
	if h.PurhaceId == "" {
		h.PurhaceId = newID("PID:")
	}
	if h.OriginalUnits.IsZero() {
		h.OriginalUnits = h.Units
	}
	for _, d := range jh.Dividends {
		h.addDividend(Dividend{
			PaymentPerUnit: d.PaymentPerUnit,
			ExDivDate:      d.ExDivDate,
			PaymentDate:    d.PaymentDate,
			CurrencyRate:   d.Rate,
			Currency:       d.Currency,
		})
	}
	return h
}

// backup is the decoded content of a backup.
type backup struct {
	meta       *jsonMeta
	sectors    []jsonSector
	stocks     []jsonStock
	alarms     []jsonAlarm
	portfolios []jsonPortfolio
	follows    []jsonFollow
	holdings   []jsonHolding
	trades     []jsonTrade
	orders     []jsonOrder
}

func decodeBackup(r io.Reader) (*backup, error) {
	b := new(backup)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for n := 1; scanner.Scan(); n++ {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := b.decodeLine(line); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read backup: %w", err)
	}
	return b, nil
}

func (b *backup) decodeLine(line []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(line, &head); err != nil {
		return fmt.Errorf("cannot parse %q: %w", line, err)
	}
	var err error
	switch head.Type {
	case "meta":
		b.meta = new(jsonMeta)
		err = json.Unmarshal(line, b.meta)
		if err == nil && b.meta.Version != backupVersion {
			err = fmt.Errorf("unsupported backup version %d", b.meta.Version)
		}
	case "sector":
		err = decodeAppend(line, &b.sectors)
	case "stock":
		err = decodeAppend(line, &b.stocks)
	case "alarm":
		err = decodeAppend(line, &b.alarms)
	case "portfolio":
		err = decodeAppend(line, &b.portfolios)
	case "follow":
		err = decodeAppend(line, &b.follows)
	case "holding":
		err = decodeAppend(line, &b.holdings)
	case "trade":
		err = decodeAppend(line, &b.trades)
	case "order":
		err = decodeAppend(line, &b.orders)
	default:
		err = fmt.Errorf("unknown line type %q", head.Type)
	}
	return err
}

func decodeAppend[T any](line []byte, list *[]T) error {
	var v T
	if err := json.Unmarshal(line, &v); err != nil {
		return fmt.Errorf("cannot parse %q: %w", line, err)
	}
	*list = append(*list, v)
	return nil
}

// srefs returns the stocks the backup content is about.
func (b *backup) srefs() map[SRef]bool {
	m := make(map[SRef]bool)
	for _, s := range b.stocks {
		m[s.SRef] = true
	}
	return m
}

// into adds the backup content to s.
func (b *backup) into(s *state) error {
	for _, js := range b.sectors {
		if js.Id < 0 || js.Id >= MaxSectors || len(js.Fields) > MaxFields {
			return fmt.Errorf("invalid sector %d", js.Id)
		}
		s.sectors[js.Id].Name = js.Name
		copy(s.sectors[js.Id].Fields[:], js.Fields)
	}
	for _, js := range b.stocks {
		if _, err := ParseSRef(string(js.SRef)); err != nil {
			return err
		}
		if s.stock(js.SRef) >= 0 {
			return fmt.Errorf("%w: stock %s", ErrDuplicate, js.SRef)
		}
		st := NewStock(js.SRef, js.Name, js.Currency)
		st.Note = js.Note
		copy(st.Fields[:], js.Sectors)
		s.insertStock(st)
	}
	for _, ja := range b.alarms {
		st, err := s.mustStock(ja.SRef)
		if err != nil {
			return err
		}
		t, err := ParseAlarmType(ja.AlarmType)
		if err != nil {
			return err
		}
		st.Alarms = append(st.Alarms, Alarm{Type: t, Level: ja.Level, Note: ja.Note, Params: ja.Params})
	}
	for _, jp := range b.portfolios {
		if s.portfolio(jp.Name) < 0 {
			s.portfolios = append(s.portfolios, Portfolio{Name: jp.Name})
		}
	}
	for _, jf := range b.follows {
		p, err := s.mustPortfolio(jf.Portfolio)
		if err != nil {
			return err
		}
		p.follow(jf.SRef)
	}
	for _, jh := range b.holdings {
		p, err := s.mustPortfolio(jh.Portfolio)
		if err != nil {
			return err
		}
		p.Holdings = append(p.Holdings, jh.holding())
	}
	for _, jt := range b.trades {
		p, err := s.mustPortfolio(jt.Portfolio)
		if err != nil {
			return err
		}
		t := Trade{
			Holding: jt.holding(),
			Sold: Sale{
				TradeId:      jt.TradeId,
				SaleDate:     jt.SaleDate,
				PricePerUnit: jt.SalePrice,
				FeePerUnit:   jt.SaleFee,
				CurrencyRate: jt.SaleRate,
				Note:         jt.SaleNote,
			},
		}
		if t.Sold.TradeId == "" {
			t.Sold.TradeId = newID("TID:")
		}
		p.Trades = append(p.Trades, t)
	}
	for _, jo := range b.orders {
		p, err := s.mustPortfolio(jo.Portfolio)
		if err != nil {
			return err
		}
		t, err := ParseOrderType(jo.Type)
		if err != nil {
			return err
		}
		p.Orders = append(p.Orders, Order{Type: t, SRef: jo.SRef, Units: jo.Units, PricePerUnit: jo.Price, LastDate: jo.LastDate, FillDate: jo.FillDate, Note: jo.Note})
	}
	return s.check()
}

// RestoreBackup replaces the ledger content with the backup.
//
// A full backup replaces the whole ledger. If it cannot be restored a warning
// is logged, the ledger is reset to its empty state and the error returned.
//
// A partial backup replaces the stocks it contains, with everything the
// portfolios own on them. If it cannot be restored the ledger is left
// unchanged.
func (l *Ledger) RestoreBackup(data []byte) error {
	b, err := decodeBackup(bytes.NewReader(data))
	if err == nil && b.meta == nil {
		return l.restorePartial(b)
	}
	if err == nil {
		st := state{home: b.meta.HomeCurrency}
		if err = b.into(&st); err == nil {
			l.st = st
			l.changed()
			return nil
		}
	}
	l.logger.Warn().Err(err).Msg("cannot restore backup, starting from an empty ledger")
	l.OnDataInit()
	return fmt.Errorf("cannot restore backup: %w", err)
}

func (l *Ledger) restorePartial(b *backup) error {
	replaced := b.srefs()
	work := l.st.clone()
	work.stocks = slices.DeleteFunc(work.stocks, func(st Stock) bool { return replaced[st.SRef] })
	for i := range work.portfolios {
		p := &work.portfolios[i]
		p.SRefs = slices.DeleteFunc(p.SRefs, func(s SRef) bool { return replaced[s] })
		p.Holdings = slices.DeleteFunc(p.Holdings, func(h Holding) bool { return replaced[h.SRef] })
		p.Trades = slices.DeleteFunc(p.Trades, func(t Trade) bool { return replaced[t.SRef] })
		p.Orders = slices.DeleteFunc(p.Orders, func(o Order) bool { return replaced[o.SRef] })
	}
	// sector fields may not be named in this ledger.
	for i := range b.stocks {
		for k, f := range b.stocks[i].Sectors {
			if k < MaxSectors && f != Unassigned && (f < 0 || f >= MaxFields || work.sectors[k].Fields[f] == "") {
				l.logger.Warn().Str("sref", string(b.stocks[i].SRef)).Int("sector", k).Int("field", f).Msg("unknown sector field, stock left unassigned")
				b.stocks[i].Sectors[k] = Unassigned
			}
		}
	}
	if err := b.into(&work); err != nil {
		l.logger.Warn().Err(err).Msg("cannot restore partial backup, ledger unchanged")
		return fmt.Errorf("cannot restore partial backup: %w", err)
	}
	l.st = work
	l.changed()
	return nil
}

// ParseSymbols splits a comma or space separated list of symbols.
func ParseSymbols(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
}
