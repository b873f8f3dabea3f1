package folio

import (
	"fmt"
	"strings"
)

// Operation is the action part of a command.
type Operation int

const (
	OpAdd Operation = iota
	OpEdit
	OpDelete
	OpDeleteAll
	OpMove
	OpSet
	OpTop
	OpFollow
	OpUnfollow
	OpNote
	OpRound
	OpClose
	OpSplit
)

var operationNames = [...]string{
	OpAdd: "Add", OpEdit: "Edit", OpDelete: "Delete", OpDeleteAll: "DeleteAll",
	OpMove: "Move", OpSet: "Set", OpTop: "Top", OpFollow: "Follow",
	OpUnfollow: "Unfollow", OpNote: "Note", OpRound: "Round", OpClose: "Close",
	OpSplit: "Split",
}

func (o Operation) String() string { return operationNames[o] }

// Element is the entity part of a command.
type Element int

const (
	ElPortfolio Element = iota
	ElStock
	ElHolding
	ElTrade
	ElAlarm
	ElOrder
	ElDivident
	ElSector
)

var elementNames = [...]string{
	ElPortfolio: "Portfolio", ElStock: "Stock", ElHolding: "Holding", ElTrade: "Trade",
	ElAlarm: "Alarm", ElOrder: "Order", ElDivident: "Divident", ElSector: "Sector",
}

func (e Element) String() string { return elementNames[e] }

// Verb is one of the known "Operation-Element" commands.
type Verb int

const (
	AddPortfolio Verb = iota
	EditPortfolio
	DeletePortfolio
	TopPortfolio
	FollowPortfolio
	UnfollowPortfolio

	AddStock
	EditStock
	DeleteStock
	NoteStock
	CloseStock
	SplitStock

	AddHolding
	EditHolding
	DeleteHolding
	NoteHolding
	MoveHolding
	RoundHolding

	AddTrade
	EditTrade
	DeleteTrade
	NoteTrade

	AddOrder
	EditOrder
	SetOrder
	DeleteOrder
	DeleteAllOrder

	AddAlarm
	EditAlarm
	DeleteAlarm
	DeleteAllAlarm

	AddDivident
	DeleteDivident
	DeleteAllDivident

	SetSector
	EditSector
	DeleteSector
	FollowSector
	UnfollowSector

	numVerbs
)

// Common parameter declarations.
const (
	pfName   = "PfName=PfName"
	sref     = "SRef=SRef"
	units    = "Units=Decimal:0.000001:"
	price    = "Price=Decimal:0:"
	fee      = "Fee=?Decimal:0:"
	rate     = "CurrencyRate=?Decimal:0.000001:"
	note     = "Note=String:0:500:Note"
	optNote  = "Note=?String:0:500:Note"
	batchRef = "PurhaceId=PurhaceRef"
	level    = "Level=Decimal:0.000001:"
)

// verbDef describes a verb: its parts and the template of its parameters.
type verbDef struct {
	op       Operation
	el       Element
	template string
	params   []Param
}

var verbDefs = [numVerbs]verbDef{
	AddPortfolio:      {OpAdd, ElPortfolio, pfName, nil},
	EditPortfolio:     {OpEdit, ElPortfolio, pfName + " NewName=PfName", nil},
	DeletePortfolio:   {OpDelete, ElPortfolio, pfName, nil},
	TopPortfolio:      {OpTop, ElPortfolio, pfName, nil},
	FollowPortfolio:   {OpFollow, ElPortfolio, pfName + " " + sref, nil},
	UnfollowPortfolio: {OpUnfollow, ElPortfolio, pfName + " " + sref, nil},

	AddStock:    {OpAdd, ElStock, sref + " Name=String:1:60:Name Currency=Currency", nil},
	EditStock:   {OpEdit, ElStock, sref + " Name=?String:1:60:Name Currency=?Currency", nil},
	DeleteStock: {OpDelete, ElStock, sref, nil},
	NoteStock:   {OpNote, ElStock, sref + " " + note, nil},
	CloseStock:  {OpClose, ElStock, sref + " Date=Date TradeId=TradeId " + optNote, nil},
	SplitStock:  {OpSplit, ElStock, sref + " Ratio=Decimal:0.000001:", nil},

	AddHolding: {OpAdd, ElHolding, pfName + " " + sref + " PurhaceId=PurhaceId Date=Date " + units + " " + price + " " + fee + " " + rate + " " + optNote, nil},
	EditHolding: {OpEdit, ElHolding, pfName + " " + batchRef +
		" Date=?Date Units=?Decimal:0.000001: Price=?Decimal:0: " + fee + " " + rate, nil},
	DeleteHolding: {OpDelete, ElHolding, pfName + " " + batchRef, nil},
	NoteHolding:   {OpNote, ElHolding, pfName + " " + batchRef + " " + note, nil},
	MoveHolding:   {OpMove, ElHolding, pfName + " " + batchRef + " ToPfName=PfName", nil},
	RoundHolding: {OpRound, ElHolding, pfName + " " + batchRef + " TradeId=TradeId " + units +
		" Date=Date " + price + " " + fee + " " + rate + " " + optNote, nil},

	AddTrade: {OpAdd, ElTrade, pfName + " " + sref + " PurhaceId=PurhaceId TradeId=TradeId " + units +
		" OriginalUnits=?Decimal:0.000001: PurhaceDate=Date PurhacePrice=Decimal:0: PurhaceFee=?Decimal:0:" +
		" PurhaceRate=?Decimal:0.000001: SaleDate=Date SalePrice=Decimal:0: SaleFee=?Decimal:0:" +
		" SaleRate=?Decimal:0.000001: " + optNote, nil},
	EditTrade: {OpEdit, ElTrade, pfName + " " + batchRef + " TradeId=TradeRef SaleDate=?Date" +
		" SalePrice=?Decimal:0: SaleFee=?Decimal:0: SaleRate=?Decimal:0.000001:", nil},
	DeleteTrade: {OpDelete, ElTrade, pfName + " " + batchRef + " TradeId=TradeRef", nil},
	NoteTrade:   {OpNote, ElTrade, pfName + " " + batchRef + " TradeId=TradeRef " + note, nil},

	AddOrder:       {OpAdd, ElOrder, pfName + " " + sref + " Type=OrderType " + units + " " + price + " LastDate=Date " + optNote, nil},
	EditOrder:      {OpEdit, ElOrder, pfName + " " + sref + " " + price + " Units=?Decimal:0.000001: LastDate=?Date " + optNote, nil},
	SetOrder:       {OpSet, ElOrder, pfName + " " + sref + " " + price + " FillDate=Date", nil},
	DeleteOrder:    {OpDelete, ElOrder, pfName + " " + sref + " " + price, nil},
	DeleteAllOrder: {OpDeleteAll, ElOrder, pfName + " SRef=?SRef", nil},

	AddAlarm:       {OpAdd, ElAlarm, sref + " AlarmType=AlarmType " + level + " " + optNote + " Params=?String:0:20:Id", nil},
	EditAlarm:      {OpEdit, ElAlarm, sref + " AlarmType=AlarmType " + level + " NewLevel=?Decimal:0.000001: " + optNote, nil},
	DeleteAlarm:    {OpDelete, ElAlarm, sref + " AlarmType=AlarmType " + level, nil},
	DeleteAllAlarm: {OpDeleteAll, ElAlarm, sref, nil},

	AddDivident: {OpAdd, ElDivident, pfName + " " + batchRef + " PaymentPerUnit=Decimal:0: ExDivDate=Date PaymentDate=Date " +
		rate + " Currency=Currency", nil},
	DeleteDivident:    {OpDelete, ElDivident, pfName + " " + batchRef + " ExDivDate=Date", nil},
	DeleteAllDivident: {OpDeleteAll, ElDivident, pfName + " " + batchRef, nil},

	SetSector:      {OpSet, ElSector, "SectorId=SectorId Name=String:1:40:Name", nil},
	EditSector:     {OpEdit, ElSector, "SectorId=SectorId FieldId=FieldId Name=String:0:40:Name", nil},
	DeleteSector:   {OpDelete, ElSector, "SectorId=SectorId", nil},
	FollowSector:   {OpFollow, ElSector, sref + " SectorId=SectorId FieldId=FieldId", nil},
	UnfollowSector: {OpUnfollow, ElSector, sref + " SectorId=SectorId", nil},
}

// verbsByName indexes verbs by their "Operation-Element" name.
var verbsByName = make(map[string]Verb, numVerbs)

func init() {
	for v := range numVerbs {
		def := &verbDefs[v]
		def.params = mustParseTemplate(def.template)
		verbsByName[v.String()] = v
	}
}

// Verbs returns all the known verbs.
func Verbs() []Verb {
	vs := make([]Verb, numVerbs)
	for i := range vs {
		vs[i] = Verb(i)
	}
	return vs
}

// ParseVerb parses an "Operation-Element" name.
func ParseVerb(s string) (Verb, error) {
	v, ok := verbsByName[s]
	if !ok {
		return 0, fmt.Errorf("%w: unknown command %q", ErrSyntax, s)
	}
	return v, nil
}

// Operation returns the operation part of the verb.
func (v Verb) Operation() Operation { return verbDefs[v].op }

// Element returns the element part of the verb.
func (v Verb) Element() Element { return verbDefs[v].el }

// Params returns the parameters declared by the verb.
func (v Verb) Params() []Param { return verbDefs[v].params }

func (v Verb) String() string {
	if v < 0 || v >= numVerbs {
		return fmt.Sprintf("Verb(%d)", int(v))
	}
	return v.Operation().String() + "-" + v.Element().String()
}

// Usage returns the verb with its parameters, optional ones in brackets.
func (v Verb) Usage() string {
	var b strings.Builder
	b.WriteString(v.String())
	for _, p := range v.Params() {
		b.WriteByte(' ')
		if p.Optional {
			b.WriteByte('[')
		}
		b.WriteString(p.Name)
		b.WriteString("=<")
		b.WriteString(p.KindName())
		b.WriteString(">")
		if p.Optional {
			b.WriteByte(']')
		}
	}
	return b.String()
}
