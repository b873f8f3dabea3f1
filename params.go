package folio

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/etnz/folio/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the type of a command parameter.
type Kind int

const (
	KindDecimal Kind = iota
	KindString
	KindDate
	KindSRef
	KindPfName
	KindPurhaceId // identity of a new purchase batch, generated when empty.
	KindTradeId   // identity of a new sale event, generated when empty.
	KindPurhaceRef
	KindTradeRef
	KindAlarmType
	KindOrderType
	KindCurrency
	KindSectorId
	KindFieldId
)

var kindNames = map[string]Kind{
	"Decimal":    KindDecimal,
	"String":     KindString,
	"Date":       KindDate,
	"SRef":       KindSRef,
	"PfName":     KindPfName,
	"PurhaceId":  KindPurhaceId,
	"TradeId":    KindTradeId,
	"PurhaceRef": KindPurhaceRef,
	"TradeRef":   KindTradeRef,
	"AlarmType":  KindAlarmType,
	"OrderType":  KindOrderType,
	"Currency":   KindCurrency,
	"SectorId":   KindSectorId,
	"FieldId":    KindFieldId,
}

// Charset restricts the runes of a String parameter.
type Charset int

const (
	CharsetNote Charset = iota // any printable rune
	CharsetName                // letters, digits, space and a few punctuations
	CharsetId                  // ASCII letters, digits and ':', '_', '.', '-'
)

var charsetNames = map[string]Charset{"Note": CharsetNote, "Name": CharsetName, "Id": CharsetId}

func (c Charset) allows(r rune) bool {
	switch c {
	case CharsetName:
		return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(" -_.,&()'+/#", r)
	case CharsetId:
		return isSymbolRune(r) || r == ':'
	default:
		return !unicode.IsControl(r)
	}
}

// UnitSeparator is reserved for storage field delimiting and never accepted in values.
const UnitSeparator = '\x1f'

// MaxIdLen is the maximum length of PurhaceId and TradeId values.
const MaxIdLen = 50

// Param declares one parameter of a command.
type Param struct {
	Name     string
	Kind     Kind
	Optional bool
	Min, Max *decimal.Decimal // inclusive bounds of a Decimal, nil when unbounded.
	MinLen   int
	MaxLen   int
	Charset  Charset
}

// parseTemplate parses a parameter template.
//
// A template is a space separated list of "Name=Kind[:arg...]". A '?' before
// the kind marks an optional parameter. Arguments are:
//
//	Decimal:min:max                  inclusive bounds, empty for unbounded
//	String:minLen:maxLen:charset     charset is one of Note, Name, Id
func parseTemplate(tpl string) ([]Param, error) {
	var params []Param
	for _, field := range strings.Fields(tpl) {
		name, spec, ok := strings.Cut(field, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid template field %q", field)
		}
		p := Param{Name: name}
		if strings.HasPrefix(spec, "?") {
			p.Optional = true
			spec = spec[1:]
		}
		args := strings.Split(spec, ":")
		kind, ok := kindNames[args[0]]
		if !ok {
			return nil, fmt.Errorf("unknown kind %q for %s", args[0], name)
		}
		p.Kind = kind
		args = args[1:]

		switch kind {
		case KindDecimal:
			if len(args) != 2 {
				return nil, fmt.Errorf("%s: Decimal wants min:max", name)
			}
			var err error
			if p.Min, err = bound(args[0]); err != nil {
				return nil, fmt.Errorf("%s: min: %w", name, err)
			}
			if p.Max, err = bound(args[1]); err != nil {
				return nil, fmt.Errorf("%s: max: %w", name, err)
			}
		case KindString:
			if len(args) != 3 {
				return nil, fmt.Errorf("%s: String wants minLen:maxLen:charset", name)
			}
			var err error
			if p.MinLen, err = strconv.Atoi(args[0]); err != nil {
				return nil, fmt.Errorf("%s: minLen: %w", name, err)
			}
			if p.MaxLen, err = strconv.Atoi(args[1]); err != nil {
				return nil, fmt.Errorf("%s: maxLen: %w", name, err)
			}
			if p.Charset, ok = charsetNames[args[2]]; !ok {
				return nil, fmt.Errorf("%s: unknown charset %q", name, args[2])
			}
		case KindPfName:
			p.MinLen, p.MaxLen, p.Charset = 1, 40, CharsetName
		case KindPurhaceId, KindTradeId, KindPurhaceRef, KindTradeRef:
			p.MaxLen, p.Charset = MaxIdLen, CharsetId
		default:
			if len(args) != 0 {
				return nil, fmt.Errorf("%s: %s takes no argument", name, args[0])
			}
		}
		params = append(params, p)
	}
	return params, nil
}

// KindName returns the template name of the parameter kind.
func (p Param) KindName() string {
	for name, k := range kindNames {
		if k == p.Kind {
			return name
		}
	}
	return fmt.Sprintf("Kind(%d)", int(p.Kind))
}

func bound(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func mustParseTemplate(tpl string) []Param {
	params, err := parseTemplate(tpl)
	if err != nil {
		panic(err)
	}
	return params
}

// newID generates a globally unique identifier with the given prefix.
var newID = func(prefix string) string { return prefix + uuid.NewString() }

// Args holds the typed values of a validated command.
type Args struct {
	values map[string]any
}

// Has reports whether the parameter has a value.
func (a Args) Has(name string) bool { _, ok := a.values[name]; return ok }

func (a Args) Str(name string) string          { v, _ := a.values[name].(string); return v }
func (a Args) SRef(name string) SRef           { v, _ := a.values[name].(SRef); return v }
func (a Args) Date(name string) date.Date      { v, _ := a.values[name].(date.Date); return v }
func (a Args) Int(name string) int             { v, _ := a.values[name].(int); return v }
func (a Args) AlarmType(name string) AlarmType { v, _ := a.values[name].(AlarmType); return v }
func (a Args) OrderType(name string) OrderType { v, _ := a.values[name].(OrderType); return v }

// Dec returns the decimal value of name, or zero.
func (a Args) Dec(name string) decimal.Decimal {
	v, ok := a.values[name].(decimal.Decimal)
	if !ok {
		return decimal.Zero
	}
	return v
}

// DecOr returns the decimal value of name, or def when it has no value.
func (a Args) DecOr(name string, def decimal.Decimal) decimal.Decimal {
	if !a.Has(name) {
		return def
	}
	return a.Dec(name)
}

// maxDecimalScale bounds the exponent of Decimal values.
const maxDecimalScale = 30

// validate parses the supplied values against the params, in order. The first
// failing parameter aborts the whole validation.
func validate(params []Param, supplied map[string]string) (Args, error) {
	names := make([]string, 0, len(supplied))
	for name := range supplied {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if !hasParam(params, name) {
			return Args{}, paramErr(name, "unknown parameter")
		}
	}
	args := Args{values: make(map[string]any, len(params))}
	for _, p := range params {
		raw, given := supplied[p.Name]
		v, err := p.parse(raw, given)
		if err != nil {
			return Args{}, err
		}
		if v != nil {
			args.values[p.Name] = v
		}
	}
	return args, nil
}

func hasParam(params []Param, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// parse returns the typed value, or nil for an absent optional value.
func (p Param) parse(raw string, given bool) (any, error) {
	if strings.ContainsRune(raw, UnitSeparator) {
		return nil, paramErr(p.Name, "contains the reserved unit separator")
	}

	// Strings distinguish the empty value from the missing one, other kinds do not.
	if p.Optional && (!given || (raw == "" && p.Kind != KindString)) {
		return nil, nil
	}

	switch p.Kind {
	case KindDecimal:
		if raw == "" {
			return nil, paramErr(p.Name, "is required")
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, paramErr(p.Name, "%q is not a decimal", raw)
		}
		// the text form of a decimal has about |exponent| digits.
		if e := d.Exponent(); e < -maxDecimalScale || e > maxDecimalScale || d.NumDigits() > 2*maxDecimalScale {
			return nil, paramErr(p.Name, "%q is out of the decimal range", raw)
		}
		if p.Min != nil && d.LessThan(*p.Min) {
			return nil, paramErr(p.Name, "%s is below the minimum %s", d, p.Min)
		}
		if p.Max != nil && d.GreaterThan(*p.Max) {
			return nil, paramErr(p.Name, "%s is above the maximum %s", d, p.Max)
		}
		return d, nil

	case KindString, KindPfName:
		if err := p.checkString(raw); err != nil {
			return nil, err
		}
		return raw, nil

	case KindPurhaceId, KindTradeId:
		if raw == "" {
			if p.Kind == KindPurhaceId {
				return newID("PID:"), nil
			}
			return newID("TID:"), nil
		}
		if err := p.checkString(raw); err != nil {
			return nil, err
		}
		return raw, nil

	case KindPurhaceRef, KindTradeRef:
		if raw == "" {
			return nil, paramErr(p.Name, "is required")
		}
		if err := p.checkString(raw); err != nil {
			return nil, err
		}
		return raw, nil

	case KindDate:
		d, err := date.Parse(raw)
		if err != nil {
			return nil, paramErr(p.Name, "%v", err)
		}
		return d, nil

	case KindSRef:
		s, err := ParseSRef(raw)
		if err != nil {
			return nil, paramErr(p.Name, "%v", err)
		}
		return s, nil

	case KindAlarmType:
		t, err := ParseAlarmType(raw)
		if err != nil {
			return nil, paramErr(p.Name, "%v", err)
		}
		return t, nil

	case KindOrderType:
		t, err := ParseOrderType(raw)
		if err != nil {
			return nil, paramErr(p.Name, "%v", err)
		}
		return t, nil

	case KindCurrency:
		code := strings.ToUpper(raw)
		if len(code) != 3 || money.GetCurrency(code) == nil {
			return nil, paramErr(p.Name, "unknown currency %q", raw)
		}
		return code, nil

	case KindSectorId:
		return rangedInt(p.Name, raw, MaxSectors)
	case KindFieldId:
		return rangedInt(p.Name, raw, MaxFields)
	}
	panic(fmt.Sprintf("unhandled parameter kind %d", p.Kind))
}

func (p Param) checkString(s string) error {
	n := len([]rune(s))
	if n < p.MinLen {
		if n == 0 {
			return paramErr(p.Name, "is required")
		}
		return paramErr(p.Name, "must be at least %d characters", p.MinLen)
	}
	if p.MaxLen > 0 && n > p.MaxLen {
		return paramErr(p.Name, "must be at most %d characters", p.MaxLen)
	}
	for _, r := range s {
		if !p.Charset.allows(r) {
			return paramErr(p.Name, "character %q is not permitted", r)
		}
	}
	// "] " would end a bracketed value early once the command is written back.
	if strings.Contains(s, "] ") {
		return paramErr(p.Name, `must not contain "] "`)
	}
	return nil
}

func rangedInt(name, raw string, n int) (any, error) {
	i, err := strconv.Atoi(raw)
	if err != nil {
		return nil, paramErr(name, "%q is not an integer", raw)
	}
	if i < 0 || i >= n {
		return nil, paramErr(name, "%d is out of range [0,%d]", i, n-1)
	}
	return i, nil
}

// format renders a typed value back into its text form.
func format(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case decimal.Decimal:
		return v.String()
	case fmt.Stringer:
		return v.String()
	case int:
		return strconv.Itoa(v)
	}
	panic(fmt.Sprintf("unhandled parameter value %T", v))
}
