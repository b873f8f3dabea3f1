package folio

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func kinds(events []Event) []EventKind {
	var ks []EventKind
	for _, e := range events {
		ks = append(ks, e.Kind)
	}
	return ks
}

// TestOrderFillAndExpiry fills a buy order on a day whose low reaches its
// price, and deletes it once past its last date.
func TestOrderFillAndExpiry(t *testing.T) {
	l := newTestLedger(t)
	mustExec(t, l, "Add-Order PfName=[P] SRef=[NYSE$X] Type=[Buy] Units=[10] Price=[45] LastDate=[2024-01-31]")

	events, err := l.Evaluate(Quote{SRef: "NYSE$X", Date: day("2024-01-15"), Close: dec("46"), Low: dec("44"), High: dec("47")}, SweepOptions{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if diff := cmp.Diff([]EventKind{OrderFilled}, kinds(events)); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	p := mustPortfolio(t, l, "P")
	if len(p.Orders) != 1 || p.Orders[0].FillDate != day("2024-01-15") {
		t.Fatalf("orders = %v, want one filled on 2024-01-15", p.Orders)
	}

	// a filled order does not fill twice.
	events, err = l.Evaluate(Quote{SRef: "NYSE$X", Date: day("2024-01-16"), Close: dec("44")}, SweepOptions{})
	if err != nil || len(events) != 0 {
		t.Fatalf("Evaluate() = %v, %v want no event", events, err)
	}

	events, err = l.Evaluate(Quote{SRef: "NYSE$X", Date: day("2024-02-01"), Close: dec("50")}, SweepOptions{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if diff := cmp.Diff([]EventKind{OrderExpired}, kinds(events)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if n := len(mustPortfolio(t, l, "P").Orders); n != 0 {
		t.Errorf("got %d orders, want the expired order deleted", n)
	}
}

func TestOrderFills(t *testing.T) {
	testCases := []struct {
		name  string
		order string
		quote Quote
		want  bool
	}{
		{name: "buy above low", order: "Buy", quote: Quote{Close: dec("46"), Low: dec("44")}, want: true},
		{name: "buy at low", order: "Buy", quote: Quote{Close: dec("46"), Low: dec("45")}, want: true},
		{name: "buy under low", order: "Buy", quote: Quote{Close: dec("46"), Low: dec("45.5")}, want: false},
		{name: "buy without range", order: "Buy", quote: Quote{Close: dec("44.9")}, want: true},
		{name: "sell under high", order: "Sell", quote: Quote{Close: dec("44"), High: dec("46")}, want: true},
		{name: "sell over high", order: "Sell", quote: Quote{Close: dec("40"), High: dec("44")}, want: false},
		{name: "sell without range", order: "Sell", quote: Quote{Close: dec("45")}, want: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			typ, _ := ParseOrderType(tc.order)
			o := Order{Type: typ, PricePerUnit: dec("45")}
			if got := o.fills(tc.quote); got != tc.want {
				t.Errorf("fills() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAlarms(t *testing.T) {
	testCases := []struct {
		name     string
		alarm    Alarm
		quote    Quote
		want     bool
		distance string // against the quote close, rounded to 2 decimals.
	}{
		{
			name:     "under crossed",
			alarm:    Alarm{Type: AlarmUnder, Level: dec("40")},
			quote:    Quote{Close: dec("50"), Low: dec("39"), PrevClose: dec("42")},
			want:     true,
			distance: "-20",
		},
		{
			name:     "under already crossed",
			alarm:    Alarm{Type: AlarmUnder, Level: dec("40")},
			quote:    Quote{Close: dec("32"), Low: dec("30"), PrevClose: dec("39")},
			want:     false,
			distance: "25",
		},
		{
			name:     "under not reached",
			alarm:    Alarm{Type: AlarmUnder, Level: dec("40")},
			quote:    Quote{Close: dec("50"), Low: dec("41")},
			want:     false,
			distance: "-20",
		},
		{
			name:     "over crossed",
			alarm:    Alarm{Type: AlarmOver, Level: dec("60")},
			quote:    Quote{Close: dec("50"), High: dec("61"), PrevClose: dec("58")},
			want:     true,
			distance: "-20",
		},
		{
			name:     "over reached without range",
			alarm:    Alarm{Type: AlarmOver, Level: dec("60")},
			quote:    Quote{Close: dec("60")},
			want:     true,
			distance: "0",
		},
		{
			name:     "trailing not reached",
			alarm:    Alarm{Type: AlarmTrailingSellP, Level: dec("100"), Params: "10"},
			quote:    Quote{Close: dec("95"), Low: dec("91"), PrevClose: dec("96")},
			want:     false,
			distance: "-5.26",
		},
		{
			name:     "trailing crossed",
			alarm:    Alarm{Type: AlarmTrailingSellP, Level: dec("100"), Params: "10"},
			quote:    Quote{Close: dec("90"), Low: dec("89"), PrevClose: dec("95")},
			want:     true,
			distance: "0",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.alarm.Triggered(tc.quote); got != tc.want {
				t.Errorf("Triggered() = %v, want %v", got, tc.want)
			}
			if got := tc.alarm.Distance(tc.quote.Close).Round(2); !got.Equal(dec(tc.distance)) {
				t.Errorf("Distance() = %v, want %v", got, tc.distance)
			}
		})
	}
}

func TestAlarmPass(t *testing.T) {
	l := newTestLedger(t)
	mustExec(t, l,
		"Add-Alarm SRef=[NYSE$X] AlarmType=[Under] Level=[40] Note=[buy more]",
		"Add-Alarm SRef=[NYSE$X] AlarmType=[Over] Level=[60]",
		"Add-Alarm SRef=[NYSE$X] AlarmType=[TrailingSellP] Level=[45] Params=[10]",
	)
	q := Quote{SRef: "NYSE$X", Date: day("2024-01-15"), Close: dec("41"), Low: dec("39"), High: dec("43"), PrevClose: dec("42")}

	events, err := l.Evaluate(q, SweepOptions{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	want := []Event{{Kind: AlarmTriggered, Date: q.Date, SRef: q.SRef, Type: "Under", Level: dec("40"), Close: q.Close, Note: "buy more"}}
	if diff := cmp.Diff(want, events, cmpOpts); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	// the trailing alarm line is 40.5.
	events, err = l.Evaluate(q, SweepOptions{TrailingAlarms: true})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if diff := cmp.Diff([]EventKind{AlarmTriggered, AlarmTriggered}, kinds(events)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestHoldingPass(t *testing.T) {
	l := newTestLedger(t)
	mustExec(t, l,
		"Add-Portfolio PfName=[Q]",
		"Add-Holding PfName=[P] SRef=[NYSE$X] PurhaceId=[B1] Date=[2024-01-10] Units=[10] Price=[50] Fee=[1]",
		"Add-Holding PfName=[Q] SRef=[NYSE$X] PurhaceId=[B1] Date=[2023-01-10] Units=[10] Price=[50] Fee=[1]",
	)
	q := Quote{SRef: "NYSE$X", Date: day("2024-01-20"), Close: dec("52"), PrevClose: dec("50")}

	events, err := l.Evaluate(q, SweepOptions{})
	if err != nil || len(events) != 0 {
		t.Fatalf("Evaluate() = %v, %v want no event with the holding pass off", events, err)
	}

	events, err = l.Evaluate(q, SweepOptions{LookbackMin: 0, LookbackMax: 30})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	want := []Event{{Kind: PositionWinning, Date: q.Date, SRef: q.SRef, PfName: "P", Type: "winning", Level: dec("51"), Units: dec("10"), Close: q.Close}}
	if diff := cmp.Diff(want, events, cmpOpts); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	q.Close, q.PrevClose = dec("50"), dec("52")
	events, _ = l.Evaluate(q, SweepOptions{LookbackMax: 30})
	if diff := cmp.Diff([]EventKind{PositionLosing}, kinds(events)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateErrors(t *testing.T) {
	l := newTestLedger(t)
	if _, err := l.Evaluate(Quote{SRef: "NYSE$Z", Date: day("2024-01-20"), Close: dec("1")}, SweepOptions{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Evaluate(unknown stock) error = %v, want %v", err, ErrNotFound)
	}
	if _, err := l.Evaluate(Quote{SRef: "NYSE$X", Date: day("2024-01-20")}, SweepOptions{}); err == nil {
		t.Errorf("Evaluate(no close) error = nil, want an error")
	}
	// an undated quote would fill orders without recording the fill date.
	mustExec(t, l, "Add-Order PfName=[P] SRef=[NYSE$X] Type=[Buy] Units=[10] Price=[45] LastDate=[2024-01-31]")
	events, err := l.Evaluate(Quote{SRef: "NYSE$X", Close: dec("44")}, SweepOptions{})
	var perr *ParamError
	if !errors.As(err, &perr) || perr.Param != "Date" || len(events) != 0 {
		t.Errorf("Evaluate(no date) = %v, %v want a Date *ParamError and no event", events, err)
	}
	if o := mustPortfolio(t, l, "P").Orders[0]; o.Filled() {
		t.Errorf("order filled by an undated quote: %+v", o)
	}
	mustExec(t, l, "Delete-Order PfName=[P] SRef=[NYSE$X] Price=[45]")

	// a failing pass does not prevent the others.
	mustExec(t, l, "Add-Alarm SRef=[NYSE$X] AlarmType=[Under] Level=[40]")
	events, err = l.Evaluate(Quote{SRef: "NYSE$X", Date: day("2024-01-20"), Close: dec("39"), PrevClose: dec("41")}, SweepOptions{LookbackMin: 10, LookbackMax: 5})
	if err == nil {
		t.Errorf("Evaluate(bad lookback) error = nil, want an error")
	}
	if diff := cmp.Diff([]EventKind{AlarmTriggered}, kinds(events)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestEventJSON(t *testing.T) {
	e := Event{Kind: OrderFilled, Date: day("2024-01-15"), SRef: "NYSE$X", PfName: "P", Type: "Buy", Level: dec("45"), Units: dec("10"), Close: dec("46")}
	got, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"kind":"OrderFilled","date":"2024-01-15","sref":"NYSE$X","portfolio":"P","type":"Buy","level":"45","units":"10","close":"46"}`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}
