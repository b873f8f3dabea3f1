package folio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// newRichLedger returns a ledger using every kind of entity.
func newRichLedger(t *testing.T) *Ledger {
	t.Helper()
	l := newTestLedger(t)
	mustExec(t, l,
		"Set-Sector SectorId=[0] Name=[Region]",
		"Edit-Sector SectorId=[0] FieldId=[2] Name=[Europe]",
		"Follow-Sector SRef=[NYSE$X] SectorId=[0] FieldId=[2]",
		"Note-Stock SRef=[NYSE$X] Note=[core position]",
		"Add-Alarm SRef=[NYSE$X] AlarmType=[Under] Level=[40] Note=[buy more]",
		"Add-Alarm SRef=[NYSE$X] AlarmType=[TrailingSellP] Level=[70] Params=[8]",
		"Add-Portfolio PfName=[Q]",
		"Add-Holding PfName=[P] SRef=[NYSE$X] PurhaceId=[B1] Date=[2024-01-10] Units=[10] Price=[50] Fee=[0.1] CurrencyRate=[0.9]",
		"Add-Divident PfName=[P] PurhaceId=[B1] PaymentPerUnit=[0.5] ExDivDate=[2024-03-01] PaymentDate=[2024-03-15] Currency=[USD]",
		"Add-Holding PfName=[P] SRef=[NYSE$X] PurhaceId=[B2] Date=[2024-01-12] Units=[10] Price=[52]",
		"Round-Holding PfName=[P] PurhaceId=[B2] TradeId=[T1] Units=[4] Date=[2024-02-01] Price=[60] Note=[took profit]",
		"Add-Holding PfName=[Q] SRef=[NASDAQ$Y] PurhaceId=[B1] Date=[2024-01-05] Units=[3] Price=[100]",
		"Add-Order PfName=[P] SRef=[NYSE$X] Type=[Sell] Units=[6] Price=[65] LastDate=[2024-06-30]",
		"Add-Order PfName=[Q] SRef=[NASDAQ$Y] Type=[Buy] Units=[1] Price=[90] LastDate=[2024-06-30]",
		"Set-Order PfName=[Q] SRef=[NASDAQ$Y] Price=[90] FillDate=[2024-02-02]",
	)
	return l
}

func TestBackupRoundTrip(t *testing.T) {
	l := newRichLedger(t)
	data, err := l.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}

	got := NewLedger("USD")
	got.SetLogger(quietLogger)
	if err := got.RestoreBackup(data); err != nil {
		t.Fatalf("RestoreBackup() error = %v\n%s", err, data)
	}
	if diff := diffLedger(l, got); diff != "" {
		t.Errorf("restored ledger mismatch (-want +got):\n%s", diff)
	}

	// a restored ledger exports the same backup.
	again, err := got.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}
	if diff := cmp.Diff(string(data), string(again)); diff != "" {
		t.Errorf("backup is not stable (-first +second):\n%s", diff)
	}
}

func TestBackupTradeLine(t *testing.T) {
	l := newRichLedger(t)
	data, err := l.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}
	want := `{"type":"trade","portfolio":"P","sref":"NYSE$X","purhaceId":"B2","units":"4","originalUnits":"10","price":"52","fee":"0","date":"2024-01-12","rate":"1","tradeId":"T1","saleDate":"2024-02-01","salePrice":"60","saleFee":"0","saleRate":"1","saleNote":"took profit"}`
	if !bytes.Contains(data, []byte(want+"\n")) {
		t.Errorf("CreateBackup() =\n%s\nwant a line\n%s", data, want)
	}
}

func TestPartialBackup(t *testing.T) {
	l := newRichLedger(t)
	full, err := l.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}
	partial, err := l.CreatePartialBackup(ParseSymbols("X")...)
	if err != nil {
		t.Fatalf("CreatePartialBackup() error = %v", err)
	}

	fullLines := strings.Split(strings.TrimSpace(string(full)), "\n")
	partialLines := strings.Split(strings.TrimSpace(string(partial)), "\n")
	for _, line := range partialLines {
		if !strings.Contains(line, `"NYSE$X"`) && line != `{"type":"portfolio","name":"P"}` {
			t.Errorf("partial backup line %s is not about NYSE$X", line)
		}
		if !contains(fullLines, line) {
			t.Errorf("partial backup line %s is not in the full backup", line)
		}
	}
	if contains(partialLines, `{"type":"portfolio","name":"Q"}`) {
		t.Errorf("partial backup contains portfolio Q which does not use NYSE$X")
	}
}

func contains(lines []string, line string) bool {
	for _, l := range lines {
		if l == line {
			return true
		}
	}
	return false
}

func TestRestorePartialBackup(t *testing.T) {
	l := newRichLedger(t)
	partial, err := l.CreatePartialBackup("NYSE$X")
	if err != nil {
		t.Fatalf("CreatePartialBackup() error = %v", err)
	}

	// work on X and Y after the backup.
	mustExec(t, l,
		"Delete-Holding PfName=[P] PurhaceId=[B1]",
		"DeleteAll-Alarm SRef=[NYSE$X]",
		"Add-Holding PfName=[P] SRef=[NASDAQ$Y] PurhaceId=[B9] Date=[2024-04-01] Units=[1] Price=[110]",
	)
	if err := l.RestoreBackup(partial); err != nil {
		t.Fatalf("RestoreBackup() error = %v", err)
	}

	want := newRichLedger(t)
	wantX, _ := want.Stock("NYSE$X")
	gotX, _ := l.Stock("NYSE$X")
	if diff := cmp.Diff(wantX, gotX, cmpOpts); diff != "" {
		t.Errorf("restored stock mismatch (-want +got):\n%s", diff)
	}
	p := mustPortfolio(t, l, "P")
	ids := make(map[string]SRef)
	for _, h := range p.Holdings {
		ids[h.PurhaceId] = h.SRef
	}
	if diff := cmp.Diff(map[string]SRef{"B1": "NYSE$X", "B2": "NYSE$X", "B9": "NASDAQ$Y"}, ids); diff != "" {
		t.Errorf("holdings mismatch (-want +got):\n%s", diff)
	}
	if err := l.Check(); err != nil {
		t.Errorf("Check() error = %v", err)
	}
}

func TestRestoreInvalidPartialBackup(t *testing.T) {
	l := newRichLedger(t)
	before := l.Clone()
	partial := `{"type":"stock","sref":"NYSE$X","name":"X","currency":"USD","sectors":[-1,-1,-1]}
{"type":"holding","portfolio":"Nope","sref":"NYSE$X","purhaceId":"Z","units":"1","originalUnits":"1","price":"1","fee":"0","date":"2024-01-01","rate":"1"}
`
	if err := l.RestoreBackup([]byte(partial)); err == nil {
		t.Fatalf("RestoreBackup() error = nil, want an error")
	}
	if diff := diffLedger(before, l); diff != "" {
		t.Errorf("ledger changed by a failed partial restore:\n%s", diff)
	}
}

func TestRestoreCorruptedBackup(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{name: "not json", data: "{not json"},
		{name: "unknown type", data: `{"type":"meta","version":1,"homeCurrency":"USD"}` + "\n" + `{"type":"bond"}`},
		{name: "bad version", data: `{"type":"meta","version":99,"homeCurrency":"USD"}`},
		{name: "broken invariant", data: `{"type":"meta","version":1,"homeCurrency":"USD"}
{"type":"portfolio","name":"P"}
{"type":"follow","portfolio":"P","sref":"NYSE$X"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := newRichLedger(t)
			if err := l.RestoreBackup([]byte(tc.data)); err == nil {
				t.Fatalf("RestoreBackup() error = nil, want an error")
			}
			if got := l.HomeCurrency(); got != "EUR" {
				t.Errorf("HomeCurrency() = %q, want the default EUR", got)
			}
			if len(l.Portfolios()) != 0 || len(l.Stocks()) != 0 {
				t.Errorf("ledger not reset: %v %v", l.Portfolios(), l.Stocks())
			}
		})
	}
}

func TestRestoreGeneratesIds(t *testing.T) {
	sequentialIDs(t)
	data := `{"type":"meta","version":1,"homeCurrency":"EUR"}
{"type":"stock","sref":"NYSE$X","name":"X","currency":"USD","sectors":[-1,-1,-1]}
{"type":"portfolio","name":"P"}
{"type":"holding","portfolio":"P","sref":"NYSE$X","purhaceId":"","units":"5","price":"10","fee":"0","date":"2024-01-01","rate":"1"}
{"type":"trade","portfolio":"P","sref":"NYSE$X","units":"4","price":"10","fee":"0","date":"2024-01-01","rate":"1","saleDate":"2024-02-01","salePrice":"12","saleFee":"0","saleRate":"1"}
`
	l := NewLedger("EUR")
	l.SetLogger(quietLogger)
	if err := l.RestoreBackup([]byte(data)); err != nil {
		t.Fatalf("RestoreBackup() error = %v", err)
	}
	p := mustPortfolio(t, l, "P")
	if got := p.Holdings[0]; got.PurhaceId != "PID:1" || !got.OriginalUnits.Equal(dec("5")) {
		t.Errorf("holding = %+v, want PurhaceId PID:1 with 5 original units", got)
	}
	if got := p.Trades[0]; got.PurhaceId != "PID:2" || got.Sold.TradeId != "TID:3" {
		t.Errorf("trade ids = %q, %q want PID:2, TID:3", got.PurhaceId, got.Sold.TradeId)
	}
}

func TestStorageCallbacks(t *testing.T) {
	l := newRichLedger(t)
	if !l.Unsaved() {
		t.Fatalf("Unsaved() = false after commands")
	}
	data, err := l.OnDataSaveStorage()
	if err != nil {
		t.Fatalf("OnDataSaveStorage() error = %v", err)
	}
	if l.Unsaved() {
		t.Errorf("Unsaved() = true after a save")
	}

	loaded := NewLedger("EUR")
	loaded.SetLogger(quietLogger)
	if err := loaded.OnDataLoadStorage(data); err != nil {
		t.Fatalf("OnDataLoadStorage() error = %v", err)
	}
	if diff := diffLedger(l, loaded); diff != "" {
		t.Errorf("loaded ledger mismatch (-want +got):\n%s", diff)
	}
	if loaded.Unsaved() {
		t.Errorf("Unsaved() = true after a load")
	}
	if err := loaded.OnDataLoadStorage(nil); err != nil || len(loaded.Portfolios()) != 0 {
		t.Errorf("OnDataLoadStorage(nil) = %v, %v want an empty ledger", err, loaded.Portfolios())
	}
}
