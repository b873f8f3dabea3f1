package folio

import (
	"slices"
	"testing"
)

func TestTokenize(t *testing.T) {
	testCases := []struct {
		line string
		want []string
	}{
		{line: "Note=[multi word note]", want: []string{"Note=multi word note"}},
		{line: "Add-Portfolio PfName=[My PF]", want: []string{"Add-Portfolio", "PfName=My PF"}},
		{line: "Add-Portfolio PfName=P", want: []string{"Add-Portfolio", "PfName=P"}},
		{line: "  a   b  ", want: []string{"a", "b"}},
		{line: "[x y] z", want: []string{"x y", "z"}},
		// ']' only closes before a space or the end of line.
		{line: "Note=[a]b] c", want: []string{"Note=a]b", "c"}},
		// '[' only opens after a space or '='.
		{line: "x[y z]", want: []string{"x[y", "z]"}},
		{line: "Note=[]", want: []string{"Note="}},
		{line: "Note=[] Fee=[1]", want: []string{"Note=", "Fee=1"}},
		// unbalanced brackets keep the rest of the line.
		{line: "Note=[never closed value", want: []string{"Note=never closed value"}},
		{line: "", want: nil},
	}
	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			got := Tokenize(tc.line)
			if !slices.Equal(got, tc.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tc.line, got, tc.want)
			}
		})
	}
}

func TestParseCommand(t *testing.T) {
	testCases := []struct {
		line    string
		want    Command
		wantErr bool
	}{
		{
			line: "Add-Portfolio PfName=[Long Term]",
			want: NewCommand(AddPortfolio, "PfName", "Long Term"),
		},
		{
			line: "Delete-Order PfName=[P] SRef=[NYSE$X] Price=[45]",
			want: NewCommand(DeleteOrder, "PfName", "P", "SRef", "NYSE$X", "Price", "45"),
		},
		{line: "", wantErr: true},
		{line: "Sell-Holding PfName=[P]", wantErr: true},
		{line: "Add-Portfolio P", wantErr: true},
		{line: "Add-Portfolio PfName=[P] PfName=[Q]", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			got, err := ParseCommand(tc.line)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseCommand(%q) error = %v, wantErr %v", tc.line, err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if got.String() != tc.want.String() {
				t.Errorf("ParseCommand(%q) = %q, want %q", tc.line, got, tc.want)
			}
		})
	}
}

// TestCommandStringRoundTrip checks that values written back by String are
// read identically.
func TestCommandStringRoundTrip(t *testing.T) {
	values := []string{"", "plain", "with spaces", "trailing]", "[leading", "a]b", "=x="}
	for _, v := range values {
		c := NewCommand(NoteStock, "SRef", "NYSE$X", "Note", v)
		got, err := ParseCommand(c.String())
		if err != nil {
			t.Fatalf("ParseCommand(%q) error = %v", c.String(), err)
		}
		if got.Params["Note"] != v {
			t.Errorf("ParseCommand(%q) Note = %q, want %q", c.String(), got.Params["Note"], v)
		}
	}
}
