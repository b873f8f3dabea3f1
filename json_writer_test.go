package folio

import (
	"encoding/json"
	"testing"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

func TestJsonObjectWriter(t *testing.T) {
	testCases := []struct {
		name  string
		build func(w *jsonObjectWriter)
		want  string
	}{
		{
			name:  "empty object",
			build: func(w *jsonObjectWriter) {},
			want:  `{}`,
		},
		{
			name: "ledger values",
			build: func(w *jsonObjectWriter) {
				w.Append("sref", SRef("NYSE$X")).Append("units", dec("10.5")).Append("date", day("2024-01-10"))
			},
			want: `{"sref":"NYSE$X","units":"10.5","date":"2024-01-10"}`,
		},
		{
			name: "embed object",
			build: func(w *jsonObjectWriter) {
				w.Append("a", 1).Embed(json.RawMessage(`{"c":3,"d":4}`)).Append("b", 2)
			},
			want: `{"a":1,"c":3,"d":4,"b":2}`,
		},
		{
			name: "embed empty object",
			build: func(w *jsonObjectWriter) {
				w.Append("a", 1).Embed(json.RawMessage(` { } `)).Append("b", 2)
			},
			want: `{"a":1,"b":2}`,
		},
		{
			name: "optional fields",
			build: func(w *jsonObjectWriter) {
				// a zero value is added by Append.
				w.Append("a", 0).
					Optional("b", "").
					Optional("c", 0).
					Optional("d", decimal.Zero).
					Optional("e", date.Date{}).
					Optional("f", "hello").
					Optional("g", dec("0.5"))
			},
			want: `{"a":0,"f":"hello","g":"0.5"}`,
		},
		{
			name: "embed from",
			build: func(w *jsonObjectWriter) {
				w.Append("a", 1).EmbedFrom(struct {
					C int    `json:"c"`
					D string `json:"d"`
				}{C: 3, D: "hello"}).Append("b", 2)
			},
			want: `{"a":1,"c":3,"d":"hello","b":2}`,
		},
		{
			name: "prefix from",
			build: func(w *jsonObjectWriter) {
				w.Append("tradeId", "T1").PrefixFrom("sale", jsonSale{Date: day("2024-02-01"), Price: dec("60"), Fee: dec("1"), Rate: dec("1")})
			},
			want: `{"tradeId":"T1","saleDate":"2024-02-01","salePrice":"60","saleFee":"1","saleRate":"1"}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var w jsonObjectWriter
			tc.build(&w)
			got, err := w.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("MarshalJSON() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestJsonObjectWriterErrors(t *testing.T) {
	testCases := []struct {
		name  string
		build func(w *jsonObjectWriter)
	}{
		{name: "unsupported value", build: func(w *jsonObjectWriter) { w.Append("f", func() {}) }},
		{name: "prefix a non object", build: func(w *jsonObjectWriter) { w.PrefixFrom("sale", []int{1}) }},
		{name: "error is sticky", build: func(w *jsonObjectWriter) { w.Append("c", make(chan int)).Append("a", 1) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var w jsonObjectWriter
			tc.build(&w)
			if _, err := w.MarshalJSON(); err == nil {
				t.Errorf("MarshalJSON() error = nil, want an error")
			}
		})
	}
}
