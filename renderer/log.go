package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/folio"
)

// mdRenderer accumulates a markdown document.
type mdRenderer struct {
	strings.Builder
}

// Printf formats according to a format specifier and writes to the renderer's buffer.
func (r *mdRenderer) Printf(format string, args ...any) {
	fmt.Fprintf(r, format, args...)
}

// ResultsMarkdown renders the results of executed commands as a list.
func ResultsMarkdown(results []folio.Result) string {
	var r mdRenderer
	failed := 0
	for _, res := range results {
		if res.OK() {
			r.Printf("- ✅ `%s`\n", res.Command)
			continue
		}
		failed++
		r.Printf("- ❌ `%s`: %v\n", res.Command, res.Err)
	}
	if len(results) > 0 {
		r.Printf("\n%d command(s), %d failed\n", len(results), failed)
	}
	return r.String()
}

// EventsMarkdown renders the events of a quote evaluation as a table.
func EventsMarkdown(events []folio.Event) string {
	var r mdRenderer
	if len(events) == 0 {
		r.Printf("No event.\n")
		return r.String()
	}
	r.Printf("| Date | Stock | Event | Portfolio | Type | Level | Units | Close |\n")
	r.Printf("|:---|:---|:---|:---|:---|---:|---:|---:|\n")
	for _, e := range events {
		units := ""
		if !e.Units.IsZero() {
			units = e.Units.String()
		}
		r.Printf("| %s | %s | %s | %s | %s | %s | %s | %s |\n", e.Date, e.SRef, e.Kind, e.PfName, e.Type, e.Level, units, e.Close)
	}
	return r.String()
}
