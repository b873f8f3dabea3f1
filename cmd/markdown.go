package cmd

import (
	"flag"
	"fmt"

	"github.com/charmbracelet/glamour"
)

var rawMarkdown = flag.Bool("raw", false, "Print markdown without terminal rendering")

// printMarkdown renders md for the terminal and prints it.
func printMarkdown(md string) {
	if *rawMarkdown {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
