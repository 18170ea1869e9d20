package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`  _ __ ___   __ _ _ __   __ _  ___`, "#fbbf24"},
	{` | '_ ' _ \ / _' | '_ \ / _' |/ _ \`, "#f59e0b"},
	{` | | | | | | (_| | | | | (_| | (_) |`, "#f97316"},
	{` |_| |_| |_|\__,_|_| |_|\__, |\___/`, "#ea580c"},
	{`                        |___/`, "#c2410c"},
}

// PrintBanner writes the mango banner to w, colored for the terminal behind it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
