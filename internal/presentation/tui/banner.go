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
	{`            _                            _ `, "#38bdf8"},
	{` _ __ ___  | |__   ___   ___ ___   ___  _ __ __| |`, "#22d3ee"},
	{`| '__/ _ \ | '_ \ / _ \ / __/ _ \ / _ \| '__/ _' |`, "#2dd4bf"},
	{`| | | (_) || |_) | (_) | (_| (_) | (_) | | | (_| |`, "#34d399"},
	{`|_|  \___/ |_.__/ \___/ \___\___/ \___/|_|  \__,_|`, "#4ade80"},
}

// PrintBanner writes the startup banner and version to w. Colors are dropped
// when w is not a terminal.
func PrintBanner(w io.Writer, version string) {
	out := NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  robot goal coordinator v"+version).Faint())
	fmt.Fprintln(w)
}

// NewOutput returns a termenv output for w, using the ASCII profile unless w is
// a terminal.
func NewOutput(w io.Writer) *termenv.Output {
	if !IsTerminal(w) {
		return termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	}
	return termenv.NewOutput(w)
}
