package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the carepath banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Teal to green, clinical and calm.
	lines := []struct {
		text  string
		color string
	}{
		{"                                      _   _     ", "#22d3ee"},
		{"   ___ __ _ _ __ ___ _ __   __ _| |_| |__  ", "#2dd4bf"},
		{"  / __/ _` | '__/ _ \\ '_ \\ / _` | __| '_ \\ ", "#34d399"},
		{" | (_| (_| | | |  __/ |_) | (_| | |_| | | |", "#4ade80"},
		{"  \\___\\__,_|_|  \\___| .__/ \\__,_|\\__|_| |_|", "#a3e635"},
		{"                    |_|                    ", "#a3e635"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
