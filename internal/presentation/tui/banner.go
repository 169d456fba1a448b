package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Markov banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{" __  __            _              ", "#818cf8"},
		{"|  \\/  | __ _ _ __| | _______   __", "#a78bfa"},
		{"| |\\/| |/ _` | '__| |/ / _ \\ \\ / /", "#c084fc"},
		{"| |  | | (_| | |  |   < (_) \\ V / ", "#e879f9"},
		{"|_|  |_|\\__,_|_|  |_|\\_\\___/ \\_/  ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
