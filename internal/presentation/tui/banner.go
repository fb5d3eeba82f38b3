package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`  _  _                 _         ___                 _   `,
	` | || | ___  __ _  _ _| |_  ___ / _ \  _  _  ___  ___| |_ `,
	` | __ |/ -_)/ _' || '_|  _|(_-<| (_) || || |/ -_)(_-<|  _|`,
	` |_||_|\___|\__,_||_|  \__|/__/ \__\_\ \_,_|\___|/__/ \__|`,
}

// bannerColors is a rose-to-violet gradient, one colour per line.
var bannerColors = []string{"#fb7185", "#f472b6", "#e879f9", "#c084fc"}

// PrintBanner writes the Hearts Quest title and version to w.
// Colours follow the terminal profile of w, so pipes get plain text.
func PrintBanner(w io.Writer, version string) {
	p := termenv.NewOutput(w).ColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, p.String(line).Foreground(p.Color(bannerColors[i])))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, p.String("  v"+v+"  ♥").Foreground(p.Color("#fda4af")).Faint())
	}
	fmt.Fprintln(w)
}
