package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`  _   _     _      _        _   `,
	` | |_| |__ (_) ___| | _____| |_ `,
	` | __| '_ \| |/ __| |/ / _ \ __|`,
	` | |_| | | | | (__|   <  __/ |_ `,
	`  \__|_| |_|_|\___|_|\_\___|\__|`,
}

var bannerColors = []string{"#34d399", "#10b981", "#059669", "#047857", "#065f46"}

// PrintBanner writes the ASCII banner to w using profile p.
func PrintBanner(w io.Writer, p termenv.Profile) {
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, p.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w)
}
