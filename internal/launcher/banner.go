package launcher

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Banner is printed before veridex runs.
var Banner = []string{
	"NOTE: appcompat is still under development. It can report",
	"API uses that do not execute at runtime, and reflection uses",
	"that do not exist. It can also miss on reflection uses.",
}

var bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

// PrintBanner writes the banner, one line at a time.
func PrintBanner(w io.Writer, color bool) {
	for _, line := range Banner {
		if color {
			line = bannerStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}
