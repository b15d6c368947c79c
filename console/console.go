// Package console renders the human-readable reports printed by the stages.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// Banner writes a section title framed by rules.
func Banner(w io.Writer, title string) {
	rule := strings.Repeat("=", 80)
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, bannerStyle.Render(title), rule)
}

// Heading writes a sub-section title.
func Heading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", headingStyle.Render(title))
}

// Table writes rows under headers with a normal border.
func Table(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

// KeyValues writes an ordered two-column table.
func KeyValues(w io.Writer, pairs [][2]string) {
	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{p[0], p[1]}
	}
	Table(w, []string{"Metric", "Value"}, rows)
}

// List writes each item on its own line with a marker.
func List(w io.Writer, marker string, items []string) {
	for _, item := range items {
		fmt.Fprintf(w, "  %s %s\n", marker, item)
	}
}
