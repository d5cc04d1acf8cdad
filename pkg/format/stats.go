package format

import (
	"fmt"
	"strings"
)

// Stat is one labelled line of a statistics block
type Stat struct {
	Label string
	Value string
}

// FormatStats formats a titled block of statistics for display
func FormatStats(title string, stats []Stat, opts Options) string {
	parts := []string{ColorizeIf(title, BrightBlue, opts.UseColors), ""}

	width := 0
	for _, s := range stats {
		if len(s.Label) > width {
			width = len(s.Label)
		}
	}
	for _, s := range stats {
		parts = append(parts, formatStatLine(s.Label, s.Value, width, opts))
	}

	return strings.Join(parts, "\n")
}

// formatStatLine formats a statistics line with label and value
func formatStatLine(label, value string, width int, opts Options) string {
	padding := strings.Repeat(" ", width-len(label))
	if opts.UseColors {
		return fmt.Sprintf("  %s%s:%s%s %s", BrightCyan, label, Reset, padding, value)
	}
	return fmt.Sprintf("  %s:%s %s", label, padding, value)
}
