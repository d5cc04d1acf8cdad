package format

import (
	"strings"
)

// FormatText formats text content for display
func FormatText(text string, opts Options) string {
	if text == "" {
		return ""
	}

	if opts.MaxLines > 0 {
		text = TruncateLines(text, opts.MaxLines)
	}

	if opts.MaxWidth > 0 {
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			lines[i] = TruncateText(line, opts.MaxWidth)
		}
		text = strings.Join(lines, "\n")
	}

	return text
}

// FormatTextPreview creates a short single-line preview of text content
func FormatTextPreview(text string, maxLen int) string {
	if text == "" {
		return ""
	}

	preview := strings.ReplaceAll(text, "\r\n", " ")
	preview = strings.ReplaceAll(preview, "\n", " ")
	preview = strings.ReplaceAll(preview, "\r", " ")
	preview = strings.ReplaceAll(preview, "\t", " ")

	return TruncateText(preview, maxLen)
}
