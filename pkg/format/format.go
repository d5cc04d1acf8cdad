package format

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/berrythewa/clipdeck/internal/types"
)

// Formatter renders clipboard history for the terminal
type Formatter struct {
	options Options
}

// New creates a new formatter with the given options
func New(opts Options) *Formatter {
	return &Formatter{
		options: opts,
	}
}

// NewDefault creates a new formatter with default options
func NewDefault() *Formatter {
	return New(DefaultOptions())
}

// FormatEntry formats a single history entry
func (f *Formatter) FormatEntry(entry *types.ClipboardEntry) string {
	if entry == nil {
		return ColorizeIf("No content", Gray, f.options.UseColors)
	}

	header := f.formatHeader(entry)

	if f.options.Compact {
		preview := f.formatPreview(entry, 50)
		return header + " " + DimIf(preview, f.options.UseColors)
	}

	parts := []string{header}
	if f.options.ShowMetadata {
		parts = append(parts, f.formatMetadata(entry))
	}

	if body := f.formatContentData(entry); body != "" {
		parts = append(parts, CreateBox("Content", body, f.options))
	}

	return strings.Join(parts, "\n")
}

// FormatEntryList formats history entries, newest first
func (f *Formatter) FormatEntryList(entries []types.ClipboardEntry) string {
	if len(entries) == 0 {
		return ColorizeIf("No clipboard history", Gray, f.options.UseColors)
	}

	parts := []string{f.formatListHeader(entries), ""}

	for i := range entries {
		index := fmt.Sprintf("[%d]", i+1)

		if f.options.Compact {
			parts = append(parts, index+" "+f.FormatEntry(&entries[i]))
			continue
		}
		parts = append(parts, DimIf(index, f.options.UseColors))
		parts = append(parts, f.FormatEntry(&entries[i]))
		if i < len(entries)-1 {
			parts = append(parts, CreateSeparator(f.options))
		}
	}

	return strings.Join(parts, "\n")
}

// formatHeader renders the short id, pin marker, icon and type
func (f *Formatter) formatHeader(entry *types.ClipboardEntry) string {
	parts := []string{BoldIf(ShortID(entry.ID), f.options.UseColors)}

	if entry.Pinned {
		if f.options.UseIcons {
			parts = append(parts, PinIcon)
		} else {
			parts = append(parts, "(pinned)")
		}
	}

	if f.options.UseIcons {
		if icon, ok := ContentIcons[entry.Content.Type]; ok {
			parts = append(parts, icon)
		}
	}

	typeStr := string(entry.Content.Type)
	if color, ok := ContentColors[entry.Content.Type]; ok {
		typeStr = ColorizeIf(typeStr, color, f.options.UseColors)
	}
	parts = append(parts, typeStr)

	return strings.Join(parts, " ")
}

func (f *Formatter) formatMetadata(entry *types.ClipboardEntry) string {
	parts := []string{
		"ID: " + entry.ID,
		"Copied: " + FormatRelativeTime(entry.Timestamp),
	}

	switch entry.Content.Type {
	case types.TypeText:
		parts = append(parts, "Size: "+FormatSize(int64(len(entry.Content.Text))))
	case types.TypeImage:
		if img := entry.Content.Image; img != nil {
			parts = append(parts, fmt.Sprintf("Size: %s", FormatSize(int64(base64.StdEncoding.DecodedLen(len(img.Base64))))))
		}
	}

	return DimIf(strings.Join(parts, " • "), f.options.UseColors)
}

func (f *Formatter) formatContentData(entry *types.ClipboardEntry) string {
	switch entry.Content.Type {
	case types.TypeImage:
		return FormatImage(entry.Content.Image, f.options)
	default:
		return FormatText(entry.Content.Text, f.options)
	}
}

func (f *Formatter) formatPreview(entry *types.ClipboardEntry, maxLen int) string {
	switch entry.Content.Type {
	case types.TypeImage:
		return FormatImagePreview(entry.Content.Image, maxLen)
	default:
		if entry.Content.Text == "" {
			return "(empty)"
		}
		return FormatTextPreview(entry.Content.Text, maxLen)
	}
}

func (f *Formatter) formatListHeader(entries []types.ClipboardEntry) string {
	pinned := 0
	for _, e := range entries {
		if e.Pinned {
			pinned++
		}
	}
	title := fmt.Sprintf("Clipboard History (%d entries, %d pinned)", len(entries), pinned)
	return ColorizeIf(title, BrightBlue, f.options.UseColors)
}

// FormatEntry formats a single history entry with given options
func FormatEntry(entry *types.ClipboardEntry, opts Options) string {
	return New(opts).FormatEntry(entry)
}

// FormatEntryList formats history entries with given options
func FormatEntryList(entries []types.ClipboardEntry, opts Options) string {
	return New(opts).FormatEntryList(entries)
}
