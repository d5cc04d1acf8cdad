package format

import (
	"io"

	"github.com/berrythewa/clipdeck/internal/types"
)

// Options controls formatting behavior
type Options struct {
	UseColors    bool
	UseIcons     bool
	MaxWidth     int  // Max content width (0 = no limit)
	MaxLines     int  // Max content lines (0 = no limit)
	ShowMetadata bool // Show id, timestamps, size
	Compact      bool // Use compact single-line format
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		UseColors:    true,
		UseIcons:     true,
		MaxWidth:     80,
		MaxLines:     10,
		ShowMetadata: true,
		Compact:      false,
	}
}

// CompactOptions returns options for compact single-line display
func CompactOptions() Options {
	opts := DefaultOptions()
	opts.Compact = true
	opts.ShowMetadata = false
	opts.MaxLines = 1
	return opts
}

// ForWriter turns colors and icons off when w is not a terminal
func (o Options) ForWriter(w io.Writer) Options {
	if !IsTTY(w) {
		o.UseColors = false
		o.UseIcons = false
	}
	return o
}

// PinIcon marks pinned entries
const PinIcon = "📌"

// ContentIcons maps content types to Unicode icons
var ContentIcons = map[types.ContentType]string{
	types.TypeText:  "📝",
	types.TypeImage: "🖼️",
}

// ContentColors maps content types to colors
var ContentColors = map[types.ContentType]string{
	types.TypeText:  Cyan,
	types.TypeImage: Magenta,
}
