package format

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/berrythewa/clipdeck/internal/types"
	"github.com/stretchr/testify/assert"
)

func plainOptions() Options {
	opts := DefaultOptions()
	opts.UseColors = false
	opts.UseIcons = false
	return opts
}

func TestFormatEntryList(t *testing.T) {
	pinned := types.NewTextEntry("keep me")
	pinned.Pinned = true
	img := types.NewImageEntry("iVBORw0KGgoAAAAN", 640, 480, 1)
	entries := []types.ClipboardEntry{*pinned, *img, *types.NewTextEntry("line one\nline two")}

	out := FormatEntryList(entries, CompactOptions().ForWriter(&bytes.Buffer{}))
	lines := strings.Split(out, "\n")
	assert.Equal(t, "Clipboard History (3 entries, 1 pinned)", lines[0])
	assert.Equal(t, "[1] "+ShortID(pinned.ID)+" (pinned) Text keep me", lines[2])
	assert.Equal(t, "[2] "+ShortID(img.ID)+" Image [Image 640x480]", lines[3])
	assert.Equal(t, "[3] "+ShortID(entries[2].ID)+" Text line one line two", lines[4])

	assert.Equal(t, "No clipboard history", FormatEntryList(nil, plainOptions()))
}

func TestFormatEntryDetail(t *testing.T) {
	e := types.NewTextEntry("hello\nworld")
	out := FormatEntry(e, plainOptions())
	assert.Contains(t, out, "ID: "+e.ID)
	assert.Contains(t, out, "Copied: just now")
	assert.Contains(t, out, "Size: 11 B")
	assert.Contains(t, out, "▼ Content\n  hello\n  world")

	img := types.NewImageEntry("AAAAAAAA", 2, 3, 9)
	assert.Contains(t, FormatEntry(img, plainOptions()), "[PNG image 2x3 - 6 B]")

	colored := DefaultOptions()
	assert.Contains(t, FormatEntry(e, colored), Reset)
}

func TestTruncation(t *testing.T) {
	assert.Equal(t, "abc", TruncateText("abc", 5))
	assert.Equal(t, "ab...", TruncateText("abcdefgh", 5))
	assert.Equal(t, "→→", TruncateText("→→→", 2))
	assert.Equal(t, "a\nb\n... (2 more lines)", TruncateLines("a\nb\nc\nd", 2))
	assert.Equal(t, "a b c", FormatTextPreview("a\r\nb\tc", 10))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", relativeTime(now, now.Add(-10*time.Second)))
	assert.Equal(t, "1 minute ago", relativeTime(now, now.Add(-time.Minute)))
	assert.Equal(t, "5 hours ago", relativeTime(now, now.Add(-5*time.Hour)))
	assert.Equal(t, "2 days ago", relativeTime(now, now.Add(-49*time.Hour)))
	assert.Equal(t, "Apr 1, 2024", relativeTime(now, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestFormatSizeAndStats(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "2.0 MB", FormatSize(2*1024*1024))

	out := FormatStats("Daemon", []Stat{{"PID", "42"}, {"Entries", "3"}}, plainOptions())
	assert.Equal(t, "Daemon\n\n  PID:     42\n  Entries: 3", out)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", ShortID("abc"))
	assert.Equal(t, "12345678", ShortID("1234567890"))
}
