package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentType is the tag of the content variant on the wire
type ContentType string

const (
	TypeText  ContentType = "Text"
	TypeImage ContentType = "Image"
)

// PreviewTextMaxLen is the number of characters kept in a text preview
const PreviewTextMaxLen = 100

// ImageData is a PNG image stored as base64 along with its dimensions
type ImageData struct {
	Base64 string `json:"base64"`
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// Content is either a text payload or an image payload, never both
type Content struct {
	Type  ContentType
	Text  string
	Image *ImageData
}

// TextContent returns a Text content value
func TextContent(text string) Content {
	return Content{Type: TypeText, Text: text}
}

// ImageContent returns an Image content value
func ImageContent(img ImageData) Content {
	return Content{Type: TypeImage, Image: &img}
}

// IsText reports whether the content holds text equal to s
func (c Content) IsText(s string) bool {
	return c.Type == TypeText && c.Text == s
}

type wireContent struct {
	Type ContentType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON encodes the content as {"type": ..., "data": ...}
func (c Content) MarshalJSON() ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch c.Type {
	case TypeText:
		data, err = json.Marshal(c.Text)
	case TypeImage:
		if c.Image == nil {
			return nil, fmt.Errorf("image content without image data")
		}
		data, err = json.Marshal(c.Image)
	default:
		return nil, fmt.Errorf("unknown content type %q", c.Type)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireContent{Type: c.Type, Data: data})
}

// UnmarshalJSON decodes the {"type": ..., "data": ...} form
func (c *Content) UnmarshalJSON(b []byte) error {
	var w wireContent
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	switch w.Type {
	case TypeText:
		var s string
		if err := json.Unmarshal(w.Data, &s); err != nil {
			return fmt.Errorf("decode text content: %w", err)
		}
		*c = TextContent(s)
	case TypeImage:
		var img ImageData
		if err := json.Unmarshal(w.Data, &img); err != nil {
			return fmt.Errorf("decode image content: %w", err)
		}
		*c = ImageContent(img)
	default:
		return fmt.Errorf("unknown content type %q", w.Type)
	}
	return nil
}

// ClipboardEntry is a single item of clipboard history
type ClipboardEntry struct {
	ID        string    `json:"id"`
	Content   Content   `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Pinned    bool      `json:"pinned"`
	Preview   string    `json:"preview"`
}

// NewTextEntry builds an unpinned text entry with a truncated preview
func NewTextEntry(text string) *ClipboardEntry {
	return newEntry(TextContent(text), TextPreview(text))
}

// NewImageEntry builds an unpinned image entry. The fingerprint rides in the
// preview so that persisted entries keep it without a schema change.
func NewImageEntry(b64 string, width, height uint32, fingerprint uint64) *ClipboardEntry {
	preview := fmt.Sprintf("Image (%dx%d) #%d", width, height, fingerprint)
	return newEntry(ImageContent(ImageData{Base64: b64, Width: width, Height: height}), preview)
}

func newEntry(content Content, preview string) *ClipboardEntry {
	return &ClipboardEntry{
		ID:        uuid.New().String(),
		Content:   content,
		Timestamp: time.Now().UTC(),
		Preview:   preview,
	}
}

// TextPreview truncates text to PreviewTextMaxLen characters
func TextPreview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewTextMaxLen {
		return text
	}
	return string(runes[:PreviewTextMaxLen]) + "..."
}

// ImageFingerprint extracts the fingerprint stored in an image preview.
// It returns false for text entries or previews without a parsable hash.
func (e *ClipboardEntry) ImageFingerprint() (uint64, bool) {
	if e == nil || e.Content.Type != TypeImage {
		return 0, false
	}
	parts := strings.Split(e.Preview, "#")
	if len(parts) < 2 {
		return 0, false
	}
	fp, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return fp, true
}

// Clone returns a deep copy of the entry
func (e *ClipboardEntry) Clone() ClipboardEntry {
	c := *e
	if e.Content.Image != nil {
		img := *e.Content.Image
		c.Content.Image = &img
	}
	return c
}
