package clipboard

import (
	"fmt"

	atottoClip "github.com/atotto/clipboard"
)

// AtottoClipboard is a fallback clipboard implementation using the atotto/clipboard library
// It only supports text content
type AtottoClipboard struct{}

// NewAtottoClipboard returns a new Atotto-based clipboard implementation
func NewAtottoClipboard() *AtottoClipboard {
	return &AtottoClipboard{}
}

func (c *AtottoClipboard) Name() string { return "atotto" }

func (c *AtottoClipboard) ReadText() (string, error) {
	text, err := atottoClip.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return text, nil
}

// ReadImage never reports an image since the command line tools behind atotto are text only
func (c *AtottoClipboard) ReadImage() (*RawImage, error) {
	return nil, nil
}

func (c *AtottoClipboard) WriteText(text string) error {
	return atottoClip.WriteAll(text)
}

func (c *AtottoClipboard) WriteImage([]byte) error {
	return ErrImageUnsupported
}
