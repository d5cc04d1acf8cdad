package clipboard

import (
	"errors"
	"fmt"

	atottoClip "github.com/atotto/clipboard"
	xclip "golang.design/x/clipboard"
	"go.uber.org/zap"
)

var (
	// ErrClipboardUnavailable is returned when no OS clipboard backend can be opened
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
	// ErrImageUnsupported is returned by text-only backends asked to handle images
	ErrImageUnsupported = errors.New("clipboard backend does not support images")
)

// RawImage is an uncompressed, non-premultiplied RGBA pixel buffer
type RawImage struct {
	Width  int
	Height int
	Pix    []byte
}

// Clipboard is the OS clipboard surface used by the monitor and the coordinator
type Clipboard interface {
	Name() string
	ReadText() (string, error)
	// ReadImage returns nil, nil when the clipboard holds no image
	ReadImage() (*RawImage, error)
	WriteText(text string) error
	// WriteImage takes PNG encoded bytes
	WriteImage(png []byte) error
}

// NativeClipboard talks to the display server through golang.design/x/clipboard
type NativeClipboard struct{}

// NewNativeClipboard initializes the native clipboard backend
func NewNativeClipboard() (*NativeClipboard, error) {
	if err := xclip.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return &NativeClipboard{}, nil
}

func (c *NativeClipboard) Name() string { return "native" }

func (c *NativeClipboard) ReadText() (string, error) {
	return string(xclip.Read(xclip.FmtText)), nil
}

func (c *NativeClipboard) ReadImage() (*RawImage, error) {
	data := xclip.Read(xclip.FmtImage)
	if len(data) == 0 {
		return nil, nil
	}
	return DecodePNG(data)
}

func (c *NativeClipboard) WriteText(text string) error {
	if xclip.Write(xclip.FmtText, []byte(text)) == nil {
		return fmt.Errorf("failed to write text to clipboard")
	}
	return nil
}

func (c *NativeClipboard) WriteImage(png []byte) error {
	if xclip.Write(xclip.FmtImage, png) == nil {
		return fmt.Errorf("failed to write image to clipboard")
	}
	return nil
}

// NewSystemClipboard returns the best available backend: the native one when
// the display server can be reached, otherwise the text-only atotto backend.
func NewSystemClipboard(logger *zap.Logger) (Clipboard, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	native, err := NewNativeClipboard()
	if err == nil {
		logger.Debug("Using native clipboard backend")
		return native, nil
	}
	logger.Warn("Native clipboard backend unavailable, trying text-only fallback", zap.Error(err))

	if atottoClip.Unsupported {
		return nil, ErrClipboardUnavailable
	}
	return NewAtottoClipboard(), nil
}
