package clipboard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/cespare/xxhash/v2"
)

// ErrDecode is returned when a stored image payload cannot be decoded
var ErrDecode = errors.New("malformed image payload")

// Fingerprint returns a stable hash of raw content bytes
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}

func textHash(text string) uint64 {
	return xxhash.Sum64String(text)
}

// EncodeImage encodes raw RGBA pixels as base64 PNG.
// The pixel buffer must hold exactly width*height*4 bytes.
func EncodeImage(img *RawImage) (string, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return "", fmt.Errorf("invalid image dimensions")
	}
	if len(img.Pix) != img.Width*img.Height*4 {
		return "", fmt.Errorf("pixel buffer is %d bytes, want %d", len(img.Pix), img.Width*img.Height*4)
	}

	nrgba := &image.NRGBA{
		Pix:    img.Pix,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, nrgba); err != nil {
		return "", fmt.Errorf("failed to encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeImage turns a stored base64 PNG back into PNG bytes, verifying that
// the payload really is a PNG image.
func DecodeImage(b64 string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrDecode, err)
	}
	if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: png: %v", ErrDecode, err)
	}
	return data, nil
}

// DecodePNG decodes PNG bytes into a tightly packed RGBA pixel buffer
func DecodePNG(data []byte) (*RawImage, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: png: %v", ErrDecode, err)
	}

	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) || nrgba.Stride != b.Dx()*4 {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	return &RawImage{Width: b.Dx(), Height: b.Dy(), Pix: nrgba.Pix}, nil
}
