package format

import (
	"encoding/base64"
	"fmt"

	"github.com/berrythewa/clipdeck/internal/types"
)

func imageSize(img *types.ImageData) int64 {
	return int64(base64.StdEncoding.DecodedLen(len(img.Base64)))
}

// FormatImage formats image content for display
func FormatImage(img *types.ImageData, opts Options) string {
	if img == nil {
		return "[No image data]"
	}
	return fmt.Sprintf("[PNG image %dx%d - %s]", img.Width, img.Height, FormatSize(imageSize(img)))
}

// FormatImagePreview creates a short preview of image content
func FormatImagePreview(img *types.ImageData, maxLen int) string {
	if img == nil {
		return "[Image]"
	}
	return TruncateText(fmt.Sprintf("[Image %dx%d]", img.Width, img.Height), maxLen)
}
