package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	// page scans come in any of these
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageFormat reports the decoder name of an encoded image, upper-cased
// the way fpdf expects image types.
func ImageFormat(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image config: %w", err)
	}
	return strings.ToUpper(format), nil
}

// ImageBounds returns the pixel bounds of an encoded image.
func ImageBounds(data []byte) (image.Rectangle, error) {
	if len(data) == 0 {
		return image.Rectangle{}, ErrEmptyImage
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("failed to decode image config: %w", err)
	}
	return image.Rect(0, 0, cfg.Width, cfg.Height), nil
}

// CropPNG decodes data and returns region as PNG. A zero region returns the
// whole image re-encoded. The region is clipped to the image bounds.
func CropPNG(data []byte, region image.Rectangle) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if !region.Empty() {
		region = region.Add(img.Bounds().Min).Intersect(img.Bounds())
		if region.Empty() {
			return nil, fmt.Errorf("%w: %v", ErrEmptyRegion, region)
		}
		sub, ok := img.(interface {
			SubImage(r image.Rectangle) image.Image
		})
		if !ok {
			return nil, fmt.Errorf("image type %T does not support cropping", img)
		}
		img = sub.SubImage(region)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode region: %w", err)
	}
	return buf.Bytes(), nil
}
