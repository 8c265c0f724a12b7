//go:build ocr

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/gardar/hocredit/pkg/hocr"
)

// Recognize crops the region, runs Tesseract on it and parses its hOCR
// output. gosseract cannot be interrupted, so ctx is only checked before and
// after the call.
func (e *TesseractEngine) Recognize(ctx context.Context, in Input) (hocr.Element, error) {
	if err := ctx.Err(); err != nil {
		return hocr.Element{}, err
	}
	img, err := CropPNG(in.Image, in.Region)
	if err != nil {
		return hocr.Element{}, err
	}

	c := gosseract.NewClient()
	defer c.Close()
	if err := c.SetImageFromBytes(img); err != nil {
		return hocr.Element{}, fmt.Errorf("set image: %w", err)
	}
	if langs := languages(in, e.languages); len(langs) > 0 {
		if err := c.SetLanguage(langs...); err != nil {
			return hocr.Element{}, fmt.Errorf("set language: %w", err)
		}
	}
	out, err := c.HOCRText()
	if err != nil {
		return hocr.Element{}, fmt.Errorf("tesseract: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return hocr.Element{}, err
	}

	doc, err := hocr.ParseHOCR([]byte(out))
	if err != nil {
		return hocr.Element{}, fmt.Errorf("parse tesseract output: %w", err)
	}
	return doc.Pages[0], nil
}
