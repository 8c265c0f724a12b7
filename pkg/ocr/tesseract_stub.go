//go:build !ocr

package ocr

import (
	"context"

	"github.com/gardar/hocredit/pkg/hocr"
)

// Recognize always fails with ErrOCRNotEnabled in builds without the "ocr"
// tag.
func (e *TesseractEngine) Recognize(ctx context.Context, in Input) (hocr.Element, error) {
	return hocr.Element{}, ErrOCRNotEnabled
}
