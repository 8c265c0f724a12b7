// Package pdfocr writes the text of an hOCR document as an invisible,
// searchable layer over page images.
//
// AssembleWithOCR builds a new PDF from the page images. ApplyOCR overlays
// an existing PDF of the same pages, refusing to do so twice unless forced.
package pdfocr

import (
	"errors"
	"fmt"

	"github.com/gardar/hocredit/pkg/hocr"
)

var (
	ErrNoImages       = errors.New("no image data provided")
	ErrEmptyPDF       = errors.New("input PDF data is empty")
	ErrOCRLayerExists = errors.New("file already has an OCR layer")
)

// AssembleWithOCR creates a PDF with one page per hOCR page, each showing the
// matching image under the OCR text.
func AssembleWithOCR(doc *hocr.HOCR, images [][]byte, cfg OCRConfig) ([]byte, error) {
	if err := validate(doc, cfg); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	if len(images) < len(doc.Pages) {
		return nil, fmt.Errorf("not enough images (%d) for hOCR pages (%d)", len(images), len(doc.Pages))
	}
	for i, img := range images {
		if len(img) == 0 {
			return nil, fmt.Errorf("image %d is empty", i+1)
		}
	}
	return createPDFFromImages(doc, images, cfg)
}

// ApplyOCR overlays the OCR text of doc on inputPDF. Page i of doc goes onto
// page StartPage+i of the input.
func ApplyOCR(inputPDF []byte, doc *hocr.HOCR, cfg OCRConfig) ([]byte, error) {
	if err := validate(doc, cfg); err != nil {
		return nil, err
	}
	if len(inputPDF) == 0 {
		return nil, ErrEmptyPDF
	}

	layers, err := CheckExistingOCRLayers(inputPDF, cfg.LayerName)
	if err != nil {
		return nil, fmt.Errorf("layer detection failed: %w", err)
	}
	log := cfg.logger()
	for _, w := range layers.Warnings {
		log.Warn(w)
	}
	if layers.HasOCRLayer {
		if !cfg.Force {
			return nil, fmt.Errorf("%w: %q", ErrOCRLayerExists, layers.OCRLayerName)
		}
		log.Warn("reapplying OCR, the output will hold duplicate text", "layer", layers.OCRLayerName)
	}
	return overlayExistingPDF(inputPDF, doc, cfg)
}

func validate(doc *hocr.HOCR, cfg OCRConfig) error {
	if doc == nil || len(doc.Pages) == 0 {
		return hocr.ErrNoPages
	}
	if cfg.StartPage < 1 {
		return fmt.Errorf("start page must be at least 1, got %d", cfg.StartPage)
	}
	return nil
}
