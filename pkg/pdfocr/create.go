package pdfocr

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/gardar/hocredit/pkg/hocr"
	"github.com/gardar/hocredit/pkg/ocr"
)

// fpdf only embeds these, anything else is re-encoded as PNG first.
var embeddable = map[string]bool{"PNG": true, "JPEG": true, "GIF": true}

// pageImage returns the image in a format fpdf can embed and its type.
func pageImage(data []byte) ([]byte, string, error) {
	format, err := ocr.ImageFormat(data)
	if err != nil {
		return nil, "", err
	}
	if embeddable[format] {
		return data, format, nil
	}
	png, err := ocr.CropPNG(data, image.Rectangle{})
	if err != nil {
		return nil, "", fmt.Errorf("convert %s to PNG: %w", format, err)
	}
	return png, "PNG", nil
}

// createPDFFromImages builds a new PDF with one page per hOCR page, sized
// to the page bbox, showing the image under the text layer.
func createPDFFromImages(doc *hocr.HOCR, images [][]byte, cfg OCRConfig) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")

	for i, page := range doc.Pages {
		w, h := page.BBox.X2, page.BBox.Y2
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

		data, imageType, err := pageImage(images[i])
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		name := fmt.Sprintf("img%d", i)
		opts := fpdf.ImageOptions{ReadDpi: false, ImageType: imageType}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")

		if err := drawOCRLayer(pdf, page, cfg, i+1, scaleTo(w, h, w, h)); err != nil {
			return nil, fmt.Errorf("failed to draw OCR layer for page %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// overlayExistingPDF imports the pages of src starting at cfg.StartPage and
// draws the text layer of the matching hOCR page over each one.
func overlayExistingPDF(src []byte, doc *hocr.HOCR, cfg OCRConfig) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "", "")
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(src))

	for i, page := range doc.Pages {
		w, h := page.BBox.X2, page.BBox.Y2
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

		tpl := importer.ImportPageFromStream(pdf, &rs, i+cfg.StartPage, "/MediaBox")
		importer.UseImportedTemplate(pdf, tpl, 0, 0, w, 0)

		if err := drawOCRLayer(pdf, page, cfg, i+1, scaleTo(w, h, w, h)); err != nil {
			return nil, fmt.Errorf("failed to draw OCR layer for page %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
