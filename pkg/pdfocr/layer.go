package pdfocr

import (
	"fmt"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/hocredit/pkg/hocr"
)

// transform maps hOCR pixel coordinates to PDF points.
type transform func(x, y float64) (float64, float64)

// scaleTo returns a transform rescaling a hocrW x hocrH page to pdfW x pdfH.
func scaleTo(hocrW, hocrH, pdfW, pdfH float64) transform {
	return func(x, y float64) (float64, float64) {
		return x / hocrW * pdfW, y / hocrH * pdfH
	}
}

// layerTitle names the layer of a page, e.g. "OCR Text (Page 2)".
func layerTitle(name string, pageNum int) string {
	if pageNum > 0 {
		return fmt.Sprintf("%s (Page %d)", name, pageNum)
	}
	return name
}

// drawOCRLayer draws every word of page onto its own layer. It fails when
// more than a tenth of the words could not be encoded as ISO-8859-1.
func drawOCRLayer(pdf *fpdf.Fpdf, page hocr.Element, cfg OCRConfig, pageNum int, tr transform) error {
	layer := pdf.AddLayer(layerTitle(cfg.LayerName, pageNum), true)
	pdf.BeginLayer(layer)
	pdf.SetFont(cfg.Font.Name, cfg.Font.Style, cfg.Font.Size)

	if cfg.Debug {
		pdf.SetTextColor(255, 0, 0)
	} else {
		pdf.SetAlpha(0.0, "Normal")
	}

	words := page.Words()
	encodingErrors := 0
	for _, w := range words {
		if !drawWord(pdf, w, tr, cfg) {
			encodingErrors++
		}
	}
	pdf.EndLayer()

	if encodingErrors > 0 {
		cfg.logger().Warn("words not representable in ISO-8859-1",
			"page", pageNum, "count", encodingErrors, "words", len(words))
	}
	if len(words) > 0 && encodingErrors > len(words)/10 {
		return fmt.Errorf("character encoding issues in %d of %d words", encodingErrors, len(words))
	}
	return pdf.Error()
}

// drawWord stretches the word text over its box. It reports false when the
// text had to be written unencoded.
func drawWord(pdf *fpdf.Fpdf, word hocr.Element, tr transform, cfg OCRConfig) bool {
	x, y := tr(word.BBox.X1, word.BBox.Y1)
	x2, y2 := tr(word.BBox.X2, word.BBox.Y2)
	width := x2 - x

	ok := true
	latin1, err := charmap.ISO8859_1.NewEncoder().String(word.Text)
	if err != nil {
		ok = false
		latin1 = word.Text
	}

	if sw := pdf.GetStringWidth(latin1); sw > 0 {
		pdf.SetFontSize(cfg.Font.Size * width / sw)
	}
	fontSize, _ := pdf.GetFontSize()
	ascent := fontSize * cfg.Font.AscentRatio

	pdf.Text(x, y+ascent, latin1)
	pdf.SetFontSize(cfg.Font.Size)

	if cfg.Debug {
		pdf.Rect(x, y, width, y2-y, "D")
	}
	return ok
}
