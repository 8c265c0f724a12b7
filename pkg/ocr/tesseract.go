package ocr

// TesseractEngine recognises text with a local Tesseract install through
// gosseract. It is only functional when built with the "ocr" tag.
type TesseractEngine struct {
	languages []string
}

// NewTesseract returns a Tesseract engine using languages when a request
// carries no hints of its own.
func NewTesseract(languages ...string) *TesseractEngine {
	return &TesseractEngine{languages: languages}
}

func (e *TesseractEngine) Name() string { return "tesseract" }
