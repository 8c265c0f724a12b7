package pdfocr

import (
	"io"
	"log/slog"
)

// OCRConfig holds user options for writing the OCR text layer.
type OCRConfig struct {
	Debug     bool         `yaml:"debug"`      // draw the text in red with word boxes
	Force     bool         `yaml:"force"`      // apply even if the source PDF already has an OCR layer
	LayerName string       `yaml:"layer_name"` // base name of the layer, the page number is appended
	StartPage int          `yaml:"start_page"` // first page of the source PDF to overlay
	Font      FontConfig   `yaml:"font"`
	Logger    *slog.Logger `yaml:"-"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() OCRConfig {
	return OCRConfig{
		LayerName: "OCR Text", // "OCR Text (Page X)" in the final PDF
		StartPage: 1,
		Font:      DefaultFont,
	}
}

func (c OCRConfig) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger.With("component", "pdfocr")
}

// FontConfig contains font settings for OCR text rendering
type FontConfig struct {
	Name        string  `yaml:"name"`         // e.g. "Helvetica"
	Style       string  `yaml:"style"`        // "", "B", "I", "BI"
	Size        float64 `yaml:"size"`         // default font size
	AscentRatio float64 `yaml:"ascent_ratio"` // vertical positioning ratio
}

// DefaultFont is Helvetica, which is tried and tested for the OCR layer
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Size:        10,
	AscentRatio: 0.718,
}
