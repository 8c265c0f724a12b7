// Package ocr runs text recognition on page image regions and returns the
// result as an hOCR element tree that the editor can splice into a document.
//
// Two engines are provided: Tesseract (local, requires building with the
// "ocr" tag and the Tesseract C libraries) and Google Document AI (remote).
// Recognition is driven asynchronously through a Dispatcher so that edits
// never block on an engine.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/gardar/hocredit/pkg/hocr"
)

var (
	ErrUnknownEngine = errors.New("unknown ocr engine")
	ErrEmptyImage    = errors.New("empty image")
	ErrEmptyRegion   = errors.New("region outside image")
	ErrNoResult      = errors.New("engine returned no page")
	ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")
)

// Input describes a recognition request.
type Input struct {
	Image     []byte          // encoded page image
	Region    image.Rectangle // region to recognise, zero means the whole image
	Languages []string        // language hints, engine specific codes
}

// Engine recognises text in an image region. The returned element is an
// ocr_page whose coordinates are relative to the region origin.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (hocr.Element, error)
}

// Config selects and configures an engine.
type Config struct {
	Engine     string           `yaml:"engine"`
	Languages  []string         `yaml:"languages"`
	DocumentAI DocumentAIConfig `yaml:"documentai"`
}

// DefaultConfig returns a Tesseract configuration for English.
func DefaultConfig() Config {
	return Config{
		Engine:    "tesseract",
		Languages: []string{"eng"},
	}
}

// New returns the engine named by cfg.Engine.
func New(cfg Config) (Engine, error) {
	switch cfg.Engine {
	case "tesseract", "":
		return NewTesseract(cfg.Languages...), nil
	case "documentai":
		return NewDocumentAI(cfg.DocumentAI), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}

// languages returns the request hints, falling back to defaults.
func languages(in Input, defaults []string) []string {
	if len(in.Languages) > 0 {
		return in.Languages
	}
	return defaults
}
