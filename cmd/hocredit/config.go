package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gardar/hocredit/pkg/editor"
	"github.com/gardar/hocredit/pkg/ocr"
	"github.com/gardar/hocredit/pkg/pdfocr"
)

// config is the YAML configuration file:
//
//	paste_offset: 10
//	direction: auto        # ltr, rtl or auto
//	ocr:
//	  engine: tesseract    # or documentai
//	  languages: [eng]
//	  documentai:
//	    project_id: "your-gcp-project-id"
//	    location: "us"
//	    processor_id: "your-processor-id"
//	pdf:
//	  layer_name: "OCR Text"
//	  font: {name: Helvetica, size: 10, ascent_ratio: 0.718}
type config struct {
	PasteOffset int              `yaml:"paste_offset"`
	Direction   string           `yaml:"direction"`
	OCR         ocr.Config       `yaml:"ocr"`
	PDF         pdfocr.OCRConfig `yaml:"pdf"`
}

func defaultConfig() config {
	ed := editor.DefaultConfig()
	return config{
		PasteOffset: ed.PasteOffset,
		Direction:   ed.Direction.String(),
		OCR:         ocr.DefaultConfig(),
		PDF:         pdfocr.DefaultConfig(),
	}
}

// loadConfig reads a YAML file over the defaults. An empty path returns the
// defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := cfg.editor(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// editor returns the editing options of the configuration.
func (c config) editor() (editor.Config, error) {
	dir, ok := editor.ParseDirection(c.Direction)
	if !ok {
		return editor.Config{}, fmt.Errorf("invalid direction %q", c.Direction)
	}
	if c.PasteOffset < 0 {
		return editor.Config{}, fmt.Errorf("paste offset must not be negative, got %d", c.PasteOffset)
	}
	return editor.Config{PasteOffset: c.PasteOffset, Direction: dir}, nil
}
