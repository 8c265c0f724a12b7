// hocredit is a command-line tool for editing hOCR documents.
//
// It loads one page of an hOCR file, runs a YAML edit script against it
// (selection, merge, split, delete, move, crop, text and box edits, copy and
// paste, OCR of page regions, undo and redo) and writes the result back as
// hOCR and optionally as a searchable PDF.
//
// Usage:
//
//	hocredit -hocr page.hocr [options]
//
// Required flags:
//
//	-hocr string      Path to the input hOCR file
//
// Editing options:
//
//	-config string      Path to the YAML configuration file
//	-page int           Index of the page to edit (default 0)
//	-script string      Path to a YAML edit script
//	-image string       Page image, needed for ocr steps and PDF export
//	-ocr-engine string  Override the configured OCR engine (tesseract, documentai)
//
// Output options:
//
//	-output string      Path to save the edited hOCR
//	-pdf string         Path to save a searchable PDF
//	-source-pdf string  Existing PDF to overlay instead of building from -image
//	-overwrite          Overwrite existing output files
//
// Debug options:
//
//	-debug              Log executed, undone and redone steps
//	-debug-api string   Path to save raw Document AI responses as JSON
//
// Example:
//
//	hocredit -hocr page.hocr -image page.png -script fix.yml -output page_fixed.hocr -pdf page.pdf
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/hocredit/pkg/editor"
	"github.com/gardar/hocredit/pkg/ocr"
	"github.com/gardar/hocredit/pkg/pdfocr"
)

type options struct {
	configPath string
	hocrPath   string
	page       int
	scriptPath string
	imagePath  string
	engine     string
	outputPath string
	pdfPath    string
	sourcePDF  string
	overwrite  bool
	debug      bool
	debugAPI   string
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Path to the config YAML file")
	flag.StringVar(&o.hocrPath, "hocr", "", "Path to the input hOCR file (required)")
	flag.IntVar(&o.page, "page", 0, "Index of the page to edit")
	flag.StringVar(&o.scriptPath, "script", "", "Path to a YAML edit script")
	flag.StringVar(&o.imagePath, "image", "", "Page image for OCR steps and PDF export")
	flag.StringVar(&o.engine, "ocr-engine", "", "OCR engine: tesseract or documentai (overrides config)")
	flag.StringVar(&o.outputPath, "output", "", "Path to save the edited hOCR")
	flag.StringVar(&o.pdfPath, "pdf", "", "Path to save a searchable PDF")
	flag.StringVar(&o.sourcePDF, "source-pdf", "", "Existing PDF to overlay with the OCR layer")
	flag.BoolVar(&o.overwrite, "overwrite", false, "Overwrite existing output files")
	flag.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	flag.StringVar(&o.debugAPI, "debug-api", "", "Path to save raw Document AI responses as JSON")
	flag.Parse()

	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if o.hocrPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -hocr flag is required")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o, log); err != nil {
		log.Error("hocredit failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, log *slog.Logger) error {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.engine != "" {
		cfg.OCR.Engine = o.engine
	}
	edCfg, err := cfg.editor()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(o.hocrPath)
	if err != nil {
		return fmt.Errorf("read hOCR: %w", err)
	}
	doc := editor.NewDocument(editor.WithLogger(log), editor.WithConfig(edCfg))
	if err := editor.LoadPage(doc, data, o.page); err != nil {
		return fmt.Errorf("load %s: %w", o.hocrPath, err)
	}
	log.Info("loaded page", "path", o.hocrPath, "page", o.page, "nodes", doc.Len(), "direction", doc.TextDirection())

	var img []byte
	if o.imagePath != "" {
		if img, err = os.ReadFile(o.imagePath); err != nil {
			return fmt.Errorf("read image: %w", err)
		}
	}

	if o.scriptPath != "" {
		if err := runScript(ctx, o, cfg, doc, img, log); err != nil {
			return err
		}
	}

	if o.outputPath != "" {
		out, err := editor.Save(doc)
		if err != nil {
			return fmt.Errorf("generate hOCR: %w", err)
		}
		if err := writeFile(o.outputPath, out, o.overwrite); err != nil {
			return err
		}
		log.Info("saved hOCR", "path", o.outputPath)
	} else if doc.Dirty() {
		log.Warn("edits not saved, see -output")
	}

	if o.pdfPath != "" {
		if err := exportPDF(o, cfg, doc, img, log); err != nil {
			return err
		}
		log.Info("saved PDF", "path", o.pdfPath)
	}
	return nil
}

func runScript(ctx context.Context, o options, cfg config, doc *editor.Document, img []byte, log *slog.Logger) error {
	data, err := os.ReadFile(o.scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	s, err := parseScript(data)
	if err != nil {
		return err
	}

	r := &runner{doc: doc, image: img, log: log.With("component", "script")}
	if len(img) > 0 {
		engine, err := ocr.New(cfg.OCR)
		if err != nil {
			return err
		}
		if dai, ok := engine.(*ocr.DocumentAIEngine); ok && o.debugAPI != "" {
			dai.OnResponse = dumpResponses(o.debugAPI, log)
		}
		r.ocr = ocr.NewDispatcher(engine, ocr.WithLogger(log))
		defer r.ocr.Close()
	}

	if err := r.run(ctx, s.Steps); err != nil {
		return err
	}
	log.Info("script done", "steps", len(s.Steps), "undo", doc.History().UndoDepth(), "redo", doc.History().RedoDepth())
	return nil
}

// dumpResponses returns a hook writing every Document AI response as JSON,
// numbering files after the first.
func dumpResponses(path string, log *slog.Logger) func(*documentaipb.Document) {
	n := 0
	return func(d *documentaipb.Document) {
		out, err := ocr.ToJSON(d)
		if err != nil {
			log.Warn("encode Document AI response", "err", err)
			return
		}
		p := path
		if n > 0 {
			p = fmt.Sprintf("%s.%d", path, n)
		}
		n++
		if err := os.WriteFile(p, []byte(out+"\n"), 0666); err != nil {
			log.Warn("write Document AI response", "path", p, "err", err)
		}
	}
}

func exportPDF(o options, cfg config, doc *editor.Document, img []byte, log *slog.Logger) error {
	pdfCfg := cfg.PDF
	pdfCfg.Logger = log
	page := editor.ToHOCR(doc)

	var out []byte
	var err error
	switch {
	case o.sourcePDF != "":
		src, rerr := os.ReadFile(o.sourcePDF)
		if rerr != nil {
			return fmt.Errorf("read source PDF: %w", rerr)
		}
		pdfCfg.StartPage += o.page
		out, err = pdfocr.ApplyOCR(src, page, pdfCfg)
	case len(img) > 0:
		out, err = pdfocr.AssembleWithOCR(page, [][]byte{img}, pdfCfg)
	default:
		return errors.New("PDF export needs -image or -source-pdf")
	}
	if err != nil {
		return fmt.Errorf("create PDF: %w", err)
	}
	return writeFile(o.pdfPath, out, o.overwrite)
}

// writeFile refuses to replace an existing file unless overwrite is set.
func writeFile(path string, data []byte, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("output file %s already exists, use -overwrite to overwrite", path)
	}
	if err := os.WriteFile(path, data, 0666); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
