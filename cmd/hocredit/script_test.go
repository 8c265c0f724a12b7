package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gardar/hocredit/pkg/editor"
	"github.com/gardar/hocredit/pkg/hocr"
	"github.com/gardar/hocredit/pkg/ocr"
)

const lineHOCR = `<html><head><title>t</title></head><body>
<div class="ocr_page" id="page_1" title="bbox 0 0 600 400">
 <div class="ocr_carea" id="block_1" title="bbox 10 10 200 40">
  <p class="ocr_par" id="par_1" title="bbox 10 10 200 40">
   <span class="ocr_line" id="line_1" title="bbox 10 10 200 40">
    <span class="ocrx_word" id="word_1" title="bbox 10 10 80 40">Hello</span>
    <span class="ocrx_word" id="word_2" title="bbox 90 10 200 40">world</span>
   </span>
  </p>
 </div>
</div></body></html>`

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func loadDoc(t *testing.T) *editor.Document {
	t.Helper()
	d := editor.NewDocument()
	if err := editor.Load(d, []byte(lineHOCR)); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return d
}

func runScriptText(t *testing.T, r *runner, src string) error {
	t.Helper()
	s, err := parseScript([]byte(src))
	if err != nil {
		t.Fatalf("parseScript returned error: %v", err)
	}
	return r.run(context.Background(), s.Steps)
}

func TestParseScript_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"unknown op", "steps:\n  - op: frobnicate\n", errUnknownOp},
		{"split texts", "steps:\n  - op: split\n    node: 4\n    texts: [a]\n", errBadStep},
		{"bbox coords", "steps:\n  - op: bbox\n    node: 4\n    bbox: [1, 2]\n", errBadStep},
		{"reorder index", "steps:\n  - op: reorder\n    node: 4\n", errBadStep},
		{"nested group", "steps:\n  - op: group\n    steps:\n      - op: group\n", errBadStep},
		{"undo in group", "steps:\n  - op: group\n    steps:\n      - op: undo\n", errBadStep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseScript([]byte(tt.src)); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if _, err := parseScript([]byte("steps: [")); err == nil {
		t.Error("expected a YAML error")
	}
}

func TestRunner_EditScript(t *testing.T) {
	d := loadDoc(t)
	r := &runner{doc: d, log: discard}

	err := runScriptText(t, r, `
steps:
  - op: merge
    nodes: [4, 5]
  - op: undo
  - op: group
    steps:
      - op: text
        node: 3
        text: "Good day"
      - op: bbox
        node: 4
        bbox: [10, 10, 70, 40]
  - op: split
    node: 5
    offset: 40
    texts: [da, y]
`)
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if err := d.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got := d.Root().InnerText(); got != "Good da y" {
		t.Errorf("unexpected text %q", got)
	}
	if got := d.History().UndoDepth(); got != 2 {
		t.Errorf("expected the group and the split as two undo steps, got %d", got)
	}
	if got := d.Lookup(4).BBox(); got != editor.NewRect(10, 10, 70, 40) {
		t.Errorf("unexpected word box %v", got)
	}

	if err := runScriptText(t, r, "steps:\n  - op: undo\n    count: 2\n"); err != nil {
		t.Fatalf("undo returned error: %v", err)
	}
	if got := d.Root().InnerText(); got != "Hello world" {
		t.Errorf("expected the original text after undo, got %q", got)
	}
	if !d.Dirty() {
		t.Error("expected undone edits to count as unsaved")
	}
}

func TestRunner_StepErrors(t *testing.T) {
	r := &runner{doc: loadDoc(t), log: discard}
	if err := runScriptText(t, r, "steps:\n  - op: delete\n    nodes: [99]\n"); !errors.Is(err, errUnknownNode) {
		t.Errorf("expected errUnknownNode, got %v", err)
	}
	if err := runScriptText(t, r, "steps:\n  - op: paste\n"); !errors.Is(err, errNoClipboard) {
		t.Errorf("expected errNoClipboard, got %v", err)
	}
	if err := runScriptText(t, r, "steps:\n  - op: ocr\n"); !errors.Is(err, errNoImage) {
		t.Errorf("expected errNoImage, got %v", err)
	}

	// a failing step inside a group leaves nothing behind
	err := runScriptText(t, r, `
steps:
  - op: group
    steps:
      - op: text
        node: 4
        text: Howdy
      - op: merge
        nodes: [4]
`)
	if err == nil {
		t.Fatal("expected the group to fail")
	}
	if got := r.doc.Root().InnerText(); got != "Hello world" {
		t.Errorf("expected the group to be rolled back, got %q", got)
	}
	if r.doc.History().CanUndo() {
		t.Error("expected no undo step for an aborted group")
	}
}

func TestRunner_CopyPaste(t *testing.T) {
	d := loadDoc(t)
	r := &runner{doc: d, log: discard}
	err := runScriptText(t, r, `
steps:
  - op: copy
    nodes: [4]
  - op: select
  - op: paste
  - op: cycle
`)
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if got := d.Root().InnerText(); got != "Hello world Hello" {
		t.Errorf("expected the word pasted into its line, got %q", got)
	}
	sel := d.SelectedNodes()
	if len(sel) != 1 || sel[0].Type() != editor.Word {
		t.Errorf("expected a single selected word after cycling, got %v", sel)
	}
}

// pageEngine recognises one word at a fixed position of the region.
type pageEngine struct{}

func (pageEngine) Name() string { return "page" }

func (pageEngine) Recognize(ctx context.Context, in ocr.Input) (hocr.Element, error) {
	word := hocr.Element{Class: hocr.ClassWord, BBox: hocr.NewBoundingBox(5, 5, 45, 25), Text: "scanned"}
	line := hocr.Element{Class: hocr.ClassLine, BBox: word.BBox, Children: []hocr.Element{word}}
	return hocr.Element{
		Class:    hocr.ClassPage,
		BBox:     hocr.NewBoundingBox(0, 0, float64(in.Region.Dx()), float64(in.Region.Dy())),
		Children: []hocr.Element{line},
	}, nil
}

func TestRunner_OCR(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 600, 400))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	d := loadDoc(t)
	disp := ocr.NewDispatcher(pageEngine{})
	defer disp.Close()
	r := &runner{doc: d, ocr: disp, image: buf.Bytes(), log: discard}

	if err := runScriptText(t, r, "steps:\n  - op: ocr\n    region: [300, 200, 500, 300]\n"); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if err := d.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got := d.Root().InnerText(); got != "Hello world\n\nscanned" {
		t.Errorf("unexpected text after OCR %q", got)
	}
	sel := d.SelectedNodes()
	if len(sel) != 1 || sel[0].Type() != editor.ContentArea {
		t.Fatalf("expected the new area to be selected, got %v", sel)
	}
	if got, want := sel[0].BBox(), editor.NewRect(305, 205, 345, 225); got != want {
		t.Errorf("expected area box %v, got %v", want, got)
	}

	d.Undo()
	if got := d.Root().InnerText(); got != "Hello world" {
		t.Errorf("expected undo to remove the recognised text, got %q", got)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `direction: rtl
paste_offset: 4
ocr:
  engine: documentai
  documentai:
    project_id: proj
    location: eu
    processor_id: abc
pdf:
  layer_name: Searchable
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	ed, _ := cfg.editor()
	if ed.Direction != editor.RightToLeft || ed.PasteOffset != 4 {
		t.Errorf("unexpected editor config %+v", ed)
	}
	if cfg.OCR.Engine != "documentai" || cfg.OCR.DocumentAI.Location != "eu" {
		t.Errorf("unexpected ocr config %+v", cfg.OCR)
	}
	if len(cfg.OCR.Languages) != 1 || cfg.OCR.Languages[0] != "eng" {
		t.Errorf("expected default languages to survive, got %v", cfg.OCR.Languages)
	}
	if cfg.PDF.LayerName != "Searchable" || cfg.PDF.Font.Size != 10 || cfg.PDF.StartPage != 1 {
		t.Errorf("unexpected pdf config %+v", cfg.PDF)
	}

	if err := os.WriteFile(path, []byte("direction: sideways\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := loadConfig(path); err == nil || !strings.Contains(err.Error(), "sideways") {
		t.Errorf("expected an invalid direction error, got %v", err)
	}
}
