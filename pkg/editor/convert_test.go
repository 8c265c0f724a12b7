package editor

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/gardar/hocredit/pkg/hocr"
)

const pageHOCR = `<html><head><title>scan</title><meta name="ocr-system" content="tesseract"/></head><body>
<div class="ocr_page" id="page_1" title='image "scan.png"; bbox 0 0 600 400'>
 <div class="ocr_carea" id="block_1" title="bbox 10 10 200 40">
  <p class="ocr_par" id="par_1" lang="eng" title="bbox 10 10 200 40">
   <span class="ocr_line" id="line_1" title="bbox 10 10 200 40; baseline 0 -4">
    <span class="ocrx_word" id="word_1" title="bbox 10 10 80 40; x_wconf 95">Hello</span>
    <span class="ocrx_word" id="word_2" title="bbox 90 10 200 40; x_wconf 90">world</span>
   </span>
  </p>
 </div>
 <div class="ocr_carea" id="block_2" title="bbox 10 100 200 130">
  <p class="ocr_par" id="par_2" title="bbox 10 100 200 130">
   <span class="ocrx_word" id="word_3" title="bbox 10 100 90 130">loose</span>
   <span class="ocrx_word" id="word_4" title="bbox 100 100 200.4 129.6">words</span>
  </p>
 </div>
 <div class="ocr_photo" id="photo_1" title="bbox 300 0 600 400"></div>
</div></body></html>`

func TestLoad(t *testing.T) {
	d := NewDocument()
	if err := Load(d, []byte(pageHOCR)); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	verify(t, d)

	root := d.Root()
	if root.Type() != Page || root.Props["image"] != `"scan.png"` {
		t.Errorf("unexpected page %v with props %v", root, root.Props)
	}
	if got := root.Children().Len(); got != 3 {
		t.Fatalf("expected 3 page children, got %d", got)
	}
	if root.Children().At(2).Type() != Image {
		t.Errorf("expected an image region, got %v", root.Children().At(2))
	}

	// words directly under the second paragraph get a line
	par := root.Children().At(1).Children().At(0)
	if par.Children().Len() != 1 || par.Children().At(0).Type() != Line {
		t.Fatalf("expected a synthesized line, got %v", childIDs(par))
	}
	line := par.Children().At(0)
	if line.Children().Len() != 2 {
		t.Errorf("expected both words in the synthesized line, got %d", line.Children().Len())
	}
	if want := NewRect(10, 100, 200, 130); line.BBox() != want {
		t.Errorf("expected synthesized line box %v, got %v", want, line.BBox())
	}
	if got := root.InnerText(); got != "Hello world\n\nloose words" {
		t.Errorf("unexpected page text %q", got)
	}
	if first := root.Children().At(0).Children().At(0); first.Lang != "eng" {
		t.Errorf("expected paragraph lang eng, got %q", first.Lang)
	}
}

func TestLoadPage_Rejects(t *testing.T) {
	if err := LoadPage(NewDocument(), []byte(pageHOCR), 3); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("expected ErrInvalidIndex, got %v", err)
	}
	if err := Load(NewDocument(), []byte("<html></html>")); !errors.Is(err, hocr.ErrNoPages) {
		t.Errorf("expected hocr.ErrNoPages, got %v", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	d := NewDocument()
	if err := Load(d, []byte(pageHOCR)); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	word := d.Root().Children().At(0).Children().At(0).Children().At(0).Children().At(1)
	if err := d.EditText(word, "there"); err != nil {
		t.Fatalf("EditText returned error: %v", err)
	}

	data, err := Save(d)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if d.Dirty() {
		t.Error("expected Save to clear the dirty flag")
	}

	parsed, err := hocr.ParseHOCR(data)
	if err != nil {
		t.Fatalf("ParseHOCR returned error: %v", err)
	}
	if parsed.Title != "scan" || parsed.Metadata["ocr-system"] != "tesseract" {
		t.Errorf("expected header preserved, got %q %v", parsed.Title, parsed.Metadata)
	}
	if got := hocr.ExtractHOCRText(&parsed); got != "Hello there\n\nloose words" {
		t.Errorf("unexpected saved text %q", got)
	}
	if !strings.Contains(string(data), "x_wconf 95") {
		t.Error("expected word properties to survive")
	}

	reloaded := NewDocument()
	if err := Load(reloaded, data); err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	if reloaded.Len() != d.Len() {
		t.Errorf("expected %d nodes after reload, got %d", d.Len(), reloaded.Len())
	}
}

func TestImportSubtreeAndSplice(t *testing.T) {
	d := newSampleDoc(t)
	result := hocr.Element{
		Class: hocr.ClassPage,
		BBox:  hocr.NewBoundingBox(0, 0, 100, 50),
		Children: []hocr.Element{{
			Class: hocr.ClassArea,
			BBox:  hocr.NewBoundingBox(0, 0, 100, 50),
			Children: []hocr.Element{{
				Class: hocr.ClassParagraph,
				BBox:  hocr.NewBoundingBox(0, 0, 100, 50),
				Children: []hocr.Element{{
					Class: hocr.ClassLine,
					BBox:  hocr.NewBoundingBox(5, 5, 40, 20),
					Children: []hocr.Element{{
						Class: hocr.ClassWord,
						BBox:  hocr.NewBoundingBox(5, 5, 40, 20),
						Text:  "new",
					}},
				}},
			}},
		}},
	}

	roots, err := ImportSubtree(d, result, image.Pt(400, 700))
	if err != nil {
		t.Fatalf("ImportSubtree returned error: %v", err)
	}
	if len(roots) != 1 || roots[0].Type() != ContentArea || roots[0].ID() != 13 {
		t.Fatalf("expected one area with id 13, got %v", roots)
	}

	if err := d.Splice(d.Root(), roots...); err != nil {
		t.Fatalf("Splice returned error: %v", err)
	}
	verify(t, d)
	word := d.Lookup(16)
	if word == nil || word.Text() != "new" {
		t.Fatalf("expected spliced word 16, got %v", word)
	}
	if want := NewRect(405, 705, 440, 720); word.BBox() != want {
		t.Errorf("expected translated box %v, got %v", want, word.BBox())
	}
	if !d.Dirty() {
		t.Error("expected splice to mark the document dirty")
	}

	d.Undo()
	verify(t, d)
	if d.Lookup(13) != nil || d.Root().Children().Len() != 2 {
		t.Error("expected undo to remove the spliced subtree")
	}

	if err := d.Splice(d.Root(), roots...); !errors.Is(err, ErrAttached) {
		t.Errorf("expected ErrAttached for an already used subtree, got %v", err)
	}
	if err := d.Splice(node(t, d, 3), NewNode(ContentArea, 50, Rect{})); !errors.Is(err, ErrIncompatibleParent) {
		t.Errorf("expected ErrIncompatibleParent, got %v", err)
	}
}

func TestImportSubtree_WrapsLooseLines(t *testing.T) {
	d := newSampleDoc(t)
	result := hocr.Element{
		Class: hocr.ClassPage,
		Children: []hocr.Element{{
			Class: hocr.ClassLine,
			BBox:  hocr.NewBoundingBox(0, 0, 30, 10),
			Children: []hocr.Element{{
				Class: hocr.ClassWord,
				BBox:  hocr.NewBoundingBox(0, 0, 30, 10),
				Text:  "loose",
			}},
		}},
	}

	roots, err := ImportSubtree(d, result, image.Pt(10, 20))
	if err != nil {
		t.Fatalf("ImportSubtree returned error: %v", err)
	}
	if len(roots) != 1 || roots[0].Type() != ContentArea {
		t.Fatalf("expected the line wrapped in a content area, got %v", roots)
	}
	par := roots[0].Children().At(0)
	if par.Type() != Paragraph || par.Children().At(0).Type() != Line {
		t.Fatalf("expected area > paragraph > line, got %v", par)
	}
	if want := NewRect(10, 20, 40, 30); roots[0].BBox() != want {
		t.Errorf("expected wrapper box %v, got %v", want, roots[0].BBox())
	}

	if err := d.Splice(d.Root(), roots...); err != nil {
		t.Fatalf("Splice returned error: %v", err)
	}
	verify(t, d)
	if got := roots[0].ParentID(); got != 0 {
		t.Errorf("expected the area under the page, got parent %d", got)
	}
	if got := d.Root().InnerText(); got != "ab cd ef\ngh\n\nij\n\nloose" {
		t.Errorf("unexpected page text %q", got)
	}
}
