package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/gardar/hocredit/pkg/hocr"
)

// DocumentAIConfig holds the Google Document AI processor settings.
type DocumentAIConfig struct {
	ProjectID       string `yaml:"project_id"`
	Location        string `yaml:"location"`
	ProcessorID     string `yaml:"processor_id"`
	CredentialsFile string `yaml:"credentials_file"` // defaults to $GOOGLE_APPLICATION_CREDENTIALS
}

// DocumentAIEngine recognises text with a Google Document AI OCR processor.
type DocumentAIEngine struct {
	cfg DocumentAIConfig

	// OnResponse, when set, receives every raw processor response.
	OnResponse func(*documentaipb.Document)
}

// NewDocumentAI returns an engine for the processor described by cfg.
func NewDocumentAI(cfg DocumentAIConfig) *DocumentAIEngine {
	return &DocumentAIEngine{cfg: cfg}
}

func (e *DocumentAIEngine) Name() string { return "documentai" }

// Recognize sends the cropped region as PNG and converts the first page of
// the response.
func (e *DocumentAIEngine) Recognize(ctx context.Context, in Input) (hocr.Element, error) {
	img, err := CropPNG(in.Image, in.Region)
	if err != nil {
		return hocr.Element{}, err
	}
	doc, err := ProcessDocument(ctx, img, "image/png", e.cfg)
	if err != nil {
		return hocr.Element{}, err
	}
	if e.OnResponse != nil {
		e.OnResponse(doc)
	}
	if len(doc.Pages) == 0 {
		return hocr.Element{}, ErrNoResult
	}
	page := PageElement(doc.Pages[0], doc.Text)
	if page.Lang == "" {
		page.Lang = documentLanguage(doc)
	}
	return page, nil
}

// ProcessDocument sends raw document bytes to Google Document AI and
// returns the Document proto of the response.
func ProcessDocument(ctx context.Context, content []byte, mimeType string, cfg DocumentAIConfig) (*documentaipb.Document, error) {
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
	creds := cfg.CredentialsFile
	if creds == "" {
		creds = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}

	client, err := documentai.NewDocumentProcessorClient(
		ctx,
		option.WithEndpoint(endpoint),
		option.WithCredentialsFile(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}
	defer client.Close()

	req := &documentaipb.ProcessRequest{
		Name: fmt.Sprintf("projects/%s/locations/%s/processors/%s",
			cfg.ProjectID, cfg.Location, cfg.ProcessorID),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: mimeType,
			},
		},
		SkipHumanReview: true,
	}

	resp, err := client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}
	return resp.Document, nil
}

// PageElement converts a Document AI page into an ocr_page element. Blocks
// become content areas, tokens become words. Paragraphs outside every block
// and lines outside every paragraph are attached to the page directly and
// left for the importer to wrap.
func PageElement(page *documentaipb.Document_Page, fullText string) hocr.Element {
	el := hocr.Element{
		Class: hocr.ClassPage,
		BBox:  layoutBox(page.Layout, page.Dimension),
		Lang:  firstLanguage(page.DetectedLanguages),
	}
	if el.BBox == (hocr.BoundingBox{}) && page.Dimension != nil {
		el.BBox = hocr.NewBoundingBox(0, 0, float64(page.Dimension.Width), float64(page.Dimension.Height))
	}

	usedParas := make(map[int]bool)
	usedLines := make(map[int]bool)

	paragraphs := func(parent *documentaipb.Document_Page_Layout) []hocr.Element {
		var out []hocr.Element
		for pi, para := range page.Paragraphs {
			if usedParas[pi] || (parent != nil && !contains(parent, para.Layout)) {
				continue
			}
			usedParas[pi] = true
			p := hocr.Element{
				Class: hocr.ClassParagraph,
				BBox:  layoutBox(para.Layout, page.Dimension),
				Lang:  firstLanguage(para.DetectedLanguages),
			}
			for li, line := range page.Lines {
				if usedLines[li] || !contains(para.Layout, line.Layout) {
					continue
				}
				usedLines[li] = true
				p.Children = append(p.Children, lineElement(line, page, fullText))
			}
			out = append(out, p)
		}
		return out
	}

	for _, block := range page.Blocks {
		el.Children = append(el.Children, hocr.Element{
			Class:    hocr.ClassArea,
			BBox:     layoutBox(block.Layout, page.Dimension),
			Lang:     firstLanguage(block.DetectedLanguages),
			Children: paragraphs(block.Layout),
		})
	}
	el.Children = append(el.Children, paragraphs(nil)...)
	for li, line := range page.Lines {
		if !usedLines[li] {
			el.Children = append(el.Children, lineElement(line, page, fullText))
		}
	}
	return el
}

func lineElement(line *documentaipb.Document_Page_Line, page *documentaipb.Document_Page, fullText string) hocr.Element {
	el := hocr.Element{
		Class: hocr.ClassLine,
		BBox:  layoutBox(line.Layout, page.Dimension),
		Lang:  firstLanguage(line.DetectedLanguages),
	}
	for _, token := range page.Tokens {
		if !contains(line.Layout, token.Layout) {
			continue
		}
		text := strings.TrimSpace(textFromLayout(token.Layout, fullText))
		text = strings.ReplaceAll(text, "\n", " ")
		text = strings.ReplaceAll(text, "\r", "")
		if text == "" {
			continue
		}
		word := hocr.Element{
			Class: hocr.ClassWord,
			BBox:  layoutBox(token.Layout, page.Dimension),
			Lang:  firstLanguage(token.DetectedLanguages),
			Text:  text,
		}
		if token.Layout != nil && token.Layout.Confidence > 0 {
			word.Props = map[string]string{
				"x_wconf": strconv.Itoa(int(token.Layout.Confidence*100 + 0.5)),
			}
		}
		el.Children = append(el.Children, word)
	}
	return el
}

// layoutBox scales the normalized vertices (0-1) of layout to pixels.
func layoutBox(layout *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension) hocr.BoundingBox {
	if layout == nil || layout.BoundingPoly == nil || dim == nil || len(layout.BoundingPoly.NormalizedVertices) < 4 {
		return hocr.BoundingBox{}
	}
	v := layout.BoundingPoly.NormalizedVertices
	return hocr.NewBoundingBox(
		float64(int(v[0].X*dim.Width+0.5)),
		float64(int(v[0].Y*dim.Height+0.5)),
		float64(int(v[2].X*dim.Width+0.5)),
		float64(int(v[2].Y*dim.Height+0.5)),
	)
}

// contains reports whether the first text segment of child lies within
// the first text segment of parent.
func contains(parent, child *documentaipb.Document_Page_Layout) bool {
	ps, ok := firstSegment(parent)
	if !ok {
		return false
	}
	cs, ok := firstSegment(child)
	if !ok {
		return false
	}
	return cs.StartIndex >= ps.StartIndex && cs.EndIndex <= ps.EndIndex
}

func firstSegment(l *documentaipb.Document_Page_Layout) (*documentaipb.Document_TextAnchor_TextSegment, bool) {
	if l == nil || l.TextAnchor == nil || len(l.TextAnchor.TextSegments) == 0 {
		return nil, false
	}
	return l.TextAnchor.TextSegments[0], true
}

// textFromLayout extracts text from a layout's text anchor segments.
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil || layout.TextAnchor == nil {
		return ""
	}
	runes := []rune(fullText)
	var b strings.Builder
	for _, seg := range layout.TextAnchor.TextSegments {
		start := min(max(int(seg.StartIndex), 0), len(runes))
		end := min(int(seg.EndIndex), len(runes))
		if start > end {
			start = end
		}
		b.WriteString(string(runes[start:end]))
	}
	return b.String()
}

func firstLanguage(langs []*documentaipb.Document_Page_DetectedLanguage) string {
	if len(langs) == 0 {
		return ""
	}
	return langs[0].LanguageCode
}

// documentLanguage finds the most common language over pages and tokens.
func documentLanguage(doc *documentaipb.Document) string {
	count := make(map[string]int)
	for _, page := range doc.Pages {
		for _, l := range page.DetectedLanguages {
			count[l.LanguageCode]++
		}
		for _, t := range page.Tokens {
			for _, l := range t.DetectedLanguages {
				count[l.LanguageCode]++
			}
		}
	}
	var best string
	for lang, n := range count {
		if n > count[best] || (n == count[best] && lang < best) {
			best = lang
		}
	}
	return best
}

// ToJSON renders protocol buffer messages with protojson and anything else
// with encoding/json, indented.
func ToJSON(data any) (string, error) {
	switch v := data.(type) {
	case proto.Message:
		out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}
