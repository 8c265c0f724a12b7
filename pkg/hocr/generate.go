package hocr

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/hocr.tmpl
var templateFS embed.FS

var hocrTemplate = template.Must(template.New("hocr.tmpl").Funcs(template.FuncMap{
	"trim":      strings.TrimSpace,
	"tag":       tagFor,
	"isBlock":   isBlock,
	"hasBlocks": hasBlockChildren,
	"title":     func(e Element) string { return FormatTitle(e.BBox, e.Props) },
}).ParseFS(templateFS, "templates/hocr.tmpl"))

// GenerateHOCRDocument creates an hOCR HTML document from the HOCR struct
// Uses the embedded template to generate a complete HTML document
func GenerateHOCRDocument(doc *HOCR) (string, error) {
	var buf bytes.Buffer
	if err := hocrTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("error rendering hOCR template: %w", err)
	}
	return buf.String(), nil
}

// tagFor returns the HTML element used for an hOCR class.
func tagFor(class string) string {
	switch {
	case class == ClassParagraph:
		return "p"
	case class == ClassWord, IsLineClass(class):
		return "span"
	default:
		return "div"
	}
}

func isBlock(class string) bool { return tagFor(class) != "span" || IsLineClass(class) }

func hasBlockChildren(e Element) bool {
	for _, c := range e.Children {
		if isBlock(c.Class) {
			return true
		}
	}
	return false
}
