package hocr

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

// ErrNoPages is returned when the input holds no ocr_page element.
var ErrNoPages = errors.New("no ocr_page elements found in HOCR data")

// ParseHOCR converts raw hOCR data into a structured HOCR object.
func ParseHOCR(data []byte) (HOCR, error) {
	var result HOCR
	result.Metadata = make(map[string]string)

	// Convert to UTF-8 if needed
	decoded := data
	if enc := declaredCharset(string(data)); enc != "" && enc != "utf-8" && enc != "utf8" {
		var err error
		decoded, err = charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return result, fmt.Errorf("failed to decode %s: %w", enc, err)
		}
	}

	doc, err := html.Parse(strings.NewReader(string(decoded)))
	if err != nil {
		return result, fmt.Errorf("failed to parse hOCR: %w", err)
	}

	extractDocumentMeta(&result, doc)

	var findPages func(*html.Node)
	findPages = func(n *html.Node) {
		if n.Type == html.ElementNode && elementClass(n) == ClassPage {
			result.Pages = append(result.Pages, processElement(n, ClassPage))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(doc)

	if len(result.Pages) == 0 {
		return result, ErrNoPages
	}
	return result, nil
}

// declaredCharset returns the lower-cased charset of a meta tag, or "".
func declaredCharset(content string) string {
	i := strings.Index(content, "charset=")
	if i < 0 {
		return ""
	}
	snippet := content[i+len("charset="):]
	if len(snippet) > 20 {
		snippet = snippet[:20]
	}
	fields := strings.FieldsFunc(snippet, func(r rune) bool {
		return r == '"' || r == ';' || r == '\'' || r == '>' || r == '/' || r == ' '
	})
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// ParseTitle breaks down an hOCR title attribute into its components
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) > 0 {
			result[items[0]] = items[1:]
		}
	}
	return result
}

// ParseBoundingBoxFromTitle extracts a bounding box from a title string
// Returns nil if the title has no complete bbox property
func ParseBoundingBoxFromTitle(title string) *BoundingBox {
	bbox, ok := ParseTitle(title)["bbox"]
	if !ok || len(bbox) < 4 {
		return nil
	}
	var v [4]float64
	for i := range v {
		f, err := strconv.ParseFloat(bbox[i], 64)
		if err != nil {
			return nil
		}
		v[i] = f
	}
	result := NewBoundingBox(v[0], v[1], v[2], v[3])
	return &result
}

// FormatTitle builds a title attribute from a bounding box and extra
// properties. The bbox comes first, the other properties follow sorted by
// name.
func FormatTitle(bbox BoundingBox, props map[string]string) string {
	parts := []string{fmt.Sprintf("bbox %s %s %s %s",
		formatCoord(bbox.X1), formatCoord(bbox.Y1), formatCoord(bbox.X2), formatCoord(bbox.Y2))}
	keys := make([]string, 0, len(props))
	for k := range props {
		if k != "bbox" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if props[k] == "" {
			parts = append(parts, k)
			continue
		}
		parts = append(parts, k+" "+props[k])
	}
	return strings.Join(parts, "; ")
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// extractDocumentMeta extracts document-level metadata from the head section
func extractDocumentMeta(result *HOCR, doc *html.Node) {
	var head *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html":
				if lang := attrVal(n, "lang"); lang != "" {
					result.Language = lang
				} else if lang := attrVal(n, "xml:lang"); lang != "" {
					result.Language = lang
				}
			case "head":
				head = n
				return
			}
		}
		for c := n.FirstChild; c != nil && head == nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if head == nil {
		return
	}

	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "title":
			if c.FirstChild != nil {
				result.Title = c.FirstChild.Data
			}
		case "meta":
			name, content := attrVal(c, "name"), attrVal(c, "content")
			if name == "" || content == "" {
				continue
			}
			switch name {
			case "description":
				result.Description = content
			case "dc.language":
				result.Language = content
			default:
				result.Metadata[name] = content
			}
		}
	}
}

// processElement converts an html node carrying a known hOCR class into an
// Element and collects the known elements nested below it.
func processElement(n *html.Node, class string) Element {
	el := Element{
		Class: class,
		ID:    attrVal(n, "id"),
		Lang:  attrVal(n, "lang"),
		Props: make(map[string]string),
	}
	if title := attrVal(n, "title"); title != "" {
		if bbox := ParseBoundingBoxFromTitle(title); bbox != nil {
			el.BBox = *bbox
		}
		for k, v := range ParseTitle(title) {
			if k != "bbox" {
				el.Props[k] = strings.Join(v, " ")
			}
		}
	}

	if class == ClassWord {
		el.Text = textContent(n)
		return el
	}

	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode {
			if c := elementClass(node); c != "" {
				el.Children = append(el.Children, processElement(node, c))
				return
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c)
	}
	return el
}

// elementClass returns the first known hOCR class of n, or "".
func elementClass(n *html.Node) string {
	for _, c := range strings.Fields(attrVal(n, "class")) {
		if knownClasses[c] {
			return c
		}
	}
	return ""
}

// textContent gets all text from a node and its children
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return strings.TrimSpace(b.String())
}

// Get the value of a specific attribute from a node
func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
