package pdfocr

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// ocgName matches the name of an optional content group, allowing escaped
// parentheses inside the PDF string.
var ocgName = regexp.MustCompile(`/Type\s*/OCG\s*/Name\s*\(((?:\\.|[^\\)])*)\)`)

// detectPDFLayers returns the distinct optional content group names in the
// raw PDF data.
func detectPDFLayers(pdfData []byte) ([]string, error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}

	var layers []string
	seen := make(map[string]bool)
	for _, m := range ocgName.FindAllSubmatch(pdfData, -1) {
		name := unescapePDFString(string(m[1]))
		if strings.HasPrefix(name, "\xfe\xff") {
			if decoded, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().String(name); err == nil {
				name = decoded
			}
		}
		if !seen[name] {
			seen[name] = true
			layers = append(layers, name)
		}
	}
	return layers, nil
}

func unescapePDFString(s string) string {
	return strings.NewReplacer(`\(`, "(", `\)`, ")", `\\`, `\`).Replace(s)
}

// LayerCheckResult contains the results of checking for OCR layers
type LayerCheckResult struct {
	Layers       []string // all detected layers
	HasOCRLayer  bool     // a layer named like ours exists
	OCRLayerName string   // name of that layer
	Warnings     []string // other layers that look like OCR
}

// CheckExistingOCRLayers looks for layers named layerName, optionally with a
// page suffix, in pdfData.
func CheckExistingOCRLayers(pdfData []byte, layerName string) (LayerCheckResult, error) {
	var result LayerCheckResult
	layers, err := detectPDFLayers(pdfData)
	if err != nil {
		return result, fmt.Errorf("cannot analyze layers: %w", err)
	}
	result.Layers = layers

	pageLayer := regexp.MustCompile(fmt.Sprintf(`^%s\s*\(Page\s*\d+`, regexp.QuoteMeta(layerName)))
	for _, layer := range layers {
		if layer == layerName || pageLayer.MatchString(layer) {
			result.HasOCRLayer = true
			result.OCRLayerName = layer
			break
		}
		if strings.Contains(strings.ToLower(layer), "ocr") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("existing layer might contain OCR: %s", layer))
		}
	}
	return result, nil
}
