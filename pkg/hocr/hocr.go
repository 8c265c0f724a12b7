// Package hocr implements parsing and generation of hOCR data, the HTML based
// standard format for OCR results.
//
// A document is a list of pages, each an Element tree that mirrors the hOCR
// hierarchy: page, content areas, paragraphs, line-like spans (ocr_line,
// ocr_header, ocr_footer, ocr_caption, ocr_textfloat) and words, plus image
// regions. Bounding boxes come from the 'bbox' title property; every other
// title property is kept verbatim in Element.Props so a parse and generate
// round trip preserves it.
//
// Main Functions:
//
// - ParseHOCR: Parses hOCR data from HTML into the object model
// - GenerateHOCRDocument: Generates valid hOCR HTML from the object model
// - ParseTitle, FormatTitle: Read and write title attributes
// - ExtractText: Plain text of an element
package hocr
