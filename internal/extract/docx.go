package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// docxDocumentXMLPath is the path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// wpTag matches one paragraph, including attributes on <w:p> (real-world docs
// carry w:rsidR etc., so the attribute part cannot be omitted).
var wpTag = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)

// wtTag matches <w:t>text</w:t> with any attributes, e.g. xml:space="preserve".
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// extractDOCX pulls non-blank paragraph texts out of word/document.xml and
// joins them with a blank line, in document order. DOCX has no page concept at
// this layer, so PageCount is fixed at 1.
func extractDOCX(content []byte) (Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Result{}, fmt.Errorf("extract DOCX: not a zip: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxDocumentXMLPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return Result{}, fmt.Errorf("extract DOCX: open %s: %w", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			_ = rc.Close()
			return Result{}, fmt.Errorf("extract DOCX: read %s: %w", f.Name, err)
		}
		_ = rc.Close()
		docXML = buf.Bytes()
		break
	}
	if docXML == nil {
		return Result{}, fmt.Errorf("extract DOCX: %s not found", docxDocumentXMLPath)
	}

	var paragraphs []string
	for _, p := range wpTag.FindAllString(string(docXML), -1) {
		var b strings.Builder
		for _, t := range wtTag.FindAllStringSubmatch(p, -1) {
			b.WriteString(t[1])
		}
		text := strings.TrimSpace(b.String())
		if text == "" {
			continue
		}
		paragraphs = append(paragraphs, text)
	}

	return Result{
		RawText:   strings.Join(paragraphs, "\n\n"),
		PageCount: 1,
	}, nil
}
