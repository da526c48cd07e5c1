package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"paper-analyzer/internal/domain"
)

// extractDOCX reads paragraphs from word/document.xml and title/author from
// docProps/core.xml. Each w:p becomes one paragraph, so headings stay on
// their own line.
func extractDOCX(data []byte) ([]string, domain.DocumentMetadata, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.DocumentMetadata{}, fmt.Errorf("failed to open docx: %w", err)
	}

	body, err := readZipFile(zr, "word/document.xml")
	if err != nil {
		return nil, domain.DocumentMetadata{}, fmt.Errorf("invalid docx (missing document.xml): %w", err)
	}

	var meta domain.DocumentMetadata
	if core, err := readZipFile(zr, "docProps/core.xml"); err == nil {
		meta = parseCoreProperties(core)
	}

	paragraphs, err := parseDocumentXML(body)
	if err != nil {
		return nil, meta, fmt.Errorf("invalid docx body: %w", err)
	}
	return paragraphs, meta, nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	lower := strings.ToLower(name)
	for _, f := range zr.File {
		if f.Name == name || strings.ToLower(f.Name) == lower {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

// parseDocumentXML walks the WordprocessingML body with namespace-agnostic
// matching on local names.
func parseDocumentXML(body []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var (
		paragraphs []string
		cur        strings.Builder
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				cur.Reset()
			case "t":
				inText = true
			case "tab":
				cur.WriteString("\t")
			case "br", "cr":
				cur.WriteString(" ")
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if p := strings.TrimSpace(cur.String()); p != "" {
					paragraphs = append(paragraphs, p)
				}
				cur.Reset()
			}
		}
	}
	return paragraphs, nil
}

func parseCoreProperties(core []byte) domain.DocumentMetadata {
	var meta domain.DocumentMetadata
	dec := xml.NewDecoder(bytes.NewReader(core))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch strings.ToLower(se.Name.Local) {
		case "title":
			meta.Title = strings.TrimSpace(readElementText(dec))
		case "creator":
			meta.Author = strings.TrimSpace(readElementText(dec))
		case "subject":
			meta.Subject = strings.TrimSpace(readElementText(dec))
		case "keywords":
			meta.Keywords = strings.TrimSpace(readElementText(dec))
		}
	}
	return meta
}

func readElementText(dec *xml.Decoder) string {
	var out strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.CharData:
			out.Write(t)
		case xml.EndElement:
			return out.String()
		}
	}
	return out.String()
}
