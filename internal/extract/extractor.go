// Package extract turns uploaded papers (PDF, DOCX, plain text) into text.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"paper-analyzer/internal/domain"
)

// Extractor implements domain.TextExtractor for PDF, DOCX and plain text.
type Extractor struct {
	logger domain.Logger
	pdf    *PDFExtractor
}

// NewExtractor creates a new extractor
func NewExtractor(logger domain.Logger) *Extractor {
	return &Extractor{
		logger: logger,
		pdf:    NewPDFExtractor(logger),
	}
}

// DetectFormat resolves the document format from the MIME type, falling back
// to the file extension for generic types such as application/octet-stream.
func DetectFormat(mimeType, filename string) (domain.DocumentFormat, bool) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case domain.MimeTypePDF:
		return domain.FormatPDF, true
	case domain.MimeTypeDOCX:
		return domain.FormatDOCX, true
	case domain.MimeTypeText, "text/markdown":
		return domain.FormatText, true
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return domain.FormatPDF, true
	case ".docx":
		return domain.FormatDOCX, true
	case ".txt", ".md":
		return domain.FormatText, true
	}
	return "", false
}

// ValidateFileType reports whether the upload is a supported paper format.
func ValidateFileType(mimeType, filename string) bool {
	_, ok := DetectFormat(mimeType, filename)
	return ok
}

// SupportsFormat reports whether format can be extracted.
func (e *Extractor) SupportsFormat(format domain.DocumentFormat) bool {
	switch format {
	case domain.FormatPDF, domain.FormatDOCX, domain.FormatText:
		return true
	}
	return false
}

// Extract dispatches on the detected format.
func (e *Extractor) Extract(ctx context.Context, data []byte, filename, mimeType string) (*domain.ExtractedDocument, error) {
	format, ok := DetectFormat(mimeType, filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, mimeType)
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyFile
	}

	e.logger.Debug("Extracting text", "file", filename, "format", format, "bytes", len(data))

	switch format {
	case domain.FormatPDF:
		return e.pdf.Extract(ctx, data)
	case domain.FormatDOCX:
		paragraphs, meta, err := extractDOCX(data)
		if err != nil {
			return nil, err
		}
		return e.paginated(paragraphs, meta, format, filename, len(data)), nil
	default:
		text := string(bytes.ToValidUTF8(data, nil))
		return e.paginated(splitIntoParagraphs(text), domain.DocumentMetadata{}, format, filename, len(data)), nil
	}
}

func (e *Extractor) paginated(paragraphs []string, meta domain.DocumentMetadata, format domain.DocumentFormat, filename string, size int) *domain.ExtractedDocument {
	if meta.Title == "" {
		base := filepath.Base(filename)
		meta.Title = strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	}
	meta.Format = format
	meta.FileSize = int64(size)
	meta.Extractor = string(format)
	return buildDocument(paginate(paragraphs, maxPageChars), meta)
}

// ExtractTextFromPDF returns the concatenated page text of the PDF at path.
func (e *Extractor) ExtractTextFromPDF(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := e.pdf.Extract(ctx, data)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}

// ExtractTextOrEmpty is ExtractTextFromPDF for callers that want an empty
// string on failure; the error is logged.
func (e *Extractor) ExtractTextOrEmpty(ctx context.Context, path string) string {
	text, err := e.ExtractTextFromPDF(ctx, path)
	if err != nil {
		e.logger.Error("Error extracting text from PDF", err, "path", path)
		return ""
	}
	return text
}

// ExtractWithMetadata extracts the file at path and never fails: on error
// the result has empty text, zero metadata and pages, and the error message.
func (e *Extractor) ExtractWithMetadata(ctx context.Context, path string) domain.ExtractionResult {
	data, err := os.ReadFile(path)
	if err != nil {
		e.logger.Error("Error reading document", err, "path", path)
		return domain.ExtractionResult{Error: err.Error()}
	}
	doc, err := e.Extract(ctx, data, filepath.Base(path), "")
	if err != nil {
		e.logger.Error("Error extracting text with metadata", err, "path", path)
		return domain.ExtractionResult{Error: err.Error()}
	}
	return Result(doc)
}

// Result converts a document into the flat extraction result.
func Result(doc *domain.ExtractedDocument) domain.ExtractionResult {
	return domain.ExtractionResult{
		Text:     doc.Text,
		Metadata: doc.Metadata,
		NumPages: doc.Metadata.PageCount,
	}
}
