package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"paper-analyzer/internal/domain"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

const defaultPageTimeout = 90 * time.Second

// pdfEngine is one PDF text backend. Pages are returned in order, one entry
// per page, empty when a page has no extractable text.
type pdfEngine interface {
	name() string
	pages(ctx context.Context, data []byte) ([]string, domain.DocumentMetadata, error)
}

// PDFExtractor extracts text with MuPDF and falls back to a pure-Go reader
// when MuPDF cannot open the file or finds no text.
type PDFExtractor struct {
	logger  domain.Logger
	engines []pdfEngine
}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor(logger domain.Logger) *PDFExtractor {
	return &PDFExtractor{
		logger: logger,
		engines: []pdfEngine{
			&fitzEngine{logger: logger, pageTimeout: defaultPageTimeout},
			&pureGoEngine{},
		},
	}
}

// Extract returns the text of every page of a PDF.
func (p *PDFExtractor) Extract(ctx context.Context, data []byte) (*domain.ExtractedDocument, error) {
	var (
		firstErr error
		empty    *domain.ExtractedDocument
	)
	for _, engine := range p.engines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages, meta, err := engine.pages(ctx, data)
		if err != nil {
			p.logger.Warn("PDF engine failed", "engine", engine.name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		meta.Format = domain.FormatPDF
		meta.FileSize = int64(len(data))
		meta.Extractor = engine.name()
		doc := buildDocument(pages, meta)
		if strings.TrimSpace(doc.Text) != "" {
			return doc, nil
		}
		p.logger.Debug("PDF engine found no text", "engine", engine.name(), "pages", len(pages))
		if empty == nil {
			empty = doc
		}
	}
	if empty != nil {
		return empty, nil
	}
	return nil, fmt.Errorf("failed to open PDF: %w", firstErr)
}

type fitzEngine struct {
	logger      domain.Logger
	pageTimeout time.Duration
}

func (e *fitzEngine) name() string { return "mupdf" }

func (e *fitzEngine) pages(ctx context.Context, data []byte) ([]string, domain.DocumentMetadata, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, domain.DocumentMetadata{}, err
	}

	raw := doc.Metadata()
	meta := domain.DocumentMetadata{
		Title:    strings.TrimSpace(raw["title"]),
		Author:   strings.TrimSpace(raw["author"]),
		Subject:  strings.TrimSpace(raw["subject"]),
		Keywords: strings.TrimSpace(raw["keywords"]),
		Producer: strings.TrimSpace(raw["producer"]),
	}

	type pageResult struct {
		text string
		err  error
	}

	numPages := doc.NumPage()
	pages := make([]string, numPages)
	// pending is set when a page timed out; the document must not be used or
	// closed until that goroutine returns.
	var pending chan pageResult
	defer func() {
		if pending == nil {
			doc.Close()
			return
		}
		go func(ch chan pageResult) {
			<-ch
			doc.Close()
		}(pending)
	}()

	for i := 0; i < numPages; i++ {
		e.logger.Debug("PDF processing page", "page", i+1, "total", numPages)
		resultCh := make(chan pageResult, 1)
		go func(idx int) {
			t, err := doc.Text(idx)
			resultCh <- pageResult{text: t, err: err}
		}(i)

		select {
		case res := <-resultCh:
			if res.err != nil {
				e.logger.Warn("Failed to extract text from page", "page", i+1, "total", numPages, "error", res.err)
				continue
			}
			pages[i] = res.text
		case <-time.After(e.pageTimeout):
			e.logger.Warn("PDF page extraction timeout; remaining pages left empty", "page", i+1, "total", numPages, "timeout_sec", int(e.pageTimeout.Seconds()))
			pending = resultCh
			return pages, meta, nil
		case <-ctx.Done():
			pending = resultCh
			return nil, meta, ctx.Err()
		}
	}
	return pages, meta, nil
}

type pureGoEngine struct{}

func (e *pureGoEngine) name() string { return "ledongthuc" }

func (e *pureGoEngine) pages(ctx context.Context, data []byte) (pages []string, meta domain.DocumentMetadata, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, meta, err
	}

	info := r.Trailer().Key("Info")
	meta.Title = strings.TrimSpace(info.Key("Title").Text())
	meta.Author = strings.TrimSpace(info.Key("Author").Text())
	meta.Subject = strings.TrimSpace(info.Key("Subject").Text())
	meta.Keywords = strings.TrimSpace(info.Key("Keywords").Text())
	meta.Producer = strings.TrimSpace(info.Key("Producer").Text())

	numPages := r.NumPage()
	pages = make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, meta, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages[i-1] = text
	}
	return pages, meta, nil
}
