package domain

// Supported MIME types for uploaded papers.
const (
	MimeTypePDF  = "application/pdf"
	MimeTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTypeText = "text/plain"
)

// DocumentFormat identifies the container a paper was uploaded in.
type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatDOCX DocumentFormat = "docx"
	FormatText DocumentFormat = "text"
)

// BlockType represents different types of text blocks
type BlockType string

const (
	BlockTypeParagraph BlockType = "paragraph"
	BlockTypeHeading   BlockType = "heading"
)

// TextBlock is a paragraph or heading found on a page.
type TextBlock struct {
	Type       BlockType `json:"type"`
	Content    string    `json:"content"`
	Level      int       `json:"level"`
	PageNumber int       `json:"page_number"`
	Position   int       `json:"position"`
}

// Page holds the sanitised text of a single page (1-indexed).
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// DocumentMetadata contains the information embedded in the file itself.
// Bibliographic metadata resolved from external registries lives in ArticleMetadata.
type DocumentMetadata struct {
	Title     string         `json:"title,omitempty"`
	Author    string         `json:"author,omitempty"`
	Subject   string         `json:"subject,omitempty"`
	Keywords  string         `json:"keywords,omitempty"`
	Producer  string         `json:"producer,omitempty"`
	PageCount int            `json:"page_count"`
	FileSize  int64          `json:"file_size"`
	Format    DocumentFormat `json:"format"`
	Extractor string         `json:"extractor,omitempty"`
}

// ExtractedDocument is the result of running a TextExtractor over a file.
type ExtractedDocument struct {
	Text     string           `json:"text"`
	Pages    []Page           `json:"pages"`
	Blocks   []TextBlock      `json:"blocks"`
	Metadata DocumentMetadata `json:"metadata"`
}

// Headings returns the content of every heading block in document order.
func (d *ExtractedDocument) Headings() []string {
	var out []string
	for _, b := range d.Blocks {
		if b.Type == BlockTypeHeading {
			out = append(out, b.Content)
		}
	}
	return out
}

// ExtractionResult is the never-failing form of extraction: on error the
// text is empty, metadata is zeroed and Error carries the reason.
type ExtractionResult struct {
	Text     string           `json:"text"`
	Metadata DocumentMetadata `json:"metadata"`
	NumPages int              `json:"num_pages"`
	Error    string           `json:"error,omitempty"`
}
