package extract

import (
	"regexp"
	"strings"
	"unicode"

	"paper-analyzer/internal/domain"
)

const (
	maxPageChars      = 2600
	maxHeadingChars   = 50
	maxUpperHeading   = 100
	minUpperHeadingSz = 4
)

// sanitizeText drops NUL, control characters other than tab/LF/CR, and
// surrogates, so the text survives JSON and Postgres JSONB.
func sanitizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7F:
		case r >= 0xD800 && r <= 0xDFFF:
		case r == unicode.ReplacementChar:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeText unifies line endings and non-breaking spaces, trims lines
// and keeps at most one blank line between paragraphs.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, t)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// splitIntoParagraphs splits on blank lines and joins the lines of each
// paragraph with spaces. A short leading line that looks like a heading, and
// any line that is a section heading, are split off into their own paragraphs.
func splitIntoParagraphs(text string) []string {
	var result []string
	for _, para := range strings.Split(normalizeText(text), "\n\n") {
		lines := strings.Split(strings.TrimSpace(para), "\n")
		if len(lines) > 1 && looksLikeLeadingHeading(lines[0]) {
			result = append(result, lines[0])
			lines = lines[1:]
		}
		var body []string
		flush := func() {
			if joined := strings.TrimSpace(strings.Join(body, " ")); joined != "" {
				result = append(result, joined)
			}
			body = body[:0]
		}
		for _, line := range lines {
			if isSectionHeading(line) {
				flush()
				result = append(result, strings.TrimSpace(line))
				continue
			}
			body = append(body, line)
		}
		flush()
	}
	return result
}

func looksLikeLeadingHeading(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || len(line) >= maxHeadingChars {
		return false
	}
	if strings.HasSuffix(line, ",") || strings.HasSuffix(line, "-") {
		return false
	}
	first := []rune(line)[0]
	return unicode.IsUpper(first) || unicode.IsDigit(first)
}

var sectionKeywords = map[string]struct{}{
	"abstract": {}, "summary": {}, "introduction": {}, "background": {}, "methods": {},
	"methodology": {}, "materials and methods": {}, "patients and methods": {},
	"results": {}, "findings": {}, "results and discussion": {}, "discussion": {},
	"conclusion": {}, "conclusions": {}, "references": {}, "bibliography": {},
	"acknowledgements": {}, "acknowledgments": {},
}

// sectionNumber matches "1", "2.1.", "IV." and "III " heading prefixes.
var sectionNumber = regexp.MustCompile(`^(?:\d+(?:\.\d+)*\.?\s*|[IVXLC]+(?:\.\s*|\s+))`)

// isSectionHeading reports whether line is a section keyword on its own,
// optionally numbered and followed by a period or colon.
func isSectionHeading(line string) bool {
	line = strings.TrimSpace(sectionNumber.ReplaceAllString(strings.TrimSpace(line), ""))
	line = strings.ToLower(strings.TrimRight(line, ".:"))
	line = strings.ReplaceAll(line, "&", "and")
	_, ok := sectionKeywords[strings.Join(strings.Fields(line), " ")]
	return ok
}

// isHeading reports whether a paragraph is likely a heading: a section
// keyword, a single short line, or an upper-case line under 100 characters.
func isHeading(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(text, "\n") {
		return false
	}
	if isSectionHeading(text) {
		return true
	}
	if len(text) >= maxUpperHeading {
		return false
	}
	if len(text) >= minUpperHeadingSz && text == strings.ToUpper(text) && strings.ToUpper(text) != strings.ToLower(text) {
		return true
	}
	return len(text) < maxHeadingChars && !strings.HasSuffix(text, ".")
}

// paginate groups paragraphs into pseudo-pages of at most maxChars for
// formats without real pages. A paragraph longer than a page gets its own page.
func paginate(paragraphs []string, maxChars int) []string {
	var pages []string
	var sb strings.Builder
	flush := func() {
		pages = append(pages, strings.TrimSpace(sb.String()))
		sb.Reset()
	}
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if sb.Len() == 0 && len(para) > maxChars {
			pages = append(pages, para)
			continue
		}
		if sb.Len() > 0 && sb.Len()+2+len(para) > maxChars {
			flush()
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(para)
	}
	if sb.Len() > 0 {
		flush()
	}
	return pages
}

// buildDocument turns raw page texts into blocks and the joined document text.
// Empty pages keep their slot.
func buildDocument(rawPages []string, meta domain.DocumentMetadata) *domain.ExtractedDocument {
	doc := &domain.ExtractedDocument{
		Pages:    make([]domain.Page, 0, len(rawPages)),
		Blocks:   []domain.TextBlock{},
		Metadata: meta,
	}
	var all []string
	for i, raw := range rawPages {
		pageNumber := i + 1
		var pageOut []string
		for pos, para := range splitIntoParagraphs(sanitizeText(raw)) {
			block := domain.TextBlock{
				Type:       domain.BlockTypeParagraph,
				Content:    para,
				PageNumber: pageNumber,
				Position:   pos,
			}
			if isHeading(para) {
				block.Type = domain.BlockTypeHeading
				block.Level = 1
			}
			doc.Blocks = append(doc.Blocks, block)
			pageOut = append(pageOut, para)
		}
		pageText := strings.Join(pageOut, "\n\n")
		doc.Pages = append(doc.Pages, domain.Page{Number: pageNumber, Text: pageText})
		if pageText != "" {
			all = append(all, pageText)
		}
	}
	doc.Text = strings.Join(all, "\n\n")
	doc.Metadata.PageCount = len(rawPages)
	return doc
}
