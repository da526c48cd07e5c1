// Package metadata resolves bibliographic metadata for a paper from the
// DOI or PMID printed in its text, or from its title.
package metadata

import (
	"regexp"
	"strings"
	"unicode"

	"paper-analyzer/internal/domain"
)

var (
	doiPattern  = regexp.MustCompile(`(?i)\b(10\.\d{4,9}(?:\.\d+)*/[^\s"'<>&]+)`)
	pmidPattern = regexp.MustCompile(`(?i)\bPMID\s*:?\s*(\d{1,9})\b`)

	// lines that open the body of a paper; a title comes before them
	bodyStart = regexp.MustCompile(`(?i)^(?:\d+\.?\s*|[IVX]+\.?\s+)?(?:abstract|summary|background|introduction|keywords|key words)\b`)
	// front-matter lines that are never a title
	frontMatter = regexp.MustCompile(`(?i)@|https?://|\bdoi\b|\bpmid\b|©|copyright|\bvol\.|\bissn\b|received\b|accepted\b|published\b|journal of\b`)
)

const (
	minTitleWords  = 4
	maxTitleWords  = 40
	titleScanLines = 15
)

// ExtractIdentifiers returns the first DOI and PMID found in text. Trailing
// sentence punctuation and unbalanced closing brackets are trimmed from the DOI.
func ExtractIdentifiers(text string) domain.Identifiers {
	var ids domain.Identifiers
	if m := doiPattern.FindStringSubmatch(text); m != nil {
		ids.DOI = cleanDOI(m[1])
	}
	if m := pmidPattern.FindStringSubmatch(text); m != nil {
		ids.PMID = m[1]
	}
	return ids
}

func cleanDOI(doi string) string {
	for {
		trimmed := strings.TrimRight(doi, ".,;:")
		for _, pair := range [][2]string{{"(", ")"}, {"[", "]"}, {"{", "}"}} {
			if strings.HasSuffix(trimmed, pair[1]) && strings.Count(trimmed, pair[0]) < strings.Count(trimmed, pair[1]) {
				trimmed = strings.TrimSuffix(trimmed, pair[1])
			}
		}
		if trimmed == doi {
			return doi
		}
		doi = trimmed
	}
}

// GuessTitle returns the first line in the opening of text that reads like a
// title: 4 to 40 words, before the abstract or introduction, not a sentence
// ending in a period and not front matter. It returns "" when none does.
func GuessTitle(text string) string {
	scanned := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		scanned++
		if scanned > titleScanLines || bodyStart.MatchString(line) {
			return ""
		}
		if IsPlausibleTitle(line) && !frontMatter.MatchString(line) {
			return line
		}
	}
	return ""
}

// IsPlausibleTitle reports whether s is long enough to search a registry by.
func IsPlausibleTitle(s string) bool {
	s = strings.TrimSpace(s)
	n := len(strings.Fields(s))
	return n >= minTitleWords && n <= maxTitleWords && !strings.HasSuffix(s, ".")
}

// TitlesMatch reports whether found is the paper searched for by query: at
// least 80% of the words of found appear in query. Extra words in query,
// such as author names joined onto the title line, are tolerated.
func TitlesMatch(query, found string) bool {
	want := titleWords(found)
	if len(want) < 2 {
		return false
	}
	have := make(map[string]struct{})
	for _, w := range titleWords(query) {
		have[w] = struct{}{}
	}
	hits := 0
	for _, w := range want {
		if _, ok := have[w]; ok {
			hits++
		}
	}
	return float64(hits) >= 0.8*float64(len(want))
}

func titleWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(jatsTag.ReplaceAllString(s, " ")), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
