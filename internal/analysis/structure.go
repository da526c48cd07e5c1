package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"paper-analyzer/internal/domain"
)

const (
	imradPoints      = 25.0
	maxHeadingLength = 60
)

// headingNumber matches "1", "2.1.", "IV.", "III " and similar prefixes.
var headingNumber = regexp.MustCompile(`^(?:\d+(?:\.\d+)*\.?\s*|[IVXLC]+(?:\.\s*|\s+))`)

// sectionHeadings maps a normalised heading to the sections it opens.
var sectionHeadings = map[string][]domain.SectionKind{
	"abstract":                  {domain.SectionAbstract},
	"summary":                   {domain.SectionAbstract},
	"introduction":              {domain.SectionIntroduction},
	"background":                {domain.SectionIntroduction},
	"methods":                   {domain.SectionMethods},
	"method":                    {domain.SectionMethods},
	"methodology":               {domain.SectionMethods},
	"materials and methods":     {domain.SectionMethods},
	"material and methods":      {domain.SectionMethods},
	"methods and materials":     {domain.SectionMethods},
	"patients and methods":      {domain.SectionMethods},
	"experimental procedures":   {domain.SectionMethods},
	"study design":              {domain.SectionMethods},
	"results":                   {domain.SectionResults},
	"result":                    {domain.SectionResults},
	"findings":                  {domain.SectionResults},
	"results and discussion":    {domain.SectionResults, domain.SectionDiscussion},
	"discussion":                {domain.SectionDiscussion},
	"conclusion":                {domain.SectionConclusion},
	"conclusions":               {domain.SectionConclusion},
	"concluding remarks":        {domain.SectionConclusion},
	"discussion and conclusion": {domain.SectionDiscussion, domain.SectionConclusion},
	"references":                {domain.SectionReferences},
	"bibliography":              {domain.SectionReferences},
	"literature cited":          {domain.SectionReferences},
	"works cited":               {domain.SectionReferences},
}

var sectionSuggestions = map[domain.SectionKind]string{
	domain.SectionAbstract:     "Add an abstract summarising the objective, methods, main results and conclusion",
	domain.SectionIntroduction: "Add an Introduction section stating the background and the research question",
	domain.SectionMethods:      "Add a Methods section describing the study design, participants and analysis",
	domain.SectionResults:      "Add a Results section reporting the findings without interpretation",
	domain.SectionDiscussion:   "Add a Discussion section interpreting the results and their limitations",
	domain.SectionConclusion:   "Add a Conclusion summarising what the study shows",
	domain.SectionReferences:   "Add a References section listing the cited works",
}

var sectionOrder = []domain.SectionKind{
	domain.SectionAbstract,
	domain.SectionIntroduction,
	domain.SectionMethods,
	domain.SectionResults,
	domain.SectionDiscussion,
	domain.SectionConclusion,
	domain.SectionReferences,
}

// DetectSections finds section headings, one per line, in document order.
// A heading may be numbered and may be followed by a colon and inline text
// ("Abstract: We study ...").
func DetectSections(text string) []domain.DetectedSection {
	var out []domain.DetectedSection
	for i, line := range strings.Split(text, "\n") {
		kinds, heading := matchHeading(line)
		for _, k := range kinds {
			out = append(out, domain.DetectedSection{Kind: k, Heading: heading, Line: i + 1})
		}
	}
	return out
}

func matchHeading(line string) ([]domain.SectionKind, string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, ""
	}
	heading := line
	stripped := strings.TrimSpace(headingNumber.ReplaceAllString(line, ""))

	// Inline form: "Abstract: text" or "Methods. text".
	if idx := strings.IndexAny(stripped, ":."); idx > 0 {
		if kinds, ok := sectionHeadings[normaliseHeading(stripped[:idx])]; ok {
			return kinds, strings.TrimSpace(line[:len(line)-len(stripped)+idx])
		}
	}

	if len(stripped) > maxHeadingLength {
		return nil, ""
	}
	if kinds, ok := sectionHeadings[normaliseHeading(stripped)]; ok {
		return kinds, heading
	}
	return nil, ""
}

func normaliseHeading(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, ":.")
	s = strings.ReplaceAll(s, "&", "and")
	return strings.Join(strings.Fields(s), " ")
}

// AnalyzeStructure reports which canonical sections are present and scores
// IMRAD coverage at 25 points per section.
func AnalyzeStructure(text string) domain.StructureAnalysis {
	res := domain.StructureAnalysis{
		Sections:    DetectSections(text),
		Suggestions: []string{},
	}
	if res.Sections == nil {
		res.Sections = []domain.DetectedSection{}
	}

	found := make(map[domain.SectionKind]bool)
	for _, s := range res.Sections {
		found[s.Kind] = true
	}

	res.HasAbstract = found[domain.SectionAbstract]
	res.HasIntroduction = found[domain.SectionIntroduction]
	res.HasMethods = found[domain.SectionMethods]
	res.HasResults = found[domain.SectionResults]
	res.HasDiscussion = found[domain.SectionDiscussion]
	res.HasConclusion = found[domain.SectionConclusion]
	res.HasReferences = found[domain.SectionReferences]

	for _, ok := range []bool{res.HasIntroduction, res.HasMethods, res.HasResults, res.HasDiscussion} {
		if ok {
			res.Score += imradPoints
		}
	}

	if strings.TrimSpace(text) == "" {
		return res
	}
	for _, k := range sectionOrder {
		if !found[k] {
			res.Suggestions = append(res.Suggestions, sectionSuggestions[k])
		}
	}
	if res.Score > 0 && res.Score < 100 {
		res.Suggestions = append(res.Suggestions,
			fmt.Sprintf("Only %d of 4 IMRAD sections were found; follow the Introduction, Methods, Results and Discussion layout", int(res.Score/imradPoints)))
	}
	return res
}

// splitAtReferences splits text at the last references heading. refs is
// empty when there is no such heading.
func splitAtReferences(text string, sections []domain.DetectedSection) (body, refs string) {
	line := 0
	for _, s := range sections {
		if s.Kind == domain.SectionReferences {
			line = s.Line
		}
	}
	if line == 0 {
		return text, ""
	}
	lines := strings.Split(text, "\n")
	return strings.Join(lines[:line-1], "\n"), strings.Join(lines[line:], "\n")
}
