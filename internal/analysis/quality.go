package analysis

import (
	"regexp"
	"strconv"
	"strings"

	"paper-analyzer/internal/domain"
)

const (
	citationSaturation = 30
	recentYears        = 10
	weakMethodology    = 40.0
)

var (
	numericCitation = regexp.MustCompile(`\[\s*\d+(?:\s*[-–,]\s*\d+)*\s*\]`)
	// Parenthesised author-year groups such as "(Smith et al., 2020; Lee 2019a)".
	authorYearGroup = regexp.MustCompile(`\(([^()]*\p{Lu}[\p{L}'\-]+[^()]*\b(?:19|20)\d{2}[a-z]?[^()]*)\)`)
	citedYear       = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

type methodMarker struct {
	name    string
	weight  float64
	pattern *regexp.Regexp
	advice  string
}

var methodMarkers = []methodMarker{
	{"randomization", 15, regexp.MustCompile(`(?i)\brandomi[sz](?:ed|ation)\b|\brandom(?:ly)? assign`),
		"Describe how participants were allocated (randomization procedure)"},
	{"control group", 15, regexp.MustCompile(`(?i)\bcontrol group|\bplacebo\b|\bcontrolled trial\b`),
		"State the comparison or control condition"},
	{"blinding", 10, regexp.MustCompile(`(?i)\b(?:double|single|triple)[- ]blind|\bblinded\b|\bblinding\b|\bmasked\b`),
		"Report whether participants, investigators or assessors were blinded"},
	{"sample size", 15, regexp.MustCompile(`(?i)\bsample size\b|\bpower (?:analysis|calculation)\b|\bn\s*=\s*\d+`),
		"Justify the sample size with a power calculation"},
	{"eligibility criteria", 10, regexp.MustCompile(`(?i)\b(?:inclusion|exclusion|eligibility) criteria\b`),
		"List the inclusion and exclusion criteria"},
	{"statistical test", 15, regexp.MustCompile(`(?i)\bt-test\b|\bchi-squared?\b|\banova\b|\bregression\b|\bmann-whitney\b|\bwilcoxon\b|\bfisher'?s exact\b|\bkruskal`),
		"Name the statistical tests used for each comparison"},
	{"ethics approval", 10, regexp.MustCompile(`(?i)\bethic(?:s|al) (?:committee|approval|board)\b|\binstitutional review board\b|\bIRB\b|\binformed consent\b`),
		"State the ethics approval and consent procedure"},
	{"follow-up", 10, regexp.MustCompile(`(?i)\bfollow(?:ed)?[- ]up\b`),
		"Report the follow-up period and losses to follow-up"},
}

// CountCitations returns the number of in-text citations and the years cited
// in author-year form.
func CountCitations(text string) (int, []int) {
	count := len(numericCitation.FindAllString(text, -1))
	var years []int
	for _, m := range authorYearGroup.FindAllStringSubmatch(text, -1) {
		for _, part := range strings.Split(m[1], ";") {
			ys := citedYear.FindAllString(part, -1)
			if len(ys) == 0 {
				continue
			}
			count++
			for _, y := range ys {
				n, _ := strconv.Atoi(y)
				years = append(years, n)
			}
		}
	}
	return count, years
}

// recentShare is the fraction of years within recentYears of the newest one.
func recentShare(years []int) float64 {
	if len(years) == 0 {
		return 0
	}
	newest := 0
	for _, y := range years {
		newest = max(newest, y)
	}
	recent := 0
	for _, y := range years {
		if newest-y <= recentYears {
			recent++
		}
	}
	return float64(recent) / float64(len(years))
}

// AnalyzeQuality scores citation practice and methodological reporting.
// OverallScore is left to the caller since it depends on the other analyses.
func AnalyzeQuality(text string, sections []domain.DetectedSection) domain.QualityAnalysis {
	res := domain.QualityAnalysis{
		Strengths:       []string{},
		Weaknesses:      []string{},
		Recommendations: []string{},
	}
	if strings.TrimSpace(text) == "" {
		return res
	}

	body, refs := splitAtReferences(text, sections)
	count, years := CountCitations(body)
	res.CitationCount = count

	if refs != "" {
		for _, y := range citedYear.FindAllString(refs, -1) {
			n, _ := strconv.Atoi(y)
			years = append(years, n)
		}
	}

	switch {
	case count == 0:
		res.Weaknesses = append(res.Weaknesses, "No in-text citations were found")
		res.Recommendations = append(res.Recommendations, "Support claims with citations to prior work")
	case count >= 10:
		res.Strengths = append(res.Strengths, "Claims are supported by numerous citations")
	}

	if count > 0 {
		res.CitationQuality = float64(min(count, citationSaturation)) / citationSaturation * 50
		if refs != "" {
			res.CitationQuality += 20
		}
		share := recentShare(years)
		res.CitationQuality += share * 30
		if len(years) > 0 && share < 0.5 {
			res.Weaknesses = append(res.Weaknesses, "Most cited work is more than ten years older than the newest citation")
			res.Recommendations = append(res.Recommendations, "Include recent literature")
		}
	}
	if refs == "" {
		res.Weaknesses = append(res.Weaknesses, "No reference list was found")
	}

	for _, m := range methodMarkers {
		if m.pattern.MatchString(text) {
			res.MethodologyStrength += m.weight
			res.Strengths = append(res.Strengths, "Reports "+m.name)
		} else {
			res.Recommendations = append(res.Recommendations, m.advice)
		}
	}
	if res.MethodologyStrength < weakMethodology {
		res.Weaknesses = append(res.Weaknesses, "Methodology is insufficiently reported")
	}

	res.CitationQuality = clamp(res.CitationQuality)
	res.MethodologyStrength = clamp(res.MethodologyStrength)
	return res
}

// OverallScore weights structure 30%, readability 20%, citations 25% and
// methodology 25%. Readability is clamped to [0, 100] first.
func OverallScore(structure domain.StructureAnalysis, clarity domain.ClarityAnalysis, quality domain.QualityAnalysis) float64 {
	return clamp(0.3*structure.Score +
		0.2*clamp(clarity.ReadabilityScore) +
		0.25*quality.CitationQuality +
		0.25*quality.MethodologyStrength)
}

func clamp(v float64) float64 {
	return min(max(v, 0), 100)
}
