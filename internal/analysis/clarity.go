package analysis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/textstats"
)

const (
	difficultReadingEase = 30.0
	complexWordShare     = 0.2

	// bytes scanned around an out-of-range percentage for change wording
	changeWindowBefore = 60
	changeWindowAfter  = 30
)

var (
	pValuePattern     = regexp.MustCompile(`\b[pP]\s*(<=|>=|=|<|>|≤|≥)\s*(-?\d*\.?\d+)`)
	percentagePattern = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s?%`)
	ciPattern         = regexp.MustCompile(`\bCI\b[^\d\-]{0,6}(-?\d+(?:\.\d+)?)\s*(?:to|–|—|,|-)\s*(-?\d+(?:\.\d+)?)`)
	changeWords       = []string{"increase", "decrease", "change", "reduction", "reduced", "improvement", "improved", "growth", "rise", "higher", "lower", "fold"}
)

// FindStatistics extracts p-values, percentages and confidence intervals and
// checks that each reported value is possible.
func FindStatistics(text string) []domain.StatisticalStatement {
	var out []domain.StatisticalStatement

	for _, m := range pValuePattern.FindAllStringSubmatch(text, -1) {
		st := domain.StatisticalStatement{Kind: domain.StatisticPValue, Text: m[0], Valid: true}
		v, err := strconv.ParseFloat(m[2], 64)
		switch {
		case err != nil:
			st.Valid, st.Reason = false, "unparseable value"
		case v < 0 || v > 1:
			st.Valid, st.Reason = false, "p-value must be between 0 and 1"
		}
		out = append(out, st)
	}

	for _, idx := range percentagePattern.FindAllStringSubmatchIndex(text, -1) {
		rest := strings.TrimLeft(text[idx[1]:], " ")
		if strings.HasPrefix(rest, "CI") || strings.HasPrefix(strings.ToLower(rest), "confidence") {
			continue
		}
		// "10-20%" is a range, not a negative value.
		if text[idx[2]] == '-' && idx[2] > 0 && isDigit(text[idx[2]-1]) {
			idx[0]++
			idx[2]++
		}
		st := domain.StatisticalStatement{Kind: domain.StatisticPercentage, Text: text[idx[0]:idx[1]], Valid: true}
		v, err := strconv.ParseFloat(text[idx[2]:idx[3]], 64)
		switch {
		case err != nil:
			st.Valid, st.Reason = false, "unparseable value"
		case (v < 0 || v > 100) && !describesChange(text[max(0, idx[0]-changeWindowBefore):min(len(text), idx[1]+changeWindowAfter)]):
			st.Valid, st.Reason = false, "percentage outside 0-100 that is not a change"
		}
		out = append(out, st)
	}

	for _, m := range ciPattern.FindAllStringSubmatch(text, -1) {
		st := domain.StatisticalStatement{Kind: domain.StatisticCI, Text: m[0], Valid: true}
		lo, err1 := strconv.ParseFloat(m[1], 64)
		hi, err2 := strconv.ParseFloat(m[2], 64)
		switch {
		case err1 != nil || err2 != nil:
			st.Valid, st.Reason = false, "unparseable bound"
		case lo > hi:
			st.Valid, st.Reason = false, "lower bound exceeds upper bound"
		}
		out = append(out, st)
	}
	return out
}

func describesChange(context string) bool {
	context = strings.ToLower(context)
	for _, w := range changeWords {
		if strings.Contains(context, w) {
			return true
		}
	}
	return false
}

// AnalyzeClarity scores readability and the consistency of reported statistics.
func AnalyzeClarity(text string) domain.ClarityAnalysis {
	st := textstats.Stats(text)
	return clarityFromStats(text, st)
}

func clarityFromStats(text string, st domain.TextStats) domain.ClarityAnalysis {
	res := domain.ClarityAnalysis{
		ReadabilityScore: textstats.ReadingEase(st),
		GradeLevel:       textstats.GradeLevel(st),
		Statistics:       FindStatistics(text),
		Suggestions:      []string{},
	}

	valid := 0
	for _, s := range res.Statistics {
		if s.Valid {
			valid++
			continue
		}
		res.Suggestions = append(res.Suggestions, fmt.Sprintf("Check the reported statistic %q: %s", s.Text, s.Reason))
	}
	if n := len(res.Statistics); n > 0 {
		res.TechnicalAccuracy = float64(valid) / float64(n) * 100
	}

	if st.Words == 0 {
		return res
	}
	if st.LongSentences > 0 {
		res.Suggestions = append(res.Suggestions,
			fmt.Sprintf("Split the %d sentence(s) longer than %d words", st.LongSentences, textstats.LongSentenceWords))
	}
	if res.ReadabilityScore < difficultReadingEase {
		res.Suggestions = append(res.Suggestions,
			fmt.Sprintf("The text is very difficult to read (Flesch %.1f); prefer shorter sentences and plainer words", res.ReadabilityScore))
	}
	if float64(st.ComplexWords)/float64(st.Words) > complexWordShare {
		res.Suggestions = append(res.Suggestions,
			fmt.Sprintf("%.0f%% of words have three or more syllables; replace jargon where a simpler term exists",
				float64(st.ComplexWords)/float64(st.Words)*100))
	}
	return res
}

func clarityFallback(err error) domain.ClarityAnalysis {
	return domain.ClarityAnalysis{Suggestions: []string{"Error in analysis: " + err.Error()}}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
