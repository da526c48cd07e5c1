package analysis

import (
	"regexp"
	"sort"
	"strings"

	"paper-analyzer/internal/domain"
)

const (
	// DefaultKeywordLimit is the number of phrases returned by Analyze.
	DefaultKeywordLimit = 10
	maxPhraseWords      = 4
)

var (
	phraseDelimiters = regexp.MustCompile(`[.,;:!?()\[\]{}"“”‘/\\|\n\t]+|\s[-–—]\s`)
	keywordToken     = regexp.MustCompile(`\p{L}[\p{L}'\-]*`)
)

var stopWords = toSet(`a about above after again against all also although am among an and any are as at be
because been before being below between both but by can could did do does doing done down during each
either et al etc few for from further had has have having he her here hers herself him himself his how
however i if in into is it its itself just may me might more most must my myself no nor not now of off
on once only or other our ours ourselves out over own per same she should since so some such than that
the their theirs them themselves then there therefore these they this those through thus to too under
until up upon us used using very via was we were what when where whether which while who whom why will
with within without would yet you your yours yourself yourselves one two three four five six seven
eight nine ten first second third fig figure table shown show shows showed found study studies based`)

func toSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// candidatePhrases splits text at punctuation and stop words. Phrases longer
// than maxPhraseWords are dropped.
func candidatePhrases(text string) [][]string {
	var phrases [][]string
	for _, chunk := range phraseDelimiters.Split(strings.ToLower(text), -1) {
		var cur []string
		flush := func() {
			if len(cur) > 0 && len(cur) <= maxPhraseWords {
				phrases = append(phrases, cur)
			}
			cur = nil
		}
		for _, w := range keywordToken.FindAllString(chunk, -1) {
			w = strings.Trim(w, "'-")
			if _, stop := stopWords[w]; stop || len([]rune(w)) < 2 {
				flush()
				continue
			}
			cur = append(cur, w)
		}
		flush()
	}
	return phrases
}

// ExtractKeywords ranks key phrases with RAKE: each word scores degree over
// frequency, and a phrase scores the sum of its words. Ties sort alphabetically.
func ExtractKeywords(text string, limit int) []domain.Keyword {
	phrases := candidatePhrases(text)
	if len(phrases) == 0 || limit <= 0 {
		return []domain.Keyword{}
	}

	freq := make(map[string]float64)
	degree := make(map[string]float64)
	for _, p := range phrases {
		for _, w := range p {
			freq[w]++
			degree[w] += float64(len(p))
		}
	}

	scores := make(map[string]float64)
	for _, p := range phrases {
		key := strings.Join(p, " ")
		if _, seen := scores[key]; seen {
			continue
		}
		var s float64
		for _, w := range p {
			s += degree[w] / freq[w]
		}
		scores[key] = s
	}

	out := make([]domain.Keyword, 0, len(scores))
	for phrase, score := range scores {
		out = append(out, domain.Keyword{Phrase: phrase, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Phrase < out[j].Phrase
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
