package review

import (
	"strconv"
	"strings"

	"paper-analyzer/internal/domain"
)

type promptSpec struct {
	system    string
	maxTokens int32
	// mimeType constrains the model output, e.g. "application/json".
	mimeType string
}

const mimeTypeJSON = "application/json"

var prompts = map[domain.ReviewKind]promptSpec{
	domain.ReviewArticle: {
		system: `You are an experienced reviewer of biomedical research. Review the article below and report:
1. Places where the conclusions are not supported by the reported results.
2. Statistical problems such as implausible standard deviations, suspicious p-values or unsuitable tests.
3. Cited work that appears to be misinterpreted.
Structure the review by issue and quote the passage each finding refers to.`,
		maxTokens: 2000,
	},
	domain.ReviewStatistics: {
		system: `You are a biostatistician reviewing the methods and results of a research article. Assess:
1. Whether each statistical test suits the data and design.
2. Whether the reported p-values are plausible and consistent with the test statistics.
3. Standard deviations or confidence intervals that look anomalous.
4. Whether the sample size is adequate for the claims made.
Explain every problem you find and say how it should be corrected.`,
		maxTokens: 1500,
	},
	domain.ReviewReferences: {
		system: `You are reviewing how a research article uses its sources. Compare each claim the article attributes to a reference with the reference text supplied. Report:
1. Misquotations.
2. Overstated findings.
3. Claims taken out of context.
4. Signs of selective citation.
Give the article passage and the reference passage for each finding.`,
		maxTokens: 2000,
	},
	domain.ReviewAppraisal: {
		system: `You are a dental research analyst specialising in periodontics. Appraise the study below and answer with a single JSON object of this shape:
{
  "studyType": "type of study, e.g. RCT, systematic review, cohort study",
  "methodology": {"type": "research methodology", "description": "brief description of the methods", "concerns": ["methodological concerns"]},
  "statistics": {"methods": ["statistical methods used"], "appropriateness": true, "concerns": ["statistical concerns"]},
  "clinicalRelevance": {"score": 1, "explanation": "why this score was given", "implications": ["clinical implications"]},
  "evidenceLevel": {"level": "1A", "description": "what the evidence level means for this study"},
  "perio": {"relevantConditions": ["periodontal conditions"], "treatments": ["treatments discussed"], "outcomes": ["measured outcomes"]}
}
clinicalRelevance.score is an integer from 1 to 10. evidenceLevel.level is one of 1A, 1B, 2A, 2B, 3, 4 or 5. Use empty lists when the paper has nothing periodontal.`,
		maxTokens: 1500,
		mimeType:  mimeTypeJSON,
	},
}

// truncate cuts s to at most limit runes, preferring the last whitespace
// before the limit.
func truncate(s string, limit int) (string, bool) {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s, false
	}
	cut := string(r[:limit])
	if i := strings.LastIndexAny(cut, " \n\t"); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut), true
}

// buildPrompt returns the user message for req within maxChars. With
// references, half the budget goes to the article and the rest is shared
// equally by the references.
func buildPrompt(req domain.ReviewRequest, maxChars int) (string, bool) {
	if req.Kind != domain.ReviewReferences {
		text, truncated := truncate(req.Text, maxChars)
		if req.Context == "" {
			return text, truncated
		}
		return req.Context + "\n\nText:\n" + text, truncated
	}

	articleBudget := maxChars / 2
	article, truncated := truncate(req.Text, articleBudget)

	perRef := 0
	if n := len(req.References); n > 0 {
		perRef = (maxChars - articleBudget) / n
	}
	var sb strings.Builder
	sb.WriteString("Article text:\n")
	sb.WriteString(article)
	sb.WriteString("\n\nReference texts:")
	for i, ref := range req.References {
		cut, t := truncate(ref, perRef)
		truncated = truncated || t
		sb.WriteString("\n\n[")
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString("] ")
		sb.WriteString(cut)
	}
	return sb.String(), truncated
}
