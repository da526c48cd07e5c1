package domain

// ReviewKind selects which LLM review prompt is used.
type ReviewKind string

const (
	ReviewArticle    ReviewKind = "article"
	ReviewStatistics ReviewKind = "statistics"
	ReviewReferences ReviewKind = "references"
	// ReviewAppraisal asks for a structured study appraisal returned as JSON.
	ReviewAppraisal ReviewKind = "appraisal"
)

// ReviewRequest carries the paper text and, for reference checks, the text
// of the cited works. Context is an optional header, such as the title,
// journal and year, placed before the text.
type ReviewRequest struct {
	Kind       ReviewKind `json:"kind" validate:"required,oneof=article statistics references appraisal"`
	Text       string     `json:"text" validate:"required"`
	Context    string     `json:"context,omitempty"`
	References []string   `json:"references,omitempty" validate:"required_if=Kind references,dive,required"`
}

// ReviewResult is the model output. Appraisal is set for ReviewAppraisal;
// Content then holds the raw JSON.
type ReviewResult struct {
	Kind         ReviewKind `json:"kind"`
	Model        string     `json:"model"`
	Content      string     `json:"content"`
	Appraisal    *Appraisal `json:"appraisal,omitempty"`
	Truncated    bool       `json:"truncated"`
	PromptTokens int        `json:"prompt_tokens,omitempty"`
	OutputTokens int        `json:"output_tokens,omitempty"`
}

// Appraisal is a structured critical appraisal of a clinical study, with a
// periodontal focus.
type Appraisal struct {
	StudyType         string             `json:"studyType" validate:"required"`
	Methodology       AppraisalMethod    `json:"methodology"`
	Statistics        AppraisalStats     `json:"statistics"`
	ClinicalRelevance ClinicalRelevance  `json:"clinicalRelevance"`
	EvidenceLevel     EvidenceAssessment `json:"evidenceLevel"`
	Perio             PerioFindings      `json:"perio"`
}

type AppraisalMethod struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Concerns    []string `json:"concerns"`
}

type AppraisalStats struct {
	Methods     []string `json:"methods"`
	Appropriate bool     `json:"appropriateness"`
	Concerns    []string `json:"concerns"`
}

// ClinicalRelevance scores practical importance from 1 to 10.
type ClinicalRelevance struct {
	Score        int      `json:"score" validate:"min=1,max=10"`
	Explanation  string   `json:"explanation"`
	Implications []string `json:"implications"`
}

// EvidenceAssessment grades the study from 1A (systematic review of RCTs)
// to 5 (expert opinion).
type EvidenceAssessment struct {
	Level       string `json:"level" validate:"oneof=1A 1B 2A 2B 3 4 5"`
	Description string `json:"description"`
}

type PerioFindings struct {
	RelevantConditions []string `json:"relevantConditions"`
	Treatments         []string `json:"treatments"`
	Outcomes           []string `json:"outcomes"`
}
