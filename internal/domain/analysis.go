package domain

// SectionKind names the canonical sections of a research article.
type SectionKind string

const (
	SectionAbstract     SectionKind = "abstract"
	SectionIntroduction SectionKind = "introduction"
	SectionMethods      SectionKind = "methods"
	SectionResults      SectionKind = "results"
	SectionDiscussion   SectionKind = "discussion"
	SectionConclusion   SectionKind = "conclusion"
	SectionReferences   SectionKind = "references"
)

// DetectedSection is a heading recognised as one of the canonical sections.
type DetectedSection struct {
	Kind    SectionKind `json:"kind"`
	Heading string      `json:"heading"`
	Line    int         `json:"line"`
}

// StructureAnalysis reports IMRAD coverage. Score is 25 points per IMRAD section.
type StructureAnalysis struct {
	HasAbstract     bool              `json:"hasAbstract"`
	HasIntroduction bool              `json:"hasIntroduction"`
	HasMethods      bool              `json:"hasMethods"`
	HasResults      bool              `json:"hasResults"`
	HasDiscussion   bool              `json:"hasDiscussion"`
	HasConclusion   bool              `json:"hasConclusion"`
	HasReferences   bool              `json:"hasReferences"`
	Sections        []DetectedSection `json:"sections"`
	Score           float64           `json:"score"`
	Suggestions     []string          `json:"suggestions"`
}

// StatisticKind classifies a reported statistic.
type StatisticKind string

const (
	StatisticPValue     StatisticKind = "p_value"
	StatisticPercentage StatisticKind = "percentage"
	StatisticCI         StatisticKind = "confidence_interval"
)

// StatisticalStatement is a statistic found in the text along with whether
// its reported value is internally consistent.
type StatisticalStatement struct {
	Kind   StatisticKind `json:"kind"`
	Text   string        `json:"text"`
	Valid  bool          `json:"valid"`
	Reason string        `json:"reason,omitempty"`
}

// ClarityAnalysis reports readability. ReadabilityScore is the raw Flesch
// Reading Ease value and is not clamped.
type ClarityAnalysis struct {
	ReadabilityScore  float64                `json:"readabilityScore"`
	GradeLevel        float64                `json:"gradeLevel"`
	TechnicalAccuracy float64                `json:"technicalAccuracy"`
	Statistics        []StatisticalStatement `json:"statistics,omitempty"`
	Suggestions       []string               `json:"suggestions"`
}

// QualityAnalysis scores are in [0, 100].
type QualityAnalysis struct {
	CitationQuality     float64  `json:"citationQuality"`
	MethodologyStrength float64  `json:"methodologyStrength"`
	OverallScore        float64  `json:"overallScore"`
	CitationCount       int      `json:"citationCount"`
	Strengths           []string `json:"strengths"`
	Weaknesses          []string `json:"weaknesses"`
	Recommendations     []string `json:"recommendations"`
}

// Keyword is a ranked key phrase.
type Keyword struct {
	Phrase string  `json:"phrase"`
	Score  float64 `json:"score"`
}

// TextStats are the token counts the readability formulas are built on.
type TextStats struct {
	Sentences           int     `json:"sentences"`
	Words               int     `json:"words"`
	Syllables           int     `json:"syllables"`
	ComplexWords        int     `json:"complexWords"`
	LongSentences       int     `json:"longSentences"`
	AvgWordsPerSentence float64 `json:"avgWordsPerSentence"`
	AvgSyllablesPerWord float64 `json:"avgSyllablesPerWord"`
	// Tokens counts words and punctuation marks; each mark is one syllable
	// in TokenSyllables. TokenReadingEase is Flesch Reading Ease over tokens,
	// the figure reported by tokenizers that keep punctuation.
	Tokens           int     `json:"tokens"`
	TokenSyllables   int     `json:"tokenSyllables"`
	TokenReadingEase float64 `json:"tokenReadingEase"`
}

// ContentAnalysis is the full output of the content analyzer.
type ContentAnalysis struct {
	Structure StructureAnalysis `json:"structure"`
	Clarity   ClarityAnalysis   `json:"clarity"`
	Quality   QualityAnalysis   `json:"quality"`
	Keywords  []Keyword         `json:"keywords"`
	Stats     TextStats         `json:"stats"`
}

// IssueCount is the number of problems the analysis surfaced, used for analytics.
func (a *ContentAnalysis) IssueCount() int {
	if a == nil {
		return 0
	}
	return len(a.Structure.Suggestions) + len(a.Clarity.Suggestions) + len(a.Quality.Weaknesses)
}
