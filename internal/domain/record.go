package domain

import "time"

// AnalysisRecord is a persisted analysis of one uploaded paper.
type AnalysisRecord struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	FileName string `json:"file_name"`
	FilePath string `json:"file_path,omitempty"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`

	PageCount int              `json:"page_count"`
	Document  DocumentMetadata `json:"document"`
	Metadata  *ArticleMetadata `json:"metadata,omitempty"`
	Analysis  *ContentAnalysis `json:"analysis"`

	CreatedAt time.Time `json:"created_at"`
}

// UserAnalytics summarises a user's stored analyses.
type UserAnalytics struct {
	ArticlesAnalyzed int `json:"articlesAnalyzed"`
	IssuesFound      int `json:"issuesFound"`
	StatisticalTests int `json:"statisticalTests"`
	ReportsGenerated int `json:"reportsGenerated"`
}

// SummariseRecords builds analytics from a set of records.
func SummariseRecords(records []*AnalysisRecord) UserAnalytics {
	var a UserAnalytics
	for _, r := range records {
		if r == nil {
			continue
		}
		a.ArticlesAnalyzed++
		if r.Analysis != nil {
			a.ReportsGenerated++
			a.IssuesFound += r.Analysis.IssueCount()
			a.StatisticalTests += len(r.Analysis.Clarity.Statistics)
		}
	}
	return a
}
