package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummariseRecords(t *testing.T) {
	analysis := &ContentAnalysis{
		Structure: StructureAnalysis{Suggestions: []string{"Add a Methods section"}},
		Clarity: ClarityAnalysis{
			Suggestions: []string{"Shorten sentences"},
			Statistics:  []StatisticalStatement{{Kind: StatisticPValue, Text: "p < 0.05", Valid: true}},
		},
		Quality: QualityAnalysis{Weaknesses: []string{"Few citations", "No sample size"}},
	}

	got := SummariseRecords([]*AnalysisRecord{
		{ID: "a", Analysis: analysis},
		{ID: "b"},
		nil,
	})

	assert.Equal(t, UserAnalytics{
		ArticlesAnalyzed: 2,
		IssuesFound:      4,
		StatisticalTests: 1,
		ReportsGenerated: 1,
	}, got)
}

func TestSummariseRecords_Empty(t *testing.T) {
	assert.Equal(t, UserAnalytics{}, SummariseRecords(nil))
}

func TestIssueCount_Nil(t *testing.T) {
	var a *ContentAnalysis
	assert.Zero(t, a.IssueCount())
}

func TestHeadings(t *testing.T) {
	doc := &ExtractedDocument{Blocks: []TextBlock{
		{Type: BlockTypeHeading, Content: "Introduction"},
		{Type: BlockTypeParagraph, Content: "Body text."},
		{Type: BlockTypeHeading, Content: "Methods"},
	}}
	assert.Equal(t, []string{"Introduction", "Methods"}, doc.Headings())
	assert.Nil(t, (&ExtractedDocument{}).Headings())
}

func TestIdentifiersEmpty(t *testing.T) {
	assert.True(t, Identifiers{}.Empty())
	assert.False(t, Identifiers{PMID: "12345678"}.Empty())
	assert.False(t, Identifiers{Title: "A title"}.Empty())
}

func TestIdentifiersHasRegistryID(t *testing.T) {
	assert.True(t, Identifiers{DOI: "10.1/x"}.HasRegistryID())
	assert.False(t, Identifiers{Title: "A title"}.HasRegistryID())
}

func TestIdentifiersMerge(t *testing.T) {
	found := Identifiers{DOI: "10.1/text", PMID: "1"}
	got := found.Merge(Identifiers{DOI: "10.1/hint", Title: "Hinted title"})
	assert.Equal(t, Identifiers{DOI: "10.1/hint", PMID: "1", Title: "Hinted title"}, got)
	assert.Equal(t, "10.1/text", found.DOI)
}

func TestLocalUser(t *testing.T) {
	u := LocalUser()
	assert.Equal(t, LocalUserID, u.ID)
	assert.NotNil(t, u.UserMetadata)
	assert.NotSame(t, u, LocalUser())
}

func TestValidationError(t *testing.T) {
	assert.Equal(t, "file: is required", (&ValidationError{Field: "file", Message: "is required"}).Error())
	assert.Equal(t, "bad input", (&ValidationError{Message: "bad input"}).Error())
}
