package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/httputil"
)

// semanticAPIBase is the Semantic Scholar Graph API paper endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper"

const semanticFields = "title,abstract,authors,venue,year,citationCount,influentialCitationCount,externalIds"

// SemanticScholar resolves metadata by DOI.
type SemanticScholar struct {
	client *httputil.Client
}

// NewSemanticScholar creates a Semantic Scholar provider. The unauthenticated
// pool is shared and slow, so requests are limited to one per second.
func NewSemanticScholar(httpClient *http.Client, apiKey, userAgent string) *SemanticScholar {
	c := httputil.NewClient(httpClient, 1, 1, userAgent)
	if apiKey != "" {
		c.Header.Set("x-api-key", apiKey)
	}
	return &SemanticScholar{client: c}
}

func (s *SemanticScholar) Name() domain.MetadataSource { return domain.SourceSemanticScholar }

func (s *SemanticScholar) Supports(ids domain.Identifiers) bool { return ids.DOI != "" }

type semanticPaper struct {
	Title                    string `json:"title"`
	Abstract                 string `json:"abstract"`
	Venue                    string `json:"venue"`
	Year                     int    `json:"year"`
	CitationCount            int    `json:"citationCount"`
	InfluentialCitationCount int    `json:"influentialCitationCount"`
	Authors                  []struct {
		Name string `json:"name"`
	} `json:"authors"`
	ExternalIDs struct {
		PubMed string `json:"PubMed"`
	} `json:"externalIds"`
}

func (s *SemanticScholar) Fetch(ctx context.Context, ids domain.Identifiers) (*domain.ArticleMetadata, error) {
	u := semanticAPIBase + "/DOI:" + escapeDOI(ids.DOI) + "?" + url.Values{"fields": {semanticFields}}.Encode()

	var paper semanticPaper
	if err := s.client.GetJSON(ctx, u, &paper); err != nil {
		return nil, fmt.Errorf("Semantic Scholar paper: %w", err)
	}

	md := &domain.ArticleMetadata{
		DOI:                  ids.DOI,
		PMID:                 firstNonEmpty(ids.PMID, paper.ExternalIDs.PubMed),
		Title:                strings.TrimSpace(paper.Title),
		Journal:              paper.Venue,
		PublicationYear:      paper.Year,
		Abstract:             paper.Abstract,
		Citations:            paper.CitationCount,
		InfluentialCitations: paper.InfluentialCitationCount,
		Source:               domain.SourceSemanticScholar,
	}
	for _, a := range paper.Authors {
		first, last := splitFullName(a.Name)
		md.Authors = append(md.Authors, domain.Author{FirstName: first, LastName: last})
	}
	if md.Title == "" {
		return nil, fmt.Errorf("Semantic Scholar: record for %s has no title", ids.DOI)
	}
	return md, nil
}

// splitFullName splits "Ada M. Lovelace" into ("Ada M.", "Lovelace").
func splitFullName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
}
