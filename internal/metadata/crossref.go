package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/httputil"
)

// crossrefAPIBase is the Crossref works endpoint. Declared as a var so tests
// can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

var jatsTag = regexp.MustCompile(`<[^>]+>`)

// Crossref resolves metadata by DOI, or by a bibliographic title query.
type Crossref struct {
	client *httputil.Client
}

// NewCrossref creates a Crossref provider. The contact email in the
// User-Agent routes requests to the polite pool.
func NewCrossref(httpClient *http.Client, userAgent string) *Crossref {
	return &Crossref{client: httputil.NewClient(httpClient, 5, 2, userAgent)}
}

func (c *Crossref) Name() domain.MetadataSource { return domain.SourceCrossref }

func (c *Crossref) Supports(ids domain.Identifiers) bool { return ids.DOI != "" || ids.Title != "" }

type crossrefWork struct {
	DOI            string   `json:"DOI"`
	Title          []string `json:"title"`
	ContainerTitle []string `json:"container-title"`
	Abstract       string   `json:"abstract"`
	Subject        []string `json:"subject"`
	ReferencedBy   int      `json:"is-referenced-by-count"`
	Author         []struct {
		Given       string `json:"given"`
		Family      string `json:"family"`
		Affiliation []struct {
			Name string `json:"name"`
		} `json:"affiliation"`
	} `json:"author"`
	Published crossrefDate `json:"published"`
	Issued    crossrefDate `json:"issued"`
}

type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefSearchResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

func (d crossrefDate) year() int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}

func (c *Crossref) Fetch(ctx context.Context, ids domain.Identifiers) (*domain.ArticleMetadata, error) {
	if ids.DOI == "" {
		return c.search(ctx, ids)
	}
	var resp crossrefResponse
	if err := c.client.GetJSON(ctx, crossrefAPIBase+"/"+escapeDOI(ids.DOI), &resp); err != nil {
		return nil, fmt.Errorf("Crossref works: %w", err)
	}
	md := toMetadata(resp.Message, ids)
	if md.Title == "" {
		return nil, fmt.Errorf("Crossref: record for %s has no title", ids.DOI)
	}
	return md, nil
}

// search returns the best match of a bibliographic query on the title.
func (c *Crossref) search(ctx context.Context, ids domain.Identifiers) (*domain.ArticleMetadata, error) {
	params := url.Values{"query.bibliographic": {ids.Title}, "rows": {"1"}}
	var resp crossrefSearchResponse
	if err := c.client.GetJSON(ctx, crossrefAPIBase+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("Crossref search: %w", err)
	}
	if len(resp.Message.Items) == 0 {
		return nil, fmt.Errorf("Crossref: no match for %q", ids.Title)
	}
	md := toMetadata(resp.Message.Items[0], ids)
	if md.Title == "" {
		return nil, fmt.Errorf("Crossref: best match for %q has no title", ids.Title)
	}
	return md, nil
}

func toMetadata(work crossrefWork, ids domain.Identifiers) *domain.ArticleMetadata {
	md := &domain.ArticleMetadata{
		DOI:       firstNonEmpty(ids.DOI, work.DOI),
		PMID:      ids.PMID,
		Abstract:  strings.TrimSpace(jatsTag.ReplaceAllString(work.Abstract, "")),
		Keywords:  work.Subject,
		Citations: work.ReferencedBy,
		Source:    domain.SourceCrossref,
	}
	if len(work.Title) > 0 {
		md.Title = strings.TrimSpace(work.Title[0])
	}
	if len(work.ContainerTitle) > 0 {
		md.Journal = strings.TrimSpace(work.ContainerTitle[0])
	}
	md.PublicationYear = work.Published.year()
	if md.PublicationYear == 0 {
		md.PublicationYear = work.Issued.year()
	}
	for _, a := range work.Author {
		author := domain.Author{FirstName: a.Given, LastName: a.Family}
		if len(a.Affiliation) > 0 {
			author.Affiliation = a.Affiliation[0].Name
		}
		md.Authors = append(md.Authors, author)
	}
	return md
}

// escapeDOI escapes each path segment of a DOI, keeping its slashes.
func escapeDOI(doi string) string {
	parts := strings.Split(doi, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
