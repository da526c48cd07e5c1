package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/httputil"
)

// pubmedAPIBase is the NCBI E-utilities root. Declared as a var so tests can
// substitute an httptest server.
var pubmedAPIBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// PubMed resolves metadata through esummary. A DOI or title is first turned
// into a PMID with esearch.
type PubMed struct {
	client *httputil.Client
	apiKey string
}

// NewPubMed creates a PubMed provider. NCBI allows 3 requests per second
// without an API key and 10 with one.
func NewPubMed(httpClient *http.Client, apiKey, userAgent string) *PubMed {
	rps := 3.0
	if apiKey != "" {
		rps = 10
	}
	return &PubMed{
		client: httputil.NewClient(httpClient, rps, 1, userAgent),
		apiKey: apiKey,
	}
}

func (p *PubMed) Name() domain.MetadataSource { return domain.SourcePubMed }

func (p *PubMed) Supports(ids domain.Identifiers) bool { return !ids.Empty() }

type pubmedSummary struct {
	Title           string `json:"title"`
	FullJournalName string `json:"fulljournalname"`
	Source          string `json:"source"`
	PubDate         string `json:"pubdate"`
	Error           string `json:"error"`
	Authors         []struct {
		Name     string `json:"name"`
		AuthType string `json:"authtype"`
	} `json:"authors"`
	ArticleIDs []struct {
		IDType string `json:"idtype"`
		Value  string `json:"value"`
	} `json:"articleids"`
}

type pubmedResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type esearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// Fetch tries the PMID, then a DOI search, then a title search, and returns
// the first record found.
func (p *PubMed) Fetch(ctx context.Context, ids domain.Identifiers) (*domain.ArticleMetadata, error) {
	var errs []error
	if ids.PMID != "" {
		md, err := p.summary(ctx, ids.PMID, ids.DOI)
		if err == nil {
			return md, nil
		}
		errs = append(errs, err)
	}
	for _, term := range searchTerms(ids) {
		pmid, err := p.search(ctx, term)
		if err == nil {
			var md *domain.ArticleMetadata
			if md, err = p.summary(ctx, pmid, ids.DOI); err == nil {
				return md, nil
			}
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("PubMed: nothing to search by")
	}
	return nil, errors.Join(errs...)
}

func searchTerms(ids domain.Identifiers) []string {
	var terms []string
	if ids.DOI != "" {
		terms = append(terms, ids.DOI+"[doi]")
	}
	if ids.Title != "" {
		terms = append(terms, ids.Title)
	}
	return terms
}

func (p *PubMed) params(v url.Values) url.Values {
	v.Set("db", "pubmed")
	v.Set("retmode", "json")
	if p.apiKey != "" {
		v.Set("api_key", p.apiKey)
	}
	return v
}

// search returns the first PMID esearch finds for term.
func (p *PubMed) search(ctx context.Context, term string) (string, error) {
	params := p.params(url.Values{"term": {term}, "retmax": {"1"}})
	var resp esearchResponse
	if err := p.client.GetJSON(ctx, pubmedAPIBase+"/esearch.fcgi?"+params.Encode(), &resp); err != nil {
		return "", fmt.Errorf("PubMed esearch: %w", err)
	}
	if len(resp.Result.IDList) == 0 {
		return "", fmt.Errorf("PubMed: no match for %s", term)
	}
	return resp.Result.IDList[0], nil
}

func (p *PubMed) summary(ctx context.Context, pmid, doi string) (*domain.ArticleMetadata, error) {
	params := p.params(url.Values{"id": {pmid}})

	var resp pubmedResponse
	if err := p.client.GetJSON(ctx, pubmedAPIBase+"/esummary.fcgi?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("PubMed esummary: %w", err)
	}

	raw, ok := resp.Result[pmid]
	if !ok {
		return nil, fmt.Errorf("PubMed: no record for PMID %s", pmid)
	}
	var sum pubmedSummary
	if err := json.Unmarshal(raw, &sum); err != nil {
		return nil, fmt.Errorf("parsing PubMed record: %w", err)
	}
	if sum.Error != "" {
		return nil, fmt.Errorf("PubMed: %s", sum.Error)
	}

	md := &domain.ArticleMetadata{
		PMID:            pmid,
		DOI:             doi,
		Title:           strings.TrimSpace(sum.Title),
		Journal:         firstNonEmpty(sum.FullJournalName, sum.Source),
		PublicationYear: leadingYear(sum.PubDate),
		Source:          domain.SourcePubMed,
	}
	for _, a := range sum.Authors {
		if a.AuthType != "" && a.AuthType != "Author" {
			continue
		}
		last, initials := splitPubMedName(a.Name)
		md.Authors = append(md.Authors, domain.Author{FirstName: initials, LastName: last})
	}
	for _, id := range sum.ArticleIDs {
		if id.IDType == "doi" && md.DOI == "" {
			md.DOI = id.Value
		}
	}
	return md, nil
}

// splitPubMedName splits "Smith JA" into ("Smith", "JA").
func splitPubMedName(name string) (last, initials string) {
	name = strings.TrimSpace(name)
	i := strings.LastIndexByte(name, ' ')
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

func leadingYear(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
