package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"paper-analyzer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Error(string, error, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})         {}

func TestExtractIdentifiers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Identifiers
	}{
		{"doi with trailing period", "Available at doi: 10.1000/xyz123.", domain.Identifiers{DOI: "10.1000/xyz123"}},
		{"doi in parentheses", "see (doi:10.1002/jper.10234).", domain.Identifiers{DOI: "10.1002/jper.10234"}},
		{"doi with balanced parens", "https://doi.org/10.1016/S0140-6736(20)30183-5 next", domain.Identifiers{DOI: "10.1016/S0140-6736(20)30183-5"}},
		{"pmid", "PMID: 31234567", domain.Identifiers{PMID: "31234567"}},
		{"both", "pmid 987 and DOI 10.1186/s12903-021-01234-5;", domain.Identifiers{DOI: "10.1186/s12903-021-01234-5", PMID: "987"}},
		{"none", "no identifiers here, 10.5 percent", domain.Identifiers{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractIdentifiers(tt.text))
		})
	}
}

func TestPubMed_Fetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/esummary.fcgi", r.URL.Path)
		assert.Equal(t, "31234567", r.URL.Query().Get("id"))
		assert.Equal(t, "key", r.URL.Query().Get("api_key"))
		w.Write([]byte(`{"result":{"uids":["31234567"],"31234567":{
			"title":"Chlorhexidine rinse and plaque.",
			"fulljournalname":"Journal of Periodontology",
			"pubdate":"2020 Mar 4",
			"authors":[{"name":"Smith JA","authtype":"Author"},{"name":"Trial Group","authtype":"CollectiveName"}],
			"articleids":[{"idtype":"pubmed","value":"31234567"},{"idtype":"doi","value":"10.1002/jper.1"}]}}}`))
	}))
	defer ts.Close()
	orig := pubmedAPIBase
	pubmedAPIBase = ts.URL
	defer func() { pubmedAPIBase = orig }()

	md, err := NewPubMed(ts.Client(), "key", "test").Fetch(context.Background(), domain.Identifiers{PMID: "31234567"})

	require.NoError(t, err)
	assert.Equal(t, "Chlorhexidine rinse and plaque.", md.Title)
	assert.Equal(t, "Journal of Periodontology", md.Journal)
	assert.Equal(t, 2020, md.PublicationYear)
	assert.Equal(t, []domain.Author{{FirstName: "JA", LastName: "Smith"}}, md.Authors)
	assert.Equal(t, "10.1002/jper.1", md.DOI)
	assert.Equal(t, domain.SourcePubMed, md.Source)
}

func TestPubMed_FetchMissingRecord(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"result":{"uids":[]}}`))
	}))
	defer ts.Close()
	orig := pubmedAPIBase
	pubmedAPIBase = ts.URL
	defer func() { pubmedAPIBase = orig }()

	_, err := NewPubMed(ts.Client(), "", "test").Fetch(context.Background(), domain.Identifiers{PMID: "1"})
	assert.Error(t, err)
}

func TestPubMed_FetchByDOISearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/esearch.fcgi":
			assert.Equal(t, "10.1002/jper.1[doi]", r.URL.Query().Get("term"))
			assert.Equal(t, "1", r.URL.Query().Get("retmax"))
			w.Write([]byte(`{"esearchresult":{"count":"1","idlist":["424242"]}}`))
		case "/esummary.fcgi":
			assert.Equal(t, "424242", r.URL.Query().Get("id"))
			w.Write([]byte(`{"result":{"uids":["424242"],"424242":{"title":"Found by DOI","source":"J Periodontol","pubdate":"2018"}}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()
	orig := pubmedAPIBase
	pubmedAPIBase = ts.URL
	defer func() { pubmedAPIBase = orig }()

	md, err := NewPubMed(ts.Client(), "", "test").Fetch(context.Background(), domain.Identifiers{DOI: "10.1002/jper.1"})

	require.NoError(t, err)
	assert.Equal(t, "424242", md.PMID)
	assert.Equal(t, "10.1002/jper.1", md.DOI)
	assert.Equal(t, "Found by DOI", md.Title)
	assert.Equal(t, "J Periodontol", md.Journal)
}

func TestPubMed_FetchByTitleSearch(t *testing.T) {
	var terms []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/esearch.fcgi":
			terms = append(terms, r.URL.Query().Get("term"))
			w.Write([]byte(`{"esearchresult":{"count":"1","idlist":["777"]}}`))
		case "/esummary.fcgi":
			w.Write([]byte(`{"result":{"uids":["777"],"777":{"title":"Chlorhexidine rinse and plaque in adults.",
				"articleids":[{"idtype":"doi","value":"10.1/found"}]}}}`))
		}
	}))
	defer ts.Close()
	orig := pubmedAPIBase
	pubmedAPIBase = ts.URL
	defer func() { pubmedAPIBase = orig }()

	md, err := NewPubMed(ts.Client(), "", "test").Fetch(context.Background(), domain.Identifiers{Title: "Chlorhexidine rinse and plaque in adults"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Chlorhexidine rinse and plaque in adults"}, terms)
	assert.Equal(t, "777", md.PMID)
	assert.Equal(t, "10.1/found", md.DOI)
}

func TestPubMed_FetchSearchWithoutHits(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/esearch.fcgi", r.URL.Path)
		w.Write([]byte(`{"esearchresult":{"count":"0","idlist":[]}}`))
	}))
	defer ts.Close()
	orig := pubmedAPIBase
	pubmedAPIBase = ts.URL
	defer func() { pubmedAPIBase = orig }()

	_, err := NewPubMed(ts.Client(), "", "test").Fetch(context.Background(), domain.Identifiers{DOI: "10.1/none", Title: "Some long paper title here"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no match for 10.1/none[doi]")
	assert.Contains(t, err.Error(), "no match for Some long paper title here")
}

func TestCrossref_FetchByTitle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		assert.Equal(t, "Effect of a chlorhexidine rinse on plaque", r.URL.Query().Get("query.bibliographic"))
		assert.Equal(t, "1", r.URL.Query().Get("rows"))
		w.Write([]byte(`{"message":{"items":[{"DOI":"10.5555/rinse","title":["Effect of a Chlorhexidine Rinse on Plaque"],
			"container-title":["J Clin Periodontol"],"issued":{"date-parts":[[2015]]}}]}}`))
	}))
	defer ts.Close()
	orig := crossrefAPIBase
	crossrefAPIBase = ts.URL + "/"
	defer func() { crossrefAPIBase = orig }()

	c := NewCrossref(ts.Client(), "test")
	require.True(t, c.Supports(domain.Identifiers{Title: "Effect of a chlorhexidine rinse on plaque"}))
	md, err := c.Fetch(context.Background(), domain.Identifiers{Title: "Effect of a chlorhexidine rinse on plaque"})

	require.NoError(t, err)
	assert.Equal(t, "10.5555/rinse", md.DOI)
	assert.Equal(t, "J Clin Periodontol", md.Journal)
	assert.Equal(t, 2015, md.PublicationYear)
}

func TestCrossref_FetchByTitleNoItems(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"message":{"items":[]}}`))
	}))
	defer ts.Close()
	orig := crossrefAPIBase
	crossrefAPIBase = ts.URL
	defer func() { crossrefAPIBase = orig }()

	_, err := NewCrossref(ts.Client(), "test").Fetch(context.Background(), domain.Identifiers{Title: "Nothing matches this title"})
	assert.ErrorContains(t, err, "no match")
}

func TestCrossref_Fetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/10.1000/xyz", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "mailto:")
		w.Write([]byte(`{"message":{
			"title":["A Trial"],
			"container-title":["J Dent"],
			"abstract":"<jats:p>We tested a rinse.</jats:p>",
			"subject":["Dentistry"],
			"is-referenced-by-count":12,
			"author":[{"given":"Ada","family":"Lovelace","affiliation":[{"name":"Uni"}]}],
			"issued":{"date-parts":[[2019,5]]}}}`))
	}))
	defer ts.Close()
	orig := crossrefAPIBase
	crossrefAPIBase = ts.URL
	defer func() { crossrefAPIBase = orig }()

	md, err := NewCrossref(ts.Client(), "paper-analyzer/1.0 (mailto:a@b.c)").Fetch(context.Background(), domain.Identifiers{DOI: "10.1000/xyz"})

	require.NoError(t, err)
	assert.Equal(t, "A Trial", md.Title)
	assert.Equal(t, "J Dent", md.Journal)
	assert.Equal(t, "We tested a rinse.", md.Abstract)
	assert.Equal(t, 2019, md.PublicationYear)
	assert.Equal(t, 12, md.Citations)
	assert.Equal(t, []string{"Dentistry"}, md.Keywords)
	assert.Equal(t, []domain.Author{{FirstName: "Ada", LastName: "Lovelace", Affiliation: "Uni"}}, md.Authors)
}

func TestCrossref_FetchNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Resource not found.", http.StatusNotFound)
	}))
	defer ts.Close()
	orig := crossrefAPIBase
	crossrefAPIBase = ts.URL
	defer func() { crossrefAPIBase = orig }()

	_, err := NewCrossref(ts.Client(), "test").Fetch(context.Background(), domain.Identifiers{DOI: "10.1000/missing"})
	assert.ErrorContains(t, err, "404")
}

func TestSemanticScholar_Fetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/DOI:10.1000/xyz", r.URL.Path)
		assert.Equal(t, semanticFields, r.URL.Query().Get("fields"))
		assert.Equal(t, "s2key", r.Header.Get("x-api-key"))
		w.Write([]byte(`{"title":"A Trial","venue":"J Dent","year":2021,"citationCount":40,
			"influentialCitationCount":3,"authors":[{"name":"Ada M. Lovelace"}],"externalIds":{"PubMed":"555"}}`))
	}))
	defer ts.Close()
	orig := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = orig }()

	md, err := NewSemanticScholar(ts.Client(), "s2key", "test").Fetch(context.Background(), domain.Identifiers{DOI: "10.1000/xyz"})

	require.NoError(t, err)
	assert.Equal(t, 40, md.Citations)
	assert.Equal(t, 3, md.InfluentialCitations)
	assert.Equal(t, "555", md.PMID)
	assert.Equal(t, []domain.Author{{FirstName: "Ada M.", LastName: "Lovelace"}}, md.Authors)
	assert.Equal(t, domain.SourceSemanticScholar, md.Source)
}

type fakeProvider struct {
	source domain.MetadataSource
	needs  func(domain.Identifiers) bool
	md     *domain.ArticleMetadata
	err    error
	calls  int
}

func (f *fakeProvider) Name() domain.MetadataSource { return f.source }

func (f *fakeProvider) Supports(ids domain.Identifiers) bool { return f.needs(ids) }

func (f *fakeProvider) Fetch(context.Context, domain.Identifiers) (*domain.ArticleMetadata, error) {
	f.calls++
	return f.md, f.err
}

func byPMID(ids domain.Identifiers) bool { return ids.PMID != "" }
func byDOI(ids domain.Identifiers) bool  { return ids.DOI != "" }

func TestResolver_NoIdentifiers(t *testing.T) {
	r := NewResolver(nopLogger{}, 0)

	_, err := r.Resolve(context.Background(), "plain text", domain.Identifiers{})
	assert.ErrorIs(t, err, domain.ErrNoIdentifiers)
}

func TestResolver_FallsThroughInOrder(t *testing.T) {
	pubmed := &fakeProvider{source: domain.SourcePubMed, needs: byPMID, err: errors.New("pubmed down")}
	crossref := &fakeProvider{source: domain.SourceCrossref, needs: byDOI, err: errors.New("crossref 404")}
	s2 := &fakeProvider{source: domain.SourceSemanticScholar, needs: byDOI, md: &domain.ArticleMetadata{Title: "Found", Source: domain.SourceSemanticScholar}}
	r := NewResolver(nopLogger{}, 0, pubmed, crossref, s2)

	md, err := r.Resolve(context.Background(), "PMID: 1 doi 10.1000/abc", domain.Identifiers{})

	require.NoError(t, err)
	assert.Equal(t, "Found", md.Title)
	assert.Equal(t, 1, pubmed.calls)
	assert.Equal(t, 1, crossref.calls)
}

func TestResolver_SkipsUnsupportedProviders(t *testing.T) {
	pubmed := &fakeProvider{source: domain.SourcePubMed, needs: byPMID}
	crossref := &fakeProvider{source: domain.SourceCrossref, needs: byDOI, md: &domain.ArticleMetadata{Title: "X"}}
	r := NewResolver(nopLogger{}, 0, pubmed, crossref)

	_, err := r.Resolve(context.Background(), "doi:10.1000/abc", domain.Identifiers{})

	require.NoError(t, err)
	assert.Zero(t, pubmed.calls)
}

func TestResolver_AllFail(t *testing.T) {
	crossref := &fakeProvider{source: domain.SourceCrossref, needs: byDOI, err: errors.New("crossref 404")}
	s2 := &fakeProvider{source: domain.SourceSemanticScholar, needs: byDOI, err: errors.New("s2 timeout")}
	r := NewResolver(nopLogger{}, 0, crossref, s2)

	_, err := r.Resolve(context.Background(), "doi:10.1000/abc", domain.Identifiers{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMetadataNotFound)
	assert.Contains(t, err.Error(), "crossref 404")
	assert.Contains(t, err.Error(), "s2 timeout")
}

func byTitle(ids domain.Identifiers) bool { return ids.Title != "" }

func TestResolver_FallsBackToTitle(t *testing.T) {
	crossref := &fakeProvider{source: domain.SourceCrossref, needs: byDOI, err: errors.New("crossref 404")}
	search := &fakeProvider{source: domain.SourcePubMed, needs: byTitle, md: &domain.ArticleMetadata{
		Title: "Chlorhexidine rinse reduces gingival bleeding in adults.", Source: domain.SourcePubMed,
	}}
	r := NewResolver(nopLogger{}, 0, crossref, search)

	text := "Chlorhexidine Rinse Reduces Gingival Bleeding in Adults\n\nAbstract\n\nSee doi:10.1000/abc for data."
	md, err := r.Resolve(context.Background(), text, domain.Identifiers{})

	require.NoError(t, err)
	assert.Equal(t, domain.SourcePubMed, md.Source)
	assert.Equal(t, 1, crossref.calls)
	assert.Equal(t, 1, search.calls)
}

func TestResolver_RejectsUnrelatedTitleMatch(t *testing.T) {
	search := &fakeProvider{source: domain.SourceCrossref, needs: byTitle, md: &domain.ArticleMetadata{Title: "Orthodontic retention in teenagers"}}
	r := NewResolver(nopLogger{}, 0, search)

	_, err := r.Resolve(context.Background(), "", domain.Identifiers{Title: "Chlorhexidine rinse reduces gingival bleeding"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMetadataNotFound)
	assert.Contains(t, err.Error(), "Orthodontic retention in teenagers")
}

func TestResolver_HintOverridesText(t *testing.T) {
	var seen domain.Identifiers
	crossref := &fakeProvider{source: domain.SourceCrossref, needs: func(ids domain.Identifiers) bool {
		seen = ids
		return ids.DOI != ""
	}, md: &domain.ArticleMetadata{Title: "X"}}
	r := NewResolver(nopLogger{}, 0, crossref)

	_, err := r.Resolve(context.Background(), "doi:10.1000/in-text", domain.Identifiers{DOI: "10.1000/given"})

	require.NoError(t, err)
	assert.Equal(t, "10.1000/given", seen.DOI)
}

func TestGuessTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"first line", "Chlorhexidine Rinse Reduces Gingival Bleeding in Adults\nJane Doe\n\nAbstract\nText.", "Chlorhexidine Rinse Reduces Gingival Bleeding in Adults"},
		{"skips front matter", "Journal of Periodontology, vol. 12\nhttps://doi.org/10.1/x\nA Randomized Trial of Two Mouth Rinses\nAbstract", "A Randomized Trial of Two Mouth Rinses"},
		{"stops at abstract", "Short\nAbstract\nA long line that comes after the abstract heading", ""},
		{"sentence is not a title", "We measured plaque in forty adults over six weeks.\nIntroduction", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessTitle(tt.text))
		})
	}
}

func TestTitlesMatch(t *testing.T) {
	assert.True(t, TitlesMatch("Effect of a Chlorhexidine Rinse on Plaque", "Effect of a chlorhexidine rinse on plaque."))
	assert.True(t, TitlesMatch("Effect of a chlorhexidine rinse on plaque Jane Doe John Roe", "Effect of a <i>chlorhexidine</i> rinse on plaque"))
	assert.False(t, TitlesMatch("Effect of a chlorhexidine rinse on plaque", "Orthodontic retention in teenagers"))
	assert.False(t, TitlesMatch("Plaque", "Plaque"))
}
