package domain

// Identifiers are what a paper can be looked up by: the registry
// identifiers found in its text and, failing those, its title.
type Identifiers struct {
	DOI   string `json:"doi,omitempty"`
	PMID  string `json:"pmid,omitempty"`
	Title string `json:"title,omitempty"`
}

// Empty reports whether there is nothing to look the paper up by.
func (i Identifiers) Empty() bool {
	return i.DOI == "" && i.PMID == "" && i.Title == ""
}

// HasRegistryID reports whether a DOI or PMID is known.
func (i Identifiers) HasRegistryID() bool {
	return i.DOI != "" || i.PMID != ""
}

// Merge returns i with the non-empty fields of other taking precedence.
func (i Identifiers) Merge(other Identifiers) Identifiers {
	if other.DOI != "" {
		i.DOI = other.DOI
	}
	if other.PMID != "" {
		i.PMID = other.PMID
	}
	if other.Title != "" {
		i.Title = other.Title
	}
	return i
}

// Author of an article as reported by a registry.
type Author struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
}

// MetadataSource names the registry an ArticleMetadata came from.
type MetadataSource string

const (
	SourcePubMed          MetadataSource = "pubmed"
	SourceCrossref        MetadataSource = "crossref"
	SourceSemanticScholar MetadataSource = "semantic_scholar"
)

// ArticleMetadata is bibliographic metadata resolved from an external registry.
type ArticleMetadata struct {
	DOI                  string         `json:"doi,omitempty"`
	PMID                 string         `json:"pmid,omitempty"`
	Title                string         `json:"title,omitempty"`
	Authors              []Author       `json:"authors,omitempty"`
	Journal              string         `json:"journal,omitempty"`
	PublicationYear      int            `json:"publicationYear,omitempty"`
	Abstract             string         `json:"abstract,omitempty"`
	Keywords             []string       `json:"keywords,omitempty"`
	Citations            int            `json:"citations,omitempty"`
	InfluentialCitations int            `json:"influentialCitations,omitempty"`
	Source               MetadataSource `json:"source"`
}
