package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"paper-analyzer/internal/domain"
)

// Resolver tries each provider that supports the identifiers found in the
// text, in order, and returns the first success.
type Resolver struct {
	providers []domain.MetadataProvider
	timeout   time.Duration
	logger    domain.Logger
}

// NewResolver creates a resolver over providers. A zero timeout disables the
// overall deadline.
func NewResolver(logger domain.Logger, timeout time.Duration, providers ...domain.MetadataProvider) *Resolver {
	return &Resolver{providers: providers, timeout: timeout, logger: logger}
}

// NewDefaultResolver wires PubMed, Crossref and Semantic Scholar in that order.
func NewDefaultResolver(cfg domain.Config, logger domain.Logger) *Resolver {
	timeout := time.Duration(cfg.GetMetadataTimeoutSeconds()) * time.Second
	httpClient := &http.Client{Timeout: timeout}
	userAgent := fmt.Sprintf("paper-analyzer/1.0 (mailto:%s)", cfg.GetContactEmail())
	return NewResolver(logger, timeout,
		NewPubMed(httpClient, cfg.GetPubMedAPIKey(), userAgent),
		NewCrossref(httpClient, userAgent),
		NewSemanticScholar(httpClient, cfg.GetSemanticScholarAPIKey(), userAgent),
	)
}

// Resolve looks up the paper by the DOI and PMID in text, falling back to
// its title. Non-empty fields of hint take precedence over what is found in
// text; without a title hint the title is guessed from the opening lines.
// It returns domain.ErrNoIdentifiers when there is nothing to search by, and
// domain.ErrMetadataNotFound joined with every provider error when all
// attempts fail.
func (r *Resolver) Resolve(ctx context.Context, text string, hint domain.Identifiers) (*domain.ArticleMetadata, error) {
	ids := ExtractIdentifiers(text).Merge(hint)
	if ids.Title == "" {
		ids.Title = GuessTitle(text)
	}
	if ids.Empty() {
		return nil, domain.ErrNoIdentifiers
	}
	return r.ResolveIdentifiers(ctx, ids)
}

// ResolveIdentifiers tries every provider by DOI and PMID first and, when
// none succeeds, by title alone. A title match must share the searched title.
func (r *Resolver) ResolveIdentifiers(ctx context.Context, ids domain.Identifiers) (*domain.ArticleMetadata, error) {
	if ids.Empty() {
		return nil, domain.ErrNoIdentifiers
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	errs := []error{domain.ErrMetadataNotFound}
	if ids.HasRegistryID() {
		byID := ids
		byID.Title = ""
		md, err := r.try(ctx, byID, &errs)
		if err == nil {
			return md, nil
		}
	}
	if ids.Title != "" && ctx.Err() == nil {
		md, err := r.try(ctx, domain.Identifiers{Title: ids.Title}, &errs)
		if err == nil {
			return md, nil
		}
	}
	return nil, errors.Join(errs...)
}

func (r *Resolver) try(ctx context.Context, ids domain.Identifiers, errs *[]error) (*domain.ArticleMetadata, error) {
	for _, p := range r.providers {
		if !p.Supports(ids) {
			continue
		}
		md, err := p.Fetch(ctx, ids)
		if err == nil && !ids.HasRegistryID() && !TitlesMatch(ids.Title, md.Title) {
			err = fmt.Errorf("title search returned %q", md.Title)
		}
		if err == nil {
			r.logger.Debug("Resolved article metadata", "source", p.Name(), "doi", ids.DOI, "pmid", ids.PMID, "title", ids.Title)
			return md, nil
		}
		r.logger.Warn("Metadata provider failed", "source", p.Name(), "doi", ids.DOI, "pmid", ids.PMID, "title", ids.Title, "error", err)
		*errs = append(*errs, fmt.Errorf("%s: %w", p.Name(), err))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, domain.ErrMetadataNotFound
}
