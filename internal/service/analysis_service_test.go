package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"paper-analyzer/internal/domain"
	apperrors "paper-analyzer/pkg/errors"
)

func newTestAnalysisService() (*AnalysisService, *MockAnalysisRepository, *MockStorageService, *MockResolver) {
	repo := NewMockAnalysisRepository()
	storage := &MockStorageService{}
	resolver := &MockResolver{meta: &domain.ArticleMetadata{DOI: "10.1/x", Source: domain.SourceCrossref}}
	extractor := &MockExtractor{doc: &domain.ExtractedDocument{
		Text:     "Introduction\n\nWe randomized patients.",
		Metadata: domain.DocumentMetadata{Title: "Trial", PageCount: 2, Format: domain.FormatPDF},
	}}
	analyzer := &MockAnalyzer{res: &domain.ContentAnalysis{
		Structure: domain.StructureAnalysis{Score: 25, Suggestions: []string{"Add a Methods section"}},
	}}
	svc := NewAnalysisService(extractor, analyzer, resolver, repo, storage, NewMockLogger(), 1024)
	return svc, repo, storage, resolver
}

func pdfUpload() Upload {
	return Upload{Name: "Paper.PDF", MimeType: domain.MimeTypePDF, Data: []byte("%PDF-1.4 data")}
}

func statusOf(err error) int {
	return apperrors.GetStatusCode(err)
}

func TestAnalysisService_ValidateFile(t *testing.T) {
	svc, _, _, _ := newTestAnalysisService()

	cases := []struct {
		name, file, mime string
		size             int64
		wantErr          bool
	}{
		{"pdf", "a.pdf", domain.MimeTypePDF, 10, false},
		{"docx by extension", "a.docx", "application/octet-stream", 10, false},
		{"too large", "a.pdf", domain.MimeTypePDF, 2048, true},
		{"empty", "a.pdf", domain.MimeTypePDF, 0, true},
		{"image", "a.png", "image/png", 10, true},
	}
	if err := svc.ValidateFile("a.pdf", domain.MimeTypePDF, 2048); !errors.Is(err, domain.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ValidateFile(tc.file, tc.mime, tc.size)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateFile() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && statusOf(err) != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", statusOf(err))
			}
		})
	}
}

func TestAnalysisService_AnalyzeUpload(t *testing.T) {
	svc, repo, storage, _ := newTestAnalysisService()
	fixed := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	user := &domain.SupabaseUser{ID: "user-1"}
	record, err := svc.AnalyzeUpload(context.Background(), user, "jwt", pdfUpload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.UserID != "user-1" || record.PageCount != 2 || record.FileSize != int64(len(pdfUpload().Data)) {
		t.Fatalf("unexpected record %+v", record)
	}
	if !record.CreatedAt.Equal(fixed) {
		t.Fatalf("expected created_at %v, got %v", fixed, record.CreatedAt)
	}
	if record.Analysis == nil || record.Analysis.Structure.Score != 25 {
		t.Fatalf("expected analysis to be attached")
	}
	if record.Metadata == nil || record.Metadata.DOI != "10.1/x" {
		t.Fatalf("expected metadata to be attached")
	}
	wantPath := fmt.Sprintf("user-1/%s.pdf", record.ID)
	if record.FilePath != wantPath || len(storage.paths) != 1 || storage.paths[0] != wantPath {
		t.Fatalf("expected file stored at %s, got %q (%v)", wantPath, record.FilePath, storage.paths)
	}
	if _, ok := repo.records[record.ID]; !ok {
		t.Fatalf("expected record to be persisted")
	}
}

func TestAnalysisService_AnalyzeUpload_MetadataAndStorageFailuresAreNotFatal(t *testing.T) {
	svc, repo, storage, resolver := newTestAnalysisService()
	resolver.err = domain.ErrNoIdentifiers
	storage.err = errBoom

	record, err := svc.AnalyzeUpload(context.Background(), &domain.SupabaseUser{ID: "u"}, "", pdfUpload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Metadata != nil {
		t.Fatalf("expected no metadata")
	}
	if record.FilePath != "" {
		t.Fatalf("expected no file path, got %s", record.FilePath)
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected record to be persisted")
	}
}

func TestAnalysisService_AnalyzeUpload_WithoutOptionalDependencies(t *testing.T) {
	repo := NewMockAnalysisRepository()
	svc := NewAnalysisService(
		&MockExtractor{doc: &domain.ExtractedDocument{Text: "Some text."}},
		&MockAnalyzer{res: &domain.ContentAnalysis{}},
		nil, repo, nil, NewMockLogger(), 1024,
	)
	record, err := svc.AnalyzeUpload(context.Background(), domain.LocalUser(), "", Upload{Name: "a.txt", MimeType: domain.MimeTypeText, Data: []byte("Some text.")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.UserID != domain.LocalUserID || record.FilePath != "" {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestAnalysisService_AnalyzeUpload_Errors(t *testing.T) {
	t.Run("no user", func(t *testing.T) {
		svc, _, _, _ := newTestAnalysisService()
		_, err := svc.AnalyzeUpload(context.Background(), nil, "", pdfUpload())
		if statusOf(err) != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", err)
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		svc, _, _, _ := newTestAnalysisService()
		svc.extractor = &MockExtractor{err: errors.New("failed to open PDF: bad xref")}
		_, err := svc.AnalyzeUpload(context.Background(), &domain.SupabaseUser{ID: "u"}, "", pdfUpload())
		if statusOf(err) != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %v", err)
		}
	})

	t.Run("no text", func(t *testing.T) {
		svc, _, _, _ := newTestAnalysisService()
		svc.extractor = &MockExtractor{doc: &domain.ExtractedDocument{Text: "  "}}
		_, err := svc.AnalyzeUpload(context.Background(), &domain.SupabaseUser{ID: "u"}, "", pdfUpload())
		if !errors.Is(err, domain.ErrNoTextExtracted) {
			t.Fatalf("expected no text error, got %v", err)
		}
	})

	t.Run("analyzer failure", func(t *testing.T) {
		svc, repo, _, _ := newTestAnalysisService()
		svc.analyzer = &MockAnalyzer{err: context.Canceled}
		_, err := svc.AnalyzeUpload(context.Background(), &domain.SupabaseUser{ID: "u"}, "", pdfUpload())
		if statusOf(err) != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %v", err)
		}
		if len(repo.records) != 0 {
			t.Fatalf("expected nothing persisted")
		}
	})

	t.Run("persist failure", func(t *testing.T) {
		svc, repo, _, _ := newTestAnalysisService()
		repo.createErr = errBoom
		_, err := svc.AnalyzeUpload(context.Background(), &domain.SupabaseUser{ID: "u"}, "", pdfUpload())
		if !errors.Is(err, errBoom) {
			t.Fatalf("expected wrapped repository error, got %v", err)
		}
	})
}

func TestAnalysisService_AnalyzeText(t *testing.T) {
	svc, _, _, _ := newTestAnalysisService()

	if _, err := svc.AnalyzeText(context.Background(), "   "); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank text, got %v", err)
	}
	res, err := svc.AnalyzeText(context.Background(), "Some text.")
	if err != nil || res.Structure.Score != 25 {
		t.Fatalf("unexpected result %+v, %v", res, err)
	}
}

func TestAnalysisService_ResolveMetadata(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"found", nil, 0},
		{"no identifiers", domain.ErrNoIdentifiers, http.StatusBadRequest},
		{"not found", errors.Join(domain.ErrMetadataNotFound, errBoom), http.StatusNotFound},
		{"other", errBoom, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _, resolver := newTestAnalysisService()
			resolver.err = tc.err
			meta, err := svc.ResolveMetadata(context.Background(), "doi 10.1/x", domain.Identifiers{})
			if tc.wantStatus == 0 {
				if err != nil || meta.DOI != "10.1/x" {
					t.Fatalf("unexpected result %+v, %v", meta, err)
				}
				return
			}
			if statusOf(err) != tc.wantStatus {
				t.Fatalf("expected %d, got %v", tc.wantStatus, err)
			}
		})
	}
}

func TestAnalysisService_ResolveMetadataNeedsTextOrIdentifier(t *testing.T) {
	svc, _, _, resolver := newTestAnalysisService()

	if _, err := svc.ResolveMetadata(context.Background(), "  ", domain.Identifiers{}); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	hint := domain.Identifiers{PMID: "123"}
	if _, err := svc.ResolveMetadata(context.Background(), "", hint); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolver.lastHint != hint {
		t.Fatalf("expected hint %+v to reach the resolver, got %+v", hint, resolver.lastHint)
	}
}

func TestAnalysisService_AnalyzeUploadPassesTitleHint(t *testing.T) {
	svc, _, _, resolver := newTestAnalysisService()

	if _, err := svc.AnalyzeUpload(context.Background(), &domain.SupabaseUser{ID: "u"}, "", pdfUpload()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolver.lastHint.Title != "Trial" {
		t.Fatalf("expected the document title as hint, got %+v", resolver.lastHint)
	}
}

func TestMetadataHint(t *testing.T) {
	cases := []struct {
		name, title, file, want string
	}{
		{"embedded title", "Periodontal outcomes of scaling", "scan.pdf", "Periodontal outcomes of scaling"},
		{"file name as title", "scan", "uploads/scan.pdf", ""},
		{"file name differs in case", "SCAN", "scan.pdf", ""},
		{"no title", " ", "scan.pdf", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := &domain.ExtractedDocument{Metadata: domain.DocumentMetadata{Title: tc.title}}
			if got := MetadataHint(doc, tc.file).Title; got != tc.want {
				t.Fatalf("MetadataHint() title = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAnalysisService_GuessTitle(t *testing.T) {
	svc, _, _, _ := newTestAnalysisService()

	title, err := svc.GuessTitle("Scaling and Root Planing in Smokers\n\nAbstract\nText.")
	if err != nil || title != "Scaling and Root Planing in Smokers" {
		t.Fatalf("unexpected title %q, %v", title, err)
	}
	if _, err := svc.GuessTitle(""); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAnalysisService_GetAndDeleteCheckOwner(t *testing.T) {
	svc, repo, _, _ := newTestAnalysisService()
	repo.records["a1"] = &domain.AnalysisRecord{ID: "a1", UserID: "owner"}

	if _, err := svc.Get(context.Background(), "owner", "a1", ""); err != nil {
		t.Fatalf("owner should read: %v", err)
	}
	if _, err := svc.Get(context.Background(), "intruder", "a1", ""); statusOf(err) != http.StatusForbidden || !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected 403 access denied, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "owner", "missing", ""); statusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}

	if err := svc.Delete(context.Background(), "intruder", "a1", ""); statusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
	if err := svc.Delete(context.Background(), "owner", "a1", ""); err != nil {
		t.Fatalf("owner should delete: %v", err)
	}
	if len(repo.records) != 0 {
		t.Fatalf("expected record removed")
	}
}

func TestAnalysisService_HistoryClampsLimit(t *testing.T) {
	svc, repo, _, _ := newTestAnalysisService()

	records, err := svc.History(context.Background(), "u", 0, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil history")
	}
	if repo.lastLimit != DefaultHistoryLimit {
		t.Fatalf("expected default limit, got %d", repo.lastLimit)
	}

	if _, err := svc.History(context.Background(), "u", 1000, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastLimit != MaxHistoryLimit {
		t.Fatalf("expected max limit, got %d", repo.lastLimit)
	}
}

func TestAnalysisService_Analytics(t *testing.T) {
	svc, repo, _, _ := newTestAnalysisService()
	repo.records["a1"] = &domain.AnalysisRecord{ID: "a1", UserID: "u", Analysis: &domain.ContentAnalysis{
		Structure: domain.StructureAnalysis{Suggestions: []string{"x"}},
		Clarity: domain.ClarityAnalysis{
			Suggestions: []string{"y"},
			Statistics:  []domain.StatisticalStatement{{Kind: domain.StatisticPValue}, {Kind: domain.StatisticCI}},
		},
		Quality: domain.QualityAnalysis{Weaknesses: []string{"z"}},
	}}
	repo.records["a2"] = &domain.AnalysisRecord{ID: "a2", UserID: "u"}
	repo.records["a3"] = &domain.AnalysisRecord{ID: "a3", UserID: "someone-else", Analysis: &domain.ContentAnalysis{}}

	got, err := svc.Analytics(context.Background(), "u", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.UserAnalytics{ArticlesAnalyzed: 2, IssuesFound: 3, StatisticalTests: 2, ReportsGenerated: 1}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if repo.lastLimit != 0 {
		t.Fatalf("analytics must read every record, got limit %d", repo.lastLimit)
	}
}
