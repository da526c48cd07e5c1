package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"paper-analyzer/internal/domain"
)

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{messages: []string{}}
}

func (m *MockLogger) add(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, s)
}

func (m *MockLogger) Info(msg string, args ...interface{})  { m.add("INFO: " + msg) }
func (m *MockLogger) Debug(msg string, args ...interface{}) { m.add("DEBUG: " + msg) }
func (m *MockLogger) Warn(msg string, args ...interface{})  { m.add("WARN: " + msg) }
func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	m.add("ERROR: " + msg + " - " + err.Error())
}

type MockAnalysisRepository struct {
	mu        sync.Mutex
	records   map[string]*domain.AnalysisRecord
	createErr error
	lastLimit int
}

func NewMockAnalysisRepository() *MockAnalysisRepository {
	return &MockAnalysisRepository{records: make(map[string]*domain.AnalysisRecord)}
}

func (m *MockAnalysisRepository) Create(ctx context.Context, record *domain.AnalysisRecord, token string) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	return nil
}

func (m *MockAnalysisRepository) GetByID(ctx context.Context, id string, token string) (*domain.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[id]; ok {
		return r, nil
	}
	return nil, domain.ErrAnalysisNotFound
}

func (m *MockAnalysisRepository) ListByUserID(ctx context.Context, userID string, limit int, token string) ([]*domain.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	var out []*domain.AnalysisRecord
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockAnalysisRepository) Delete(ctx context.Context, id string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

type MockStorageService struct {
	paths []string
	err   error
}

func (m *MockStorageService) Upload(ctx context.Context, path string, file io.Reader, contentType string, token string) error {
	if m.err != nil {
		return m.err
	}
	if _, err := io.ReadAll(file); err != nil {
		return err
	}
	m.paths = append(m.paths, path)
	return nil
}

type MockExtractor struct {
	doc *domain.ExtractedDocument
	err error
}

func (m *MockExtractor) Extract(ctx context.Context, data []byte, filename, mimeType string) (*domain.ExtractedDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.doc, nil
}

func (m *MockExtractor) SupportsFormat(format domain.DocumentFormat) bool { return true }

type MockAnalyzer struct {
	res *domain.ContentAnalysis
	err error
}

func (m *MockAnalyzer) Analyze(ctx context.Context, text string) (*domain.ContentAnalysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.res, nil
}

type MockResolver struct {
	meta     *domain.ArticleMetadata
	err      error
	lastHint domain.Identifiers
}

func (m *MockResolver) Resolve(ctx context.Context, text string, hint domain.Identifiers) (*domain.ArticleMetadata, error) {
	m.lastHint = hint
	if m.err != nil {
		return nil, m.err
	}
	return m.meta, nil
}

type MockReviewer struct {
	last domain.ReviewRequest
	err  error
}

func (m *MockReviewer) Review(ctx context.Context, req domain.ReviewRequest) (*domain.ReviewResult, error) {
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ReviewResult{Kind: req.Kind, Model: "test-model", Content: "looks fine"}, nil
}

var errBoom = errors.New("boom")
