package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/httputil"
)

// SupabaseStorage uploads original papers to a Supabase Storage bucket.
type SupabaseStorage struct {
	baseURL string
	apiKey  string
	bucket  string
	client  *http.Client
}

func NewStorageService(baseURL, apiKey, bucket string) *SupabaseStorage {
	return &SupabaseStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		bucket:  bucket,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Upload stores file at <bucket>/<path>. The user's token is sent when
// present so storage policies apply; otherwise the anon key is used.
func (s *SupabaseStorage) Upload(
	ctx context.Context,
	path string,
	file io.Reader,
	contentType string,
	token string,
) error {
	if s.baseURL == "" || s.bucket == "" {
		return domain.ErrStorageNotConfigured
	}

	endpoint := s.baseURL + "/storage/v1/object/" + url.PathEscape(s.bucket) + "/" + escapeObjectPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, file)
	if err != nil {
		return fmt.Errorf("storage upload: %w", err)
	}

	bearer := token
	if bearer == "" {
		bearer = s.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("apikey", s.apiKey)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("storage upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &httputil.StatusError{URL: endpoint, Code: resp.StatusCode, Body: string(body)}
	}
	return nil
}

func escapeObjectPath(path string) string {
	parts := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
