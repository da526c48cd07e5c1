package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"paper-analyzer/internal/domain"

	"github.com/supabase-community/postgrest-go"
)

const analysesTable = "analyses"

// SupabaseAnalysisRepository implements domain.AnalysisRepository on the
// analyses table. Requests use the caller's token so RLS policies apply.
type SupabaseAnalysisRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseAnalysisRepository creates a new Supabase analysis repository
func NewSupabaseAnalysisRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) *SupabaseAnalysisRepository {
	return &SupabaseAnalysisRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Create inserts a record.
func (r *SupabaseAnalysisRepository) Create(ctx context.Context, record *domain.AnalysisRecord, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	row, err := toRow(record)
	if err != nil {
		return err
	}

	if _, _, err := client.From(analysesTable).Insert(row, false, "", "", "").Execute(); err != nil {
		r.logger.Error("Failed to insert analysis", err, "id", record.ID)
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

// GetByID returns domain.ErrAnalysisNotFound when no row matches.
func (r *SupabaseAnalysisRepository) GetByID(ctx context.Context, id string, token string) (*domain.AnalysisRecord, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	data, _, err := client.From(analysesTable).
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	records, err := fromRows(data)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrAnalysisNotFound
	}
	return records[0], nil
}

// ListByUserID returns the user's records, newest first. A limit of 0 or
// less returns every record.
func (r *SupabaseAnalysisRepository) ListByUserID(ctx context.Context, userID string, limit int, token string) ([]*domain.AnalysisRecord, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	query := client.From(analysesTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false})
	if limit > 0 {
		query = query.Limit(limit, "")
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return fromRows(data)
}

func (r *SupabaseAnalysisRepository) Delete(ctx context.Context, id string, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	if _, _, err := client.From(analysesTable).Delete("", "").Eq("id", id).Execute(); err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	return nil
}

// toRow encodes a record for insertion. PostgreSQL rejects NUL characters
// in jsonb and text columns (22P05), so they are dropped from every string.
func toRow(record *domain.AnalysisRecord) (map[string]interface{}, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}

	var row map[string]interface{}
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}
	stripNUL(row)
	return row, nil
}

func stripNUL(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return strings.ReplaceAll(t, "\x00", "")
	case map[string]interface{}:
		for k, e := range t {
			t[k] = stripNUL(e)
		}
	case []interface{}:
		for i, e := range t {
			t[i] = stripNUL(e)
		}
	}
	return v
}

func fromRows(data []byte) ([]*domain.AnalysisRecord, error) {
	var records []*domain.AnalysisRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return records, nil
}
