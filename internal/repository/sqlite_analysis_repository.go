package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"paper-analyzer/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteAnalysisRepository stores analyses in a local SQLite database. It is
// used by paperctl and by the server when Supabase is not configured. Tokens
// are ignored.
type SQLiteAnalysisRepository struct {
	db *sql.DB
}

// NewSQLiteAnalysisRepository opens or creates the database at path.
func NewSQLiteAnalysisRepository(path string) (*SQLiteAnalysisRepository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	r := &SQLiteAnalysisRepository{db: db}
	if err := r.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return r, nil
}

// Close releases the database connection.
func (r *SQLiteAnalysisRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteAnalysisRepository) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_path TEXT,
			mime_type TEXT,
			file_size INTEGER,
			page_count INTEGER,
			document TEXT,
			metadata TEXT,
			analysis TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_user_created ON analyses(user_id, created_at)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func (r *SQLiteAnalysisRepository) Create(ctx context.Context, record *domain.AnalysisRecord, _ string) error {
	document, err := json.Marshal(record.Document)
	if err != nil {
		return fmt.Errorf("encoding document metadata: %w", err)
	}
	var metadata []byte
	if record.Metadata != nil {
		if metadata, err = json.Marshal(record.Metadata); err != nil {
			return fmt.Errorf("encoding article metadata: %w", err)
		}
	}
	analysis, err := json.Marshal(record.Analysis)
	if err != nil {
		return fmt.Errorf("encoding analysis: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO analyses (id, user_id, file_name, file_path, mime_type, file_size, page_count,
			document, metadata, analysis, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.UserID, record.FileName, record.FilePath, record.MimeType,
		record.FileSize, record.PageCount, string(document), nullString(metadata), string(analysis),
		record.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting analysis: %w", err)
	}
	return nil
}

func (r *SQLiteAnalysisRepository) GetByID(ctx context.Context, id string, _ string) (*domain.AnalysisRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM analyses WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAnalysisNotFound
	}
	return record, err
}

// ListByUserID returns the user's records, newest first. A limit of 0 or
// less returns every record.
func (r *SQLiteAnalysisRepository) ListByUserID(ctx context.Context, userID string, limit int, _ string) ([]*domain.AnalysisRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM analyses WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var out []*domain.AnalysisRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func (r *SQLiteAnalysisRepository) Delete(ctx context.Context, id string, _ string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting analysis: %w", err)
	}
	return nil
}

// createdAtLayout is fixed width so that created_at sorts as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteColumns = `id, user_id, file_name, file_path, mime_type, file_size, page_count,
	document, metadata, analysis, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*domain.AnalysisRecord, error) {
	var (
		record                       domain.AnalysisRecord
		filePath, mimeType, metadata sql.NullString
		document, analysis           sql.NullString
		createdAt                    string
	)
	err := s.Scan(&record.ID, &record.UserID, &record.FileName, &filePath, &mimeType,
		&record.FileSize, &record.PageCount, &document, &metadata, &analysis, &createdAt)
	if err != nil {
		return nil, err
	}

	record.FilePath = filePath.String
	record.MimeType = mimeType.String
	if document.Valid && document.String != "" {
		if err := json.Unmarshal([]byte(document.String), &record.Document); err != nil {
			return nil, fmt.Errorf("decoding document metadata: %w", err)
		}
	}
	if metadata.Valid && metadata.String != "" {
		record.Metadata = &domain.ArticleMetadata{}
		if err := json.Unmarshal([]byte(metadata.String), record.Metadata); err != nil {
			return nil, fmt.Errorf("decoding article metadata: %w", err)
		}
	}
	if analysis.Valid && analysis.String != "" && analysis.String != "null" {
		record.Analysis = &domain.ContentAnalysis{}
		if err := json.Unmarshal([]byte(analysis.String), record.Analysis); err != nil {
			return nil, fmt.Errorf("decoding analysis: %w", err)
		}
	}
	if record.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &record, nil
}

func nullString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
