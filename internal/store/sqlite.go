package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cramdeck/cramdeck/pkg/types"
)

var (
	// ErrNotFound is returned when a requested record doesn't exist
	ErrNotFound = errors.New("record not found")
	// ErrNotOwner is returned when a delete is attempted by a non-owner
	ErrNotOwner = errors.New("record owned by another user")
)

// assembleConcurrency bounds the parallel fetches in AssembleContent.
const assembleConcurrency = 4

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// PutRecord stores doc, assigning an ID and creation time when unset
func (s *SQLiteStore) PutRecord(ctx context.Context, doc *types.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (id, user_id, title, content, kind, course_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			kind = excluded.kind,
			course_id = excluded.course_id`,
		doc.ID, doc.UserID, doc.Title, doc.Content, string(doc.Kind), doc.CourseID,
		doc.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}
	return nil
}

// GetRecord fetches a record of a specific kind
func (s *SQLiteStore) GetRecord(ctx context.Context, kind types.RecordKind, id string) (*types.Document, error) {
	return s.getRecord(ctx, id, string(kind))
}

// GetAny fetches a record by ID regardless of kind
func (s *SQLiteStore) GetAny(ctx context.Context, id string) (*types.Document, error) {
	return s.getRecord(ctx, id, "")
}

func (s *SQLiteStore) getRecord(ctx context.Context, id, kind string) (*types.Document, error) {
	query := `SELECT id, user_id, title, content, kind, course_id, created_at
		FROM records WHERE id = ?`
	args := []any{id}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}

	doc, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return doc, nil
}

// ListRecords returns records matching the filter, newest first
func (s *SQLiteStore) ListRecords(ctx context.Context, filter Filter) ([]*types.Document, error) {
	query := `SELECT id, user_id, title, content, kind, course_id, created_at
		FROM records WHERE 1=1`
	var args []any

	if len(filter.Kinds) > 0 {
		query += " AND kind IN (" + placeholders(len(filter.Kinds)) + ")"
		for _, k := range filter.Kinds {
			args = append(args, string(k))
		}
	}
	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.CourseID != "" {
		query += " AND course_id = ?"
		args = append(args, filter.CourseID)
	}
	if len(filter.ExcludeIDs) > 0 {
		query += " AND id NOT IN (" + placeholders(len(filter.ExcludeIDs)) + ")"
		for _, id := range filter.ExcludeIDs {
			args = append(args, id)
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []*types.Document
	for rows.Next() {
		doc, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteRecord removes a record; userID must match the record's owner
func (s *SQLiteStore) DeleteRecord(ctx context.Context, id, userID string) error {
	var owner string
	err := s.db.QueryRowContext(ctx, "SELECT user_id FROM records WHERE id = ?", id).Scan(&owner)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check record owner: %w", err)
	}
	if owner != userID {
		return ErrNotOwner
	}

	_, err = s.db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// AssembleContent concatenates the bodies of the given records in the order
// the IDs were supplied. Missing records are skipped.
func (s *SQLiteStore) AssembleContent(ctx context.Context, ids []string) (string, error) {
	bodies := make([]string, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(assembleConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			doc, err := s.GetAny(gctx, id)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			bodies[i] = doc.Content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	parts := make([]string, 0, len(bodies))
	for _, b := range bodies {
		if b != "" {
			parts = append(parts, b)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*types.Document, error) {
	var doc types.Document
	var kind, createdAt string
	var courseID sql.NullString

	if err := row.Scan(&doc.ID, &doc.UserID, &doc.Title, &doc.Content, &kind, &courseID, &createdAt); err != nil {
		return nil, err
	}

	doc.Kind = types.RecordKind(kind)
	doc.CourseID = courseID.String

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		// Rows written by SQLite's CURRENT_TIMESTAMP default
		ts, err = time.Parse("2006-01-02 15:04:05", createdAt)
		if err != nil {
			return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
		}
	}
	doc.CreatedAt = ts
	return &doc, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
