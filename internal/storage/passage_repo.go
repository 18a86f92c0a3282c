package storage

import (
	"context"
	"database/sql"
	"fmt"

	"docqa-ai/internal/service"
)

// PassageStore defines the interface for passage storage operations.
type PassageStore interface {
	// Insert inserts a single passage. The record ID must be set (UUID) before calling.
	Insert(ctx context.Context, rec *PassageRecord) error
	// GetByID gets a passage by its ID. Returns service.ErrNotFound if missing.
	GetByID(ctx context.Context, id string) (*PassageRecord, error)
	// ListAll returns every passage ordered by (doc_id, chunk_index).
	// Used to build the lexical index.
	ListAll(ctx context.Context) ([]PassageRecord, error)
	// DeleteByDoc deletes all passages for a given document ID.
	DeleteByDoc(ctx context.Context, docID string) error
	// ListIDsByDoc returns all passage IDs for a document, ordered by chunk_index.
	ListIDsByDoc(ctx context.Context, docID string) ([]string, error)
}

// PassageRepo provides methods for passage operations.
// It implements the PassageStore interface.
type PassageRepo struct {
	db *sql.DB
}

// NewPassageRepo creates a new PassageRepo.
func NewPassageRepo(db *sql.DB) *PassageRepo {
	return &PassageRepo{db: db}
}

// Insert inserts a single passage into the database.
func (r *PassageRepo) Insert(ctx context.Context, rec *PassageRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO passages (id, doc_id, chunk_index, source, section, text) VALUES (?, ?, ?, ?, ?, ?)",
		rec.ID, rec.DocID, rec.ChunkIndex, rec.Source, rec.Section, rec.Text,
	)
	if err != nil {
		return fmt.Errorf("failed to insert passage: %w", err)
	}
	return nil
}

// GetByID gets a passage by its ID.
func (r *PassageRepo) GetByID(ctx context.Context, id string) (*PassageRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, doc_id, chunk_index, source, section, text FROM passages WHERE id = ?", id)

	var rec PassageRecord
	err := row.Scan(&rec.ID, &rec.DocID, &rec.ChunkIndex, &rec.Source, &rec.Section, &rec.Text)
	if err == sql.ErrNoRows {
		return nil, service.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get passage: %w", err)
	}
	return &rec, nil
}

// ListAll returns every passage ordered by (doc_id, chunk_index).
func (r *PassageRepo) ListAll(ctx context.Context) ([]PassageRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, doc_id, chunk_index, source, section, text FROM passages ORDER BY doc_id, chunk_index")
	if err != nil {
		return nil, fmt.Errorf("failed to list passages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []PassageRecord
	for rows.Next() {
		var rec PassageRecord
		if err := rows.Scan(&rec.ID, &rec.DocID, &rec.ChunkIndex, &rec.Source, &rec.Section, &rec.Text); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate passages: %w", err)
	}
	return records, nil
}

// DeleteByDoc deletes all passages for a given document ID.
// Used when re-indexing a document to remove old passages first.
func (r *PassageRepo) DeleteByDoc(ctx context.Context, docID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM passages WHERE doc_id = ?", docID)
	if err != nil {
		return fmt.Errorf("failed to delete passages by doc: %w", err)
	}
	return nil
}

// ListIDsByDoc returns all passage IDs for a document, ordered by chunk_index.
// Returns an empty slice if no passages exist (not an error).
func (r *PassageRepo) ListIDsByDoc(ctx context.Context, docID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM passages WHERE doc_id = ? ORDER BY chunk_index", docID)
	if err != nil {
		return nil, fmt.Errorf("failed to list passage ids: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan passage id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate passage ids: %w", err)
	}
	return ids, nil
}
