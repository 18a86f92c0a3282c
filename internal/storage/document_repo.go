package storage

import (
	"context"
	"database/sql"
	"fmt"

	"docqa-ai/internal/service"
)

// DocumentStore defines the interface for document metadata operations.
type DocumentStore interface {
	// Upsert inserts or updates a document by source path.
	Upsert(ctx context.Context, doc *Document) error
	// GetBySource gets a document by its source path. Returns service.ErrNotFound if missing.
	GetBySource(ctx context.Context, source string) (*Document, error)
	// ListAll returns all documents.
	ListAll(ctx context.Context) ([]Document, error)
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Upsert inserts or updates a document by source path.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *Document) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, source, title, hash, updated_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(source) DO UPDATE SET title = excluded.title, hash = excluded.hash, updated_at = CURRENT_TIMESTAMP`,
		doc.ID, doc.Source, doc.Title, doc.Hash,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// GetBySource gets a document by its source path.
func (r *DocumentRepo) GetBySource(ctx context.Context, source string) (*Document, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, source, title, hash, updated_at FROM documents WHERE source = ?", source)

	var doc Document
	err := row.Scan(&doc.ID, &doc.Source, &doc.Title, &doc.Hash, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, service.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// ListAll returns all documents.
func (r *DocumentRepo) ListAll(ctx context.Context) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, source, title, hash, updated_at FROM documents ORDER BY source")
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Source, &doc.Title, &doc.Hash, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}
