package storage

import "time"

// Document represents one ingested source file.
type Document struct {
	ID        string // UUID
	Source    string // Path of the source file relative to the docs root
	Title     string // Extracted title
	Hash      string // SHA256 hex string of file content
	UpdatedAt time.Time
}

// PassageRecord represents a chunk of a document, indexed for retrieval.
// Its ID doubles as the Qdrant point ID.
type PassageRecord struct {
	ID         string // UUID (same as Qdrant point ID)
	DocID      string // UUID (foreign key to documents.id)
	ChunkIndex int    // Index within document (starts at 0)
	Source     string // Source file path, denormalized for citation rendering
	Section    string // Heading path, e.g. "# Overview > ## Limits"
	Text       string // Passage text content
}
