package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/evidence"
	"docqa-ai/internal/storage"
	"docqa-ai/internal/vectorstore"
)

const embedBatchSize = 32

// Embedder turns chunk texts into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Stats summarizes one indexing run.
type Stats struct {
	DocsIndexed int
	DocsSkipped int
	Chunks      int
}

// Pipeline ingests markdown and PDF files from a directory into the passage
// database and the vector collection. Unchanged files are detected by
// content hash and skipped.
type Pipeline struct {
	chunker     *MarkdownChunker
	documents   storage.DocumentStore
	passages    storage.PassageStore
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
}

func NewPipeline(documents storage.DocumentStore, passages storage.PassageStore, embedder Embedder, vs vectorstore.VectorStore, collection string) *Pipeline {
	return &Pipeline{
		chunker:     NewMarkdownChunker(),
		documents:   documents,
		passages:    passages,
		embedder:    embedder,
		vectorStore: vs,
		collection:  collection,
	}
}

// Run indexes every .md and .pdf file under root. Source paths are stored
// relative to root so the corpus can move between machines.
func (p *Pipeline) Run(ctx context.Context, root string) (Stats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var stats Stats
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".pdf" {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %q: %w", path, err)
		}

		indexed, chunkCount, err := p.indexFile(ctx, path, rel, ext)
		if err != nil {
			return fmt.Errorf("failed to index %q: %w", rel, err)
		}
		if indexed {
			stats.DocsIndexed++
			stats.Chunks += chunkCount
			logger.InfoContext(ctx, "document indexed", "source", rel, "chunks", chunkCount)
		} else {
			stats.DocsSkipped++
			logger.DebugContext(ctx, "document unchanged, skipped", "source", rel)
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	logger.InfoContext(ctx, "indexing run complete",
		"indexed", stats.DocsIndexed,
		"skipped", stats.DocsSkipped,
		"chunks", stats.Chunks,
	)
	return stats, nil
}

func (p *Pipeline) indexFile(ctx context.Context, path, rel, ext string) (bool, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, 0, err
	}
	sum := sha256.Sum256(raw)
	hash := hex.EncodeToString(sum[:])

	docID := uuid.NewString()
	if existing, err := p.documents.GetBySource(ctx, rel); err == nil {
		if existing.Hash == hash {
			return false, 0, nil
		}
		docID = existing.ID
		if err := p.removeStaleChunks(ctx, docID); err != nil {
			return false, 0, err
		}
	}

	var title string
	var chunks []Chunk
	if ext == ".pdf" {
		text, err := ExtractPDFText(path)
		if err != nil {
			return false, 0, err
		}
		title, chunks = p.chunker.ChunkPlainText(text, rel)
	} else {
		title, chunks, err = p.chunker.Chunk(raw, rel)
		if err != nil {
			return false, 0, err
		}
	}

	// The document row must exist before its passages (foreign key), but the
	// hash is only recorded once the chunks are stored, so an interrupted run
	// re-indexes the file next time.
	if err := p.documents.Upsert(ctx, &storage.Document{ID: docID, Source: rel, Title: title, Hash: ""}); err != nil {
		return false, 0, err
	}
	if err := p.storeChunks(ctx, docID, rel, chunks); err != nil {
		return false, 0, err
	}
	if err := p.documents.Upsert(ctx, &storage.Document{
		ID:     docID,
		Source: rel,
		Title:  title,
		Hash:   hash,
	}); err != nil {
		return false, 0, err
	}
	return true, len(chunks), nil
}

func (p *Pipeline) removeStaleChunks(ctx context.Context, docID string) error {
	ids, err := p.passages.ListIDsByDoc(ctx, docID)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		if err := p.vectorStore.Delete(ctx, p.collection, ids); err != nil {
			return err
		}
	}
	return p.passages.DeleteByDoc(ctx, docID)
}

func (p *Pipeline) storeChunks(ctx context.Context, docID, source string, chunks []Chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}
		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedding count mismatch: got %d vectors for %d chunks", len(vectors), len(batch))
		}

		points := make([]vectorstore.Point, len(batch))
		for i, chunk := range batch {
			rec := &storage.PassageRecord{
				ID:         uuid.NewString(),
				DocID:      docID,
				ChunkIndex: chunk.Index,
				Source:     source,
				Section:    chunk.Section,
				Text:       chunk.Text,
			}
			if err := p.passages.Insert(ctx, rec); err != nil {
				return err
			}
			points[i] = vectorstore.Point{
				ID:  rec.ID,
				Vec: vectors[i],
				Meta: map[string]any{
					evidence.MetaDocID:      docID,
					evidence.MetaSource:     source,
					evidence.MetaSection:    chunk.Section,
					evidence.MetaChunkIndex: chunk.Index,
				},
			}
		}
		if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
			return err
		}
	}
	return nil
}
