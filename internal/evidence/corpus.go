package evidence

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/service"
	"docqa-ai/internal/storage"
	"docqa-ai/internal/vectorstore"
)

// Embedder turns question text into a query vector.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CorpusStore implements Store over the production corpus: Qdrant for
// semantic similarity, SQLite for passage text, and an in-memory BM25
// index for keyword search.
type CorpusStore struct {
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	passageRepo storage.PassageStore

	mu      sync.RWMutex
	lexical *lexicalIndex
}

// NewCorpusStore creates a CorpusStore. Call Refresh before serving
// lexical searches; semantic search works immediately.
func NewCorpusStore(
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	passageRepo storage.PassageStore,
) *CorpusStore {
	return &CorpusStore{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		passageRepo: passageRepo,
	}
}

// Refresh rebuilds the lexical index from the passage table.
// Call at startup and after re-indexing the corpus.
func (s *CorpusStore) Refresh(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	records, err := s.passageRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to load passages: %v", service.ErrRetrieval, err)
	}

	passages := make([]Passage, len(records))
	for i, rec := range records {
		passages[i] = passageFromRecord(rec)
	}

	idx := buildLexicalIndex(passages)

	s.mu.Lock()
	s.lexical = idx
	s.mu.Unlock()

	logger.InfoContext(ctx, "lexical index rebuilt", "passages", len(passages))
	return nil
}

// SearchSemantic returns up to k passages ranked by embedding similarity.
func (s *CorpusStore) SearchSemantic(ctx context.Context, question string, k int) ([]ScoredPassage, error) {
	logger := contextutil.LoggerFromContext(ctx)

	embeddings, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to embed question: %v", service.ErrRetrieval, err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned for question", service.ErrRetrieval)
	}

	results, err := s.vectorStore.Search(ctx, s.collection, embeddings[0], k, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search failed: %v", service.ErrRetrieval, err)
	}

	scored := make([]ScoredPassage, 0, len(results))
	for _, result := range results {
		rec, err := s.passageRepo.GetByID(ctx, result.PointID)
		if err != nil {
			// Vector hit with no backing row: index drift, skip it.
			logger.WarnContext(ctx, "passage text missing for vector hit", "passage_id", result.PointID, "error", err)
			continue
		}
		scored = append(scored, ScoredPassage{
			Passage: passageFromRecord(*rec),
			Score:   float64(result.Score),
		})
	}

	logger.DebugContext(ctx, "semantic search completed", "k", k, "results", len(scored))
	return scored, nil
}

// SearchLexical returns up to k passages ranked by BM25.
func (s *CorpusStore) SearchLexical(ctx context.Context, question string, k int) ([]ScoredPassage, error) {
	s.mu.RLock()
	idx := s.lexical
	s.mu.RUnlock()

	if idx == nil {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
		s.mu.RLock()
		idx = s.lexical
		s.mu.RUnlock()
	}

	if len(idx.passages) == 0 {
		return nil, fmt.Errorf("%w: empty index", service.ErrRetrieval)
	}

	return idx.search(question, k), nil
}

// GetAll returns every passage in the corpus.
func (s *CorpusStore) GetAll(ctx context.Context) ([]Passage, error) {
	records, err := s.passageRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load passages: %v", service.ErrRetrieval, err)
	}
	passages := make([]Passage, len(records))
	for i, rec := range records {
		passages[i] = passageFromRecord(rec)
	}
	return passages, nil
}

func passageFromRecord(rec storage.PassageRecord) Passage {
	return Passage{
		ID:      rec.ID,
		Content: rec.Text,
		Metadata: map[string]string{
			MetaDocID:      rec.DocID,
			MetaSource:     rec.Source,
			MetaSection:    rec.Section,
			MetaChunkIndex: strconv.Itoa(rec.ChunkIndex),
		},
	}
}
