package evidence

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks docqa-ai/internal/evidence Store

import "context"

// Metadata keys stored alongside each passage.
const (
	MetaDocID      = "doc_id"
	MetaSource     = "source"
	MetaSection    = "section"
	MetaChunkIndex = "chunk_index"
)

// Passage is an immutable unit of evidence: a retrievable chunk of source
// text plus its provenance metadata. The embedding lives in the vector
// store, not here.
type Passage struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// ScoredPassage is a passage paired with the score one retrieval signal
// assigned to it. Transient: produced and consumed within one retrieval call.
type ScoredPassage struct {
	Passage Passage
	Score   float64
}

// Store is the evidence source boundary. Implementations must be safe for
// concurrent readers; the retrieval core never writes through this interface.
type Store interface {
	// SearchSemantic returns up to k passages ranked by embedding similarity.
	SearchSemantic(ctx context.Context, question string, k int) ([]ScoredPassage, error)

	// SearchLexical returns up to k passages ranked by keyword statistics.
	SearchLexical(ctx context.Context, question string, k int) ([]ScoredPassage, error)

	// GetAll returns every passage in the corpus. Used to build the lexical index.
	GetAll(ctx context.Context) ([]Passage, error)
}
