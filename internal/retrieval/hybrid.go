package retrieval

import (
	"context"
	"sort"
	"sync"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/evidence"
	"docqa-ai/internal/service"
)

// HybridRetriever merges semantic and lexical candidate lists into one
// ranked list using weighted score fusion.
type HybridRetriever struct {
	store          evidence.Store
	semanticWeight float64
	lexicalWeight  float64
}

// NewHybridRetriever creates a hybrid retriever with the given fusion weights.
func NewHybridRetriever(store evidence.Store, semanticWeight, lexicalWeight float64) *HybridRetriever {
	return &HybridRetriever{
		store:          store,
		semanticWeight: semanticWeight,
		lexicalWeight:  lexicalWeight,
	}
}

// Retrieve returns up to k passages ranked by fused score.
// The two underlying lookups are independent and run concurrently.
// A store failure is returned as-is (wrapping service.ErrRetrieval); the
// retriever never retries.
func (r *HybridRetriever) Retrieve(ctx context.Context, question string, k int) ([]evidence.ScoredPassage, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if question == "" {
		return nil, service.WrapError(service.ErrInvalidInput, "question must not be empty")
	}
	if k <= 0 {
		return nil, service.WrapError(service.ErrInvalidInput, "k must be greater than 0")
	}

	var (
		wg               sync.WaitGroup
		semList, lexList []evidence.ScoredPassage
		semErr, lexErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		semList, semErr = r.store.SearchSemantic(ctx, question, k)
	}()
	go func() {
		defer wg.Done()
		lexList, lexErr = r.store.SearchLexical(ctx, question, k)
	}()
	wg.Wait()

	if semErr != nil {
		return nil, semErr
	}
	if lexErr != nil {
		return nil, lexErr
	}

	semScores := normalize(semList)
	lexScores := normalize(lexList)

	// Fuse: a passage absent from one list contributes 0 for that term;
	// duplicates merge by summing contributions.
	type fused struct {
		passage evidence.Passage
		score   float64
		semRank int // for tie-breaking; len(semList) if not in the semantic list
	}
	byID := make(map[string]*fused)
	order := make([]*fused, 0, len(semList)+len(lexList))

	for rank, sp := range semList {
		f := &fused{passage: sp.Passage, score: r.semanticWeight * semScores[sp.Passage.ID], semRank: rank}
		byID[sp.Passage.ID] = f
		order = append(order, f)
	}
	for _, sp := range lexList {
		if f, ok := byID[sp.Passage.ID]; ok {
			f.score += r.lexicalWeight * lexScores[sp.Passage.ID]
			continue
		}
		f := &fused{passage: sp.Passage, score: r.lexicalWeight * lexScores[sp.Passage.ID], semRank: len(semList)}
		byID[sp.Passage.ID] = f
		order = append(order, f)
	}

	sort.SliceStable(order, func(a, b int) bool {
		if order[a].score != order[b].score {
			return order[a].score > order[b].score
		}
		return order[a].semRank < order[b].semRank
	})

	if len(order) > k {
		order = order[:k]
	}

	result := make([]evidence.ScoredPassage, len(order))
	for i, f := range order {
		result[i] = evidence.ScoredPassage{Passage: f.passage, Score: f.score}
	}

	logger.DebugContext(ctx, "hybrid retrieval completed",
		"semantic_candidates", len(semList),
		"lexical_candidates", len(lexList),
		"fused", len(result),
		"k", k,
	)
	return result, nil
}

// normalize min-max scales a candidate list's scores to [0, 1] keyed by
// passage ID. A constant-score list maps to all ones.
func normalize(list []evidence.ScoredPassage) map[string]float64 {
	out := make(map[string]float64, len(list))
	if len(list) == 0 {
		return out
	}

	minScore, maxScore := list[0].Score, list[0].Score
	for _, sp := range list[1:] {
		if sp.Score < minScore {
			minScore = sp.Score
		}
		if sp.Score > maxScore {
			maxScore = sp.Score
		}
	}

	span := maxScore - minScore
	for _, sp := range list {
		if span == 0 {
			out[sp.Passage.ID] = 1.0
			continue
		}
		out[sp.Passage.ID] = (sp.Score - minScore) / span
	}
	return out
}
