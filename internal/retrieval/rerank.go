package retrieval

import (
	"context"
	"fmt"
	"sort"

	"docqa-ai/internal/evidence"
	"docqa-ai/internal/textutil"
)

const (
	lexicalLengthScale = 10.0
	maxLexicalScore    = 0.4
	sectionMatchBonus  = 0.1
)

// Scorer scores a (question, passage) pair; higher means more relevant.
// Implementations must be pure functions of the pair.
type Scorer func(ctx context.Context, question string, p evidence.Passage) (float64, error)

// Reranker re-scores a candidate list with a relevance model and truncates
// to the top N.
type Reranker struct {
	scorer Scorer
}

// NewReranker creates a reranker. A nil scorer falls back to the built-in
// lexical overlap scorer.
func NewReranker(scorer Scorer) *Reranker {
	if scorer == nil {
		scorer = LexicalOverlapScorer
	}
	return &Reranker{scorer: scorer}
}

// Rerank returns up to topN candidates ordered descending by score.
// The sort is stable: ties keep their input order. The input slice is
// never mutated.
func (r *Reranker) Rerank(ctx context.Context, question string, candidates []evidence.ScoredPassage, topN int) ([]evidence.ScoredPassage, error) {
	if topN <= 0 || len(candidates) == 0 {
		return nil, nil
	}

	type scored struct {
		passage evidence.Passage
		score   float64
	}
	list := make([]scored, len(candidates))
	for i, sp := range candidates {
		s, err := r.scorer(ctx, question, sp.Passage)
		if err != nil {
			return nil, fmt.Errorf("failed to score candidate %s: %w", sp.Passage.ID, err)
		}
		list[i] = scored{passage: sp.Passage, score: s}
	}

	sort.SliceStable(list, func(a, b int) bool {
		return list[a].score > list[b].score
	})

	if len(list) > topN {
		list = list[:topN]
	}

	result := make([]evidence.ScoredPassage, len(list))
	for i, s := range list {
		result[i] = evidence.ScoredPassage{Passage: s.passage, Score: s.score}
	}
	return result, nil
}

// LexicalOverlapScorer is a lightweight relevance scorer based on query-term
// frequency in the passage, normalized to stay in a predictable range so it
// blends with vector scores. Matching terms in the section heading earn a
// small bonus.
func LexicalOverlapScorer(_ context.Context, question string, p evidence.Passage) (float64, error) {
	queryTokens := textutil.FilterStopwords(textutil.Tokenize(question))
	if len(queryTokens) == 0 {
		return 0, nil
	}

	passageTokens := textutil.Tokenize(p.Content)
	if len(passageTokens) == 0 {
		return 0, nil
	}

	freq := make(map[string]int, len(passageTokens))
	for _, token := range passageTokens {
		freq[token]++
	}

	var rawMatches int
	for _, token := range queryTokens {
		rawMatches += freq[token]
	}

	score := (float64(rawMatches) / (1 + float64(len(passageTokens)))) * lexicalLengthScale

	if section := p.Metadata[evidence.MetaSection]; section != "" {
		sectionTokens := textutil.Tokenize(section)
		sectionSet := make(map[string]struct{}, len(sectionTokens))
		for _, token := range sectionTokens {
			sectionSet[token] = struct{}{}
		}
		var sectionMatches int
		for _, token := range queryTokens {
			if _, ok := sectionSet[token]; ok {
				sectionMatches++
			}
		}
		score += float64(sectionMatches) * sectionMatchBonus
	}

	if score > maxLexicalScore {
		return maxLexicalScore, nil
	}
	if score < 0 {
		return 0, nil
	}
	return score, nil
}
