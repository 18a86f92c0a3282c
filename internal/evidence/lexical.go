package evidence

import (
	"math"
	"sort"

	"docqa-ai/internal/textutil"
)

// BM25 parameters. Standard values; not worth exposing as configuration
// until someone needs to tune them.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// lexicalIndex is an in-memory BM25 index over the passage corpus.
// Immutable after build; safe for concurrent readers.
type lexicalIndex struct {
	passages []Passage
	termFreq []map[string]int // per-passage term frequencies
	docLen   []int            // per-passage token counts
	avgLen   float64
	docFreq  map[string]int // number of passages containing each term
}

// buildLexicalIndex tokenizes the corpus and precomputes term statistics.
func buildLexicalIndex(passages []Passage) *lexicalIndex {
	idx := &lexicalIndex{
		passages: passages,
		termFreq: make([]map[string]int, len(passages)),
		docLen:   make([]int, len(passages)),
		docFreq:  make(map[string]int),
	}

	var totalLen int
	for i, p := range passages {
		tokens := textutil.Tokenize(p.Content)
		freq := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freq[tok]++
		}
		idx.termFreq[i] = freq
		idx.docLen[i] = len(tokens)
		totalLen += len(tokens)

		for term := range freq {
			idx.docFreq[term]++
		}
	}
	if len(passages) > 0 {
		idx.avgLen = float64(totalLen) / float64(len(passages))
	}
	return idx
}

// search scores every passage against the question with BM25 and returns
// the top k, ordered descending by score. Corpus order breaks ties.
func (idx *lexicalIndex) search(question string, k int) []ScoredPassage {
	if len(idx.passages) == 0 || k <= 0 {
		return nil
	}

	queryTerms := textutil.FilterStopwords(textutil.Tokenize(question))
	if len(queryTerms) == 0 {
		return nil
	}

	n := float64(len(idx.passages))
	scored := make([]ScoredPassage, 0, len(idx.passages))
	for i, p := range idx.passages {
		var score float64
		for _, term := range queryTerms {
			tf := idx.termFreq[i][term]
			if tf == 0 {
				continue
			}
			df := float64(idx.docFreq[term])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			norm := float64(tf) * (bm25K1 + 1) /
				(float64(tf) + bm25K1*(1-bm25B+bm25B*float64(idx.docLen[i])/idx.avgLen))
			score += idf * norm
		}
		if score > 0 {
			scored = append(scored, ScoredPassage{Passage: p, Score: score})
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
