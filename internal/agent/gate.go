package agent

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/evidence"
	"docqa-ai/internal/llm"
	"docqa-ai/internal/prompt"
)

// Heuristic thresholds for deciding evidence coverage without a model call.
const (
	canAnswerMinPassages = 5
	canAnswerMinAvgLen   = 300
	partialMinPassages   = 3
	partialMinAvgLen     = 150

	judgePassageLimit = 6
	judgeExcerptRunes = 700
)

// RelevanceChecker decides whether retrieved evidence can answer a question.
// A cheap heuristic over passage count and length runs first; an optional
// LLM judge refines the verdict. NO_MATCH from the heuristic is final and
// never reaches the judge.
type RelevanceChecker struct {
	judge   llm.CompletionClient // nil disables the judge
	prompts prompt.Resolver
}

func NewRelevanceChecker(judge llm.CompletionClient, prompts prompt.Resolver) *RelevanceChecker {
	return &RelevanceChecker{judge: judge, prompts: prompts}
}

// Check returns the relevance verdict for question given the passages.
func (c *RelevanceChecker) Check(ctx context.Context, question string, passages []evidence.ScoredPassage) (Verdict, error) {
	logger := contextutil.LoggerFromContext(ctx)

	heuristic := heuristicVerdict(passages)
	if heuristic == VerdictNoMatch || c.judge == nil {
		logger.DebugContext(ctx, "relevance decided by heuristic",
			"verdict", heuristic,
			"passages", len(passages),
		)
		return heuristic, nil
	}

	judged, err := c.askJudge(ctx, question, passages)
	if err != nil {
		logger.WarnContext(ctx, "relevance judge failed, keeping heuristic verdict",
			"error", err,
			"verdict", heuristic,
		)
		return heuristic, nil
	}

	verdict := judged
	// A model claiming NO_MATCH against strong heuristic coverage is more
	// likely to be wrong than the evidence is to be useless.
	if judged == VerdictNoMatch && heuristic == VerdictCanAnswer {
		verdict = VerdictPartial
	}

	logger.DebugContext(ctx, "relevance decided",
		"verdict", verdict,
		"heuristic", heuristic,
		"judge", judged,
	)
	return verdict, nil
}

func heuristicVerdict(passages []evidence.ScoredPassage) Verdict {
	if len(passages) == 0 {
		return VerdictNoMatch
	}

	total := 0
	for _, p := range passages {
		total += utf8.RuneCountInString(p.Passage.Content)
	}
	avg := float64(total) / float64(len(passages))

	switch {
	case len(passages) >= canAnswerMinPassages && avg > canAnswerMinAvgLen:
		return VerdictCanAnswer
	case len(passages) >= partialMinPassages && avg > partialMinAvgLen:
		return VerdictPartial
	default:
		return VerdictNoMatch
	}
}

func (c *RelevanceChecker) askJudge(ctx context.Context, question string, passages []evidence.ScoredPassage) (Verdict, error) {
	limit := len(passages)
	if limit > judgePassageLimit {
		limit = judgePassageLimit
	}

	var builder strings.Builder
	for i, p := range passages[:limit] {
		excerpt := p.Passage.Content
		if utf8.RuneCountInString(excerpt) > judgeExcerptRunes {
			excerpt = string([]rune(excerpt)[:judgeExcerptRunes])
		}
		fmt.Fprintf(&builder, "[%d] %s\n\n", i+1, excerpt)
	}

	rendered, err := c.prompts.Render(prompt.IDGateJudge, map[string]any{
		"Question": question,
		"Passages": builder.String(),
	})
	if err != nil {
		return "", err
	}

	response, err := c.judge.Complete(ctx, rendered)
	if err != nil {
		return "", err
	}
	return parseJudgeLabel(response), nil
}

// parseJudgeLabel maps the judge's free-form reply to a verdict. Anything
// that is not a recognizable label degrades to PARTIAL.
func parseJudgeLabel(response string) Verdict {
	label := strings.ToUpper(strings.TrimSpace(response))
	switch {
	case strings.Contains(label, string(VerdictNoMatch)):
		return VerdictNoMatch
	case strings.Contains(label, string(VerdictCanAnswer)):
		return VerdictCanAnswer
	default:
		return VerdictPartial
	}
}
