package agent

import (
	"context"
	"fmt"
	"strings"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/evidence"
	"docqa-ai/internal/service"
)

// workflowState names a step of the answer loop.
type workflowState string

const (
	stateCheckRelevance workflowState = "CHECK_RELEVANCE"
	stateResearch       workflowState = "RESEARCH"
	stateVerify         workflowState = "VERIFY"
	stateEnd            workflowState = "END"
)

// Retriever produces scored evidence for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, k int) ([]evidence.ScoredPassage, error)
}

// PassageReranker reorders retrieved evidence and keeps at most topN items.
type PassageReranker interface {
	Rerank(ctx context.Context, question string, passages []evidence.ScoredPassage, topN int) ([]evidence.ScoredPassage, error)
}

// Gate decides whether the evidence can answer the question at all.
type Gate interface {
	Check(ctx context.Context, question string, passages []evidence.ScoredPassage) (Verdict, error)
}

// Drafter writes an answer attempt from the evidence.
type Drafter interface {
	Draft(ctx context.Context, question string, passages []evidence.ScoredPassage) (Answer, error)
}

// VerifierAgent checks a draft against the evidence.
type VerifierAgent interface {
	Verify(ctx context.Context, question, answer string, passages []evidence.ScoredPassage) (VerificationReport, error)
}

// WorkflowConfig bounds a workflow run.
type WorkflowConfig struct {
	// RetrieveK is how many candidates the retriever draws per signal
	// before fusion. Kept wider than RerankTopN so the reranker has
	// something to narrow.
	RetrieveK int
	// RerankTopN is how many passages survive reranking. Ignored when the
	// workflow has no reranker.
	RerankTopN int
	// AgentTopK caps the passages shared by the gate, drafter, and
	// verifier. Zero means no cap.
	AgentTopK int
	// MaxReruns caps how many times a failed verification can send the run
	// back to drafting. Zero disables retries.
	MaxReruns int
}

// Result is the outcome of one workflow run.
type Result struct {
	Answer       string
	Thought      string
	Verdict      Verdict
	Verification *VerificationReport // nil when the gate short-circuited
	Passages     []evidence.ScoredPassage
	Reruns       int
}

// Workflow runs the retrieve, gate, draft, verify loop for one question.
// Evidence is fetched exactly once per run; a rerun re-drafts against the
// same passages. A draft that still fails verification after the last
// permitted rerun is returned anyway, with its failing report attached.
type Workflow struct {
	retriever Retriever
	reranker  PassageReranker
	gate      Gate
	drafter   Drafter
	verifier  VerifierAgent
	cfg       WorkflowConfig
}

func NewWorkflow(retriever Retriever, reranker PassageReranker, gate Gate, drafter Drafter, verifier VerifierAgent, cfg WorkflowConfig) *Workflow {
	return &Workflow{
		retriever: retriever,
		reranker:  reranker,
		gate:      gate,
		drafter:   drafter,
		verifier:  verifier,
		cfg:       cfg,
	}
}

// Run answers question. Retrieval failures propagate unwrapped in meaning
// (they carry service.ErrRetrieval); the loop never retries them.
func (w *Workflow) Run(ctx context.Context, question string) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(question) == "" {
		return Result{}, service.WrapError(service.ErrInvalidInput, "question must not be empty")
	}

	passages, err := w.fetchEvidence(ctx, question)
	if err != nil {
		return Result{}, err
	}
	logger.InfoContext(ctx, "evidence fetched", "passages", len(passages))

	result := Result{Passages: passages}
	reruns := 0
	state := stateCheckRelevance

	for state != stateEnd {
		logger.DebugContext(ctx, "workflow step", "state", state, "reruns", reruns)

		switch state {
		case stateCheckRelevance:
			verdict, err := w.gate.Check(ctx, question, passages)
			if err != nil {
				return Result{}, fmt.Errorf("relevance check failed: %w", err)
			}
			result.Verdict = verdict
			if verdict == VerdictNoMatch {
				result.Answer = InsufficientEvidenceAnswer
				state = stateEnd
				break
			}
			state = stateResearch

		case stateResearch:
			answer, err := w.drafter.Draft(ctx, question, passages)
			if err != nil {
				return Result{}, fmt.Errorf("draft failed: %w", err)
			}
			result.Answer = answer.Draft
			result.Thought = answer.Thought
			state = stateVerify

		case stateVerify:
			report, err := w.verifier.Verify(ctx, question, result.Answer, passages)
			if err != nil {
				return Result{}, fmt.Errorf("verification failed: %w", err)
			}
			result.Verification = &report
			if !report.Passed() && reruns < w.cfg.MaxReruns {
				reruns++
				logger.InfoContext(ctx, "verification failed, re-drafting",
					"rerun", reruns,
					"supported", report.Supported,
					"relevant", report.Relevant,
				)
				state = stateResearch
				break
			}
			state = stateEnd

		default:
			return Result{}, fmt.Errorf("unknown workflow state %q", state)
		}
	}

	result.Reruns = reruns
	logger.InfoContext(ctx, "workflow finished",
		"verdict", result.Verdict,
		"reruns", reruns,
		"verified", result.Verification != nil && result.Verification.Passed(),
	)
	return result, nil
}

func (w *Workflow) fetchEvidence(ctx context.Context, question string) ([]evidence.ScoredPassage, error) {
	passages, err := w.retriever.Retrieve(ctx, question, w.cfg.RetrieveK)
	if err != nil {
		return nil, err
	}
	if w.reranker != nil {
		passages, err = w.reranker.Rerank(ctx, question, passages, w.cfg.RerankTopN)
		if err != nil {
			return nil, err
		}
	}
	if w.cfg.AgentTopK > 0 && len(passages) > w.cfg.AgentTopK {
		passages = passages[:w.cfg.AgentTopK]
	}
	return passages, nil
}
