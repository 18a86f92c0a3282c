package agent

import (
	"context"
	"errors"
	"testing"

	"docqa-ai/internal/evidence"
	"docqa-ai/internal/service"
)

type stubRetriever struct {
	passages []evidence.ScoredPassage
	err      error
	calls    int
	gotK     int
}

func (s *stubRetriever) Retrieve(_ context.Context, _ string, k int) ([]evidence.ScoredPassage, error) {
	s.calls++
	s.gotK = k
	return s.passages, s.err
}

type stubReranker struct {
	calls   int
	gotTopN int
}

func (s *stubReranker) Rerank(_ context.Context, _ string, passages []evidence.ScoredPassage, topN int) ([]evidence.ScoredPassage, error) {
	s.calls++
	s.gotTopN = topN
	if len(passages) > topN {
		passages = passages[:topN]
	}
	return passages, nil
}

type stubGate struct {
	verdict Verdict
	err     error
	calls   int
}

func (s *stubGate) Check(_ context.Context, _ string, _ []evidence.ScoredPassage) (Verdict, error) {
	s.calls++
	return s.verdict, s.err
}

type stubDrafter struct {
	answers []Answer
	calls   int
}

func (s *stubDrafter) Draft(_ context.Context, _ string, _ []evidence.ScoredPassage) (Answer, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.answers) {
		idx = len(s.answers) - 1
	}
	return s.answers[idx], nil
}

type stubVerifier struct {
	reports []VerificationReport
	calls   int
}

func (s *stubVerifier) Verify(_ context.Context, _, _ string, _ []evidence.ScoredPassage) (VerificationReport, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.reports) {
		idx = len(s.reports) - 1
	}
	return s.reports[idx], nil
}

func workflowUnderTest(retriever *stubRetriever, gate *stubGate, drafter *stubDrafter, verifier *stubVerifier) *Workflow {
	return NewWorkflow(retriever, nil, gate, drafter, verifier, WorkflowConfig{
		RetrieveK: 20,
		AgentTopK: 20,
		MaxReruns: 1,
	})
}

func somePassages() []evidence.ScoredPassage {
	return []evidence.ScoredPassage{
		{Passage: evidence.Passage{ID: "p1", Content: "backups run nightly"}, Score: 0.9},
		{Passage: evidence.Passage{ID: "p2", Content: "restores tested monthly"}, Score: 0.7},
	}
}

func passingReport() VerificationReport {
	return VerificationReport{Supported: true, Relevant: true}
}

func failingReport() VerificationReport {
	return VerificationReport{Supported: false, Relevant: true, UnsupportedClaims: []string{"made up"}}
}

func TestWorkflow_VerifiedFirstTry(t *testing.T) {
	retriever := &stubRetriever{passages: somePassages()}
	gate := &stubGate{verdict: VerdictCanAnswer}
	drafter := &stubDrafter{answers: []Answer{{Draft: "Nightly.", Thought: "covered"}}}
	verifier := &stubVerifier{reports: []VerificationReport{passingReport()}}

	result, err := workflowUnderTest(retriever, gate, drafter, verifier).Run(context.Background(), "how are backups configured")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Answer != "Nightly." {
		t.Errorf("Answer = %q", result.Answer)
	}
	if result.Thought != "covered" {
		t.Errorf("Thought = %q", result.Thought)
	}
	if result.Verdict != VerdictCanAnswer {
		t.Errorf("Verdict = %v", result.Verdict)
	}
	if result.Verification == nil || !result.Verification.Passed() {
		t.Errorf("Verification = %+v, want passing report", result.Verification)
	}
	if result.Reruns != 0 {
		t.Errorf("Reruns = %d, want 0", result.Reruns)
	}
	if drafter.calls != 1 || verifier.calls != 1 {
		t.Errorf("drafter calls = %d, verifier calls = %d, want 1 and 1", drafter.calls, verifier.calls)
	}
	if retriever.calls != 1 {
		t.Errorf("retriever calls = %d, want evidence fetched exactly once", retriever.calls)
	}
}

func TestWorkflow_FailThenPassRedraftsOnce(t *testing.T) {
	retriever := &stubRetriever{passages: somePassages()}
	gate := &stubGate{verdict: VerdictPartial}
	drafter := &stubDrafter{answers: []Answer{
		{Draft: "First attempt."},
		{Draft: "Second attempt."},
	}}
	verifier := &stubVerifier{reports: []VerificationReport{failingReport(), passingReport()}}

	result, err := workflowUnderTest(retriever, gate, drafter, verifier).Run(context.Background(), "q")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if drafter.calls != 2 {
		t.Errorf("drafter calls = %d, want 2", drafter.calls)
	}
	if verifier.calls != 2 {
		t.Errorf("verifier calls = %d, want 2", verifier.calls)
	}
	if retriever.calls != 1 {
		t.Errorf("retriever calls = %d, want 1: reruns reuse the same evidence", retriever.calls)
	}
	if result.Answer != "Second attempt." {
		t.Errorf("Answer = %q, want the redrafted answer", result.Answer)
	}
	if result.Reruns != 1 {
		t.Errorf("Reruns = %d, want 1", result.Reruns)
	}
	if !result.Verification.Passed() {
		t.Errorf("Verification = %+v, want the final passing report", result.Verification)
	}
}

func TestWorkflow_FailTwiceKeepsLastAnswer(t *testing.T) {
	retriever := &stubRetriever{passages: somePassages()}
	gate := &stubGate{verdict: VerdictCanAnswer}
	drafter := &stubDrafter{answers: []Answer{
		{Draft: "First attempt."},
		{Draft: "Second attempt."},
	}}
	verifier := &stubVerifier{reports: []VerificationReport{failingReport(), failingReport()}}

	result, err := workflowUnderTest(retriever, gate, drafter, verifier).Run(context.Background(), "q")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if drafter.calls != 2 || verifier.calls != 2 {
		t.Errorf("drafter calls = %d, verifier calls = %d, want 2 and 2", drafter.calls, verifier.calls)
	}
	if result.Answer != "Second attempt." {
		t.Errorf("Answer = %q: a failed final draft is still returned", result.Answer)
	}
	if result.Verification == nil || result.Verification.Passed() {
		t.Errorf("Verification = %+v, want the failing report attached", result.Verification)
	}
}

func TestWorkflow_RetrievesWideRerankerNarrows(t *testing.T) {
	var wide []evidence.ScoredPassage
	for i := 0; i < 10; i++ {
		wide = append(wide, evidence.ScoredPassage{
			Passage: evidence.Passage{ID: string(rune('a' + i)), Content: "passage"},
			Score:   1.0 - float64(i)/10,
		})
	}

	retriever := &stubRetriever{passages: wide}
	reranker := &stubReranker{}
	gate := &stubGate{verdict: VerdictCanAnswer}
	drafter := &stubDrafter{answers: []Answer{{Draft: "x"}}}
	verifier := &stubVerifier{reports: []VerificationReport{passingReport()}}

	workflow := NewWorkflow(retriever, reranker, gate, drafter, verifier, WorkflowConfig{
		RetrieveK:  20,
		RerankTopN: 3,
		AgentTopK:  20,
		MaxReruns:  1,
	})

	result, err := workflow.Run(context.Background(), "q")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if retriever.gotK != 20 {
		t.Errorf("retrieve k = %d, want the wide candidate count 20", retriever.gotK)
	}
	if reranker.calls != 1 || reranker.gotTopN != 3 {
		t.Errorf("reranker calls = %d topN = %d, want 1 call narrowing to 3", reranker.calls, reranker.gotTopN)
	}
	if len(result.Passages) != 3 {
		t.Errorf("len(Passages) = %d, want the reranked 3", len(result.Passages))
	}
}

func TestWorkflow_AgentTopKCapsWithoutReranker(t *testing.T) {
	var wide []evidence.ScoredPassage
	for i := 0; i < 5; i++ {
		wide = append(wide, evidence.ScoredPassage{
			Passage: evidence.Passage{ID: string(rune('a' + i)), Content: "passage"},
			Score:   1.0 - float64(i)/10,
		})
	}

	retriever := &stubRetriever{passages: wide}
	gate := &stubGate{verdict: VerdictCanAnswer}
	drafter := &stubDrafter{answers: []Answer{{Draft: "x"}}}
	verifier := &stubVerifier{reports: []VerificationReport{passingReport()}}

	workflow := NewWorkflow(retriever, nil, gate, drafter, verifier, WorkflowConfig{
		RetrieveK: 20,
		AgentTopK: 2,
	})

	result, err := workflow.Run(context.Background(), "q")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Passages) != 2 {
		t.Errorf("len(Passages) = %d, want capped at 2", len(result.Passages))
	}
	if result.Passages[0].Passage.ID != "a" || result.Passages[1].Passage.ID != "b" {
		t.Errorf("Passages = %+v, want the top two kept in order", result.Passages)
	}
}

func TestWorkflow_NoMatchShortCircuits(t *testing.T) {
	retriever := &stubRetriever{passages: nil}
	gate := &stubGate{verdict: VerdictNoMatch}
	drafter := &stubDrafter{answers: []Answer{{Draft: "should never appear"}}}
	verifier := &stubVerifier{reports: []VerificationReport{passingReport()}}

	result, err := workflowUnderTest(retriever, gate, drafter, verifier).Run(context.Background(), "q")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if drafter.calls != 0 {
		t.Errorf("drafter calls = %d, want 0 on NO_MATCH", drafter.calls)
	}
	if verifier.calls != 0 {
		t.Errorf("verifier calls = %d, want 0 on NO_MATCH", verifier.calls)
	}
	if result.Answer != InsufficientEvidenceAnswer {
		t.Errorf("Answer = %q, want the fixed insufficient-evidence answer", result.Answer)
	}
	if result.Verification != nil {
		t.Errorf("Verification = %+v, want nil", result.Verification)
	}
	if result.Verdict != VerdictNoMatch {
		t.Errorf("Verdict = %v", result.Verdict)
	}
}

func TestWorkflow_ZeroMaxRerunsNeverRetries(t *testing.T) {
	retriever := &stubRetriever{passages: somePassages()}
	gate := &stubGate{verdict: VerdictCanAnswer}
	drafter := &stubDrafter{answers: []Answer{{Draft: "Only attempt."}}}
	verifier := &stubVerifier{reports: []VerificationReport{failingReport()}}

	workflow := NewWorkflow(retriever, nil, gate, drafter, verifier, WorkflowConfig{RetrieveK: 20, AgentTopK: 20, MaxReruns: 0})

	result, err := workflow.Run(context.Background(), "q")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if drafter.calls != 1 || verifier.calls != 1 {
		t.Errorf("drafter calls = %d, verifier calls = %d, want 1 and 1", drafter.calls, verifier.calls)
	}
	if result.Answer != "Only attempt." {
		t.Errorf("Answer = %q", result.Answer)
	}
}

func TestWorkflow_RetrievalErrorPropagates(t *testing.T) {
	retriever := &stubRetriever{err: service.WrapError(service.ErrRetrieval, "qdrant unreachable")}
	gate := &stubGate{verdict: VerdictCanAnswer}
	drafter := &stubDrafter{answers: []Answer{{Draft: "x"}}}
	verifier := &stubVerifier{reports: []VerificationReport{passingReport()}}

	_, err := workflowUnderTest(retriever, gate, drafter, verifier).Run(context.Background(), "q")
	if !errors.Is(err, service.ErrRetrieval) {
		t.Errorf("Run() error = %v, want ErrRetrieval", err)
	}
	if retriever.calls != 1 {
		t.Errorf("retriever calls = %d, want 1: retrieval failures are not retried", retriever.calls)
	}
	if gate.calls != 0 || drafter.calls != 0 {
		t.Errorf("gate calls = %d, drafter calls = %d, want 0 and 0 after retrieval failure", gate.calls, drafter.calls)
	}
}

func TestWorkflow_EmptyQuestionRejected(t *testing.T) {
	retriever := &stubRetriever{passages: somePassages()}
	gate := &stubGate{verdict: VerdictCanAnswer}
	drafter := &stubDrafter{answers: []Answer{{Draft: "x"}}}
	verifier := &stubVerifier{reports: []VerificationReport{passingReport()}}

	_, err := workflowUnderTest(retriever, gate, drafter, verifier).Run(context.Background(), "   ")
	if !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("Run() error = %v, want ErrInvalidInput", err)
	}
	if retriever.calls != 0 {
		t.Errorf("retriever calls = %d, want 0", retriever.calls)
	}
}
