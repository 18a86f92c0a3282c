package agent

// Verdict is the relevance gate's judgement of how well the retrieved
// evidence covers a question.
type Verdict string

const (
	VerdictNoMatch   Verdict = "NO_MATCH"
	VerdictPartial   Verdict = "PARTIAL"
	VerdictCanAnswer Verdict = "CAN_ANSWER"
)

// InsufficientEvidenceAnswer is returned verbatim when the gate decides the
// corpus has nothing usable for the question. Draft and verification are
// skipped in that case.
const InsufficientEvidenceAnswer = "The provided documents do not contain enough information to answer this question."

// Answer is one drafting pass over the evidence. Thought is the model's
// reasoning segment and may be empty when the model ignored the requested
// output structure.
type Answer struct {
	Draft   string
	Thought string
}

// VerificationReport is the verifier's claim-by-claim check of a draft
// against the evidence it was written from.
type VerificationReport struct {
	Supported         bool
	UnsupportedClaims []string
	Contradictions    []string
	Relevant          bool
	Notes             string
}

// Passed reports whether the draft survives verification as-is.
func (r VerificationReport) Passed() bool {
	return r.Supported && r.Relevant
}
