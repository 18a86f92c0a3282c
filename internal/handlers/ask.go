package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"docqa-ai/internal/agent"
	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/evidence"
	"docqa-ai/internal/service"
)

// QuestionAnswerer runs the full answer workflow for one question.
type QuestionAnswerer interface {
	Run(ctx context.Context, question string) (agent.Result, error)
}

// AskHandler handles HTTP requests for question answering.
type AskHandler struct {
	workflow QuestionAnswerer
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(workflow QuestionAnswerer) *AskHandler {
	return &AskHandler{workflow: workflow}
}

// AskRequest represents the HTTP request payload for questions.
//
// swagger:model AskRequest
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse represents the HTTP response payload for an answered question.
//
// swagger:model AskResponse
type AskResponse struct {
	// The final answer, verified against the retrieved evidence
	Answer string `json:"answer"`

	// The model's reasoning for the answer, when it produced one
	Thought string `json:"thought,omitempty"`

	// Relevance verdict for the question: CAN_ANSWER, PARTIAL, or NO_MATCH
	Verdict string `json:"verdict"`

	// Whether the answer passed verification. False when the gate
	// short-circuited or the last draft still failed.
	Verified bool `json:"verified"`

	// Verification report rendered as markdown; empty when verification
	// never ran.
	Verification string `json:"verification,omitempty"`

	// How many times the answer was re-drafted after a failed verification
	Reruns int `json:"reruns"`

	// Source passages the answer was drafted from
	References []ReferenceResponse `json:"references"`
}

// ReferenceResponse identifies one evidence passage used for the answer.
//
// swagger:model ReferenceResponse
type ReferenceResponse struct {
	// Relative path of the source document
	Source string `json:"source"`

	// Heading path within the document (e.g., "# Overview > ## Details")
	Section string `json:"section,omitempty"`
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP answers a question against the indexed corpus.
//
// swagger:route POST /api/ask askQuestion
//
// # Ask a question
//
// Runs the retrieve, gate, draft, verify loop and returns the verified
// answer with its verification report and source references.
//
// responses:
//
//	'200':
//	  description: Successful response with answer and references
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Bad request (missing or empty question)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: External service error (LLM unavailable)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'503':
//	  description: Evidence store unavailable
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Question == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	result, err := h.workflow.Run(ctx, req.Question)
	if err != nil {
		handleWorkflowError(w, ctx, err)
		return
	}

	resp := AskResponse{
		Answer:     result.Answer,
		Thought:    result.Thought,
		Verdict:    string(result.Verdict),
		Reruns:     result.Reruns,
		References: buildReferences(result.Passages),
	}
	if result.Verification != nil {
		resp.Verified = result.Verification.Passed()
		resp.Verification = agent.RenderReport(*result.Verification)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// buildReferences lists the distinct (source, section) pairs of the evidence,
// preserving retrieval order.
func buildReferences(passages []evidence.ScoredPassage) []ReferenceResponse {
	refs := make([]ReferenceResponse, 0, len(passages))
	seen := make(map[string]bool)
	for _, p := range passages {
		source := p.Passage.Metadata[evidence.MetaSource]
		if source == "" {
			continue
		}
		section := p.Passage.Metadata[evidence.MetaSection]
		key := source + "\x00" + section
		if seen[key] {
			continue
		}
		seen[key] = true
		refs = append(refs, ReferenceResponse{Source: source, Section: section})
	}
	return refs
}

// handleWorkflowError maps workflow errors to HTTP status codes.
func handleWorkflowError(w http.ResponseWriter, ctx context.Context, err error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "workflow error", "error", err)

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid question")
	case errors.Is(err, service.ErrRetrieval):
		writeError(w, http.StatusServiceUnavailable, "Evidence store unavailable")
	case errors.Is(err, service.ErrExternalService):
		writeError(w, http.StatusBadGateway, "External service error")
	default:
		writeError(w, http.StatusInternalServerError, "Failed to answer question")
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
