package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/evidence"
	"docqa-ai/internal/llm"
	"docqa-ai/internal/prompt"
	"docqa-ai/internal/service"
)

const fallbackNotesExcerpt = 300

// Verifier checks a draft answer claim by claim against the evidence it was
// drafted from.
type Verifier struct {
	client  llm.CompletionClient
	prompts prompt.Resolver
}

func NewVerifier(client llm.CompletionClient, prompts prompt.Resolver) *Verifier {
	return &Verifier{client: client, prompts: prompts}
}

// Verify returns the verification report for answer. Malformed model output
// is not an error: it degrades to a conservative report that fails the
// draft, with the raw output excerpted in Notes for diagnosis.
func (v *Verifier) Verify(ctx context.Context, question, answer string, passages []evidence.ScoredPassage) (VerificationReport, error) {
	logger := contextutil.LoggerFromContext(ctx)

	rendered, err := v.prompts.Render(prompt.IDVerify, map[string]any{
		"Question": question,
		"Answer":   answer,
		"Context":  formatContext(passages),
	})
	if err != nil {
		return VerificationReport{}, err
	}

	response, err := v.client.Complete(ctx, rendered)
	if err != nil {
		return VerificationReport{}, service.WrapError(service.ErrExternalService, "verification completion failed: "+err.Error())
	}

	report, ok := parseVerification(response)
	if !ok {
		logger.WarnContext(ctx, "verification output unparseable, failing the draft",
			"response_length", len(response),
		)
	}
	logger.DebugContext(ctx, "verification complete",
		"supported", report.Supported,
		"relevant", report.Relevant,
		"unsupported_claims", len(report.UnsupportedClaims),
	)
	return report, nil
}

// verifyPayload is the wire shape of the verifier's JSON reply. Supported
// and relevant arrive as "YES"/"NO" strings but models sometimes emit
// booleans, so both are accepted.
type verifyPayload struct {
	Supported         any      `json:"supported"`
	UnsupportedClaims []string `json:"unsupported_claims"`
	Contradictions    []string `json:"contradictions"`
	Relevant          any      `json:"relevant"`
	Notes             string   `json:"notes"`
}

func parseVerification(response string) (VerificationReport, bool) {
	candidate, found := extractJSONObject(response)
	if found {
		var payload verifyPayload
		if err := json.Unmarshal([]byte(candidate), &payload); err == nil {
			return VerificationReport{
				Supported:         parseAffirmative(payload.Supported),
				UnsupportedClaims: payload.UnsupportedClaims,
				Contradictions:    payload.Contradictions,
				Relevant:          parseAffirmative(payload.Relevant),
				Notes:             payload.Notes,
			}, true
		}
	}

	excerpt := response
	if utf8.RuneCountInString(excerpt) > fallbackNotesExcerpt {
		excerpt = string([]rune(excerpt)[:fallbackNotesExcerpt])
	}
	return VerificationReport{
		Supported: false,
		Relevant:  false,
		Notes:     "verification output could not be parsed: " + excerpt,
	}, false
}

func parseAffirmative(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		upper := strings.ToUpper(strings.TrimSpace(v))
		return strings.HasPrefix(upper, "YES") || upper == "TRUE"
	default:
		return false
	}
}

// RenderReport formats a verification report for display. Field order is
// fixed; callers that need the raw data use the struct instead.
func RenderReport(r VerificationReport) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "**Supported:** %s\n", yesNo(r.Supported))

	builder.WriteString("**Unsupported Claims:**")
	writeList(&builder, r.UnsupportedClaims)

	builder.WriteString("**Contradictions:**")
	writeList(&builder, r.Contradictions)

	fmt.Fprintf(&builder, "**Relevant:** %s\n", yesNo(r.Relevant))

	builder.WriteString("**Additional Details:** ")
	if r.Notes != "" {
		builder.WriteString(r.Notes)
	} else {
		builder.WriteString("none")
	}
	builder.WriteString("\n")

	return builder.String()
}

func writeList(builder *strings.Builder, items []string) {
	if len(items) == 0 {
		builder.WriteString(" none\n")
		return
	}
	builder.WriteString("\n")
	for _, item := range items {
		fmt.Fprintf(builder, "- %s\n", item)
	}
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}
