package prompt

import "fmt"

// Prompt ids used by the agents.
const (
	IDGateJudge = "gate_judge"
	IDResearch  = "research"
	IDVerify    = "verify"
)

// builtinTemplates are the default prompt texts used when no prompts
// directory is configured.
var builtinTemplates = map[string]string{
	IDGateJudge: `You classify whether the retrieved passages can answer a question about a private document corpus.

Question:
{{.Question}}

Passages:
{{.Passages}}

Reply with exactly one label and nothing else:
CAN_ANSWER - the passages contain enough information to answer the question fully.
PARTIAL - the passages cover the topic but only answer part of the question.
NO_MATCH - the passages are about something else or contain no usable information.`,

	IDResearch: `You answer questions about a private document corpus. Use ONLY the context below; do not invent facts. When a passage has a source, cite it in the answer as "Source: <source>". If the context does not contain enough information, say so plainly.

Context:
{{.Context}}

Question:
{{.Question}}

Respond in exactly this format:
Thought: <your reasoning about what the context does and does not cover>
Answer: <the final answer for the user>`,

	IDVerify: `You verify a draft answer against the evidence it was written from. Check every claim in the answer against the context.

Context:
{{.Context}}

Question:
{{.Question}}

Draft answer:
{{.Answer}}

Return ONLY a JSON object wrapped in <json></json> tags, with exactly these keys:
<json>
{
  "supported": "YES or NO - every claim in the answer is backed by the context",
  "unsupported_claims": ["claims not found in the context"],
  "contradictions": ["claims that contradict the context"],
  "relevant": "YES or NO - the answer addresses the question that was asked",
  "notes": "anything else the reader should know"
}
</json>`,
}

// BuiltinResolver renders the compiled-in default templates. It is used
// when PROMPTS_DIR is not set, so the agents work out of the box.
type BuiltinResolver struct{}

func NewBuiltinResolver() *BuiltinResolver { return &BuiltinResolver{} }

func (BuiltinResolver) Render(id string, vars map[string]any) (string, error) {
	text, ok := builtinTemplates[id]
	if !ok {
		return "", fmt.Errorf("prompt id %q has no built-in template", id)
	}
	return renderTemplate(id, text, vars)
}
