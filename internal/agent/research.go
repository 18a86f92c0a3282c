package agent

import (
	"context"
	"fmt"
	"strings"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/evidence"
	"docqa-ai/internal/llm"
	"docqa-ai/internal/prompt"
	"docqa-ai/internal/service"
)

const (
	thoughtLabel = "Thought:"
	answerLabel  = "Answer:"
)

// Researcher drafts an answer to a question from retrieved evidence.
type Researcher struct {
	client  llm.CompletionClient
	prompts prompt.Resolver
}

func NewResearcher(client llm.CompletionClient, prompts prompt.Resolver) *Researcher {
	return &Researcher{client: client, prompts: prompts}
}

// Draft produces one answer attempt grounded in passages. The model is asked
// for a Thought/Answer structure; output that ignores it is kept whole as
// the answer rather than discarded.
func (r *Researcher) Draft(ctx context.Context, question string, passages []evidence.ScoredPassage) (Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)

	rendered, err := r.prompts.Render(prompt.IDResearch, map[string]any{
		"Question": question,
		"Context":  formatContext(passages),
	})
	if err != nil {
		return Answer{}, err
	}

	response, err := r.client.Complete(ctx, rendered)
	if err != nil {
		return Answer{}, service.WrapError(service.ErrExternalService, "draft completion failed: "+err.Error())
	}

	answer := parseThoughtAnswer(response)
	logger.DebugContext(ctx, "draft produced",
		"answer_length", len(answer.Draft),
		"has_thought", answer.Thought != "",
	)
	return answer, nil
}

// formatContext renders passages as a numbered block with their citation
// metadata, the shape both the drafting and verification prompts expect.
func formatContext(passages []evidence.ScoredPassage) string {
	var builder strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&builder, "[%d]", i+1)
		if source := p.Passage.Metadata[evidence.MetaSource]; source != "" {
			fmt.Fprintf(&builder, " Source: %s", source)
			if section := p.Passage.Metadata[evidence.MetaSection]; section != "" {
				fmt.Fprintf(&builder, ", section: %s", section)
			}
		}
		builder.WriteString("\n")
		builder.WriteString(p.Passage.Content)
		builder.WriteString("\n\n")
	}
	return builder.String()
}

func parseThoughtAnswer(response string) Answer {
	answerIdx := strings.Index(response, answerLabel)
	if answerIdx < 0 {
		return Answer{Draft: strings.TrimSpace(response)}
	}

	thought := ""
	if thoughtIdx := strings.Index(response[:answerIdx], thoughtLabel); thoughtIdx >= 0 {
		thought = strings.TrimSpace(response[thoughtIdx+len(thoughtLabel) : answerIdx])
	}
	return Answer{
		Draft:   strings.TrimSpace(response[answerIdx+len(answerLabel):]),
		Thought: thought,
	}
}
