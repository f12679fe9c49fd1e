package genai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Model is the real Answerer, parameterized by any eino chat model. The
// candidate profile travels with it so every prompt answers as the
// candidate, not as a generic assistant.
type Model struct {
	llm     model.ToolCallingChatModel
	profile string
	debug   bool
}

func NewModel(llm model.ToolCallingChatModel, profile string, debug bool) *Model {
	return &Model{llm: llm, profile: profile, debug: debug}
}

const answerSystemPrompt = `You are filling out a job application form on behalf of the candidate described below. Answer questions truthfully based on the profile, concisely, and in the first person. When a list of numbered options is given, reply with ONLY the number of the best option and nothing else. For numeric questions reply with only a number. Never refuse to answer.

Candidate profile:
%s`

const fitSystemPrompt = `You are screening job postings for the candidate described below. Decide whether the candidate should apply. Apply this rubric: the candidate meets most of the core requirements, any experience gap is small, and there is no blocking seniority or domain mismatch. Reply with ONLY the single word YES or NO.

Candidate profile:
%s`

func (m *Model) Answer(ctx context.Context, question string, kind string, options []string) (string, error) {
	if m.llm == nil {
		return "", ErrUnavailable
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Field type: %s\nQuestion: %s\n", kind, question)
	if len(options) > 0 {
		sb.WriteString("Options:\n")
		for i, opt := range options {
			fmt.Fprintf(&sb, "%d. %s\n", i, opt)
		}
		sb.WriteString("Reply with the number of the chosen option only.")
	}

	messages := []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(answerSystemPrompt, m.profile)),
		schema.UserMessage(sb.String()),
	}

	resp, err := m.llm.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrUnavailable
	}
	out := strings.TrimSpace(resp.Content)
	if m.debug {
		log.Printf("[genai] question=%q kind=%s -> %q", question, kind, out)
	}
	return out, nil
}

func (m *Model) EvaluateFit(ctx context.Context, title, description string) (bool, error) {
	if m.llm == nil {
		return false, ErrUnavailable
	}

	user := fmt.Sprintf("Job title: %s\n\nJob description:\n%s", title, description)
	messages := []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(fitSystemPrompt, m.profile)),
		schema.UserMessage(user),
	}

	resp, err := m.llm.Generate(ctx, messages)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp == nil {
		return false, ErrUnavailable
	}

	verdict := strings.ToUpper(strings.TrimSpace(resp.Content))
	if m.debug {
		log.Printf("[genai] fit verdict for %q: %s", title, verdict)
	}
	switch {
	case strings.HasPrefix(verdict, "YES"):
		return true, nil
	case strings.HasPrefix(verdict, "NO"):
		return false, nil
	}
	return false, fmt.Errorf("%w: unparseable verdict %q", ErrUnavailable, resp.Content)
}

// FitGate wraps EvaluateFit with the fail-open rule: a missing or broken
// capability must never stall the pipeline or drop a posting.
func FitGate(ctx context.Context, a Answerer, enabled bool, title, description string) bool {
	if !enabled {
		return true
	}
	ok, err := a.EvaluateFit(ctx, title, description)
	if err != nil {
		log.Printf("[genai] fit evaluation unavailable, proceeding: %v", err)
		return true
	}
	if !ok {
		log.Printf("[genai] skipping %q on fit advice", title)
	}
	return ok
}
