package genai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLLM struct {
	reply    string
	err      error
	lastUser string
}

func (m *mockLLM) Generate(_ context.Context, messages []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	for _, msg := range messages {
		if msg.Role == schema.User {
			m.lastUser = msg.Content
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *mockLLM) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func (m *mockLLM) WithTools([]*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func TestAnswerEnumeratesOptions(t *testing.T) {
	llm := &mockLLM{reply: " 1 "}
	m := NewModel(llm, "Go engineer, 5 years", false)

	out, err := m.Answer(context.Background(), "preferred shift?", "radio", []string{"Days", "Nights"})
	require.NoError(t, err)
	assert.Equal(t, "1", out)
	assert.Contains(t, llm.lastUser, "0. Days")
	assert.Contains(t, llm.lastUser, "1. Nights")
	assert.Contains(t, llm.lastUser, "Field type: radio")
}

func TestAnswerWrapsBackendFailure(t *testing.T) {
	m := NewModel(&mockLLM{err: errors.New("timeout")}, "", false)
	_, err := m.Answer(context.Background(), "q", "text", nil)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestEvaluateFitVerdicts(t *testing.T) {
	m := NewModel(&mockLLM{reply: "YES"}, "", false)
	ok, err := m.EvaluateFit(context.Background(), "Go Developer", "writes Go")
	require.NoError(t, err)
	assert.True(t, ok)

	m = NewModel(&mockLLM{reply: "no, too senior"}, "", false)
	ok, err = m.EvaluateFit(context.Background(), "VP Engineering", "runs org")
	require.NoError(t, err)
	assert.False(t, ok)

	m = NewModel(&mockLLM{reply: "maybe"}, "", false)
	_, err = m.EvaluateFit(context.Background(), "t", "d")
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestFitGateFailsOpen(t *testing.T) {
	// Disabled gate never calls the model.
	assert.True(t, FitGate(context.Background(), Null{}, false, "t", "d"))

	// Unavailable capability lets the posting through.
	assert.True(t, FitGate(context.Background(), Null{}, true, "t", "d"))

	// A working model's NO verdict is honored.
	m := NewModel(&mockLLM{reply: "NO"}, "", false)
	assert.False(t, FitGate(context.Background(), m, true, "t", "d"))
}
