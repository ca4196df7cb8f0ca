package steps

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polymind-ai/polymind/pkg/agent"
	"github.com/polymind-ai/polymind/pkg/keypool"
	"github.com/polymind-ai/polymind/pkg/llm"
	"github.com/polymind-ai/polymind/pkg/models"
)

// mockHandler scripts one model invocation. msgs is the conversation the
// step built for this call.
type mockHandler func(spec models.ModelSpec, msgs []models.Message) (string, error)

type recordedCall struct {
	ID    string
	Model string
	Msgs  []models.Message
}

type mockClient struct {
	mu      sync.Mutex
	calls   []recordedCall
	handler mockHandler
}

func (m *mockClient) CallBuffered(ctx context.Context, key string, spec models.ModelSpec, msgs []models.Message) (string, error) {
	return m.CallStreaming(ctx, key, spec, msgs, nil)
}

func (m *mockClient) CallStreaming(ctx context.Context, key string, spec models.ModelSpec, msgs []models.Message, onToken llm.TokenFunc) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.calls = append(m.calls, recordedCall{ID: spec.ID, Model: spec.ModelName, Msgs: msgs})
	m.mu.Unlock()

	content, err := m.handler(spec, msgs)
	if err != nil {
		return "", err
	}
	if onToken != nil {
		onToken(content)
	}
	return content, nil
}

func (m *mockClient) callsFor(id string) []recordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []recordedCall
	for _, c := range m.calls {
		if c.ID == id {
			out = append(out, c)
		}
	}
	return out
}

// memorySink records frames for assertions. Mutex-guarded: the emotion step
// writes from two goroutines.
type memorySink struct {
	mu        sync.Mutex
	statuses  []string
	data      []string
	responses [][]models.ModelReply
	summaries [][]models.Message
	errs      []string
}

func (s *memorySink) Status(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, step)
}

func (s *memorySink) Data(chunk string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, chunk)
}

func (s *memorySink) ModelResponses(replies []models.ModelReply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, replies)
}

func (s *memorySink) SummaryExecuted(history []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, history)
}

func (s *memorySink) Error(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, msg)
}

func (s *memorySink) allData() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out string
	for _, d := range s.data {
		out += d
	}
	return out
}

func enabled(id, model string) models.ModelSpec {
	return models.ModelSpec{ID: id, ModelName: model, Enabled: true, MaxOutputTokens: 1024}
}

// newCtx builds a request context over a single-key pool with a user
// question as the whole history.
func newCtx(t *testing.T, handler mockHandler, specs ...models.ModelSpec) (*agent.Context, *mockClient, *memorySink) {
	t.Helper()
	pool, err := keypool.New([]string{"K1"})
	require.NoError(t, err)

	client := &mockClient{handler: handler}
	sink := &memorySink{}
	ac := &agent.Context{
		Pool:          pool,
		Client:        client,
		Messages:      []models.Message{models.UserMessage("質問です")},
		EnabledModels: specs,
		Sink:          sink,
	}
	return ac, client, sink
}

func apiErr(status int, model string) error {
	return &llm.APIError{Status: status, Model: model, Err: errors.New("upstream failure")}
}
