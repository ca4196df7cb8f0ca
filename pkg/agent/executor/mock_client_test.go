package executor

import (
	"context"
	"errors"
	"sync"

	"github.com/polymind-ai/polymind/pkg/llm"
	"github.com/polymind-ai/polymind/pkg/models"
)

// recordedCall captures one model invocation for assertions.
type recordedCall struct {
	Key   string
	Model string
	ID    string
	Msgs  []models.Message
}

// mockClient is a scripted llm.Client. The handler decides the response per
// (key, spec) pair; calls are recorded for assertions. Safe for concurrent
// use, since fan-out rounds call it from several goroutines.
type mockClient struct {
	mu      sync.Mutex
	calls   []recordedCall
	handler func(key string, spec models.ModelSpec) (string, error)
}

func (m *mockClient) record(key string, spec models.ModelSpec, msgs []models.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, recordedCall{Key: key, Model: spec.ModelName, ID: spec.ID, Msgs: msgs})
}

func (m *mockClient) CallBuffered(ctx context.Context, key string, spec models.ModelSpec, msgs []models.Message) (string, error) {
	return m.CallStreaming(ctx, key, spec, msgs, nil)
}

func (m *mockClient) CallStreaming(ctx context.Context, key string, spec models.ModelSpec, msgs []models.Message, onToken llm.TokenFunc) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.record(key, spec, msgs)
	content, err := m.handler(key, spec)
	if err != nil {
		return "", err
	}
	if onToken != nil {
		// Emit in two chunks to exercise incremental delivery.
		half := len(content) / 2
		if half > 0 {
			onToken(content[:half])
		}
		onToken(content[half:])
	}
	return content, nil
}

func (m *mockClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockClient) callsFor(model string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Model == model {
			n++
		}
	}
	return n
}

// apiErr builds a classified model failure.
func apiErr(status int, key, model string) error {
	return &llm.APIError{Status: status, Key: key, Model: model, Err: errors.New("upstream failure")}
}
