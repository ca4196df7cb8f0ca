// Package steps implements the pipeline step library and the mode registry.
// Steps are stateless; all request state lives on the agent context.
package steps

import (
	"encoding/json"
	"strings"

	"github.com/polymind-ai/polymind/pkg/agent"
	"github.com/polymind-ai/polymind/pkg/agent/executor"
	"github.com/polymind-ai/polymind/pkg/models"
)

func newParallel(ac *agent.Context) *executor.Parallel {
	return executor.NewParallel(ac.Pool, ac.Client, ac.Log())
}

func newIntegration(ac *agent.Context) *executor.Integration {
	return executor.NewIntegration(ac.Pool, ac.Client, ac.Log())
}

func requireModels(ac *agent.Context) error {
	if len(ac.EnabledModels) == 0 {
		return agent.ErrNoEnabledModels
	}
	return nil
}

// stripFences removes a surrounding Markdown code fence, with or without a
// language tag. Models add them despite being told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimLeft(s, "`")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseStringArray decodes a JSON string array after fence stripping.
// Blank elements are dropped.
func parseStringArray(raw string) ([]string, bool) {
	var items []string
	if err := json.Unmarshal([]byte(stripFences(raw)), &items); err != nil {
		return nil, false
	}
	out := items[:0]
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			out = append(out, s)
		}
	}
	return out, true
}

// withTrailing returns a fresh slice of history plus extra messages, never
// aliasing the context's backing array.
func withTrailing(history []models.Message, extra ...models.Message) []models.Message {
	msgs := make([]models.Message, 0, len(history)+len(extra))
	msgs = append(msgs, history...)
	return append(msgs, extra...)
}
