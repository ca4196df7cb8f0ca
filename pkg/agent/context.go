package agent

import (
	"log/slog"

	"github.com/polymind-ai/polymind/pkg/keypool"
	"github.com/polymind-ai/polymind/pkg/llm"
	"github.com/polymind-ai/polymind/pkg/models"
	"github.com/polymind-ai/polymind/pkg/stream"
)

// Context is the shared mutable record threaded through a request's steps.
// It lives from envelope parse to stream close. Steps execute sequentially,
// so plain fields suffice; a running step owns the record until it returns.
//
// Input fields are set once by the orchestrator and never unset by steps.
// Output fields are progressively filled; each step's contract says which
// slots it produces.
type Context struct {
	// Inputs.
	Pool               *keypool.Pool
	Client             llm.Client
	Messages           []models.Message // current history; summarisation may replace it
	EnabledModels      []models.ModelSpec
	AppConfig          models.AppConfig
	Sink               stream.Sink
	TotalContentLength int
	AgentMode          string
	SystemPrompt       string
	Logger             *slog.Logger

	// Outputs.
	ParallelResponses    []models.ModelReply // primary fan-out results
	Critiques            []models.ModelReply // secondary fan-out (critics / analyser)
	SubTasks             []string            // planned subtask strings
	IsHypothesis         bool                // subtasks are hypotheses, not work items
	FinalContent         string              // the synthesised answer
	ModelResponses       []models.ModelReply // what the UI should display
	SummaryExecuted      bool
	NewHistoryContext    []models.Message // synthetic prefix replacing compressed history
	FinalContentStreamed bool             // at most one step sets this
}

// IntegratorSpec resolves the auxiliary integrator model, falling back to
// defaults when the request omits it. The integrator doubles as planner,
// router, role generator, hypothesis generator and meta-analyser.
func (ac *Context) IntegratorSpec() models.ModelSpec {
	if ac.AppConfig.IntegratorModel != nil && ac.AppConfig.IntegratorModel.ModelName != "" {
		return ac.AppConfig.IntegratorModel.Spec("integrator")
	}
	return defaultAuxSpec("integrator")
}

// SummarizerSpec resolves the auxiliary summariser model.
func (ac *Context) SummarizerSpec() models.ModelSpec {
	if ac.AppConfig.SummarizerModel != nil && ac.AppConfig.SummarizerModel.ModelName != "" {
		return ac.AppConfig.SummarizerModel.Spec("summarizer")
	}
	return defaultAuxSpec("summarizer")
}

// defaultAuxSpec is the fallback when the client sent no auxiliary model
// settings. Matches the chat UI's own defaults.
func defaultAuxSpec(id string) models.ModelSpec {
	return models.ModelSpec{
		ID:              id,
		ModelName:       "llama-3.3-70b",
		Temperature:     0.7,
		MaxOutputTokens: 4096,
		Enabled:         true,
	}
}

// Log returns the request-scoped logger, or the default logger when unset.
func (ac *Context) Log() *slog.Logger {
	if ac.Logger != nil {
		return ac.Logger
	}
	return slog.Default()
}

// LastUserContent returns the content of the trailing user message, or ""
// when the history does not end with one.
func (ac *Context) LastUserContent() string {
	if m, ok := models.LastUser(ac.Messages); ok {
		return m.Content
	}
	return ""
}
