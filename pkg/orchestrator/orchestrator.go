// Package orchestrator drives one request through its thinking-mode
// pipeline: key pool construction, the summarisation pre-step, step
// iteration with progress frames, and the closing frame.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/polymind-ai/polymind/pkg/agent"
	"github.com/polymind-ai/polymind/pkg/agent/steps"
	"github.com/polymind-ai/polymind/pkg/keypool"
	"github.com/polymind-ai/polymind/pkg/llm"
	"github.com/polymind-ai/polymind/pkg/models"
	"github.com/polymind-ai/polymind/pkg/stream"
)

// ErrNoAPIKeys indicates the engine has no credentials configured. The
// transport maps it to a 500 before any frame is written.
var ErrNoAPIKeys = errors.New("APIキーが設定されていません")

// Orchestrator executes think requests. One instance serves all requests;
// per-request state lives on the agent context.
type Orchestrator struct {
	client llm.Client
	keys   []string
	logger *slog.Logger
}

// New creates an orchestrator over the configured credentials.
func New(client llm.Client, keys []string, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{client: client, keys: keys, logger: logger}
}

// Run executes one request, writing every frame to sink. A non-nil return
// means nothing was written and the transport should answer with a plain
// HTTP error; once frames flow, failures surface as an ERROR frame and Run
// returns nil. Cancellation of ctx (client disconnect) stops the pipeline
// without emitting further frames.
func (o *Orchestrator) Run(ctx context.Context, req *models.ThinkRequest, sink stream.Sink) error {
	pool, err := keypool.New(o.keys)
	if err != nil {
		return ErrNoAPIKeys
	}

	mode := req.Data.AgentMode
	logger := o.logger.With("agent_mode", mode)
	if !steps.Known(mode) {
		logger.Warn("Unknown agent mode, using standard pipeline")
		mode = steps.ModeStandard
	}

	ac := &agent.Context{
		Pool:               pool,
		Client:             o.client,
		Messages:           append([]models.Message{}, req.Messages...),
		EnabledModels:      models.EnabledSpecs(req.Data.ModelSettings),
		AppConfig:          req.Data.AppSettings,
		Sink:               sink,
		TotalContentLength: req.Data.TotalContentLength,
		AgentMode:          mode,
		SystemPrompt:       req.Data.SystemPrompt,
		Logger:             logger,
	}

	if steps.ShouldSummarize(ac) {
		if err := steps.Summarize.Run(ctx, ac); err != nil {
			return o.abort(ctx, ac, agent.StepSummarize, err)
		}
	}

	if ac.SystemPrompt != "" {
		ac.Messages = append([]models.Message{models.SystemMessage(ac.SystemPrompt)}, ac.Messages...)
	}

	for _, step := range steps.StepsFor(mode) {
		if step.Name == agent.StepSummarize {
			// Already ran as the pre-step above.
			continue
		}
		sink.Status(step.Name)
		if err := step.Run(ctx, ac); err != nil {
			return o.abort(ctx, ac, step.Name, err)
		}
	}

	if !ac.FinalContentStreamed && ac.FinalContent != "" {
		sink.Data(ac.FinalContent)
	}

	responses := ac.ModelResponses
	if responses == nil {
		responses = ac.ParallelResponses
	}
	sink.ModelResponses(responses)

	logger.Info("Request completed",
		"models", len(ac.EnabledModels),
		"replies", len(responses),
		"summarized", ac.SummaryExecuted)
	return nil
}

// abort handles a failed step: a disconnect ends the stream silently, any
// other failure becomes the closing ERROR frame.
func (o *Orchestrator) abort(ctx context.Context, ac *agent.Context, step string, err error) error {
	if ctx.Err() != nil {
		ac.Log().Info("Client disconnected, aborting pipeline", "step", step)
		return nil
	}
	ac.Log().Error("Pipeline step failed", "step", step, "error", err)
	ac.Sink.Error(err.Error())
	return nil
}

// Validate rejects envelopes the pipeline cannot run. Transport-level: the
// caller maps a failure to HTTP 400 before opening the stream.
func Validate(req *models.ThinkRequest) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("messages must not be empty")
	}
	for i, m := range req.Messages {
		if !m.Role.IsValid() {
			return fmt.Errorf("messages[%d] has invalid role %q", i, m.Role)
		}
	}
	if last := req.Messages[len(req.Messages)-1]; last.Role != models.RoleUser {
		return fmt.Errorf("messages must end with a user turn")
	}
	return nil
}
