package steps

import (
	"context"
	"fmt"

	"github.com/polymind-ai/polymind/pkg/agent"
	"github.com/polymind-ai/polymind/pkg/agent/prompt"
	"github.com/polymind-ai/polymind/pkg/models"
)

// IntegrateStandard synthesises the fan-out replies into the final answer.
// A lone reply is streamed verbatim without an integrator round-trip.
var IntegrateStandard = agent.Step{Name: agent.StepIntegrateStandard, Run: runIntegrateStandard}

func runIntegrateStandard(ctx context.Context, ac *agent.Context) error {
	return integrateListing(ctx, ac, prompt.IntegrateStandard)
}

// IntegrateDeepThought is IntegrateStandard with each reply's thought
// included in the listing sent to the integrator.
var IntegrateDeepThought = agent.Step{Name: agent.StepIntegrateDeep, Run: runIntegrateDeepThought}

func runIntegrateDeepThought(ctx context.Context, ac *agent.Context) error {
	return integrateListing(ctx, ac, prompt.IntegrateDeepThought)
}

func integrateListing(ctx context.Context, ac *agent.Context,
	build func(string, []models.ModelReply) models.Message) error {

	replies := ac.ParallelResponses
	if len(replies) == 0 {
		return fmt.Errorf("no replies to integrate")
	}
	ac.ModelResponses = replies

	if len(replies) == 1 {
		ac.Sink.Data(replies[0].Content)
		ac.FinalContent = replies[0].Content
		ac.FinalContentStreamed = true
		return nil
	}

	msg := build(ac.LastUserContent(), replies)
	return streamIntegration(ctx, ac, []models.Message{msg})
}

// IntegrateWithCritiques acts as the final editor: it rewrites the drafts
// applying every critique. Both drafts and critiques go to the UI.
var IntegrateWithCritiques = agent.Step{Name: agent.StepIntegrateCritiques, Run: runIntegrateWithCritiques}

func runIntegrateWithCritiques(ctx context.Context, ac *agent.Context) error {
	if len(ac.ParallelResponses) == 0 {
		return fmt.Errorf("no drafts to integrate")
	}
	ac.ModelResponses = append(append([]models.ModelReply{}, ac.ParallelResponses...), ac.Critiques...)

	msg := prompt.IntegrateWithCritiques(ac.LastUserContent(), ac.ParallelResponses, ac.Critiques)
	return streamIntegration(ctx, ac, withTrailing(ac.Messages, msg))
}

// IntegrateReport synthesises the per-subtask replies back into one answer
// to the original question. Used by the manager and hypothesis modes.
var IntegrateReport = agent.Step{Name: agent.StepIntegrateReport, Run: runIntegrateReport}

func runIntegrateReport(ctx context.Context, ac *agent.Context) error {
	if len(ac.ParallelResponses) == 0 {
		return fmt.Errorf("no subtask replies to integrate")
	}
	ac.ModelResponses = ac.ParallelResponses

	msg := prompt.IntegrateReport(ac.LastUserContent(), ac.SubTasks, ac.ParallelResponses, ac.IsHypothesis)
	return streamIntegration(ctx, ac, []models.Message{msg})
}

// IntegrateWithEmotion rewrites the drafts in the tone the analyser found.
var IntegrateWithEmotion = agent.Step{Name: agent.StepIntegrateEmotion, Run: runIntegrateWithEmotion}

func runIntegrateWithEmotion(ctx context.Context, ac *agent.Context) error {
	if len(ac.ParallelResponses) == 0 {
		return fmt.Errorf("no drafts to integrate")
	}
	ac.ModelResponses = append(append([]models.ModelReply{}, ac.ParallelResponses...), ac.Critiques...)

	analysis := ""
	if len(ac.Critiques) > 0 {
		analysis = ac.Critiques[0].Content
	}
	msg := prompt.IntegrateWithEmotion(ac.LastUserContent(), analysis, ac.ParallelResponses)
	return streamIntegration(ctx, ac, withTrailing(ac.Messages, msg))
}

// streamIntegration runs the streaming integrator, forwarding each token to
// the sink as a DATA frame, and records the buffered result.
func streamIntegration(ctx context.Context, ac *agent.Context, msgs []models.Message) error {
	out, err := newIntegration(ac).Run(ctx, ac.IntegratorSpec(), msgs, ac.Sink.Data)
	if err != nil {
		return err
	}
	ac.FinalContent = out
	ac.FinalContentStreamed = true
	return nil
}
