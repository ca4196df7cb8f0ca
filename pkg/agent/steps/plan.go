package steps

import (
	"context"
	"strings"

	"github.com/polymind-ai/polymind/pkg/agent"
	"github.com/polymind-ai/polymind/pkg/agent/prompt"
	"github.com/polymind-ai/polymind/pkg/models"
)

// PlanSubtasks asks the integrator to decompose the question into a JSON
// array of subtask strings. A reply that does not parse becomes a single
// raw subtask rather than a failure.
var PlanSubtasks = agent.Step{Name: agent.StepPlanSubtasks, Run: runPlanSubtasks}

func runPlanSubtasks(ctx context.Context, ac *agent.Context) error {
	raw, err := newIntegration(ac).Run(ctx, ac.IntegratorSpec(),
		[]models.Message{prompt.PlanSubtasks(ac.LastUserContent())}, nil)
	if err != nil {
		return err
	}
	ac.SubTasks = demoteToList(ac, raw, "subtasks")
	return nil
}

// GenerateHypotheses is PlanSubtasks with an interpretation framing; the
// resulting entries are treated as hypotheses downstream.
var GenerateHypotheses = agent.Step{Name: agent.StepGenerateHypotheses, Run: runGenerateHypotheses}

func runGenerateHypotheses(ctx context.Context, ac *agent.Context) error {
	raw, err := newIntegration(ac).Run(ctx, ac.IntegratorSpec(),
		[]models.Message{prompt.Hypotheses(ac.LastUserContent())}, nil)
	if err != nil {
		return err
	}
	ac.SubTasks = demoteToList(ac, raw, "hypotheses")
	ac.IsHypothesis = true
	return nil
}

// ExecuteRouter asks the integrator for one strategic instruction and
// prepends it to the history as a system message. It runs no inference.
var ExecuteRouter = agent.Step{Name: agent.StepExecuteRouter, Run: runExecuteRouter}

func runExecuteRouter(ctx context.Context, ac *agent.Context) error {
	instruction, err := newIntegration(ac).Run(ctx, ac.IntegratorSpec(),
		[]models.Message{prompt.RouterRequest(ac.LastUserContent())}, nil)
	if err != nil {
		return err
	}
	ac.Messages = append([]models.Message{models.SystemMessage(strings.TrimSpace(instruction))}, ac.Messages...)
	return nil
}

// demoteToList parses raw as a JSON string array, falling back to a
// single-element list of the raw text.
func demoteToList(ac *agent.Context, raw, what string) []string {
	if items, ok := parseStringArray(raw); ok && len(items) > 0 {
		return items
	}
	ac.Log().Warn("Planner reply was not a JSON array, using raw text", "kind", what)
	return []string{strings.TrimSpace(stripFences(raw))}
}
