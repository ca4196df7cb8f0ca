package steps

import (
	"context"
	"fmt"

	"github.com/polymind-ai/polymind/pkg/agent"
	"github.com/polymind-ai/polymind/pkg/agent/executor"
	"github.com/polymind-ai/polymind/pkg/agent/prompt"
	"github.com/polymind-ai/polymind/pkg/models"
)

// ExecuteStandard fans the unchanged history out to every enabled model.
var ExecuteStandard = agent.Step{Name: agent.StepExecuteStandard, Run: runSharedFanOut}

// ExecuteGenerators is the drafting fan-out of critique mode. Identical to
// the standard fan-out; the difference is what consumes the replies.
var ExecuteGenerators = agent.Step{Name: agent.StepExecuteGenerators, Run: runSharedFanOut}

func runSharedFanOut(ctx context.Context, ac *agent.Context) error {
	if err := requireModels(ac); err != nil {
		return err
	}
	replies, err := newParallel(ac).Run(ctx, ac.EnabledModels, executor.SharedMessages(ac.Messages))
	if err != nil {
		return err
	}
	ac.ParallelResponses = replies
	return nil
}

// ExecuteExpertTeam generates one persona per enabled model, then fans out
// with a per-model system message assigning the persona.
var ExecuteExpertTeam = agent.Step{Name: agent.StepExecuteExpertTeam, Run: runExecuteExpertTeam}

func runExecuteExpertTeam(ctx context.Context, ac *agent.Context) error {
	if err := requireModels(ac); err != nil {
		return err
	}

	var hints []string
	for _, spec := range ac.EnabledModels {
		if spec.Role != "" {
			hints = append(hints, spec.Role)
		}
	}

	raw, err := newIntegration(ac).Run(ctx, ac.IntegratorSpec(),
		[]models.Message{prompt.ExpertRoles(ac.LastUserContent(), len(ac.EnabledModels), hints)}, nil)
	if err != nil {
		return err
	}
	roles := demoteToList(ac, raw, "personas")

	perID := make(map[string][]models.Message, len(ac.EnabledModels))
	for i, spec := range ac.EnabledModels {
		persona := roles[i%len(roles)]
		msgs := make([]models.Message, 0, len(ac.Messages)+1)
		msgs = append(msgs, prompt.ActAs(persona))
		perID[spec.ID] = append(msgs, ac.Messages...)
	}

	replies, err := newParallel(ac).Run(ctx, ac.EnabledModels, executor.PerIDMessages(perID))
	if err != nil {
		return err
	}
	ac.ParallelResponses = replies
	return nil
}

// ExecuteSubtasks round-robins the planned subtasks over the enabled
// models. One model may carry several subtasks, so each assignment gets a
// virtual spec copy with a derived ID and its own single-message prompt.
// Replies come back one per subtask, in subtask order.
var ExecuteSubtasks = agent.Step{Name: agent.StepExecuteSubtasks, Run: runExecuteSubtasks}

func runExecuteSubtasks(ctx context.Context, ac *agent.Context) error {
	if err := requireModels(ac); err != nil {
		return err
	}
	if len(ac.SubTasks) == 0 {
		return fmt.Errorf("no subtasks planned")
	}

	question := ac.LastUserContent()
	specs := make([]models.ModelSpec, 0, len(ac.SubTasks))
	perID := make(map[string][]models.Message, len(ac.SubTasks))
	for i, st := range ac.SubTasks {
		spec := ac.EnabledModels[i%len(ac.EnabledModels)]
		spec.ID = fmt.Sprintf("%s__subtask_%d", spec.ID, i)
		specs = append(specs, spec)
		perID[spec.ID] = []models.Message{prompt.Subtask(question, st, ac.IsHypothesis)}
	}

	replies, err := newParallel(ac).Run(ctx, specs, executor.PerIDMessages(perID))
	if err != nil {
		return err
	}
	ac.ParallelResponses = replies
	return nil
}
