package steps

import (
	"context"
	"fmt"

	"github.com/polymind-ai/polymind/pkg/agent"
	"github.com/polymind-ai/polymind/pkg/agent/executor"
	"github.com/polymind-ai/polymind/pkg/agent/prompt"
	"github.com/polymind-ai/polymind/pkg/models"
)

// ExecuteCritics fans the drafts out to every enabled model for critique.
var ExecuteCritics = agent.Step{Name: agent.StepExecuteCritics, Run: runExecuteCritics}

func runExecuteCritics(ctx context.Context, ac *agent.Context) error {
	if err := requireModels(ac); err != nil {
		return err
	}
	if len(ac.ParallelResponses) == 0 {
		return fmt.Errorf("no drafts to critique")
	}

	msg := prompt.Critique(ac.LastUserContent(), ac.ParallelResponses)
	replies, err := newParallel(ac).Run(ctx, ac.EnabledModels,
		executor.SharedMessages([]models.Message{msg}))
	if err != nil {
		return err
	}
	ac.Critiques = replies
	return nil
}
