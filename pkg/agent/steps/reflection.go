package steps

import (
	"context"

	"github.com/polymind-ai/polymind/pkg/agent"
)

// ReflectionLoop is the composite draft-critique-rewrite cycle: deep
// thought drafting, a critique pass, then the final-editor integration.
// Each internal phase announces itself with its own STATUS frame.
var ReflectionLoop = agent.Step{Name: agent.StepReflectionLoop, Run: runReflectionLoop}

func runReflectionLoop(ctx context.Context, ac *agent.Context) error {
	for _, phase := range []agent.Step{ExecuteDeepThought, ExecuteCritics, IntegrateWithCritiques} {
		ac.Sink.Status(phase.Name)
		if err := phase.Run(ctx, ac); err != nil {
			return err
		}
	}
	return nil
}
