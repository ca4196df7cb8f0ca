package steps

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/polymind-ai/polymind/pkg/agent"
	"github.com/polymind-ai/polymind/pkg/agent/executor"
	"github.com/polymind-ai/polymind/pkg/agent/prompt"
	"github.com/polymind-ai/polymind/pkg/models"
)

// ExecuteEmotionAnalysis runs two fan-outs concurrently: the first enabled
// model analyses the question's emotion and tone, while every enabled model
// drafts an answer. The analysis is best-effort; a failed answer fan-out
// falls back to the analyser output so the mode still produces something.
var ExecuteEmotionAnalysis = agent.Step{Name: agent.StepExecuteEmotion, Run: runExecuteEmotion}

func runExecuteEmotion(ctx context.Context, ac *agent.Context) error {
	if err := requireModels(ac); err != nil {
		return err
	}

	var (
		analysis    []models.ModelReply
		answers     []models.ModelReply
		analysisErr error
		answersErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		analyser := []models.ModelSpec{ac.EnabledModels[0]}
		msg := prompt.EmotionAnalysis(ac.LastUserContent())
		analysis, analysisErr = newParallel(ac).Run(gctx, analyser,
			executor.SharedMessages([]models.Message{msg}))
		return nil
	})
	g.Go(func() error {
		answers, answersErr = newParallel(ac).Run(gctx, ac.EnabledModels,
			executor.SharedMessages(ac.Messages))
		return nil
	})
	_ = g.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if analysisErr != nil {
		ac.Log().Warn("Emotion analysis failed, integrating without tone", "error", analysisErr)
	}
	if answersErr != nil || len(answers) == 0 {
		if len(analysis) == 0 {
			return answersErr
		}
		ac.Log().Warn("Answer fan-out failed, falling back to analyser output", "error", answersErr)
		answers = analysis
	}

	ac.Critiques = analysis
	ac.ParallelResponses = answers
	return nil
}
