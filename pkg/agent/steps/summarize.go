package steps

import (
	"context"

	"github.com/polymind-ai/polymind/pkg/agent"
	"github.com/polymind-ai/polymind/pkg/agent/prompt"
	"github.com/polymind-ai/polymind/pkg/models"
)

// History compression thresholds. Either one crossing triggers the
// summariser pre-step.
const (
	MessageThreshold = 10
	CharThreshold    = 30000
)

// ShouldSummarize reports whether the history is long enough to compress.
func ShouldSummarize(ac *agent.Context) bool {
	return len(ac.Messages) > MessageThreshold || ac.TotalContentLength > CharThreshold
}

// Summarize compresses everything before the trailing user message into a
// single synthetic system message. Failure is never fatal: the pipeline
// proceeds on the uncompressed history.
var Summarize = agent.Step{Name: agent.StepSummarize, Run: runSummarize}

func runSummarize(ctx context.Context, ac *agent.Context) error {
	if len(ac.Messages) < 2 {
		return nil
	}
	lastUser, ok := models.LastUser(ac.Messages)
	if !ok {
		return nil
	}
	toCompress := ac.Messages[:len(ac.Messages)-1]

	summary, err := newIntegration(ac).Run(ctx, ac.SummarizerSpec(),
		withTrailing(toCompress, prompt.SummarizeRequest()), nil)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ac.Log().Warn("History summarisation failed, continuing uncompressed",
			"messages", len(ac.Messages), "error", err)
		return nil
	}

	summaryMsg := prompt.SummaryMessage(summary)
	ac.Messages = []models.Message{summaryMsg, lastUser}
	ac.SummaryExecuted = true
	ac.NewHistoryContext = []models.Message{summaryMsg}
	ac.Sink.SummaryExecuted(ac.NewHistoryContext)

	ac.Log().Info("History summarised", "compressed_messages", len(toCompress))
	return nil
}
