package steps

import (
	"context"
	"strings"

	"github.com/polymind-ai/polymind/pkg/agent"
	"github.com/polymind-ai/polymind/pkg/agent/executor"
	"github.com/polymind-ai/polymind/pkg/agent/prompt"
)

// ExecuteDeepThought fans out with a trailing system instruction forcing
// the thought/answer format, then splits each reply into the two parts.
var ExecuteDeepThought = agent.Step{Name: agent.StepExecuteDeepThought, Run: runExecuteDeepThought}

func runExecuteDeepThought(ctx context.Context, ac *agent.Context) error {
	if err := requireModels(ac); err != nil {
		return err
	}

	msgs := withTrailing(ac.Messages, prompt.DeepThoughtFormat())
	replies, err := newParallel(ac).Run(ctx, ac.EnabledModels, executor.SharedMessages(msgs))
	if err != nil {
		return err
	}

	for i := range replies {
		thought, answer := parseThought(replies[i].Content)
		replies[i].Thought = thought
		replies[i].Content = answer
	}
	ac.ParallelResponses = replies
	return nil
}

// parseThought splits a reply on the format markers. Models that ignore the
// format entirely still produce a usable answer: the whole reply, with the
// thought marked as unextractable.
func parseThought(reply string) (thought, answer string) {
	openIdx := strings.Index(reply, prompt.ThinkOpen)
	closeIdx := -1
	if openIdx >= 0 {
		if rel := strings.Index(reply[openIdx+len(prompt.ThinkOpen):], prompt.ThinkClose); rel >= 0 {
			closeIdx = openIdx + len(prompt.ThinkOpen) + rel
		}
	}
	tagged := openIdx >= 0 && closeIdx >= 0

	if tagged {
		thought = strings.TrimSpace(reply[openIdx+len(prompt.ThinkOpen) : closeIdx])
	} else {
		thought = prompt.ThoughtMiss
	}

	if idx := strings.Index(reply, prompt.AnswerOpen); idx >= 0 {
		return thought, strings.TrimSpace(reply[idx+len(prompt.AnswerOpen):])
	}
	// No answer marker: the whole reply is the answer, even when a thought
	// block was tagged inside it.
	return thought, reply
}
