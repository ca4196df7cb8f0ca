package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polymind-ai/polymind/pkg/models"
)

func TestIntegrateStandardStreamsLoneReplyDirectly(t *testing.T) {
	ac, client, sink := newCtx(t, func(models.ModelSpec, []models.Message) (string, error) {
		return "should not be called", nil
	}, enabled("m1", "A"))
	ac.ParallelResponses = []models.ModelReply{{Model: "A", Provider: "cerebras", Content: "唯一の回答"}}

	require.NoError(t, IntegrateStandard.Run(context.Background(), ac))

	assert.Equal(t, "唯一の回答", sink.allData())
	assert.Equal(t, "唯一の回答", ac.FinalContent)
	assert.True(t, ac.FinalContentStreamed)
	assert.Equal(t, ac.ParallelResponses, ac.ModelResponses)
	assert.Empty(t, client.callsFor("integrator"), "no integrator round-trip for one reply")
}

func TestIntegrateStandardSynthesisesMultipleReplies(t *testing.T) {
	ac, client, sink := newCtx(t, func(spec models.ModelSpec, msgs []models.Message) (string, error) {
		require.Equal(t, "integrator", spec.ID)
		// The listing carries the question and every draft.
		assert.Contains(t, msgs[0].Content, "質問です")
		assert.Contains(t, msgs[0].Content, "回答1")
		assert.Contains(t, msgs[0].Content, "回答2")
		return "統合された最終回答", nil
	})
	ac.ParallelResponses = []models.ModelReply{
		{Model: "A", Content: "回答1"},
		{Model: "B", Content: "回答2"},
	}

	require.NoError(t, IntegrateStandard.Run(context.Background(), ac))

	assert.Equal(t, "統合された最終回答", ac.FinalContent)
	assert.Equal(t, "統合された最終回答", sink.allData(), "tokens streamed as DATA frames")
	assert.True(t, ac.FinalContentStreamed)
	require.Len(t, client.callsFor("integrator"), 1)
}

func TestIntegrateDeepThoughtIncludesThoughts(t *testing.T) {
	var integratorPrompt string
	ac, _, _ := newCtx(t, func(spec models.ModelSpec, msgs []models.Message) (string, error) {
		integratorPrompt = msgs[0].Content
		return "最終回答", nil
	})
	ac.ParallelResponses = []models.ModelReply{
		{Model: "A", Content: "答えA", Thought: "思考A"},
		{Model: "B", Content: "答えB", Thought: "思考B"},
	}

	require.NoError(t, IntegrateDeepThought.Run(context.Background(), ac))
	assert.Contains(t, integratorPrompt, "思考A")
	assert.Contains(t, integratorPrompt, "答えB")
}

func TestIntegrateWithCritiquesExposesBothSets(t *testing.T) {
	ac, _, _ := newCtx(t, func(spec models.ModelSpec, msgs []models.Message) (string, error) {
		last := msgs[len(msgs)-1].Content
		assert.Contains(t, last, "草稿")
		assert.Contains(t, last, "批評済み")
		return "編集済みの最終回答", nil
	})
	ac.ParallelResponses = []models.ModelReply{{Model: "A", Content: "草稿"}}
	ac.Critiques = []models.ModelReply{{Model: "B", Content: "批評済み"}}

	require.NoError(t, IntegrateWithCritiques.Run(context.Background(), ac))

	require.Len(t, ac.ModelResponses, 2, "drafts and critiques both reach the UI")
	assert.Equal(t, "編集済みの最終回答", ac.FinalContent)
	assert.True(t, ac.FinalContentStreamed)
}

func TestIntegrateReportPairsSubtasksWithReplies(t *testing.T) {
	var report string
	ac, _, _ := newCtx(t, func(spec models.ModelSpec, msgs []models.Message) (string, error) {
		report = msgs[0].Content
		return "統合報告", nil
	})
	ac.SubTasks = []string{"調査", "比較"}
	ac.ParallelResponses = []models.ModelReply{{Model: "A", Content: "調査結果"}}

	require.NoError(t, IntegrateReport.Run(context.Background(), ac))

	assert.Contains(t, report, "調査")
	assert.Contains(t, report, "調査結果")
	assert.Contains(t, report, "比較")
	assert.Contains(t, report, "未回答", "unanswered subtasks are reported as such")
}

func TestIntegrateWithEmotionUsesAnalysis(t *testing.T) {
	var rewritePrompt string
	ac, _, _ := newCtx(t, func(spec models.ModelSpec, msgs []models.Message) (string, error) {
		rewritePrompt = msgs[len(msgs)-1].Content
		return "寄り添う最終回答", nil
	})
	ac.ParallelResponses = []models.ModelReply{{Model: "A", Content: "下書き"}}
	ac.Critiques = []models.ModelReply{{Model: "A", Content: `{"emotion":"不安","tone":"安心させる口調"}`}}

	require.NoError(t, IntegrateWithEmotion.Run(context.Background(), ac))

	assert.Contains(t, rewritePrompt, "不安")
	assert.Contains(t, rewritePrompt, "下書き")
	assert.Equal(t, "寄り添う最終回答", ac.FinalContent)
}

func TestReflectionLoopEmitsPhaseStatuses(t *testing.T) {
	ac, _, sink := newCtx(t, func(spec models.ModelSpec, msgs []models.Message) (string, error) {
		if spec.ID == "integrator" {
			return "推敲済みの回答", nil
		}
		return "[思考]検討[/思考][最終回答]案", nil
	}, enabled("m1", "A"))

	require.NoError(t, ReflectionLoop.Run(context.Background(), ac))

	assert.Equal(t, []string{
		"EXECUTE_DEEP_THOUGHT",
		"EXECUTE_CRITICS",
		"INTEGRATE_WITH_CRITIQUES",
	}, sink.statuses)
	assert.Equal(t, "推敲済みの回答", ac.FinalContent)
	assert.True(t, ac.FinalContentStreamed)
}
