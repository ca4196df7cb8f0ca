package steps

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polymind-ai/polymind/pkg/agent"
	"github.com/polymind-ai/polymind/pkg/models"
)

func TestExecuteStandardPopulatesReplies(t *testing.T) {
	ac, _, _ := newCtx(t, func(spec models.ModelSpec, msgs []models.Message) (string, error) {
		assert.Equal(t, "質問です", msgs[len(msgs)-1].Content)
		return "回答:" + spec.ModelName, nil
	}, enabled("m1", "A"), enabled("m2", "B"))

	require.NoError(t, ExecuteStandard.Run(context.Background(), ac))

	require.Len(t, ac.ParallelResponses, 2)
	assert.Equal(t, "回答:A", ac.ParallelResponses[0].Content)
	assert.Equal(t, "回答:B", ac.ParallelResponses[1].Content)
}

func TestExecuteStandardRequiresModels(t *testing.T) {
	ac, _, _ := newCtx(t, func(models.ModelSpec, []models.Message) (string, error) {
		return "never", nil
	})

	err := ExecuteStandard.Run(context.Background(), ac)
	require.ErrorIs(t, err, agent.ErrNoEnabledModels)
}

func TestExpertTeamAssignsPersonasRoundRobin(t *testing.T) {
	ac, client, _ := newCtx(t, func(spec models.ModelSpec, _ []models.Message) (string, error) {
		if spec.ID == "integrator" {
			return `["医師", "弁護士"]`, nil
		}
		return "done", nil
	}, enabled("m1", "A"), enabled("m2", "B"), enabled("m3", "C"))

	require.NoError(t, ExecuteExpertTeam.Run(context.Background(), ac))
	require.Len(t, ac.ParallelResponses, 3)

	// Two personas over three models wrap around.
	wantPersona := map[string]string{"m1": "医師", "m2": "弁護士", "m3": "医師"}
	for id, persona := range wantPersona {
		calls := client.callsFor(id)
		require.Len(t, calls, 1)
		first := calls[0].Msgs[0]
		assert.Equal(t, models.RoleSystem, first.Role)
		assert.Contains(t, first.Content, persona)
		// The original history follows the persona assignment.
		assert.Equal(t, "質問です", calls[0].Msgs[len(calls[0].Msgs)-1].Content)
	}
}

func TestExpertTeamForwardsRoleHints(t *testing.T) {
	var hintPrompt string
	ac, _, _ := newCtx(t, func(spec models.ModelSpec, msgs []models.Message) (string, error) {
		if spec.ID == "integrator" {
			hintPrompt = msgs[0].Content
			return `["懐疑的な査読者"]`, nil
		}
		return "done", nil
	}, enabled("m1", "A"))
	ac.EnabledModels[0].Role = "批評家"

	require.NoError(t, ExecuteExpertTeam.Run(context.Background(), ac))
	assert.Contains(t, hintPrompt, "批評家")
}

func TestExecuteSubtasksRoundRobinsVirtualSpecs(t *testing.T) {
	ac, client, _ := newCtx(t, func(spec models.ModelSpec, _ []models.Message) (string, error) {
		return "結果:" + spec.ID, nil
	}, enabled("m1", "A"), enabled("m2", "B"))
	ac.SubTasks = []string{"調査", "比較", "提案"}

	require.NoError(t, ExecuteSubtasks.Run(context.Background(), ac))

	require.Len(t, ac.ParallelResponses, 3)
	assert.Equal(t, "結果:m1__subtask_0", ac.ParallelResponses[0].Content)
	assert.Equal(t, "結果:m2__subtask_1", ac.ParallelResponses[1].Content)
	assert.Equal(t, "結果:m1__subtask_2", ac.ParallelResponses[2].Content)

	// Each virtual copy saw only its own subtask prompt.
	calls := client.callsFor("m2__subtask_1")
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Msgs, 1)
	assert.Contains(t, calls[0].Msgs[0].Content, "比較")
	assert.NotContains(t, calls[0].Msgs[0].Content, "調査")
}

func TestExecuteSubtasksWithoutPlanFails(t *testing.T) {
	ac, _, _ := newCtx(t, func(models.ModelSpec, []models.Message) (string, error) {
		return "never", nil
	}, enabled("m1", "A"))

	err := ExecuteSubtasks.Run(context.Background(), ac)
	require.Error(t, err)
}

func TestDeepThoughtSplitsReplies(t *testing.T) {
	ac, client, _ := newCtx(t, func(spec models.ModelSpec, msgs []models.Message) (string, error) {
		// The trailing system message carries the format contract.
		last := msgs[len(msgs)-1]
		assert.Equal(t, models.RoleSystem, last.Role)
		assert.Contains(t, last.Content, "[思考]")

		if spec.ModelName == "A" {
			return "[思考]分解して考える[/思考][最終回答]42です", nil
		}
		return "形式を無視した回答", nil
	}, enabled("m1", "A"), enabled("m2", "B"))

	require.NoError(t, ExecuteDeepThought.Run(context.Background(), ac))

	require.Len(t, ac.ParallelResponses, 2)
	assert.Equal(t, "分解して考える", ac.ParallelResponses[0].Thought)
	assert.Equal(t, "42です", ac.ParallelResponses[0].Content)
	assert.Equal(t, "(extraction failed)", ac.ParallelResponses[1].Thought)
	assert.Equal(t, "形式を無視した回答", ac.ParallelResponses[1].Content)

	// The format instruction is appended per call, not onto the history.
	assert.Len(t, ac.Messages, 1)
	require.Len(t, client.callsFor("m1"), 1)
}

func TestCriticsReviewDrafts(t *testing.T) {
	ac, client, _ := newCtx(t, func(spec models.ModelSpec, _ []models.Message) (string, error) {
		return "批評:" + spec.ModelName, nil
	}, enabled("m1", "A"), enabled("m2", "B"))
	ac.ParallelResponses = []models.ModelReply{
		{Model: "A", Content: "草稿1"},
		{Model: "B", Content: "草稿2"},
	}

	require.NoError(t, ExecuteCritics.Run(context.Background(), ac))

	require.Len(t, ac.Critiques, 2)
	assert.Equal(t, "批評:A", ac.Critiques[0].Content)

	// Every critic saw both drafts.
	calls := client.callsFor("m1")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Msgs[0].Content, "草稿1")
	assert.Contains(t, calls[0].Msgs[0].Content, "草稿2")
}

func TestEmotionAnalysisRunsBothGroups(t *testing.T) {
	ac, _, _ := newCtx(t, func(spec models.ModelSpec, msgs []models.Message) (string, error) {
		if strings.Contains(msgs[0].Content, "感情を分析") {
			out, _ := json.Marshal(map[string]string{"emotion": "不安", "tone": "安心させる口調"})
			return string(out), nil
		}
		return "下書き:" + spec.ModelName, nil
	}, enabled("m1", "A"), enabled("m2", "B"))

	require.NoError(t, ExecuteEmotionAnalysis.Run(context.Background(), ac))

	require.Len(t, ac.Critiques, 1, "only the first model analyses")
	assert.Contains(t, ac.Critiques[0].Content, "不安")
	require.Len(t, ac.ParallelResponses, 2)
}

func TestEmotionAnalysisFallsBackToAnalyserOutput(t *testing.T) {
	ac, _, _ := newCtx(t, func(spec models.ModelSpec, msgs []models.Message) (string, error) {
		if strings.Contains(msgs[0].Content, "感情を分析") {
			return `{"emotion":"喜び","tone":"明るい口調"}`, nil
		}
		return "", apiErr(404, spec.ModelName)
	}, enabled("m1", "A"))

	require.NoError(t, ExecuteEmotionAnalysis.Run(context.Background(), ac))
	require.Len(t, ac.ParallelResponses, 1)
	assert.Contains(t, ac.ParallelResponses[0].Content, "喜び")
}
