package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polymind-ai/polymind/pkg/models"
)

func TestPlanSubtasksParsesArray(t *testing.T) {
	ac, _, _ := newCtx(t, func(spec models.ModelSpec, _ []models.Message) (string, error) {
		require.Equal(t, "integrator", spec.ID)
		return "```json\n[\"資料を集める\", \"比較する\"]\n```", nil
	})

	require.NoError(t, PlanSubtasks.Run(context.Background(), ac))
	assert.Equal(t, []string{"資料を集める", "比較する"}, ac.SubTasks)
	assert.False(t, ac.IsHypothesis)
}

func TestPlanSubtasksDemotesUnparseableReply(t *testing.T) {
	ac, _, _ := newCtx(t, func(models.ModelSpec, []models.Message) (string, error) {
		return "タスクは一つだけです", nil
	})

	require.NoError(t, PlanSubtasks.Run(context.Background(), ac))
	assert.Equal(t, []string{"タスクは一つだけです"}, ac.SubTasks)
}

func TestGenerateHypothesesSetsFlag(t *testing.T) {
	ac, _, _ := newCtx(t, func(models.ModelSpec, []models.Message) (string, error) {
		return `["解釈A", "解釈B", "解釈C"]`, nil
	})

	require.NoError(t, GenerateHypotheses.Run(context.Background(), ac))
	assert.Equal(t, []string{"解釈A", "解釈B", "解釈C"}, ac.SubTasks)
	assert.True(t, ac.IsHypothesis)
}

func TestExecuteRouterPrependsInstruction(t *testing.T) {
	ac, _, _ := newCtx(t, func(models.ModelSpec, []models.Message) (string, error) {
		return "  簡潔かつ根拠を添えて回答すること。 ", nil
	})
	before := len(ac.Messages)

	require.NoError(t, ExecuteRouter.Run(context.Background(), ac))

	require.Len(t, ac.Messages, before+1)
	assert.Equal(t, models.RoleSystem, ac.Messages[0].Role)
	assert.Equal(t, "簡潔かつ根拠を添えて回答すること。", ac.Messages[0].Content)
	assert.Empty(t, ac.ParallelResponses, "the router itself runs no fan-out")
}
