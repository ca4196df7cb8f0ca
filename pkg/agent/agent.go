// Package agent provides the core pipeline framework for polymind.
// An agent (thinking mode) is an ordered list of steps executed against a
// shared per-request context; each step reads earlier outputs and fills its
// own contracted slots.
package agent

import (
	"context"
	"errors"
)

// Step is one atomic pipeline phase. Name appears in STATUS frames and is
// upper-snake by convention (EXECUTE_STANDARD, INTEGRATE_REPORT, ...).
type Step struct {
	Name string
	Run  func(ctx context.Context, ac *Context) error
}

// Step names. SUMMARIZE leads every agent's declared step list; the
// orchestrator runs summarisation itself as a pre-step and skips the
// declared entry, but the declaration documents the pipeline shape.
const (
	StepSummarize          = "SUMMARIZE"
	StepPlanSubtasks       = "PLAN_SUBTASKS"
	StepGenerateHypotheses = "GENERATE_HYPOTHESES"
	StepExecuteStandard    = "EXECUTE_STANDARD"
	StepExecuteExpertTeam  = "EXECUTE_EXPERT_TEAM"
	StepExecuteDeepThought = "EXECUTE_DEEP_THOUGHT"
	StepExecuteGenerators  = "EXECUTE_GENERATORS"
	StepExecuteCritics     = "EXECUTE_CRITICS"
	StepExecuteRouter      = "EXECUTE_ROUTER"
	StepExecuteSubtasks    = "EXECUTE_SUBTASKS"
	StepExecuteEmotion     = "EXECUTE_EMOTION_ANALYSIS"
	StepIntegrateStandard  = "INTEGRATE_STANDARD"
	StepIntegrateDeep      = "INTEGRATE_DEEP_THOUGHT"
	StepIntegrateCritiques = "INTEGRATE_WITH_CRITIQUES"
	StepIntegrateReport    = "INTEGRATE_REPORT"
	StepIntegrateEmotion   = "INTEGRATE_WITH_EMOTION"
	StepReflectionLoop     = "REFLECTION_LOOP"
)

// ErrNoEnabledModels indicates a fan-out step ran with an empty model set.
// Every step that fans out guards on this.
var ErrNoEnabledModels = errors.New("推論可能なモデルが設定されていません")
