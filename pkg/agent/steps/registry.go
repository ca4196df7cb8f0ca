package steps

import (
	"sort"

	"github.com/polymind-ai/polymind/pkg/agent"
)

// ModeStandard is the fallback for unknown mode IDs.
const ModeStandard = "standard"

// registry maps each thinking mode to its ordered pipeline. Every list
// starts with the summarisation pre-step; the orchestrator runs that phase
// itself before iterating, so iteration begins at the second entry.
var registry = map[string][]agent.Step{
	ModeStandard:       {Summarize, ExecuteStandard, IntegrateStandard},
	"expert_team":      {Summarize, ExecuteExpertTeam, IntegrateStandard},
	"deep_thought":     {Summarize, ExecuteDeepThought, IntegrateDeepThought},
	"critique":         {Summarize, ExecuteGenerators, ExecuteCritics, IntegrateWithCritiques},
	"dynamic_router":   {Summarize, ExecuteRouter, ExecuteExpertTeam, IntegrateStandard},
	"manager":          {Summarize, PlanSubtasks, ExecuteSubtasks, IntegrateReport},
	"reflection_loop":  {Summarize, ReflectionLoop},
	"hypothesis":       {Summarize, GenerateHypotheses, ExecuteSubtasks, IntegrateReport},
	"emotion_analysis": {Summarize, ExecuteEmotionAnalysis, IntegrateWithEmotion},
}

// StepsFor returns the pipeline for a mode, falling back to standard when
// the mode is unknown.
func StepsFor(mode string) []agent.Step {
	if steps, ok := registry[mode]; ok {
		return steps
	}
	return registry[ModeStandard]
}

// Known reports whether mode names a registered pipeline.
func Known(mode string) bool {
	_, ok := registry[mode]
	return ok
}

// Modes returns the registered mode IDs in sorted order.
func Modes() []string {
	modes := make([]string, 0, len(registry))
	for m := range registry {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}
