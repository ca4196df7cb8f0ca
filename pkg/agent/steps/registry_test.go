package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polymind-ai/polymind/pkg/agent"
)

func TestStepsForKnownModes(t *testing.T) {
	for _, mode := range Modes() {
		steps := StepsFor(mode)
		require.NotEmpty(t, steps, mode)
		assert.Equal(t, agent.StepSummarize, steps[0].Name,
			"%s must declare the summarisation pre-step first", mode)
	}
}

func TestStepsForUnknownModeFallsBack(t *testing.T) {
	names := func(steps []agent.Step) []string {
		var out []string
		for _, s := range steps {
			out = append(out, s.Name)
		}
		return out
	}

	fallback := StepsFor("does_not_exist")
	assert.Equal(t, names(StepsFor(ModeStandard)), names(fallback))
	assert.False(t, Known("does_not_exist"))
	assert.True(t, Known("deep_thought"))
}

func TestModesAreSortedAndComplete(t *testing.T) {
	modes := Modes()
	assert.Len(t, modes, 9)
	assert.Contains(t, modes, "standard")
	assert.Contains(t, modes, "emotion_analysis")
	assert.IsIncreasing(t, modes)
}
