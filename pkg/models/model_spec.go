package models

// ModelSpec describes one backend model participating in a fan-out.
// ID is opaque and must be unique within a request; the same backend model
// may participate more than once via virtual copies with distinct IDs
// (subtask execution synthesises these).
type ModelSpec struct {
	ID              string  `json:"id"`
	ModelName       string  `json:"modelName"`
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxTokens"`
	Enabled         bool    `json:"enabled"`
	// Role is a free-form persona hint supplied by the user; only some
	// agent modes read it.
	Role string `json:"role,omitempty"`
}

// DisplayName returns the label shown to the UI for replies from this model.
func (s ModelSpec) DisplayName() string {
	if s.Role != "" {
		return s.ModelName + " (" + s.Role + ")"
	}
	return s.ModelName
}

// EnabledSpecs filters specs down to the enabled ones, preserving order.
func EnabledSpecs(specs []ModelSpec) []ModelSpec {
	out := make([]ModelSpec, 0, len(specs))
	for _, s := range specs {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// ModelConfig holds the model parameters for an auxiliary single-call model
// (summariser or integrator).
type ModelConfig struct {
	ModelName       string  `json:"modelName" yaml:"model_name"`
	Temperature     float32 `json:"temperature" yaml:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxTokens" yaml:"max_tokens,omitempty"`
}

// Spec converts an auxiliary model config into a ModelSpec for executor use.
func (c ModelConfig) Spec(id string) ModelSpec {
	return ModelSpec{
		ID:              id,
		ModelName:       c.ModelName,
		Temperature:     c.Temperature,
		MaxOutputTokens: c.MaxOutputTokens,
		Enabled:         true,
	}
}

// AppConfig carries the per-request auxiliary model settings. The integrator
// model doubles as planner, router, role generator, hypothesis generator and
// meta-analyser.
type AppConfig struct {
	SummarizerModel *ModelConfig `json:"summarizerModel,omitempty"`
	IntegratorModel *ModelConfig `json:"integratorModel,omitempty"`
}

// ModelReply is one model's contribution to a fan-out result set.
// Thought is populated only by deep-thought parsing.
type ModelReply struct {
	Model    string `json:"model"`
	Provider string `json:"provider"`
	Content  string `json:"content"`
	Thought  string `json:"thought,omitempty"`
}
