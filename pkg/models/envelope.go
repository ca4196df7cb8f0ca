package models

// ThinkRequest is the request envelope for the single POST endpoint.
// Messages is the full conversation history and must end with a user turn.
type ThinkRequest struct {
	Messages []Message        `json:"messages"`
	Data     ThinkRequestData `json:"data"`
}

// ThinkRequestData carries the per-request orchestration parameters.
type ThinkRequestData struct {
	AgentMode          string      `json:"agentMode"`
	SystemPrompt       string      `json:"systemPrompt,omitempty"`
	ModelSettings      []ModelSpec `json:"modelSettings"`
	AppSettings        AppConfig   `json:"appSettings"`
	TotalContentLength int         `json:"totalContentLength"`
}
