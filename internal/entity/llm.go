package entity

// LLMCompletionRequest is the payload sent to the text-generation service.
type LLMCompletionRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Options  map[string]any `json:"options,omitempty"`
}

// LLMCompletionResponse is the text-generation service response.
type LLMCompletionResponse struct {
	Result string `json:"result"`
}
