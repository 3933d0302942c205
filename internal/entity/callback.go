package entity

// CallbackEventType represents the type of callback event
type CallbackEventType string

const (
	CallbackEventTypeProgress    CallbackEventType = "progress"
	CallbackEventTypeFinalResult CallbackEventType = "finalResult"
	CallbackEventTypeCancelled   CallbackEventType = "cancelled"
	CallbackEventTypeError       CallbackEventType = "error"
)

// CallbackEvent represents a callback event
type CallbackEvent struct {
	Event     CallbackEventType `json:"event"`
	Timestamp string            `json:"timestamp"` // ISO-8601 UTC
	Data      any               `json:"data"`
}

// CallbackProgressData represents data for a progress event
type CallbackProgressData struct {
	RunID     string `json:"run_id"`
	Stage     Stage  `json:"stage"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// CallbackResultData represents data for the final result event
type CallbackResultData struct {
	RunID  string `json:"run_id"`
	Result string `json:"result"`
}

// CallbackErrorData represents data for error event
type CallbackErrorData struct {
	Error CallbackErrorDetails `json:"error"`
}

// CallbackErrorDetails contains error information
type CallbackErrorDetails struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details"` // Context like run id, stage
}
