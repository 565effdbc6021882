package meditation

// Error codes carried in the response envelope. Upstream provider errors keep
// their own codes (NO_API_KEY, EMPTY_RESPONSE, numeric HTTP statuses) and pass
// through unchanged.
const (
	CodeInvalidTopic    = "INVALID_TOPIC"
	CodeInvalidStyle    = "INVALID_STYLE"
	CodeInvalidDuration = "INVALID_DURATION"
	CodeInvalidLanguage = "INVALID_LANGUAGE"
	CodeTTSFailed       = "TTS_FAILED"
	CodeLLMFailed       = "LLM_FAILED"
	CodeGenerationError = "MEDITATION_GENERATION_ERROR"
	CodeBatchItemError  = "BATCH_ITEM_ERROR"
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeUnknownType     = "UNKNOWN_REQUEST_TYPE"
)

// ErrorInfo is the structured error shape embedded in results and envelopes.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
