package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public face of a pkg/errors.Error.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Details   any    `json:"details,omitempty"`
}

// ErrorEnvelope echoes the request id so a failure shown in the app can be
// matched to its log line.
type ErrorEnvelope struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"request_id,omitempty"`
}
