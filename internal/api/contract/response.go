package contract

// ResponseError is the body of every failed request. Code is the service
// error code, or the HTTP status for routing errors.
type ResponseError struct {
	Error   string `json:"error"`
	Code    any    `json:"code"`
	Details string `json:"details,omitempty"`
}
