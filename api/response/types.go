/*
Package response - unified API response handling

Principles:
1. HTTP status mapping lives in the API layer only
2. Error responses never expose internals; internal errors all surface as
   "internal server error" and the real cause goes to the log
3. Every response carries the request ID for log correlation

Stack extraction: errors implementing shared.Stacker contribute their
creation-point stack to the log; others get the handling-point stack.
*/
package response

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "request_id"

// Response is the unified response envelope.
type Response struct {
	Success   bool     `json:"success"`
	Data      any      `json:"data,omitempty"`
	Error     string   `json:"error,omitempty"`
	Fields    []string `json:"fields,omitempty"`
	Code      int      `json:"code"`
	Message   string   `json:"message"`
	RequestID string   `json:"request_id,omitempty"`
}
