package errors

const (
	HttpInternalError         = "internal_error"
	HttpInvalidJsonError      = "invalid_json"
	HttpValidationError       = "validation_failed"
	HttpClusterNotFoundError  = "cluster_not_found"
	HttpInvalidParameterError = "invalid_parameter"
	HttpNotFoundError         = "not_found"
)

// ErrorResponse is the error response body for API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
