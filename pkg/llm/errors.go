package llm

import "fmt"

// APIError is the uniform failure surface of a model call. Status is the
// upstream HTTP status when one is available and 500 otherwise; Key and
// Model identify the (credential, model) pair so callers can classify and
// react (evict the key, drop the model, or retry).
type APIError struct {
	Status int
	Key    string
	Model  string
	Err    error
}

// Error returns the formatted error message. Key material is never included.
func (e *APIError) Error() string {
	return fmt.Sprintf("model %s failed with status %d: %v", e.Model, e.Status, e.Err)
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}
