package config

import "fmt"

// ConfigurationError reports an invalid or incomplete configuration.
// These errors surface synchronously at construction time, are never
// retried, and abort client initialization entirely.
type ConfigurationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", msg, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", msg)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a ConfigurationError for the given field.
// Field may be empty when the error is not tied to a single setting.
func NewConfigurationError(field, message string) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: message}
}
