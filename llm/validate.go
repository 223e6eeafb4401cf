package llm

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/teilomillet/gomistral/config"
)

// validate is the shared validator instance used across the package.
var validate = validator.New()

// ValidateConfig checks the configuration struct tags and maps violations
// to ConfigurationError values naming the offending setting. These errors
// surface before any network client is built.
func ValidateConfig(cfg *config.Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &config.ConfigurationError{Message: "invalid configuration", Err: err}
	}

	fe := validationErrors[0]
	return config.NewConfigurationError(fieldName(fe.Field()), fieldMessage(fe))
}

func fieldName(structField string) string {
	switch structField {
	case "Temperature":
		return "temperature"
	case "TopP":
		return "top_p"
	case "MaxTokens":
		return "max_tokens"
	case "Model":
		return "model"
	case "Provider":
		return "provider"
	default:
		return structField
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte", "lte":
		if fe.Field() == "Temperature" || fe.Field() == "TopP" {
			return "must be in the range [0.0, 1.0]"
		}
		return "is out of range"
	default:
		return "is invalid"
	}
}
