package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLLMErrorFormatting(t *testing.T) {
	err := NewLLMError(ErrorTypeAPI, "status code 500", nil)
	assert.Equal(t, "APIError: status code 500", err.Error())

	wrapped := NewLLMError(ErrorTypeRequest, "failed to send request", errors.New("connection refused"))
	assert.Equal(t, "RequestError (failed to send request): connection refused", wrapped.Error())
}

func TestLLMErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := NewLLMError(ErrorTypeResponse, "parse failed", inner)
	assert.ErrorIs(t, err, inner)
}

func TestLLMErrorTypeStrings(t *testing.T) {
	cases := map[ErrorType]string{
		ErrorTypeUnknown:        "UnknownError",
		ErrorTypeRequest:        "RequestError",
		ErrorTypeResponse:       "ResponseError",
		ErrorTypeAPI:            "APIError",
		ErrorTypeRateLimit:      "RateLimitError",
		ErrorTypeAuthentication: "AuthenticationError",
	}
	for errType, want := range cases {
		assert.Equal(t, want, NewLLMError(errType, "", nil).TypeString())
	}
}
