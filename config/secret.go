package config

import (
	"fmt"
	"os"
)

// Secret holds a credential that must never appear in logs or serialized
// output. All default formatting paths print a redaction marker; the
// plaintext is only reachable through an explicit Reveal call.
type Secret string

const redactedMarker = "**********"

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redactedMarker
}

func (s Secret) GoString() string {
	return "config.Secret(" + s.String() + ")"
}

// Format implements fmt.Formatter so that %v, %s, %q and friends all
// produce the redaction marker rather than the underlying value.
func (s Secret) Format(f fmt.State, verb rune) {
	switch verb {
	case 'q':
		fmt.Fprintf(f, "%q", s.String())
	default:
		fmt.Fprint(f, s.String())
	}
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Reveal returns the underlying plaintext value.
func (s Secret) Reveal() string {
	return string(s)
}

func (s Secret) Empty() bool {
	return s == ""
}

// Resolve returns the first non-empty value among the explicit value and
// the named environment variables, checked in order. Encoding the fallback
// chain as an ordered argument list keeps resolution testable instead of
// scattering successive default lookups.
func Resolve(explicit string, envVars ...string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ResolveSecret is Resolve for credential values.
func ResolveSecret(explicit Secret, envVars ...string) Secret {
	if !explicit.Empty() {
		return explicit
	}
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			return Secret(v)
		}
	}
	return ""
}
