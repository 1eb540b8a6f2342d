package channels

import (
	"errors"
	"fmt"
	"strings"
)

// Channel operation errors.
var (
	// ErrNotConfigured is returned when required credential fields are missing.
	ErrNotConfigured = errors.New("channel has not been configured yet")

	// ErrInvalidInput is returned when caller input fails a precondition.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSchemaValidation is returned when a composed payload fails its schema check.
	ErrSchemaValidation = errors.New("schema validation failed")

	// ErrUnsupportedChannelType is returned for advertising channel types an adapter cannot compose.
	ErrUnsupportedChannelType = errors.New("advertising channel type is not supported")

	// ErrAudienceTooSmall is returned when the provider reports the audience under its minimum size.
	ErrAudienceTooSmall = errors.New("audience is too small to be targeted")

	// ErrUpstream matches every *UpstreamError.
	ErrUpstream = errors.New("upstream error")

	// ErrNotImplemented is returned for capabilities an adapter does not support.
	ErrNotImplemented = errors.New("not implemented")
)

// UpstreamError is a provider rejection or transport failure.
// Body holds the provider's response payload unmodified.
type UpstreamError struct {
	Provider   string
	Op         string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s failed", e.Provider, e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " with status %d", e.StatusCode)
	}
	if len(e.Body) > 0 {
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is reports ErrUpstream as a match so callers need not use errors.As.
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// SchemaError aggregates the field violations of a composed payload.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%v: %s", ErrSchemaValidation, strings.Join(e.Violations, "; "))
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchemaValidation }

// NotConfiguredError wraps ErrNotConfigured with the missing field names.
func NotConfiguredError(channelID string, missing []string) error {
	if len(missing) == 0 {
		return fmt.Errorf("%s: %w", channelID, ErrNotConfigured)
	}
	return fmt.Errorf("%s: %w (missing %s)", channelID, ErrNotConfigured, strings.Join(missing, ", "))
}

// InvalidInputf formats an ErrInvalidInput.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
