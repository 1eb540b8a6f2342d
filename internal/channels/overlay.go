package channels

import (
	"fmt"

	"dario.cat/mergo"
)

// Overlay fills every zero-valued field of value with the matching field of
// defaults and returns the result. Caller-supplied fields always win; the
// merge is shallow, so a non-empty slice or a non-nil pointer in value
// replaces the default one whole.
func Overlay[T any](defaults, value T) (T, error) {
	if err := mergo.Merge(&value, defaults, mergo.WithoutDereference); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to overlay default values: %w", err)
	}
	return value, nil
}
