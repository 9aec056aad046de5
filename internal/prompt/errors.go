package prompt

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates a prompt lookup by name failed.
	ErrNotFound = errors.New("prompt not found")

	// ErrModelNotFound indicates a model lookup inside a prompt failed.
	ErrModelNotFound = errors.New("model not found")

	// ErrExists indicates a prompt or model name is already taken.
	ErrExists = errors.New("already exists")

	// ErrInvalidOperation indicates an operation that is structurally
	// disallowed, such as removing the default model.
	ErrInvalidOperation = errors.New("invalid operation")
)

// ValidationError reports a malformed prompt or model definition.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "prompt: " + e.Reason
}

// MissingParameterError reports parameters required by a template but not
// declared, or declared but not supplied at render time.
type MissingParameterError struct {
	Names []string
}

func (e *MissingParameterError) Error() string {
	return "prompt: missing parameters: " + strings.Join(e.Names, ", ")
}

// ExtraParameterError reports parameters declared or supplied that the
// template does not use.
type ExtraParameterError struct {
	Names []string
}

func (e *ExtraParameterError) Error() string {
	return "prompt: extra parameters: " + strings.Join(e.Names, ", ")
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
