package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")

	// ErrMalformedRequest marks requests rejected before dispatch: an empty
	// file list, an unknown category override, or conflicting hint keys.
	ErrMalformedRequest = errors.New("malformed request")
	// ErrOracleUnavailable marks a classification, decision, or verification
	// call that returned no usable answer.
	ErrOracleUnavailable = errors.New("oracle unavailable")
	// ErrUnresolvedCategory means no classifier said yes and the decision
	// oracle could not be consulted.
	ErrUnresolvedCategory = errors.New("unresolved category")
	// ErrAliasStoreLockTimeout means the performer alias store lock could not
	// be acquired within the configured bound.
	ErrAliasStoreLockTimeout = errors.New("alias store lock timeout")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps a pipeline error to the CLI process exit status. Request
// problems exit 2, lock contention 3, oracle outages 4, anything else 1.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrMalformedRequest), errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration):
		return 2
	case errors.Is(err, ErrAliasStoreLockTimeout):
		return 3
	case errors.Is(err, ErrUnresolvedCategory), errors.Is(err, ErrOracleUnavailable):
		return 4
	default:
		return 1
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
