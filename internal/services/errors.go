package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedAgent      = errors.New("unsupported agent")
	ErrNoMatch               = errors.New("no match in source library")
	ErrConversionUnavailable = errors.New("conversion unavailable")
	ErrConversionNotFound    = errors.New("conversion not found")
	ErrInsufficientIdentity  = errors.New("insufficient identity")
	ErrConfiguration         = errors.New("configuration error")
	ErrTransient             = errors.New("transient failure")
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

// Kind returns a short classification label for err, used in failure reports
// and structured logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoMatch):
		return "no_match"
	case errors.Is(err, ErrUnsupportedAgent):
		return "unsupported_agent"
	case errors.Is(err, ErrInsufficientIdentity):
		return "insufficient_identity"
	case errors.Is(err, ErrConversionUnavailable):
		return "conversion_unavailable"
	case errors.Is(err, ErrConversionNotFound):
		return "conversion_not_found"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "transient"
	}
}

// IsConversionMiss reports whether err only means a provider had no answer,
// as opposed to a provider that failed.
func IsConversionMiss(err error) bool {
	return errors.Is(err, ErrConversionUnavailable) || errors.Is(err, ErrConversionNotFound)
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
