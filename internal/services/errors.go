package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFetch        = errors.New("fetch error")
	ErrConversion   = errors.New("conversion error")
	ErrEngine       = errors.New("engine error")
	ErrPersistence  = errors.New("persistence error")
	ErrNotification = errors.New("notification delivery error")
	ErrValidation   = errors.New("validation error")
)

// Wrap builds an error message that includes step context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, step, operation, message string, err error) error {
	detail := buildDetail(step, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error terminates a transcription job. Every
// marker is fatal except notification delivery failures, which are logged
// and swallowed at the point of delivery.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrNotification)
}

func buildDetail(step, operation, message string) string {
	parts := make([]string, 0, 3)
	if step = strings.TrimSpace(step); step != "" {
		parts = append(parts, step)
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
