package domain

import (
	"errors"
	"fmt"
)

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrInvalidInput     = errors.New("invalid input")

	// ErrTemporary marks transient failures (network, rate limits, timeouts)
	// that are worth re-attempting.
	ErrTemporary = errors.New("temporary failure")

	// ErrUnreadableDocument marks documents with no extractable content.
	ErrUnreadableDocument = errors.New("unreadable document")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
