package utils

import (
	"errors"
	"fmt"
)

// Error kinds used across the ledger core. Routes map these to HTTP statuses.
var (
	ErrorRecordNotFound = errors.New("record not found")
	ErrorInvalidInput   = errors.New("invalid input")
	ErrorConflict       = errors.New("conflict")
)

func NotFoundError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrorRecordNotFound)
}

func InvalidInputError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrorInvalidInput)
}

func ConflictError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrorConflict)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrorRecordNotFound)
}

func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrorInvalidInput)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrorConflict)
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
