package vectorstore

import (
	"errors"
	"fmt"
)

var (
	// ErrCollectionNotFound is returned when an operation targets a missing collection.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrUnsupported is returned when a backend lacks an optional capability.
	ErrUnsupported = errors.New("operation not supported by this vector store")
)

// ConnectError is returned when a backend cannot be reached at startup.
// Hints are remediation steps meant to be shown to the operator.
type ConnectError struct {
	Backend string
	Address string
	Hints   []string
	Err     error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to %s at %s: %v", e.Backend, e.Address, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
