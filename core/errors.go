package core

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for comparison using errors.Is().
// These are generic errors that can be wrapped with additional context.
var (
	// Ranking errors
	ErrNoAgents     = errors.New("no eligible agents for area")
	ErrNotAvailable = errors.New("calling agent not in eligible set")

	// Geometry errors
	ErrMalformedRegion   = errors.New("malformed region")
	ErrMalformedPosition = errors.New("malformed position")

	// Coverage errors
	ErrSequenceExhausted = errors.New("waypoint sequence exhausted")
	ErrUnknownStrategy   = errors.New("unknown coverage strategy")

	// Assignment errors
	ErrNotAssigned   = errors.New("no search area assigned")
	ErrAreaNotFound  = errors.New("search area not found in store")
	ErrAgentNotFound = errors.New("agent record not found in store")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// Store errors
	ErrStoreUnavailable = errors.New("knowledge store unavailable")

	// State errors
	ErrAlreadyStarted = errors.New("already started")
	ErrNotInitialized = errors.New("not initialized")
)

// CoordinationError provides structured error information with context.
// It implements the error interface and supports error wrapping.
type CoordinationError struct {
	Op      string // Operation that failed (e.g., "controller.Tick")
	Kind    string // Error kind (e.g., "coverage", "ranking", "store")
	ID      string // Optional ID of the entity involved (agent, area, bridge)
	Message string // Human-readable message
	Err     error  // Underlying error for wrapping
}

// Error returns the string representation of the error
func (e *CoordinationError) Error() string {
	if e.Op != "" && e.Err != nil {
		if e.ID != "" {
			return fmt.Sprintf("%s [%s]: %v", e.Op, e.ID, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *CoordinationError) Unwrap() error {
	return e.Err
}

// NewCoordinationError creates a new CoordinationError
func NewCoordinationError(op, kind string, err error) *CoordinationError {
	return &CoordinationError{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// IsTransient reports whether an error is expected to clear on a later
// evaluation tick. Transient failures are retried on the next tick, never
// escalated to the caller of the tick loop.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNoAgents) ||
		errors.Is(err, ErrNotAvailable) ||
		errors.Is(err, ErrNotAssigned) ||
		errors.Is(err, ErrAreaNotFound) ||
		errors.Is(err, ErrAgentNotFound) ||
		errors.Is(err, ErrStoreUnavailable)
}

// IsMalformedInput reports whether an error indicates input that must abort
// the operation that constructed it. Continuing with a degenerate region
// would partition space incorrectly for every peer.
func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedRegion) ||
		errors.Is(err, ErrMalformedPosition)
}

// IsTerminal reports whether an error is the normal end-of-sequence signal
// rather than a failure.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrSequenceExhausted)
}
