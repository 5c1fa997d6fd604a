package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for matching with errors.Is. The typed errors below wrap
// these and carry the offending IDs so callers can render precise messages.
var (
	// ErrNotFound reports a reference to a task that is not in the store.
	ErrNotFound = errors.New("task not found")

	// ErrAlreadyExists reports an add with a colliding ID.
	ErrAlreadyExists = errors.New("task already exists")

	// ErrCycle reports a link that would close a directed cycle.
	ErrCycle = errors.New("cycle detected")
)

// NotFoundError reports the ID that could not be resolved.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.ID)
}

// Is makes errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError reports the colliding ID.
type AlreadyExistsError struct {
	ID string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("task already exists: %s", e.ID)
}

// Is makes errors.Is(err, ErrAlreadyExists) match.
func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// CycleError reports the edge whose addition would close a cycle.
type CycleError struct {
	ParentID string
	ChildID  string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: %s -> %s", e.ParentID, e.ChildID)
}

// Is makes errors.Is(err, ErrCycle) match.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}
