package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dandori/dandori/internal/task"
)

// InsertBetween inserts newTask between a and b, producing a -> new -> b.
// A direct edge a -> b is severed first if present; when a and b were not
// directly linked the new task is simply linked in without removing
// anything.
//
// The three steps run as one logical transaction over the store, with
// compensation on partial failure:
//
//  1. Add the new task. A duplicate ID aborts with nothing to undo.
//  2. Unlink a -> b if that direct edge exists. On failure the new task is
//     removed again and the failure returned.
//  3. Link a -> new and new -> b. If exactly one link fails, the one that
//     succeeded is unlinked, the new task removed, and the original
//     failure returned; a compensation failure is joined onto it so the
//     caller can see the store needs manual repair.
//
// When BOTH links fail the new task is left in the store as an orphan and
// the two causes are returned joined. Callers must treat that outcome as
// requiring cleanup. (Removing the orphan here would diverge from the
// long-standing behavior downstream tooling checks for.)
func (s *Store) InsertBetween(aID, bID string, newTask *task.Task) error {
	if err := s.Add(newTask); err != nil {
		return err
	}

	if err := s.removeDirectEdge(aID, bID); err != nil {
		if rmErr := s.Remove(newTask.ID); rmErr != nil {
			return errors.Join(err, fmt.Errorf("compensation failed: %w", rmErr))
		}

		return err
	}

	return s.linkInserted(aID, bID, newTask.ID)
}

// removeDirectEdge unlinks a -> b when both endpoints exist and the edge
// is present on both sides. A missing edge is fine; a missing endpoint is
// not.
func (s *Store) removeDirectEdge(aID, bID string) error {
	a, err := s.Get(aID)
	if err != nil {
		return err
	}

	b, err := s.Get(bID)
	if err != nil {
		return err
	}

	if slices.Contains(a.Children, bID) && slices.Contains(b.DependsOn, aID) {
		return s.Unlink(aID, bID)
	}

	return nil
}

// linkInserted establishes a -> new -> b. Both links are attempted before
// inspecting the outcomes, mirroring the compensation contract above.
func (s *Store) linkInserted(aID, bID, newID string) error {
	errA := s.Link(aID, newID)
	errB := s.Link(newID, bID)

	switch {
	case errA == nil && errB == nil:
		return nil

	case errA != nil && errB == nil:
		return s.compensate(errA, newID, bID, newID)

	case errA == nil && errB != nil:
		return s.compensate(errB, aID, newID, newID)

	default:
		// Both links failed. The inserted task stays behind as an orphan;
		// see the InsertBetween doc comment.
		return errors.Join(errA, errB)
	}
}

// compensate undoes the half-applied insertion: unlink the edge that did
// get created, then remove the inserted task. The original failure is
// returned; compensation failures are joined onto it.
func (s *Store) compensate(cause error, undoParent, undoChild, newID string) error {
	if err := s.Unlink(undoParent, undoChild); err != nil {
		return errors.Join(cause, fmt.Errorf("compensation failed: %w", err))
	}

	if err := s.Remove(newID); err != nil {
		return errors.Join(cause, fmt.Errorf("compensation failed: %w", err))
	}

	return cause
}
