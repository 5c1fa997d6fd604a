// Package graph owns the in-memory task DAG: a node table keyed by ID with
// edges stored as ID lists on both endpoints. The store keeps two
// generations of the table - a committed baseline and a working copy - and
// guarantees that every state produced through its own API is acyclic and
// edge-symmetric.
package graph

import (
	"fmt"
	"slices"
	"time"

	"github.com/dandori/dandori/internal/task"
)

// Backend persists a node table. Load returns an empty table when no prior
// state exists. Implementations live in internal/storage.
type Backend interface {
	Load() (map[string]*task.Task, error)
	Save(tasks map[string]*task.Task) error
}

// Store mediates every read and write of the node table.
//
// It maintains two generations: the committed baseline (the last agreed
// state) and the working copy, which all operations read and write. Commit
// and Rollback move deep copies between the two and are independent of
// persistence: Load fills both generations from the backend, Save persists
// the working copy whether or not it has been committed. A caller that
// mutates, saves, and crashes before Commit has durably persisted an
// uncommitted state; for a single-writer local tool that is the intended
// trade-off - Commit/Rollback protect the in-process undo window only.
//
// Store is not safe for concurrent use. Exactly one mutator operates on
// the working copy at a time.
type Store struct {
	backend   Backend
	committed map[string]*task.Task
	working   map[string]*task.Task
	now       func() time.Time
}

// New creates an empty store. The backend may be nil for a purely
// in-memory store, in which case Load and Save fail.
func New(backend Backend) *Store {
	return &Store{
		backend:   backend,
		committed: map[string]*task.Task{},
		working:   map[string]*task.Task{},
		now:       task.Now,
	}
}

// Load populates both generations from the backend. Working and committed
// start out equal, so an immediate Rollback is a no-op.
func (s *Store) Load() error {
	if s.backend == nil {
		return fmt.Errorf("load: no backend configured")
	}

	tasks, err := s.backend.Load()
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	if tasks == nil {
		tasks = map[string]*task.Task{}
	}

	s.working = tasks
	s.committed = deepCopy(tasks)

	return nil
}

// Save persists the working copy. It does not commit; callers decide the
// undo boundary separately.
func (s *Store) Save() error {
	if s.backend == nil {
		return fmt.Errorf("save: no backend configured")
	}

	err := s.backend.Save(s.working)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	return nil
}

// Commit makes the working copy the new baseline. Subsequent Rollbacks
// return to this state.
func (s *Store) Commit() {
	s.committed = deepCopy(s.working)
}

// Rollback discards all uncommitted mutations by restoring the working
// copy from the baseline.
func (s *Store) Rollback() {
	s.working = deepCopy(s.committed)
}

// deepCopy clones a node table. The two generations must never share task
// pointers; see task.Clone.
func deepCopy(tasks map[string]*task.Task) map[string]*task.Task {
	out := make(map[string]*task.Task, len(tasks))
	for id, t := range tasks {
		out[id] = t.Clone()
	}

	return out
}

// Add inserts a task into the working copy. The ID must not collide.
func (s *Store) Add(t *task.Task) error {
	if _, ok := s.working[t.ID]; ok {
		return &AlreadyExistsError{ID: t.ID}
	}

	s.working[t.ID] = t

	return nil
}

// AddWithID overwrites the task's ID before inserting. Used by the import
// path, which preserves external IDs.
func (s *Store) AddWithID(t *task.Task, id string) error {
	t.ID = id

	return s.Add(t)
}

// Get returns the live working-copy task. Mutations through the returned
// pointer are part of the working generation and are subject to Rollback.
func (s *Store) Get(id string) (*task.Task, error) {
	t, ok := s.working[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}

	return t, nil
}

// GetMany returns the tasks for the given IDs, silently omitting unknown
// ones. This supports best-effort dependency display after partial deletes.
func (s *Store) GetMany(ids []string) []*task.Task {
	out := make([]*task.Task, 0, len(ids))

	for _, id := range ids {
		if t, ok := s.working[id]; ok {
			out = append(out, t)
		}
	}

	return out
}

// All returns the working node table. Callers treat it as read-only;
// mutations go through the store API.
func (s *Store) All() map[string]*task.Task {
	return s.working
}

// Len reports the number of tasks in the working copy.
func (s *Store) Len() int {
	return len(s.working)
}

// Remove deletes a task. Every incident edge is severed on both sides
// before the node itself goes away, so no dangling references remain.
func (s *Store) Remove(id string) error {
	t, err := s.Get(id)
	if err != nil {
		return err
	}

	for _, pid := range slices.Clone(t.DependsOn) {
		if err := s.Unlink(pid, id); err != nil {
			return fmt.Errorf("remove %s: %w", id, err)
		}
	}

	for _, cid := range slices.Clone(t.Children) {
		if err := s.Unlink(id, cid); err != nil {
			return fmt.Errorf("remove %s: %w", id, err)
		}
	}

	delete(s.working, id)

	return nil
}

// Link adds the directed edge parent -> child. The cycle guard runs first;
// on pass the edge is appended to both endpoints unless already present
// (re-linking an existing edge is a no-op success). Both endpoints get a
// fresh update timestamp.
func (s *Store) Link(parentID, childID string) error {
	parent, err := s.Get(parentID)
	if err != nil {
		return err
	}

	child, err := s.Get(childID)
	if err != nil {
		return err
	}

	if s.wouldCycle(parentID, childID) {
		return &CycleError{ParentID: parentID, ChildID: childID}
	}

	if !slices.Contains(parent.Children, childID) {
		parent.Children = append(parent.Children, childID)
	}

	if !slices.Contains(child.DependsOn, parentID) {
		child.DependsOn = append(child.DependsOn, parentID)
	}

	now := s.now()
	parent.Touch(now)
	child.Touch(now)

	return nil
}

// Unlink removes the directed edge parent -> child from both endpoints.
// Unlinking an edge that does not exist is a no-op success.
func (s *Store) Unlink(parentID, childID string) error {
	parent, err := s.Get(parentID)
	if err != nil {
		return err
	}

	child, err := s.Get(childID)
	if err != nil {
		return err
	}

	parent.Children = deleteID(parent.Children, childID)
	child.DependsOn = deleteID(child.DependsOn, parentID)

	now := s.now()
	parent.Touch(now)
	child.Touch(now)

	return nil
}

func deleteID(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(s string) bool { return s == id })
}

// Archive flips is_archived on every task weakly connected to id and
// returns the touched IDs in traversal order.
func (s *Store) Archive(id string) ([]string, error) {
	return s.setArchived(id, true)
}

// Unarchive is the symmetric restore.
func (s *Store) Unarchive(id string) ([]string, error) {
	return s.setArchived(id, false)
}

func (s *Store) setArchived(id string, flag bool) ([]string, error) {
	comp, err := s.ComponentOf(id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ids := make([]string, 0, len(comp))

	for _, t := range comp {
		t.IsArchived = flag
		t.Touch(now)
		ids = append(ids, t.ID)
	}

	return ids, nil
}
